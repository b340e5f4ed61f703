package models

// Error is the JSON envelope returned for every failed request.
type Error struct {
	Message string `json:"error"`
}
