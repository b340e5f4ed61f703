package models

// Admin is only ever used for the login check.
type Admin struct {
	ID       int    `json:"id"`
	Email    string `json:"email"`
	Password string `json:"password,omitempty"`
}
