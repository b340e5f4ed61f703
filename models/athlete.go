package models

// Athlete approval lifecycle. The only valid transitions are
// pending -> approved and pending -> rejected; re-setting the current
// status is allowed so an approve can be retried safely.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

func IsValidStatus(s string) bool {
	return s == StatusPending || s == StatusApproved || s == StatusRejected
}

func IsValidStatusTransition(from, to string) bool {
	if from == to {
		return true
	}
	return from == StatusPending && (to == StatusApproved || to == StatusRejected)
}

type Athlete struct {
	ID             int    `json:"id"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	Name           string `json:"name,omitempty"`
	Email          string `json:"email"`
	Phone          string `json:"phone,omitempty"`
	Cedula         string `json:"cedula"`
	Address        string `json:"address,omitempty"`
	CedulaFrontURL string `json:"cedula_front_url,omitempty"`
	CedulaBackURL  string `json:"cedula_back_url,omitempty"`
	Status         string `json:"status"`
	CreatedAt      string `json:"created_at,omitempty"`
	UpdatedAt      string `json:"updated_at,omitempty"`

	Categories   []string `json:"categories,omitempty"`
	Competitions []string `json:"competitions,omitempty"`
}
