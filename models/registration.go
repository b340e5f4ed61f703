package models

const (
	RegistrationRegistered = "registered"
	RegistrationConfirmed  = "confirmed"
	RegistrationCancelled  = "cancelled"
)

// Registration links one athlete to one competition. Rows are created at
// submission time and removed when either side is deleted.
type Registration struct {
	ID               int    `json:"id"`
	AthleteID        int    `json:"athlete_id"`
	CompetitionID    int    `json:"competition_id"`
	Status           string `json:"status"`
	RegistrationDate string `json:"registration_date"`
	Notes            string `json:"notes,omitempty"`
}
