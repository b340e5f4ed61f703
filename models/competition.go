package models

// Competition status is maintained by the scheduler sweep, not by hand.
const (
	CompetitionActive    = "active"
	CompetitionInactive  = "inactive"
	CompetitionCompleted = "completed"
)

type Competition struct {
	ID                   int    `json:"id"`
	Name                 string `json:"name"`
	Description          string `json:"description,omitempty"`
	Date                 string `json:"date"`
	Location             string `json:"location"`
	RegistrationDeadline string `json:"registration_deadline"`
	MaxRegistrations     int    `json:"max_registrations"`
	Status               string `json:"status"`
	CreatedAt            string `json:"created_at,omitempty"`
	UpdatedAt            string `json:"updated_at,omitempty"`

	// Derived from the live registration rows, never stored.
	RegistrationsCount int `json:"registrations_count"`
	SpotsRemaining     int `json:"spots_remaining"`

	RegisteredAthletes []RegisteredAthlete `json:"registered_athletes,omitempty"`
}

// RegisteredAthlete is the athlete view embedded in a competition detail.
type RegisteredAthlete struct {
	ID                 int      `json:"id"`
	FirstName          string   `json:"first_name"`
	LastName           string   `json:"last_name"`
	Email              string   `json:"email"`
	Status             string   `json:"status"`
	Cedula             string   `json:"cedula"`
	Categories         []string `json:"categories"`
	RegistrationID     int      `json:"registration_id"`
	RegistrationStatus string   `json:"registration_status"`
}

// CompetitionRef is the compact shape embedded in an athlete detail.
type CompetitionRef struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Date string `json:"date"`
}
