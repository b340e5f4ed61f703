package models

const (
	GenderMale   = "male"
	GenderFemale = "female"
	GenderBoth   = "both"
)

func IsValidGender(g string) bool {
	return g == GenderMale || g == GenderFemale || g == GenderBoth
}

type Category struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Gender      string `json:"gender"`
	CreatedAt   string `json:"created_at,omitempty"`
}
