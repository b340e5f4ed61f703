package controllers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"fenifisc-registro/models"
	"fenifisc-registro/utils"
)

type CompetitionController struct{}

func scanCompetition(row *sql.Row, comp *models.Competition) error {
	return row.Scan(&comp.ID, &comp.Name, &comp.Description, &comp.Date, &comp.Location,
		&comp.RegistrationDeadline, &comp.MaxRegistrations, &comp.Status,
		&comp.CreatedAt, &comp.UpdatedAt)
}

const competitionColumns = `id, name, COALESCE(description, ''), date, location,
	registration_deadline, max_registrations, status,
	COALESCE(created_at, ''), COALESCE(updated_at, '')`

// GetCompetitions lists competitions by date ascending, each with its
// live registration count. Occupancy is never read from anywhere but
// the registration rows themselves.
func (c CompetitionController) GetCompetitions(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := db.Query(`SELECT ` + competitionColumns + `,
			(SELECT COUNT(*) FROM registrations rg WHERE rg.competition_id = competitions.id)
			FROM competitions ORDER BY date ASC`)
		if err != nil {
			logrus.WithError(err).Error("failed to list competitions")
			utils.RespondWithError(w, http.StatusInternalServerError, models.Error{Message: "Server error."})
			return
		}
		defer rows.Close()

		competitions := []models.Competition{}
		for rows.Next() {
			var comp models.Competition
			if err := rows.Scan(&comp.ID, &comp.Name, &comp.Description, &comp.Date, &comp.Location,
				&comp.RegistrationDeadline, &comp.MaxRegistrations, &comp.Status,
				&comp.CreatedAt, &comp.UpdatedAt, &comp.RegistrationsCount); err != nil {
				logrus.WithError(err).Error("failed to scan competition")
				utils.RespondWithError(w, http.StatusInternalServerError, models.Error{Message: "Server error."})
				return
			}
			comp.SpotsRemaining = comp.MaxRegistrations - comp.RegistrationsCount
			competitions = append(competitions, comp)
		}

		utils.ResponseJSON(w, map[string]interface{}{"competitions": competitions})
	}
}

// GetCompetition returns the detail view including the registered
// athletes with their categories.
func (c CompetitionController) GetCompetition(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := utils.StrToInt(mux.Vars(r)["id"])
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, models.Error{Message: "Invalid competition ID."})
			return
		}

		var comp models.Competition
		err = scanCompetition(db.QueryRow(`SELECT `+competitionColumns+` FROM competitions WHERE id = ?`, id), &comp)
		if err == sql.ErrNoRows {
			utils.RespondWithError(w, http.StatusNotFound, models.Error{Message: "Competition not found."})
			return
		}
		if err != nil {
			logrus.WithError(err).Error("failed to load competition")
			utils.RespondWithError(w, http.StatusInternalServerError, models.Error{Message: "Server error."})
			return
		}

		rows, err := db.Query(`
			SELECT r.id, r.status, a.id, a.first_name, a.last_name, a.email, a.status, a.cedula
			FROM registrations r
			JOIN athletes a ON a.id = r.athlete_id
			WHERE r.competition_id = ?
			ORDER BY r.id ASC`, id)
		if err != nil {
			logrus.WithError(err).Error("failed to load registrations")
			utils.RespondWithError(w, http.StatusInternalServerError, models.Error{Message: "Server error."})
			return
		}

		registered := []models.RegisteredAthlete{}
		for rows.Next() {
			var ra models.RegisteredAthlete
			if err := rows.Scan(&ra.RegistrationID, &ra.RegistrationStatus, &ra.ID,
				&ra.FirstName, &ra.LastName, &ra.Email, &ra.Status, &ra.Cedula); err != nil {
				rows.Close()
				logrus.WithError(err).Error("failed to scan registration")
				utils.RespondWithError(w, http.StatusInternalServerError, models.Error{Message: "Server error."})
				return
			}
			registered = append(registered, ra)
		}
		rows.Close()

		for i := range registered {
			names, err := athleteCategoryNames(db, registered[i].ID)
			if err != nil {
				logrus.WithError(err).Error("failed to load athlete categories")
				utils.RespondWithError(w, http.StatusInternalServerError, models.Error{Message: "Server error."})
				return
			}
			registered[i].Categories = names
		}

		comp.RegistrationsCount = len(registered)
		comp.SpotsRemaining = comp.MaxRegistrations - comp.RegistrationsCount
		comp.RegisteredAthletes = registered

		utils.ResponseJSON(w, map[string]interface{}{"competition": comp})
	}
}

func (c CompetitionController) CreateCompetition(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var comp models.Competition
		var error models.Error

		if err := json.NewDecoder(r.Body).Decode(&comp); err != nil {
			error.Message = "Invalid request body."
			utils.RespondWithError(w, http.StatusBadRequest, error)
			return
		}

		missing := []string{}
		if strings.TrimSpace(comp.Name) == "" {
			missing = append(missing, "name")
		}
		if comp.Date == "" {
			missing = append(missing, "date")
		}
		if comp.Location == "" {
			missing = append(missing, "location")
		}
		if comp.RegistrationDeadline == "" {
			missing = append(missing, "registration_deadline")
		}
		if comp.MaxRegistrations <= 0 {
			missing = append(missing, "max_registrations")
		}
		if len(missing) > 0 {
			error.Message = "Missing required fields: " + strings.Join(missing, ", ") + "."
			utils.RespondWithError(w, http.StatusBadRequest, error)
			return
		}

		now := utils.SQLTime(time.Now())
		comp.Status = models.CompetitionActive
		comp.CreatedAt = now
		comp.UpdatedAt = now

		result, err := db.Exec(`INSERT INTO competitions
			(name, description, date, location, registration_deadline, max_registrations, status, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			comp.Name, comp.Description, comp.Date, comp.Location,
			comp.RegistrationDeadline, comp.MaxRegistrations, comp.Status, now, now)
		if err != nil {
			logrus.WithError(err).Error("failed to insert competition")
			error.Message = "Server error."
			utils.RespondWithError(w, http.StatusInternalServerError, error)
			return
		}

		id, _ := result.LastInsertId()
		comp.ID = int(id)
		comp.SpotsRemaining = comp.MaxRegistrations

		utils.ResponseJSON(w, map[string]interface{}{
			"message":     "Competition created successfully",
			"competition": comp,
		})
	}
}

func (c CompetitionController) UpdateCompetition(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var error models.Error

		id, err := utils.StrToInt(mux.Vars(r)["id"])
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, models.Error{Message: "Invalid competition ID."})
			return
		}

		var body struct {
			Name                 string  `json:"name"`
			Description          *string `json:"description"`
			Date                 string  `json:"date"`
			Location             string  `json:"location"`
			RegistrationDeadline string  `json:"registration_deadline"`
			MaxRegistrations     int     `json:"max_registrations"`
			Status               string  `json:"status"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			error.Message = "Invalid request body."
			utils.RespondWithError(w, http.StatusBadRequest, error)
			return
		}

		setClauses := []string{"updated_at = ?"}
		args := []interface{}{utils.SQLTime(time.Now())}

		if body.Name != "" {
			setClauses = append(setClauses, "name = ?")
			args = append(args, body.Name)
		}
		if body.Description != nil {
			setClauses = append(setClauses, "description = ?")
			args = append(args, *body.Description)
		}
		if body.Date != "" {
			setClauses = append(setClauses, "date = ?")
			args = append(args, body.Date)
		}
		if body.Location != "" {
			setClauses = append(setClauses, "location = ?")
			args = append(args, body.Location)
		}
		if body.RegistrationDeadline != "" {
			setClauses = append(setClauses, "registration_deadline = ?")
			args = append(args, body.RegistrationDeadline)
		}
		if body.MaxRegistrations > 0 {
			setClauses = append(setClauses, "max_registrations = ?")
			args = append(args, body.MaxRegistrations)
		}
		if body.Status != "" {
			if body.Status != models.CompetitionActive && body.Status != models.CompetitionInactive && body.Status != models.CompetitionCompleted {
				error.Message = "Invalid status value."
				utils.RespondWithError(w, http.StatusBadRequest, error)
				return
			}
			setClauses = append(setClauses, "status = ?")
			args = append(args, body.Status)
		}

		if len(setClauses) == 1 {
			error.Message = "No fields provided to update."
			utils.RespondWithError(w, http.StatusBadRequest, error)
			return
		}

		args = append(args, id)
		result, err := db.Exec("UPDATE competitions SET "+strings.Join(setClauses, ", ")+" WHERE id = ?", args...)
		if err != nil {
			logrus.WithError(err).Error("failed to update competition")
			error.Message = "Server error."
			utils.RespondWithError(w, http.StatusInternalServerError, error)
			return
		}
		if affected, _ := result.RowsAffected(); affected == 0 {
			// An update that writes back identical values also reports 0
			// on MySQL, so confirm the row really is missing.
			var exists int
			if err := db.QueryRow("SELECT id FROM competitions WHERE id = ?", id).Scan(&exists); err == sql.ErrNoRows {
				error.Message = "Competition not found."
				utils.RespondWithError(w, http.StatusNotFound, error)
				return
			}
		}

		var comp models.Competition
		if err := scanCompetition(db.QueryRow(`SELECT `+competitionColumns+` FROM competitions WHERE id = ?`, id), &comp); err != nil {
			logrus.WithError(err).Error("failed to reload competition")
			error.Message = "Server error."
			utils.RespondWithError(w, http.StatusInternalServerError, error)
			return
		}

		utils.ResponseJSON(w, map[string]interface{}{
			"message":     "Competition updated successfully",
			"competition": comp,
		})
	}
}

// DeleteCompetition removes the registrations first, then the row, in
// one transaction so a crash cannot orphan either side.
func (c CompetitionController) DeleteCompetition(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := utils.StrToInt(mux.Vars(r)["id"])
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, models.Error{Message: "Invalid competition ID."})
			return
		}

		var exists int
		err = db.QueryRow("SELECT id FROM competitions WHERE id = ?", id).Scan(&exists)
		if err == sql.ErrNoRows {
			utils.RespondWithError(w, http.StatusNotFound, models.Error{Message: "Competition not found."})
			return
		}
		if err != nil {
			logrus.WithError(err).Error("failed to check competition")
			utils.RespondWithError(w, http.StatusInternalServerError, models.Error{Message: "Server error."})
			return
		}

		tx, err := db.Begin()
		if err != nil {
			utils.RespondWithError(w, http.StatusInternalServerError, models.Error{Message: "Database error."})
			return
		}
		defer tx.Rollback()

		if _, err := tx.Exec("DELETE FROM registrations WHERE competition_id = ?", id); err != nil {
			logrus.WithError(err).Error("failed to delete registrations")
			utils.RespondWithError(w, http.StatusInternalServerError, models.Error{Message: "Server error."})
			return
		}
		if _, err := tx.Exec("DELETE FROM competitions WHERE id = ?", id); err != nil {
			logrus.WithError(err).Error("failed to delete competition")
			utils.RespondWithError(w, http.StatusInternalServerError, models.Error{Message: "Server error."})
			return
		}
		if err := tx.Commit(); err != nil {
			utils.RespondWithError(w, http.StatusInternalServerError, models.Error{Message: "Server error."})
			return
		}

		utils.ResponseJSON(w, map[string]interface{}{"message": "Competition deleted successfully"})
	}
}
