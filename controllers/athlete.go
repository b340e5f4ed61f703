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
	"fenifisc-registro/notify"
	"fenifisc-registro/storage"
	"fenifisc-registro/utils"
)

// AthleteController carries the external collaborators so handlers can
// run without AWS or an SMTP server (both are optional at runtime and
// faked in tests).
type AthleteController struct {
	Store    storage.DocumentStore
	Notifier notify.Notifier
}

type queryer interface {
	Query(query string, args ...interface{}) (*sql.Rows, error)
}

func athleteCategoryNames(q queryer, athleteID int) ([]string, error) {
	rows, err := q.Query(`
		SELECT c.name FROM athlete_categories ac
		JOIN categories c ON c.id = ac.category_id
		WHERE ac.athlete_id = ?
		ORDER BY c.name ASC`, athleteID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func athleteCompetitionRefs(q queryer, athleteID int) ([]models.CompetitionRef, error) {
	rows, err := q.Query(`
		SELECT co.id, co.name, co.date FROM registrations r
		JOIN competitions co ON co.id = r.competition_id
		WHERE r.athlete_id = ?
		ORDER BY co.date ASC`, athleteID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	refs := []models.CompetitionRef{}
	for rows.Next() {
		var ref models.CompetitionRef
		if err := rows.Scan(&ref.ID, &ref.Name, &ref.Date); err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}

const athleteColumns = `id, first_name, last_name, email, COALESCE(phone, ''), cedula,
	COALESCE(address, ''), COALESCE(cedula_front_url, ''), COALESCE(cedula_back_url, ''),
	status, COALESCE(created_at, ''), COALESCE(updated_at, '')`

func scanAthlete(row *sql.Row, a *models.Athlete) error {
	return row.Scan(&a.ID, &a.FirstName, &a.LastName, &a.Email, &a.Phone, &a.Cedula,
		&a.Address, &a.CedulaFrontURL, &a.CedulaBackURL, &a.Status, &a.CreatedAt, &a.UpdatedAt)
}

// parseIDList accepts both [1,2] and ["1","2"], which is what the
// registration form has sent over time.
func parseIDList(raw string) ([]int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return []int{}, nil
	}

	var ids []int
	if err := json.Unmarshal([]byte(raw), &ids); err == nil {
		return ids, nil
	}

	var strs []string
	if err := json.Unmarshal([]byte(raw), &strs); err != nil {
		return nil, err
	}
	ids = make([]int, 0, len(strs))
	for _, s := range strs {
		id, err := utils.StrToInt(s)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// RegisterAthlete handles the public registration submission. The
// database writes (athlete row, category links, registration rows) are
// one transaction; document upload and the admin email happen after the
// commit and are best-effort.
func (c AthleteController) RegisterAthlete(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var error models.Error

		if err := r.ParseMultipartForm(10 << 20); err != nil {
			error.Message = "Invalid multipart form."
			utils.RespondWithError(w, http.StatusBadRequest, error)
			return
		}

		athlete := models.Athlete{
			FirstName: strings.TrimSpace(r.FormValue("firstName")),
			LastName:  strings.TrimSpace(r.FormValue("lastName")),
			Email:     strings.TrimSpace(r.FormValue("email")),
			Phone:     strings.TrimSpace(r.FormValue("phone")),
			Cedula:    strings.TrimSpace(r.FormValue("cedula")),
			Address:   strings.TrimSpace(r.FormValue("address")),
		}

		missing := []string{}
		if athlete.FirstName == "" {
			missing = append(missing, "firstName")
		}
		if athlete.LastName == "" {
			missing = append(missing, "lastName")
		}
		if athlete.Email == "" {
			missing = append(missing, "email")
		}
		if athlete.Cedula == "" {
			missing = append(missing, "cedula")
		}
		if len(missing) > 0 {
			error.Message = "Missing required fields: " + strings.Join(missing, ", ") + "."
			utils.RespondWithError(w, http.StatusBadRequest, error)
			return
		}
		if !utils.IsEmail(athlete.Email) {
			error.Message = "Invalid email format."
			utils.RespondWithError(w, http.StatusBadRequest, error)
			return
		}

		var categoryNames []string
		rawCategories := r.FormValue("categories")
		if rawCategories == "" {
			rawCategories = "[]"
		}
		if err := json.Unmarshal([]byte(rawCategories), &categoryNames); err != nil {
			error.Message = "Invalid categories value."
			utils.RespondWithError(w, http.StatusBadRequest, error)
			return
		}
		if len(categoryNames) == 0 {
			error.Message = "At least one category is required."
			utils.RespondWithError(w, http.StatusBadRequest, error)
			return
		}

		competitionIDs, err := parseIDList(r.FormValue("competitions"))
		if err != nil {
			error.Message = "Invalid competitions value."
			utils.RespondWithError(w, http.StatusBadRequest, error)
			return
		}
		if len(competitionIDs) == 0 {
			error.Message = "At least one competition is required."
			utils.RespondWithError(w, http.StatusBadRequest, error)
			return
		}

		var existingID int
		err = db.QueryRow("SELECT id FROM athletes WHERE cedula = ?", athlete.Cedula).Scan(&existingID)
		if err == nil {
			error.Message = "An athlete with this cedula is already registered."
			utils.RespondWithError(w, http.StatusConflict, error)
			return
		}
		if err != sql.ErrNoRows {
			logrus.WithError(err).Error("failed to check existing cedula")
			error.Message = "Server error."
			utils.RespondWithError(w, http.StatusInternalServerError, error)
			return
		}

		tx, err := db.Begin()
		if err != nil {
			utils.RespondWithError(w, http.StatusInternalServerError, models.Error{Message: "Database error."})
			return
		}
		defer tx.Rollback()

		now := utils.SQLTime(time.Now())
		athlete.Status = models.StatusPending
		athlete.CreatedAt = now
		athlete.UpdatedAt = now

		result, err := tx.Exec(`INSERT INTO athletes
			(first_name, last_name, email, phone, cedula, address, status, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			athlete.FirstName, athlete.LastName, athlete.Email, athlete.Phone,
			athlete.Cedula, athlete.Address, athlete.Status, now, now)
		if err != nil {
			logrus.WithError(err).Error("failed to insert athlete")
			error.Message = "Server error."
			utils.RespondWithError(w, http.StatusInternalServerError, error)
			return
		}
		athleteID, _ := result.LastInsertId()
		athlete.ID = int(athleteID)

		linked := []string{}
		for _, rawName := range categoryNames {
			name := utils.NormalizeCategoryName(rawName)
			if name == "" {
				continue
			}

			var categoryID int
			err := tx.QueryRow("SELECT id, name FROM categories WHERE LOWER(name) = LOWER(?)", name).Scan(&categoryID, &name)
			if err == sql.ErrNoRows {
				// Auto-created categories get gender "both"; an admin can
				// correct it later through the category endpoint.
				res, insErr := tx.Exec("INSERT INTO categories (name, description, gender, created_at) VALUES (?, ?, ?, ?)",
					name, "Categoría "+name, models.GenderBoth, now)
				if insErr != nil {
					logrus.WithError(insErr).Error("failed to create category")
					error.Message = "Server error."
					utils.RespondWithError(w, http.StatusInternalServerError, error)
					return
				}
				newID, _ := res.LastInsertId()
				categoryID = int(newID)
			} else if err != nil {
				logrus.WithError(err).Error("failed to look up category")
				error.Message = "Server error."
				utils.RespondWithError(w, http.StatusInternalServerError, error)
				return
			}

			if _, err := tx.Exec("INSERT INTO athlete_categories (athlete_id, category_id) VALUES (?, ?)",
				athlete.ID, categoryID); err != nil {
				logrus.WithError(err).Error("failed to link category")
				error.Message = "Server error."
				utils.RespondWithError(w, http.StatusInternalServerError, error)
				return
			}
			linked = append(linked, name)
		}

		for _, compID := range competitionIDs {
			var exists int
			err := tx.QueryRow("SELECT id FROM competitions WHERE id = ?", compID).Scan(&exists)
			if err == sql.ErrNoRows {
				error.Message = "Competition not found."
				utils.RespondWithError(w, http.StatusBadRequest, error)
				return
			}
			if err != nil {
				logrus.WithError(err).Error("failed to check competition")
				error.Message = "Server error."
				utils.RespondWithError(w, http.StatusInternalServerError, error)
				return
			}

			if _, err := tx.Exec(`INSERT INTO registrations
				(athlete_id, competition_id, status, registration_date)
				VALUES (?, ?, ?, ?)`,
				athlete.ID, compID, models.RegistrationRegistered, now); err != nil {
				logrus.WithError(err).Error("failed to insert registration")
				error.Message = "Server error."
				utils.RespondWithError(w, http.StatusInternalServerError, error)
				return
			}
		}

		if err := tx.Commit(); err != nil {
			logrus.WithError(err).Error("failed to commit registration")
			error.Message = "Server error."
			utils.RespondWithError(w, http.StatusInternalServerError, error)
			return
		}

		athlete.Categories = linked

		// Documents and notifications follow the commit; failures here
		// leave the registration intact.
		c.uploadDocuments(db, r, &athlete)

		if c.Notifier != nil {
			if err := c.Notifier.NotifyAdminNewAthlete(athlete, linked); err != nil {
				logrus.WithError(err).Warn("failed to notify admins of new athlete")
			}
		}

		utils.ResponseJSON(w, map[string]interface{}{
			"message": "Athlete registered successfully",
			"athlete": athlete,
		})
	}
}

func (c AthleteController) uploadDocuments(db *sql.DB, r *http.Request, athlete *models.Athlete) {
	if c.Store == nil {
		return
	}

	sides := []struct {
		field string
		side  string
		dest  *string
	}{
		{"cedulaFront", "front", &athlete.CedulaFrontURL},
		{"cedulaBack", "back", &athlete.CedulaBackURL},
	}

	for _, s := range sides {
		file, handler, err := r.FormFile(s.field)
		if err != nil {
			continue // not provided
		}

		key := storage.DocumentKey(s.side, athlete.ID, handler.Filename)
		url, err := c.Store.Upload(file, key, handler.Header.Get("Content-Type"))
		file.Close()
		if err != nil {
			logrus.WithError(err).WithField("side", s.side).Error("failed to upload cedula document")
			continue
		}
		*s.dest = url
	}

	if athlete.CedulaFrontURL == "" && athlete.CedulaBackURL == "" {
		return
	}
	if _, err := db.Exec("UPDATE athletes SET cedula_front_url = ?, cedula_back_url = ?, updated_at = ? WHERE id = ?",
		athlete.CedulaFrontURL, athlete.CedulaBackURL, utils.SQLTime(time.Now()), athlete.ID); err != nil {
		logrus.WithError(err).Error("failed to store document URLs")
	}
}

// GetAthletes lists every athlete newest-first with the derived
// category and competition name sets.
func (c AthleteController) GetAthletes(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		athletes, err := listAthletes(db)
		if err != nil {
			logrus.WithError(err).Error("failed to list athletes")
			utils.RespondWithError(w, http.StatusInternalServerError, models.Error{Message: "Server error."})
			return
		}
		utils.ResponseJSON(w, map[string]interface{}{"athletes": athletes})
	}
}

func listAthletes(db *sql.DB) ([]models.Athlete, error) {
	rows, err := db.Query(`SELECT ` + athleteColumns + ` FROM athletes ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}

	athletes := []models.Athlete{}
	for rows.Next() {
		var a models.Athlete
		if err := rows.Scan(&a.ID, &a.FirstName, &a.LastName, &a.Email, &a.Phone, &a.Cedula,
			&a.Address, &a.CedulaFrontURL, &a.CedulaBackURL, &a.Status, &a.CreatedAt, &a.UpdatedAt); err != nil {
			rows.Close()
			return nil, err
		}
		a.Name = a.FirstName + " " + a.LastName
		athletes = append(athletes, a)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range athletes {
		names, err := athleteCategoryNames(db, athletes[i].ID)
		if err != nil {
			return nil, err
		}
		athletes[i].Categories = names

		refs, err := athleteCompetitionRefs(db, athletes[i].ID)
		if err != nil {
			return nil, err
		}
		compNames := []string{}
		for _, ref := range refs {
			compNames = append(compNames, ref.Name)
		}
		athletes[i].Competitions = compNames
	}

	return athletes, nil
}

// GetAthlete is public so an applicant can check their own status.
func (c AthleteController) GetAthlete(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := utils.StrToInt(mux.Vars(r)["id"])
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, models.Error{Message: "Invalid athlete ID."})
			return
		}

		var a models.Athlete
		err = scanAthlete(db.QueryRow(`SELECT `+athleteColumns+` FROM athletes WHERE id = ?`, id), &a)
		if err == sql.ErrNoRows {
			utils.RespondWithError(w, http.StatusNotFound, models.Error{Message: "Athlete not found."})
			return
		}
		if err != nil {
			logrus.WithError(err).Error("failed to load athlete")
			utils.RespondWithError(w, http.StatusInternalServerError, models.Error{Message: "Server error."})
			return
		}
		a.Name = a.FirstName + " " + a.LastName

		names, err := athleteCategoryNames(db, a.ID)
		if err != nil {
			logrus.WithError(err).Error("failed to load athlete categories")
			utils.RespondWithError(w, http.StatusInternalServerError, models.Error{Message: "Server error."})
			return
		}
		a.Categories = names

		refs, err := athleteCompetitionRefs(db, a.ID)
		if err != nil {
			logrus.WithError(err).Error("failed to load athlete competitions")
			utils.RespondWithError(w, http.StatusInternalServerError, models.Error{Message: "Server error."})
			return
		}
		a.Competitions = []string{}
		for _, ref := range refs {
			a.Competitions = append(a.Competitions, ref.Name)
		}

		type athleteDetail struct {
			models.Athlete
			CompetitionDetails []models.CompetitionRef `json:"competitions_detail"`
		}

		utils.ResponseJSON(w, map[string]interface{}{
			"athlete": athleteDetail{Athlete: a, CompetitionDetails: refs},
		})
	}
}

// UpdateAthlete applies a partial field update. Status changes go
// through the lifecycle check; a real approve/reject also notifies the
// athlete, and a notification failure never rolls the change back.
func (c AthleteController) UpdateAthlete(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var error models.Error

		id, err := utils.StrToInt(mux.Vars(r)["id"])
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, models.Error{Message: "Invalid athlete ID."})
			return
		}

		var body struct {
			Status    string `json:"status"`
			FirstName string `json:"firstName"`
			LastName  string `json:"lastName"`
			Email     string `json:"email"`
			Phone     string `json:"phone"`
			Cedula    string `json:"cedula"`
			Address   string `json:"address"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			error.Message = "Invalid request body."
			utils.RespondWithError(w, http.StatusBadRequest, error)
			return
		}

		if body.Status == "" && body.FirstName == "" && body.LastName == "" &&
			body.Email == "" && body.Phone == "" && body.Cedula == "" && body.Address == "" {
			error.Message = "No fields provided to update."
			utils.RespondWithError(w, http.StatusBadRequest, error)
			return
		}

		var current models.Athlete
		err = scanAthlete(db.QueryRow(`SELECT `+athleteColumns+` FROM athletes WHERE id = ?`, id), &current)
		if err == sql.ErrNoRows {
			error.Message = "Athlete not found."
			utils.RespondWithError(w, http.StatusNotFound, error)
			return
		}
		if err != nil {
			logrus.WithError(err).Error("failed to load athlete")
			error.Message = "Server error."
			utils.RespondWithError(w, http.StatusInternalServerError, error)
			return
		}

		statusChangeRequested := false
		if body.Status != "" {
			if !models.IsValidStatus(body.Status) {
				error.Message = "Invalid status value."
				utils.RespondWithError(w, http.StatusBadRequest, error)
				return
			}
			if !models.IsValidStatusTransition(current.Status, body.Status) {
				error.Message = "Invalid status transition from " + current.Status + " to " + body.Status + "."
				utils.RespondWithError(w, http.StatusBadRequest, error)
				return
			}
			statusChangeRequested = true
		}

		setClauses := []string{"updated_at = ?"}
		args := []interface{}{utils.SQLTime(time.Now())}
		if body.Status != "" {
			setClauses = append(setClauses, "status = ?")
			args = append(args, body.Status)
		}
		if body.FirstName != "" {
			setClauses = append(setClauses, "first_name = ?")
			args = append(args, body.FirstName)
		}
		if body.LastName != "" {
			setClauses = append(setClauses, "last_name = ?")
			args = append(args, body.LastName)
		}
		if body.Email != "" {
			setClauses = append(setClauses, "email = ?")
			args = append(args, body.Email)
		}
		if body.Phone != "" {
			setClauses = append(setClauses, "phone = ?")
			args = append(args, body.Phone)
		}
		if body.Cedula != "" {
			setClauses = append(setClauses, "cedula = ?")
			args = append(args, body.Cedula)
		}
		if body.Address != "" {
			setClauses = append(setClauses, "address = ?")
			args = append(args, body.Address)
		}

		args = append(args, id)
		if _, err := db.Exec("UPDATE athletes SET "+strings.Join(setClauses, ", ")+" WHERE id = ?", args...); err != nil {
			logrus.WithError(err).Error("failed to update athlete")
			error.Message = "Server error."
			utils.RespondWithError(w, http.StatusInternalServerError, error)
			return
		}

		var updated models.Athlete
		if err := scanAthlete(db.QueryRow(`SELECT `+athleteColumns+` FROM athletes WHERE id = ?`, id), &updated); err != nil {
			logrus.WithError(err).Error("failed to reload athlete")
			error.Message = "Server error."
			utils.RespondWithError(w, http.StatusInternalServerError, error)
			return
		}

		notificationSent := false
		if statusChangeRequested && updated.Status != models.StatusPending && c.Notifier != nil {
			name := updated.FirstName + " " + updated.LastName
			if err := c.Notifier.NotifyAthleteStatus(updated.Email, name, updated.Status); err != nil {
				logrus.WithError(err).WithField("athlete_id", updated.ID).Warn("failed to send status email")
			} else {
				notificationSent = true
			}
			if updated.Phone != "" {
				if err := c.Notifier.NotifyAthleteStatusSMS(updated.Phone, name, updated.Status); err != nil {
					logrus.WithError(err).WithField("athlete_id", updated.ID).Warn("failed to send status SMS")
				}
			}
		}

		utils.ResponseJSON(w, map[string]interface{}{
			"message":           "Athlete updated successfully",
			"athlete":           updated,
			"notification_sent": notificationSent,
		})
	}
}

// DeleteAthlete removes the stored documents best-effort, then the
// category links, registrations and the athlete row in one transaction.
func (c AthleteController) DeleteAthlete(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := utils.StrToInt(mux.Vars(r)["id"])
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, models.Error{Message: "Invalid athlete ID."})
			return
		}

		var frontURL, backURL string
		err = db.QueryRow("SELECT COALESCE(cedula_front_url, ''), COALESCE(cedula_back_url, '') FROM athletes WHERE id = ?", id).
			Scan(&frontURL, &backURL)
		if err == sql.ErrNoRows {
			utils.RespondWithError(w, http.StatusNotFound, models.Error{Message: "Athlete not found."})
			return
		}
		if err != nil {
			logrus.WithError(err).Error("failed to load athlete")
			utils.RespondWithError(w, http.StatusInternalServerError, models.Error{Message: "Server error."})
			return
		}

		if c.Store != nil {
			for _, url := range []string{frontURL, backURL} {
				if url == "" {
					continue
				}
				if err := c.Store.Delete(url); err != nil {
					logrus.WithError(err).WithField("url", url).Warn("failed to delete stored document")
				}
			}
		}

		tx, err := db.Begin()
		if err != nil {
			utils.RespondWithError(w, http.StatusInternalServerError, models.Error{Message: "Database error."})
			return
		}
		defer tx.Rollback()

		if _, err := tx.Exec("DELETE FROM athlete_categories WHERE athlete_id = ?", id); err != nil {
			logrus.WithError(err).Error("failed to delete category links")
			utils.RespondWithError(w, http.StatusInternalServerError, models.Error{Message: "Server error."})
			return
		}
		if _, err := tx.Exec("DELETE FROM registrations WHERE athlete_id = ?", id); err != nil {
			logrus.WithError(err).Error("failed to delete registrations")
			utils.RespondWithError(w, http.StatusInternalServerError, models.Error{Message: "Server error."})
			return
		}
		if _, err := tx.Exec("DELETE FROM athletes WHERE id = ?", id); err != nil {
			logrus.WithError(err).Error("failed to delete athlete")
			utils.RespondWithError(w, http.StatusInternalServerError, models.Error{Message: "Server error."})
			return
		}
		if err := tx.Commit(); err != nil {
			utils.RespondWithError(w, http.StatusInternalServerError, models.Error{Message: "Server error."})
			return
		}

		utils.ResponseJSON(w, map[string]interface{}{"message": "Athlete deleted successfully"})
	}
}
