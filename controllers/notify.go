package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"

	"fenifisc-registro/models"
	"fenifisc-registro/notify"
	"fenifisc-registro/utils"
)

// NotifyController keeps the standalone notification endpoints of the
// original API surface alive. The registration and status-change
// handlers fire the same notifications server-side on their own.
type NotifyController struct {
	Notifier notify.Notifier
}

func (c NotifyController) SendApprovalEmail() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Email  string `json:"email"`
			Name   string `json:"name"`
			Status string `json:"status"`
		}
		var error models.Error

		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			error.Message = "Invalid request body."
			utils.RespondWithError(w, http.StatusBadRequest, error)
			return
		}
		if body.Email == "" || body.Name == "" || body.Status == "" {
			error.Message = "Email, name and status are required."
			utils.RespondWithError(w, http.StatusBadRequest, error)
			return
		}
		if body.Status != models.StatusApproved && body.Status != models.StatusRejected {
			error.Message = "Invalid status value."
			utils.RespondWithError(w, http.StatusBadRequest, error)
			return
		}

		if err := c.Notifier.NotifyAthleteStatus(body.Email, body.Name, body.Status); err != nil {
			logrus.WithError(err).WithField("email", body.Email).Error("failed to send status email")
			error.Message = "Failed to send email."
			utils.RespondWithError(w, http.StatusInternalServerError, error)
			return
		}

		utils.ResponseJSON(w, map[string]interface{}{"success": true})
	}
}

func (c NotifyController) NotifyAdminNewAthlete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			FirstName  string   `json:"first_name"`
			LastName   string   `json:"last_name"`
			Email      string   `json:"email"`
			Cedula     string   `json:"cedula"`
			Categories []string `json:"categories"`
			CreatedAt  string   `json:"created_at"`
		}
		var error models.Error

		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			error.Message = "Invalid request body."
			utils.RespondWithError(w, http.StatusBadRequest, error)
			return
		}
		if body.FirstName == "" || body.LastName == "" || body.Email == "" || body.Cedula == "" {
			error.Message = "First name, last name, email and cedula are required."
			utils.RespondWithError(w, http.StatusBadRequest, error)
			return
		}

		athlete := models.Athlete{
			FirstName: body.FirstName,
			LastName:  body.LastName,
			Email:     body.Email,
			Cedula:    body.Cedula,
			CreatedAt: body.CreatedAt,
		}
		if err := c.Notifier.NotifyAdminNewAthlete(athlete, body.Categories); err != nil {
			logrus.WithError(err).Error("failed to send admin notification")
			error.Message = "Failed to send email."
			utils.RespondWithError(w, http.StatusInternalServerError, error)
			return
		}

		utils.ResponseJSON(w, map[string]interface{}{"success": true})
	}
}
