package controllers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"fenifisc-registro/models"
	"fenifisc-registro/utils"
)

type AdminController struct{}

// Login checks the credentials against the admins table and issues a
// signed session token. The token, not any client-held flag, is what
// gates the admin routes.
func (c AdminController) Login(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var creds models.Admin
		var error models.Error

		if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
			error.Message = "Invalid request body."
			utils.RespondWithError(w, http.StatusBadRequest, error)
			return
		}

		if creds.Email == "" || creds.Password == "" {
			error.Message = "Email and password are required."
			utils.RespondWithError(w, http.StatusBadRequest, error)
			return
		}

		var admin models.Admin
		var passwordHash string
		err := db.QueryRow("SELECT id, email, password_hash FROM admins WHERE email = ?", creds.Email).
			Scan(&admin.ID, &admin.Email, &passwordHash)
		if err == sql.ErrNoRows {
			error.Message = "Invalid credentials."
			utils.RespondWithError(w, http.StatusUnauthorized, error)
			return
		}
		if err != nil {
			logrus.WithError(err).Error("failed to look up admin")
			error.Message = "Server error."
			utils.RespondWithError(w, http.StatusInternalServerError, error)
			return
		}

		if !utils.ComparePasswords(passwordHash, []byte(creds.Password)) {
			error.Message = "Invalid credentials."
			utils.RespondWithError(w, http.StatusUnauthorized, error)
			return
		}

		token, err := utils.GenerateAdminToken(admin, 24*time.Hour)
		if err != nil {
			logrus.WithError(err).Error("failed to generate admin token")
			error.Message = "Server error."
			utils.RespondWithError(w, http.StatusInternalServerError, error)
			return
		}

		utils.ResponseJSON(w, map[string]interface{}{
			"success": true,
			"token":   token,
			"admin":   map[string]interface{}{"id": admin.ID, "email": admin.Email},
		})
	}
}
