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

type CategoryController struct{}

func (c CategoryController) GetCategories(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := db.Query("SELECT id, name, COALESCE(description, ''), gender, COALESCE(created_at, '') FROM categories ORDER BY name ASC")
		if err != nil {
			logrus.WithError(err).Error("failed to list categories")
			utils.RespondWithError(w, http.StatusInternalServerError, models.Error{Message: "Server error."})
			return
		}
		defer rows.Close()

		categories := []models.Category{}
		for rows.Next() {
			var cat models.Category
			if err := rows.Scan(&cat.ID, &cat.Name, &cat.Description, &cat.Gender, &cat.CreatedAt); err != nil {
				logrus.WithError(err).Error("failed to scan category")
				utils.RespondWithError(w, http.StatusInternalServerError, models.Error{Message: "Server error."})
				return
			}
			categories = append(categories, cat)
		}

		utils.ResponseJSON(w, map[string]interface{}{"categories": categories})
	}
}

// CreateCategory requires an explicit gender value; nothing is ever
// inferred from the category name.
func (c CategoryController) CreateCategory(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var cat models.Category
		var error models.Error

		if err := json.NewDecoder(r.Body).Decode(&cat); err != nil {
			error.Message = "Invalid request body."
			utils.RespondWithError(w, http.StatusBadRequest, error)
			return
		}

		cat.Name = utils.NormalizeCategoryName(cat.Name)
		if cat.Name == "" {
			error.Message = "Category name is required."
			utils.RespondWithError(w, http.StatusBadRequest, error)
			return
		}
		if !models.IsValidGender(cat.Gender) {
			error.Message = "Gender must be one of: male, female, both."
			utils.RespondWithError(w, http.StatusBadRequest, error)
			return
		}

		var existingID int
		err := db.QueryRow("SELECT id FROM categories WHERE LOWER(name) = LOWER(?)", cat.Name).Scan(&existingID)
		if err == nil {
			error.Message = "Category already exists."
			utils.RespondWithError(w, http.StatusConflict, error)
			return
		}
		if err != sql.ErrNoRows {
			logrus.WithError(err).Error("failed to check existing category")
			error.Message = "Server error."
			utils.RespondWithError(w, http.StatusInternalServerError, error)
			return
		}

		cat.CreatedAt = utils.SQLTime(time.Now())
		result, err := db.Exec("INSERT INTO categories (name, description, gender, created_at) VALUES (?, ?, ?, ?)",
			cat.Name, cat.Description, cat.Gender, cat.CreatedAt)
		if err != nil {
			logrus.WithError(err).Error("failed to insert category")
			error.Message = "Server error."
			utils.RespondWithError(w, http.StatusInternalServerError, error)
			return
		}

		id, _ := result.LastInsertId()
		cat.ID = int(id)

		utils.ResponseJSON(w, map[string]interface{}{
			"message":  "Category created successfully",
			"category": cat,
		})
	}
}
