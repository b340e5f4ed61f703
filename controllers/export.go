package controllers

import (
	"database/sql"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"

	"fenifisc-registro/models"
	"fenifisc-registro/utils"
)

// ExportAthletes streams the athlete roster as an xlsx workbook. This is
// the server-side replacement for what the old admin page assembled in
// the browser.
func (c AthleteController) ExportAthletes(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		athletes, err := listAthletes(db)
		if err != nil {
			logrus.WithError(err).Error("failed to list athletes for export")
			utils.RespondWithError(w, http.StatusInternalServerError, models.Error{Message: "Server error."})
			return
		}

		f := excelize.NewFile()
		defer f.Close()

		const sheet = "Atletas"
		f.SetSheetName("Sheet1", sheet)

		headers := []string{"ID", "Nombre", "Apellido", "Email", "Teléfono", "Cédula",
			"Dirección", "Estado", "Categorías", "Competencias", "Fecha de registro"}
		for i, h := range headers {
			cell, _ := excelize.CoordinatesToCellName(i+1, 1)
			f.SetCellValue(sheet, cell, h)
		}

		for row, a := range athletes {
			values := []interface{}{
				a.ID, a.FirstName, a.LastName, a.Email, a.Phone, a.Cedula,
				a.Address, a.Status,
				strings.Join(a.Categories, ", "),
				strings.Join(a.Competitions, ", "),
				a.CreatedAt,
			}
			for col, v := range values {
				cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
				f.SetCellValue(sheet, cell, v)
			}
		}

		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", `attachment; filename="atletas-fenifisc.xlsx"`)
		if err := f.Write(w); err != nil {
			logrus.WithError(err).Error("failed to write xlsx response")
		}
	}
}
