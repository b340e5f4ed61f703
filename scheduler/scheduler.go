package scheduler

import (
	"database/sql"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"fenifisc-registro/models"
	"fenifisc-registro/utils"
)

// MarkFinishedCompetitions flips competitions whose date has passed to
// "completed". Dates are stored as YYYY-MM-DD so a string comparison
// against today is exact.
func MarkFinishedCompetitions(db *sql.DB) (int64, error) {
	today := time.Now().Format("2006-01-02")

	result, err := db.Exec(`UPDATE competitions SET status = ?, updated_at = ?
		WHERE date < ? AND status <> ?`,
		models.CompetitionCompleted, utils.SQLTime(time.Now()), today, models.CompetitionCompleted)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// Start runs the competition sweep hourly until the process exits.
func Start(db *sql.DB) *cron.Cron {
	c := cron.New()
	c.AddFunc("@hourly", func() {
		n, err := MarkFinishedCompetitions(db)
		if err != nil {
			logrus.WithError(err).Error("competition status sweep failed")
			return
		}
		if n > 0 {
			logrus.WithField("completed", n).Info("marked past competitions as completed")
		}
	})
	c.Start()
	return c
}
