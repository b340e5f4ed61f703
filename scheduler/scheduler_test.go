package scheduler

import (
	"testing"

	"fenifisc-registro/models"
	"fenifisc-registro/testutil"
)

func TestMarkFinishedCompetitions(t *testing.T) {
	db := testutil.SetupTestDB(t)

	past := testutil.SeedCompetition(t, db, "Copa 2020", "2020-06-01")
	future := testutil.SeedCompetition(t, db, "Copa 2099", "2099-06-01")

	n, err := MarkFinishedCompetitions(db)
	if err != nil {
		t.Fatalf("MarkFinishedCompetitions failed: %v", err)
	}
	if n != 1 {
		t.Errorf("Expected 1 row updated, got %d", n)
	}

	var status string
	db.QueryRow("SELECT status FROM competitions WHERE id = ?", past).Scan(&status)
	if status != models.CompetitionCompleted {
		t.Errorf("Expected past competition completed, got %q", status)
	}
	db.QueryRow("SELECT status FROM competitions WHERE id = ?", future).Scan(&status)
	if status != models.CompetitionActive {
		t.Errorf("Expected future competition untouched, got %q", status)
	}

	// Second sweep is a no-op.
	n, err = MarkFinishedCompetitions(db)
	if err != nil {
		t.Fatalf("Second sweep failed: %v", err)
	}
	if n != 0 {
		t.Errorf("Expected idempotent sweep, got %d rows", n)
	}
}
