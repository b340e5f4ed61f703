package controllers

import (
	"bytes"
	"net/http"
	"testing"

	"github.com/xuri/excelize/v2"

	"fenifisc-registro/models"
	"fenifisc-registro/testutil"
)

func TestExportAthletes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	router := newTestRouter(db, newFakeStore(), &fakeNotifier{})
	token := testutil.SeedAdmin(t, db, "admin@fenifisc.com", "secret123")
	testutil.SeedAthlete(t, db, "Ana", "Lopez", "001-1", models.StatusApproved)
	testutil.SeedAthlete(t, db, "Luis", "Mendez", "002-2", models.StatusPending)

	rr := doJSON(t, router, http.MethodGet, "/api/athletes/export", token, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet" {
		t.Errorf("Unexpected content type %q", ct)
	}

	f, err := excelize.OpenReader(bytes.NewReader(rr.Body.Bytes()))
	if err != nil {
		t.Fatalf("Response is not a readable workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Atletas")
	if err != nil {
		t.Fatalf("Missing Atletas sheet: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("Expected header + 2 athlete rows, got %d", len(rows))
	}
	if rows[0][0] != "ID" || rows[0][1] != "Nombre" {
		t.Errorf("Unexpected header row: %v", rows[0])
	}
}

func TestExportAthletesRequiresAdmin(t *testing.T) {
	db := testutil.SetupTestDB(t)
	router := newTestRouter(db, newFakeStore(), &fakeNotifier{})

	rr := doJSON(t, router, http.MethodGet, "/api/athletes/export", "", nil)
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 without token, got %d", rr.Code)
	}
}
