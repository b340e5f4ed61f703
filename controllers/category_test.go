package controllers

import (
	"net/http"
	"testing"

	"fenifisc-registro/models"
	"fenifisc-registro/testutil"
)

func TestCreateCategoryRequiresExplicitGender(t *testing.T) {
	db := testutil.SetupTestDB(t)
	router := newTestRouter(db, newFakeStore(), &fakeNotifier{})
	token := testutil.SeedAdmin(t, db, "admin@fenifisc.com", "secret123")

	rr := doJSON(t, router, http.MethodPost, "/api/categories", token,
		map[string]string{"name": "Bikini"})
	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 without gender, got %d: %s", rr.Code, rr.Body.String())
	}

	rr = doJSON(t, router, http.MethodPost, "/api/categories", token,
		map[string]string{"name": "Bikini", "gender": "everyone"})
	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for unknown gender, got %d", rr.Code)
	}

	rr = doJSON(t, router, http.MethodPost, "/api/categories", token,
		map[string]string{"name": "bikini", "gender": models.GenderFemale})
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	cat := decodeBody(t, rr)["category"].(map[string]interface{})
	if cat["name"] != "Bikini" {
		t.Errorf("Expected normalized name Bikini, got %v", cat["name"])
	}
	if cat["gender"] != models.GenderFemale {
		t.Errorf("Expected gender female, got %v", cat["gender"])
	}
}

func TestCreateCategoryDuplicate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	router := newTestRouter(db, newFakeStore(), &fakeNotifier{})
	token := testutil.SeedAdmin(t, db, "admin@fenifisc.com", "secret123")

	body := map[string]string{"name": "Wellness", "gender": models.GenderFemale}
	if rr := doJSON(t, router, http.MethodPost, "/api/categories", token, body); rr.Code != http.StatusOK {
		t.Fatalf("First create failed: %d %s", rr.Code, rr.Body.String())
	}

	rr := doJSON(t, router, http.MethodPost, "/api/categories", token,
		map[string]string{"name": "wellness", "gender": models.GenderBoth})
	if rr.Code != http.StatusConflict {
		t.Errorf("Expected 409 for duplicate name, got %d", rr.Code)
	}
}

func TestGetCategoriesSortedByName(t *testing.T) {
	db := testutil.SetupTestDB(t)
	router := newTestRouter(db, newFakeStore(), &fakeNotifier{})
	token := testutil.SeedAdmin(t, db, "admin@fenifisc.com", "secret123")

	for _, c := range []map[string]string{
		{"name": "Wellness", "gender": models.GenderFemale},
		{"name": "Classic Physique", "gender": models.GenderMale},
		{"name": "Bikini", "gender": models.GenderFemale},
	} {
		if rr := doJSON(t, router, http.MethodPost, "/api/categories", token, c); rr.Code != http.StatusOK {
			t.Fatalf("Create %v failed: %d %s", c, rr.Code, rr.Body.String())
		}
	}

	rr := doJSON(t, router, http.MethodGet, "/api/categories", "", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	categories := decodeBody(t, rr)["categories"].([]interface{})
	if len(categories) != 3 {
		t.Fatalf("Expected 3 categories, got %d", len(categories))
	}
	names := []string{}
	for _, c := range categories {
		names = append(names, c.(map[string]interface{})["name"].(string))
	}
	if names[0] != "Bikini" || names[1] != "Classic Physique" || names[2] != "Wellness" {
		t.Errorf("Expected name-ascending order, got %v", names)
	}
}
