package controllers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"fenifisc-registro/testutil"
	"fenifisc-registro/utils"
)

func TestAdminLogin(t *testing.T) {
	db := testutil.SetupTestDB(t)
	router := newTestRouter(db, newFakeStore(), &fakeNotifier{})
	testutil.SeedAdmin(t, db, "admin@fenifisc.com", "secret123")

	rr := doJSON(t, router, http.MethodPost, "/api/admin-login", "",
		map[string]string{"email": "admin@fenifisc.com", "password": "secret123"})
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	body := decodeBody(t, rr)
	if success, _ := body["success"].(bool); !success {
		t.Errorf("Expected success true, got %v", body["success"])
	}
	admin := body["admin"].(map[string]interface{})
	if admin["email"] != "admin@fenifisc.com" {
		t.Errorf("Unexpected admin identity: %v", admin)
	}

	// The returned token must pass the same verification the admin
	// routes use.
	token, _ := body["token"].(string)
	if token == "" {
		t.Fatal("Expected a session token in the login response")
	}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	if _, email, err := utils.VerifyAdminToken(req); err != nil || email != "admin@fenifisc.com" {
		t.Errorf("Token did not verify: email=%q err=%v", email, err)
	}
}

func TestAdminLoginRejectsBadCredentials(t *testing.T) {
	db := testutil.SetupTestDB(t)
	router := newTestRouter(db, newFakeStore(), &fakeNotifier{})
	testutil.SeedAdmin(t, db, "admin@fenifisc.com", "secret123")

	rr := doJSON(t, router, http.MethodPost, "/api/admin-login", "",
		map[string]string{"email": "admin@fenifisc.com", "password": "wrong"})
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 for wrong password, got %d", rr.Code)
	}

	rr = doJSON(t, router, http.MethodPost, "/api/admin-login", "",
		map[string]string{"email": "nobody@fenifisc.com", "password": "secret123"})
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 for unknown email, got %d", rr.Code)
	}

	rr = doJSON(t, router, http.MethodPost, "/api/admin-login", "",
		map[string]string{"email": "admin@fenifisc.com"})
	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for missing password, got %d", rr.Code)
	}
}

func TestAdminRoutesRejectForgedToken(t *testing.T) {
	db := testutil.SetupTestDB(t)
	router := newTestRouter(db, newFakeStore(), &fakeNotifier{})

	rr := doJSON(t, router, http.MethodGet, "/api/athletes", "not-a-real-token", nil)
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 for forged token, got %d", rr.Code)
	}
}
