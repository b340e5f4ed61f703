package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"fenifisc-registro/models"
)

func TestNormalizeCategoryName(t *testing.T) {
	cases := map[string]string{
		"wellness":         "Wellness",
		"  wellness  ":     "Wellness",
		"men physique":     "Men Physique",
		"CLASSIC PHYSIQUE": "Classic Physique",
		"body   fitness":   "Body Fitness",
		"":                 "",
		"bikini":           "Bikini",
	}
	for in, want := range cases {
		if got := NormalizeCategoryName(in); got != want {
			t.Errorf("NormalizeCategoryName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestAdminTokenRoundTrip(t *testing.T) {
	t.Setenv("SECRET", "test-secret")

	admin := models.Admin{ID: 7, Email: "admin@fenifisc.com"}
	token, err := GenerateAdminToken(admin, time.Hour)
	if err != nil {
		t.Fatalf("GenerateAdminToken failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	id, email, err := VerifyAdminToken(req)
	if err != nil {
		t.Fatalf("VerifyAdminToken failed: %v", err)
	}
	if id != 7 || email != "admin@fenifisc.com" {
		t.Errorf("Unexpected identity: id=%d email=%q", id, email)
	}
}

func TestVerifyAdminTokenRejectsBadInput(t *testing.T) {
	t.Setenv("SECRET", "test-secret")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if _, _, err := VerifyAdminToken(req); err == nil {
		t.Error("Expected error for missing header")
	}

	req.Header.Set("Authorization", "Bearer garbage")
	if _, _, err := VerifyAdminToken(req); err == nil {
		t.Error("Expected error for garbage token")
	}

	req.Header.Set("Authorization", "Basic abc")
	if _, _, err := VerifyAdminToken(req); err == nil {
		t.Error("Expected error for non-bearer header")
	}
}

func TestVerifyAdminTokenRejectsExpired(t *testing.T) {
	t.Setenv("SECRET", "test-secret")

	token, err := GenerateAdminToken(models.Admin{ID: 1, Email: "a@b.c"}, -time.Minute)
	if err != nil {
		t.Fatalf("GenerateAdminToken failed: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	if _, _, err := VerifyAdminToken(req); err == nil {
		t.Error("Expected error for expired token")
	}
}

func TestComparePasswords(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt failed: %v", err)
	}
	if !ComparePasswords(string(hash), []byte("secret123")) {
		t.Error("Expected matching password to verify")
	}
	if ComparePasswords(string(hash), []byte("wrong")) {
		t.Error("Expected mismatched password to fail")
	}
}

func TestIsEmail(t *testing.T) {
	if !IsEmail("ana@x.com") {
		t.Error("Expected ana@x.com to be valid")
	}
	for _, bad := range []string{"", "not-an-email", "@x.com", "ana@"} {
		if IsEmail(bad) {
			t.Errorf("Expected %q to be invalid", bad)
		}
	}
}
