package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"fenifisc-registro/models"
)

func RespondWithError(w http.ResponseWriter, status int, error models.Error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(error); err != nil {
		logrus.WithError(err).Error("failed to encode error response")
	}
}

func ResponseJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
	}
}

func ComparePasswords(hashedPassword string, password []byte) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), password)
	if err != nil {
		logrus.WithError(err).Debug("password comparison failed")
		return false
	}
	return true
}

var phoneRegex = regexp.MustCompile(`^\+?\d{7,15}$`)

func IsPhoneNumber(input string) bool {
	return phoneRegex.MatchString(strings.TrimSpace(input))
}

func IsEmail(input string) bool {
	input = strings.TrimSpace(input)
	at := strings.Index(input, "@")
	return at > 0 && at < len(input)-1
}

// GenerateAdminToken issues the signed session token returned by the
// login endpoint. Admin routes accept nothing else.
func GenerateAdminToken(admin models.Admin, expiration time.Duration) (string, error) {
	secret := os.Getenv("SECRET")
	if secret == "" {
		return "", errors.New("SECRET environment variable is not set")
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"iss":      "fenifisc",
		"admin_id": admin.ID,
		"email":    admin.Email,
		"exp":      now.Add(expiration).Unix(),
		"iat":      now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// VerifyAdminToken checks the Authorization header and returns the admin
// identity baked into the token.
func VerifyAdminToken(r *http.Request) (int, string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return 0, "", errors.New("Authorization header missing")
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return 0, "", errors.New("invalid Authorization header format")
	}

	token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(os.Getenv("SECRET")), nil
	})
	if err != nil || !token.Valid {
		return 0, "", errors.New("invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, "", errors.New("invalid token claims")
	}

	adminIDFloat, ok := claims["admin_id"].(float64)
	if !ok {
		return 0, "", errors.New("admin_id not found in token")
	}
	email, _ := claims["email"].(string)

	return int(adminIDFloat), email, nil
}

func StrToInt(s string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(s))
}

// NormalizeCategoryName title-cases a free-form category name so that
// "wellness" and "Wellness" resolve to the same row.
func NormalizeCategoryName(name string) string {
	words := strings.Fields(strings.TrimSpace(name))
	for i, w := range words {
		r := []rune(strings.ToLower(w))
		if len(r) > 0 {
			r[0] = []rune(strings.ToUpper(string(r[0])))[0]
		}
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

// SQLTime is the timestamp format written to the database.
func SQLTime(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}
