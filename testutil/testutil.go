package testutil

import (
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"golang.org/x/crypto/bcrypt"

	"fenifisc-registro/models"
	"fenifisc-registro/utils"
)

// SetupTestDB opens a throwaway in-memory SQLite database carrying the
// full schema. Each call gets its own database; shared cache keeps every
// pool connection on the same one.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	t.Setenv("SECRET", "test-secret")

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`
		CREATE TABLE athletes (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			first_name TEXT NOT NULL,
			last_name TEXT NOT NULL,
			email TEXT NOT NULL,
			phone TEXT,
			cedula TEXT NOT NULL UNIQUE,
			address TEXT,
			cedula_front_url TEXT,
			cedula_back_url TEXT,
			status TEXT NOT NULL DEFAULT 'pending',
			created_at TEXT,
			updated_at TEXT
		);

		CREATE TABLE categories (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL UNIQUE,
			description TEXT,
			gender TEXT NOT NULL DEFAULT 'both',
			created_at TEXT
		);

		CREATE TABLE athlete_categories (
			athlete_id INTEGER NOT NULL REFERENCES athletes (id),
			category_id INTEGER NOT NULL REFERENCES categories (id),
			PRIMARY KEY (athlete_id, category_id)
		);

		CREATE TABLE competitions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			description TEXT,
			date TEXT NOT NULL,
			location TEXT NOT NULL,
			registration_deadline TEXT NOT NULL,
			max_registrations INTEGER NOT NULL DEFAULT 0,
			status TEXT NOT NULL DEFAULT 'active',
			created_at TEXT,
			updated_at TEXT
		);

		CREATE TABLE registrations (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			athlete_id INTEGER NOT NULL REFERENCES athletes (id),
			competition_id INTEGER NOT NULL REFERENCES competitions (id),
			status TEXT NOT NULL DEFAULT 'registered',
			registration_date TEXT,
			notes TEXT
		);

		CREATE TABLE admins (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL
		);
	`)
	if err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return db
}

// SeedAdmin inserts an admin and returns a valid session token for it.
func SeedAdmin(t *testing.T, db *sql.DB, email, password string) string {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}
	result, err := db.Exec("INSERT INTO admins (email, password_hash) VALUES (?, ?)", email, string(hash))
	if err != nil {
		t.Fatalf("Failed to insert admin: %v", err)
	}
	id, _ := result.LastInsertId()

	token, err := utils.GenerateAdminToken(models.Admin{ID: int(id), Email: email}, time.Hour)
	if err != nil {
		t.Fatalf("Failed to generate admin token: %v", err)
	}
	return token
}

// SeedCompetition inserts a competition and returns its id.
func SeedCompetition(t *testing.T, db *sql.DB, name, date string) int {
	t.Helper()

	now := utils.SQLTime(time.Now())
	result, err := db.Exec(`INSERT INTO competitions
		(name, description, date, location, registration_deadline, max_registrations, status, created_at, updated_at)
		VALUES (?, '', ?, 'Managua', ?, 50, 'active', ?, ?)`,
		name, date, date, now, now)
	if err != nil {
		t.Fatalf("Failed to insert competition: %v", err)
	}
	id, _ := result.LastInsertId()
	return int(id)
}

// SeedAthlete inserts a bare athlete row and returns its id.
func SeedAthlete(t *testing.T, db *sql.DB, firstName, lastName, cedula, status string) int {
	t.Helper()

	now := utils.SQLTime(time.Now())
	result, err := db.Exec(`INSERT INTO athletes
		(first_name, last_name, email, phone, cedula, address, status, created_at, updated_at)
		VALUES (?, ?, ?, '', ?, '', ?, ?, ?)`,
		firstName, lastName, firstName+"@example.com", cedula, status, now, now)
	if err != nil {
		t.Fatalf("Failed to insert athlete: %v", err)
	}
	id, _ := result.LastInsertId()
	return int(id)
}

// CountRows returns the row count of a table filtered by an optional
// WHERE clause.
func CountRows(t *testing.T, db *sql.DB, table, where string, args ...interface{}) int {
	t.Helper()

	query := "SELECT COUNT(*) FROM " + table
	if where != "" {
		query += " WHERE " + where
	}
	var n int
	if err := db.QueryRow(query, args...).Scan(&n); err != nil {
		t.Fatalf("Failed to count rows in %s: %v", table, err)
	}
	return n
}
