package driver

import (
	"database/sql"
	"errors"
	"os"

	_ "github.com/go-sql-driver/mysql"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/sirupsen/logrus"
)

// ConnectDB opens the MySQL pool from DATABASE_DSN, e.g.
// "user:pass@tcp(127.0.0.1:3306)/fenifisc?parseTime=false".
func ConnectDB() *sql.DB {
	dsn := os.Getenv("DATABASE_DSN")
	if dsn == "" {
		logrus.Fatal("DATABASE_DSN variable is not set")
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		logrus.WithError(err).Fatal("failed to open database")
	}
	if err := db.Ping(); err != nil {
		logrus.WithError(err).Fatal("failed to reach database")
	}
	return db
}

// RunMigrations brings the schema up to date from migrations/.
func RunMigrations() {
	dsn := os.Getenv("DATABASE_DSN")
	if dsn == "" {
		logrus.Fatal("DATABASE_DSN variable is not set")
	}

	m, err := migrate.New("file://migrations", "mysql://"+dsn)
	if err != nil {
		logrus.WithError(err).Fatal("failed to initialize migrations")
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		logrus.WithError(err).Fatal("failed to apply migrations")
	}
}
