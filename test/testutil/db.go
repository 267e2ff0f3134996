package testutil

import (
	"os"
	"testing"

	"github.com/jmoiron/sqlx"

	"github.com/liftlog/coach/internal/config"
	"github.com/liftlog/coach/internal/db"
)

func OpenTestDB(t *testing.T) (*sqlx.DB, func()) {
	t.Helper()
	host := os.Getenv("TEST_DB_HOST")
	if host == "" {
		t.Skip("TEST_DB_HOST not set, skipping postgres test")
	}
	conn, err := db.Open(config.DatabaseConfig{
		Host:     host,
		Port:     5432,
		User:     "coach",
		Password: "coach_pass",
		DBName:   "coach_test",
		SSLMode:  "disable",
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.ApplyMigrations(conn); err != nil {
		t.Fatalf("migrations: %v", err)
	}
	truncate(t, conn)
	return conn, func() {
		_ = conn.Close()
	}
}

func truncate(t *testing.T, conn *sqlx.DB) {
	t.Helper()
	_, err := conn.Exec(`TRUNCATE entry_metrics, entries, workout_exercises, workouts, metric_definitions, exercises, users RESTART IDENTITY CASCADE`)
	if err != nil {
		t.Fatalf("truncate: %v", err)
	}
}
