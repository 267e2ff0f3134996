package testutil

import (
	"testing"

	"github.com/jmoiron/sqlx"
)

// EmbedDim matches the vector column width in the schema.
const EmbedDim = 1024

// PadVector zero-pads the given components to EmbedDim so test vectors fit
// the column while their cosine geometry stays controlled by the prefix.
func PadVector(values ...float32) []float32 {
	vec := make([]float32, EmbedDim)
	copy(vec, values)
	return vec
}

func SeedUser(t *testing.T, db *sqlx.DB, email string) int64 {
	t.Helper()
	return insertReturningID(t, db, `INSERT INTO users (email) VALUES ($1) RETURNING id`, email)
}

func SeedExerciseName(t *testing.T, db *sqlx.DB, name string) int64 {
	t.Helper()
	return insertReturningID(t, db, `INSERT INTO exercises (name) VALUES ($1) RETURNING id`, name)
}

func SeedMetric(t *testing.T, db *sqlx.DB, key string) int64 {
	t.Helper()
	return insertReturningID(t, db, `INSERT INTO metric_definitions (key) VALUES ($1) RETURNING id`, key)
}

func SeedWorkout(t *testing.T, db *sqlx.DB, userID int64, date, kind string) int64 {
	t.Helper()
	return insertReturningID(t, db,
		`INSERT INTO workouts (user_id, workout_date, workout_kind) VALUES ($1, $2, $3) RETURNING id`,
		userID, date, kind)
}

func SeedWorkoutExercise(t *testing.T, db *sqlx.DB, workoutID, exerciseID int64, note *string) int64 {
	t.Helper()
	return insertReturningID(t, db,
		`INSERT INTO workout_exercises (workout_id, exercise_id, note) VALUES ($1, $2, $3) RETURNING id`,
		workoutID, exerciseID, note)
}

func SeedEntry(t *testing.T, db *sqlx.DB, workoutExerciseID int64, entryIndex int) int64 {
	t.Helper()
	return insertReturningID(t, db,
		`INSERT INTO entries (workout_exercise_id, entry_index) VALUES ($1, $2) RETURNING id`,
		workoutExerciseID, entryIndex)
}

func SeedEntryMetric(t *testing.T, db *sqlx.DB, entryID, metricID int64, valueNumber *float64, valueText, unit *string) {
	t.Helper()
	_, err := db.Exec(
		`INSERT INTO entry_metrics (entry_id, metric_id, value_number, value_text, unit) VALUES ($1, $2, $3, $4, $5)`,
		entryID, metricID, valueNumber, valueText, unit)
	if err != nil {
		t.Fatalf("seed entry metric: %v", err)
	}
}

func insertReturningID(t *testing.T, db *sqlx.DB, query string, args ...interface{}) int64 {
	t.Helper()
	var id int64
	if err := db.Get(&id, query, args...); err != nil {
		t.Fatalf("seed insert: %v", err)
	}
	return id
}
