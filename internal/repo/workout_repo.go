package repo

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/liftlog/coach/internal/model"
	appErr "github.com/liftlog/coach/internal/pkg/errors"
)

// WorkoutRepo owns the embedding and canonical-text columns of the workouts
// table.
type WorkoutRepo struct {
	db *sqlx.DB
}

func NewWorkoutRepo(db *sqlx.DB) *WorkoutRepo {
	return &WorkoutRepo{db: db}
}

type workoutRow struct {
	WorkoutID         int64    `db:"workout_id"`
	WorkoutDate       string   `db:"workout_date"`
	WorkoutKind       string   `db:"workout_kind"`
	WorkoutExerciseID int64    `db:"workout_exercise_id"`
	ExerciseName      string   `db:"exercise_name"`
	Note              *string  `db:"note"`
	EntryID           *int64   `db:"entry_id"`
	EntryIndex        *int     `db:"entry_index"`
	MetricKey         *string  `db:"metric_key"`
	ValueNumber       *float64 `db:"value_number"`
	ValueText         *string  `db:"value_text"`
	Unit              *string  `db:"unit"`
}

// FetchUnembedded returns whole sessions without a workout-level embedding,
// with the exercise/entry/metric fan-out grouped back into nested records.
func (r *WorkoutRepo) FetchUnembedded(ctx context.Context, userID int64) ([]model.WorkoutRecord, error) {
	const query = `
		SELECT
			w.id AS workout_id,
			w.workout_date::text AS workout_date,
			w.workout_kind,
			we.id AS workout_exercise_id,
			e.name AS exercise_name,
			we.note,
			en.id AS entry_id,
			en.entry_index,
			md.key AS metric_key,
			em.value_number,
			em.value_text,
			em.unit
		FROM workouts w
		JOIN workout_exercises we ON w.id = we.workout_id
		JOIN exercises e ON we.exercise_id = e.id
		LEFT JOIN entries en ON we.id = en.workout_exercise_id
		LEFT JOIN entry_metrics em ON en.id = em.entry_id
		LEFT JOIN metric_definitions md ON em.metric_id = md.id
		WHERE w.embeddings IS NULL
		AND w.user_id = $1
		ORDER BY w.id, we.id, en.entry_index
	`
	var rows []workoutRow
	if err := r.db.SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, fmt.Errorf("%w: fetch unembedded workouts: %v", appErr.ErrStorage, err)
	}
	return groupWorkoutRows(rows), nil
}

func groupWorkoutRows(rows []workoutRow) []model.WorkoutRecord {
	var records []model.WorkoutRecord
	wIndex := map[int64]int{}
	exIndex := map[int64]map[int64]int{}
	entryIndex := map[int64]map[int64]int{}
	for _, row := range rows {
		wpos, ok := wIndex[row.WorkoutID]
		if !ok {
			wpos = len(records)
			wIndex[row.WorkoutID] = wpos
			exIndex[row.WorkoutID] = map[int64]int{}
			records = append(records, model.WorkoutRecord{
				ID:          row.WorkoutID,
				WorkoutDate: row.WorkoutDate,
				WorkoutKind: row.WorkoutKind,
			})
		}
		exercises := exIndex[row.WorkoutID]
		epos, ok := exercises[row.WorkoutExerciseID]
		if !ok {
			epos = len(records[wpos].Exercises)
			exercises[row.WorkoutExerciseID] = epos
			entryIndex[row.WorkoutExerciseID] = map[int64]int{}
			records[wpos].Exercises = append(records[wpos].Exercises, model.ExerciseRecord{
				ID:           row.WorkoutExerciseID,
				ExerciseName: row.ExerciseName,
				Note:         row.Note,
				WorkoutDate:  row.WorkoutDate,
			})
		}
		if row.EntryID == nil {
			continue
		}
		entries := entryIndex[row.WorkoutExerciseID]
		npos, ok := entries[*row.EntryID]
		if !ok {
			npos = len(records[wpos].Exercises[epos].Entries)
			entries[*row.EntryID] = npos
			idx := 0
			if row.EntryIndex != nil {
				idx = *row.EntryIndex
			}
			records[wpos].Exercises[epos].Entries = append(records[wpos].Exercises[epos].Entries, model.EntryRecord{EntryIndex: idx})
		}
		if row.MetricKey != nil {
			records[wpos].Exercises[epos].Entries[npos].Metrics = append(records[wpos].Exercises[epos].Entries[npos].Metrics, model.Metric{
				Key:         *row.MetricKey,
				ValueNumber: row.ValueNumber,
				ValueText:   row.ValueText,
				Unit:        row.Unit,
			})
		}
	}
	return records
}

func (r *WorkoutRepo) UpsertEmbeddings(ctx context.Context, units []model.EmbeddingUnit) (int64, error) {
	return upsertEmbeddings(ctx, r.db, "workouts", "workout_text", units)
}

func (r *WorkoutRepo) SearchByVector(ctx context.Context, vec []float32, userID int64, limit int) ([]model.SearchHit, error) {
	const query = `
		SELECT w.id, w.workout_text AS text,
			w.embeddings <=> $1 AS distance
		FROM workouts w
		WHERE w.user_id = $2 AND w.embeddings IS NOT NULL
		ORDER BY w.embeddings <=> $1
		LIMIT $3
	`
	return searchByVector(ctx, r.db, query, vec, userID, limit)
}

func (r *WorkoutRepo) ListUsersWithUnembedded(ctx context.Context) ([]int64, error) {
	const query = `
		SELECT DISTINCT user_id
		FROM workouts
		WHERE embeddings IS NULL
	`
	var ids []int64
	if err := r.db.SelectContext(ctx, &ids, query); err != nil {
		return nil, fmt.Errorf("%w: list users with unembedded workouts: %v", appErr.ErrStorage, err)
	}
	return ids, nil
}
