package repo

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"

	"github.com/liftlog/coach/internal/model"
	appErr "github.com/liftlog/coach/internal/pkg/errors"
)

// ExerciseRepo owns the embedding and canonical-text columns of the
// workout_exercises table. Everything else in the schema is read-only here.
type ExerciseRepo struct {
	db *sqlx.DB
}

func NewExerciseRepo(db *sqlx.DB) *ExerciseRepo {
	return &ExerciseRepo{db: db}
}

type exerciseRow struct {
	WorkoutExerciseID int64    `db:"workout_exercise_id"`
	ExerciseName      string   `db:"exercise_name"`
	Note              *string  `db:"note"`
	WorkoutDate       string   `db:"workout_date"`
	EntryID           *int64   `db:"entry_id"`
	EntryIndex        *int     `db:"entry_index"`
	MetricKey         *string  `db:"metric_key"`
	ValueNumber       *float64 `db:"value_number"`
	ValueText         *string  `db:"value_text"`
	Unit              *string  `db:"unit"`
}

// FetchUnembedded returns the user's exercises that have no embedding yet,
// with entries and metrics grouped back from the join fan-out. Entries come
// back in entry_index order.
func (r *ExerciseRepo) FetchUnembedded(ctx context.Context, userID int64) ([]model.ExerciseRecord, error) {
	const query = `
		SELECT
			we.id AS workout_exercise_id,
			e.name AS exercise_name,
			we.note,
			w.workout_date::text AS workout_date,
			en.id AS entry_id,
			en.entry_index,
			md.key AS metric_key,
			em.value_number,
			em.value_text,
			em.unit
		FROM workout_exercises we
		JOIN exercises e ON we.exercise_id = e.id
		JOIN workouts w ON we.workout_id = w.id
		LEFT JOIN entries en ON we.id = en.workout_exercise_id
		LEFT JOIN entry_metrics em ON en.id = em.entry_id
		LEFT JOIN metric_definitions md ON em.metric_id = md.id
		WHERE we.embeddings IS NULL
		AND w.user_id = $1
		ORDER BY we.id, en.entry_index
	`
	var rows []exerciseRow
	if err := r.db.SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, fmt.Errorf("%w: fetch unembedded exercises: %v", appErr.ErrStorage, err)
	}
	return groupExerciseRows(rows), nil
}

func groupExerciseRows(rows []exerciseRow) []model.ExerciseRecord {
	var records []model.ExerciseRecord
	index := map[int64]int{}
	entryIndex := map[int64]map[int64]int{}
	for _, row := range rows {
		pos, ok := index[row.WorkoutExerciseID]
		if !ok {
			pos = len(records)
			index[row.WorkoutExerciseID] = pos
			entryIndex[row.WorkoutExerciseID] = map[int64]int{}
			records = append(records, model.ExerciseRecord{
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
		epos, ok := entries[*row.EntryID]
		if !ok {
			epos = len(records[pos].Entries)
			entries[*row.EntryID] = epos
			idx := 0
			if row.EntryIndex != nil {
				idx = *row.EntryIndex
			}
			records[pos].Entries = append(records[pos].Entries, model.EntryRecord{EntryIndex: idx})
		}
		if row.MetricKey != nil {
			records[pos].Entries[epos].Metrics = append(records[pos].Entries[epos].Metrics, model.Metric{
				Key:         *row.MetricKey,
				ValueNumber: row.ValueNumber,
				ValueText:   row.ValueText,
				Unit:        row.Unit,
			})
		}
	}
	return records
}

// UpsertEmbeddings writes vector and canonical text for exactly the given ids
// in one statement inside a transaction. The confirmed row count is returned;
// the caller treats a mismatch with len(units) as a data-integrity failure.
func (r *ExerciseRepo) UpsertEmbeddings(ctx context.Context, units []model.EmbeddingUnit) (int64, error) {
	return upsertEmbeddings(ctx, r.db, "workout_exercises", "exercise_text", units)
}

// SearchByVector ranks the user's embedded exercises by cosine distance to
// the query vector, closest first.
func (r *ExerciseRepo) SearchByVector(ctx context.Context, vec []float32, userID int64, limit int) ([]model.SearchHit, error) {
	const query = `
		SELECT we.id, we.exercise_text AS text,
			we.embeddings <=> $1 AS distance
		FROM workout_exercises we
		JOIN workouts w ON we.workout_id = w.id
		WHERE w.user_id = $2 AND we.embeddings IS NOT NULL
		ORDER BY we.embeddings <=> $1
		LIMIT $3
	`
	return searchByVector(ctx, r.db, query, vec, userID, limit)
}

// ListUsersWithUnembedded feeds the resync sweep: ids of users who still have
// exercises without vectors.
func (r *ExerciseRepo) ListUsersWithUnembedded(ctx context.Context) ([]int64, error) {
	const query = `
		SELECT DISTINCT w.user_id
		FROM workout_exercises we
		JOIN workouts w ON we.workout_id = w.id
		WHERE we.embeddings IS NULL
	`
	var ids []int64
	if err := r.db.SelectContext(ctx, &ids, query); err != nil {
		return nil, fmt.Errorf("%w: list users with unembedded exercises: %v", appErr.ErrStorage, err)
	}
	return ids, nil
}

type hitRow struct {
	ID       int64   `db:"id"`
	Text     *string `db:"text"`
	Distance float64 `db:"distance"`
}

func searchByVector(ctx context.Context, db *sqlx.DB, query string, vec []float32, userID int64, limit int) ([]model.SearchHit, error) {
	var rows []hitRow
	if err := db.SelectContext(ctx, &rows, query, pgvector.NewVector(vec), userID, limit); err != nil {
		return nil, fmt.Errorf("%w: vector search: %v", appErr.ErrStorage, err)
	}
	hits := make([]model.SearchHit, 0, len(rows))
	for _, row := range rows {
		text := ""
		if row.Text != nil {
			text = *row.Text
		}
		hits = append(hits, model.SearchHit{
			ID:         row.ID,
			Text:       text,
			Similarity: 1 - row.Distance,
		})
	}
	return hits, nil
}

// upsertEmbeddings builds a single keyed CASE update over the batch, the same
// all-or-nothing statement shape for both owning tables.
func upsertEmbeddings(ctx context.Context, db *sqlx.DB, table, textColumn string, units []model.EmbeddingUnit) (int64, error) {
	if len(units) == 0 {
		return 0, nil
	}
	var vectorCases, textCases []string
	args := make([]interface{}, 0, len(units)*3+1)
	ids := make([]int64, 0, len(units))
	n := 0
	for _, unit := range units {
		idArg, vecArg, textArg := n+1, n+2, n+3
		n += 3
		args = append(args, unit.RecordID, pgvector.NewVector(unit.Vector), unit.Text)
		vectorCases = append(vectorCases, fmt.Sprintf("WHEN $%d THEN $%d::vector", idArg, vecArg))
		textCases = append(textCases, fmt.Sprintf("WHEN $%d THEN $%d::text", idArg, textArg))
		ids = append(ids, unit.RecordID)
	}
	args = append(args, pq.Array(ids))
	query := fmt.Sprintf(`UPDATE %s
		SET embeddings = CASE id
			%s
			ELSE embeddings
		END,
		%s = CASE id
			%s
			ELSE %s
		END
		WHERE id = ANY($%d)`,
		table,
		strings.Join(vectorCases, "\n\t\t\t"),
		textColumn,
		strings.Join(textCases, "\n\t\t\t"),
		textColumn,
		n+1,
	)

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: begin upsert: %v", appErr.ErrStorage, err)
	}
	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("%w: upsert embeddings into %s: %v", appErr.ErrStorage, table, err)
	}
	count, err := res.RowsAffected()
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("%w: upsert row count: %v", appErr.ErrStorage, err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("%w: commit upsert: %v", appErr.ErrStorage, err)
	}
	return count, nil
}
