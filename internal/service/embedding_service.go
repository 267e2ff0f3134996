package service

import (
	"context"
	"fmt"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/liftlog/coach/internal/ai"
	"github.com/liftlog/coach/internal/format"
	"github.com/liftlog/coach/internal/model"
	appErr "github.com/liftlog/coach/internal/pkg/errors"
)

// ExerciseGateway is the slice of the exercise store the ingestion pipeline
// needs.
type ExerciseGateway interface {
	FetchUnembedded(ctx context.Context, userID int64) ([]model.ExerciseRecord, error)
	UpsertEmbeddings(ctx context.Context, units []model.EmbeddingUnit) (int64, error)
}

type WorkoutGateway interface {
	FetchUnembedded(ctx context.Context, userID int64) ([]model.WorkoutRecord, error)
	UpsertEmbeddings(ctx context.Context, units []model.EmbeddingUnit) (int64, error)
}

// EmbeddingService runs the per-user ingestion cycle: fetch unembedded rows,
// render canonical text, embed the batch, write vectors and text back.
// Fetching only rows without a vector makes the whole cycle idempotent, which
// is what makes at-least-once trigger delivery safe.
type EmbeddingService struct {
	exercises ExerciseGateway
	workouts  WorkoutGateway
	embedder  ai.Embedder
}

func NewEmbeddingService(exercises ExerciseGateway, workouts WorkoutGateway, embedder ai.Embedder) *EmbeddingService {
	return &EmbeddingService{
		exercises: exercises,
		workouts:  workouts,
		embedder:  embedder,
	}
}

// ProcessUser runs the exercise pipeline then the workout pipeline for one
// user, strictly in that order. Zero unembedded rows is a no-op, not an error.
func (s *EmbeddingService) ProcessUser(ctx context.Context, userID int64) error {
	if err := s.processExercises(ctx, userID); err != nil {
		return err
	}
	return s.processWorkouts(ctx, userID)
}

func (s *EmbeddingService) processExercises(ctx context.Context, userID int64) error {
	logger := logutil.GetLogger(ctx).With(zap.Int64("user_id", userID))
	records, err := s.exercises.FetchUnembedded(ctx, userID)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return nil
	}
	units := make([]model.EmbeddingUnit, 0, len(records))
	texts := make([]string, 0, len(records))
	for _, rec := range records {
		text := format.ExerciseText(rec)
		units = append(units, model.EmbeddingUnit{RecordID: rec.ID, Text: text})
		texts = append(texts, text)
	}
	vectors, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return err
	}
	for i := range units {
		units[i].Vector = vectors[i]
	}
	count, err := s.exercises.UpsertEmbeddings(ctx, units)
	if err != nil {
		return err
	}
	if count != int64(len(units)) {
		return fmt.Errorf("%w: exercise upsert touched %d of %d rows", appErr.ErrStorage, count, len(units))
	}
	logger.Info("embedded exercises", zap.Int("count", len(units)))
	return nil
}

func (s *EmbeddingService) processWorkouts(ctx context.Context, userID int64) error {
	logger := logutil.GetLogger(ctx).With(zap.Int64("user_id", userID))
	records, err := s.workouts.FetchUnembedded(ctx, userID)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return nil
	}
	units := make([]model.EmbeddingUnit, 0, len(records))
	texts := make([]string, 0, len(records))
	for _, rec := range records {
		text := format.WorkoutText(rec)
		units = append(units, model.EmbeddingUnit{RecordID: rec.ID, Text: text})
		texts = append(texts, text)
	}
	vectors, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return err
	}
	for i := range units {
		units[i].Vector = vectors[i]
	}
	count, err := s.workouts.UpsertEmbeddings(ctx, units)
	if err != nil {
		return err
	}
	if count != int64(len(units)) {
		return fmt.Errorf("%w: workout upsert touched %d of %d rows", appErr.ErrStorage, count, len(units))
	}
	logger.Info("embedded workouts", zap.Int("count", len(units)))
	return nil
}
