package service

import (
	"context"

	"github.com/liftlog/coach/internal/model"
)

type stubClassifier struct {
	out     string
	err     error
	prompts []string
}

func (s *stubClassifier) Classify(ctx context.Context, prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	return s.out, s.err
}

type stubEmbedder struct {
	queryVec []float32
	batch    [][]float32
	err      error
	queries  []string
	batches  [][]string
}

func (s *stubEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	s.batches = append(s.batches, texts)
	if s.err != nil {
		return nil, s.err
	}
	if s.batch != nil {
		return s.batch, nil
	}
	vectors := make([][]float32, len(texts))
	for i := range texts {
		vectors[i] = []float32{float32(i + 1)}
	}
	return vectors, nil
}

func (s *stubEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	s.queries = append(s.queries, text)
	if s.err != nil {
		return nil, s.err
	}
	return s.queryVec, nil
}

func (s *stubEmbedder) EmbedModelName() string { return "stub-embed" }

type searchCall struct {
	userID int64
	limit  int
}

type stubSearch struct {
	hits  []model.SearchHit
	err   error
	calls []searchCall
}

func (s *stubSearch) SearchByVector(ctx context.Context, vec []float32, userID int64, limit int) ([]model.SearchHit, error) {
	s.calls = append(s.calls, searchCall{userID: userID, limit: limit})
	return s.hits, s.err
}

type stubGuardrail struct {
	label model.GuardrailLabel
	err   error
	calls int
}

func (s *stubGuardrail) Classify(ctx context.Context, prompt string, history []model.Message) (model.GuardrailLabel, error) {
	s.calls++
	return s.label, s.err
}

type stubRouter struct {
	route model.Route
	err   error
	calls int
}

func (s *stubRouter) Route(ctx context.Context, prompt string, history []model.Message) (model.Route, error) {
	s.calls++
	return s.route, s.err
}

type stubRetriever struct {
	retrieved string
	err       error
	calls     int
}

func (s *stubRetriever) Retrieve(ctx context.Context, userID int64, prompt string, route model.Route) (string, error) {
	s.calls++
	return s.retrieved, s.err
}

type stubChatter struct {
	answer   string
	err      error
	system   string
	messages []model.Message
}

func (s *stubChatter) Chat(ctx context.Context, system string, messages []model.Message) (string, error) {
	s.system = system
	s.messages = messages
	return s.answer, s.err
}

type stubExerciseGateway struct {
	records   []model.ExerciseRecord
	fetchErr  error
	upserted  []model.EmbeddingUnit
	count     int64
	countSet  bool
	upsertErr error
}

func (s *stubExerciseGateway) FetchUnembedded(ctx context.Context, userID int64) ([]model.ExerciseRecord, error) {
	return s.records, s.fetchErr
}

func (s *stubExerciseGateway) UpsertEmbeddings(ctx context.Context, units []model.EmbeddingUnit) (int64, error) {
	s.upserted = units
	if s.upsertErr != nil {
		return 0, s.upsertErr
	}
	if s.countSet {
		return s.count, nil
	}
	return int64(len(units)), nil
}

type stubWorkoutGateway struct {
	records   []model.WorkoutRecord
	fetchErr  error
	upserted  []model.EmbeddingUnit
	count     int64
	countSet  bool
	upsertErr error
}

func (s *stubWorkoutGateway) FetchUnembedded(ctx context.Context, userID int64) ([]model.WorkoutRecord, error) {
	return s.records, s.fetchErr
}

func (s *stubWorkoutGateway) UpsertEmbeddings(ctx context.Context, units []model.EmbeddingUnit) (int64, error) {
	s.upserted = units
	if s.upsertErr != nil {
		return 0, s.upsertErr
	}
	if s.countSet {
		return s.count, nil
	}
	return int64(len(units)), nil
}
