package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/liftlog/coach/internal/model"
)

func TestRetrieveNeitherSkipsEmbedding(t *testing.T) {
	embedder := &stubEmbedder{}
	exercises := &stubSearch{}
	workouts := &stubSearch{}
	svc := NewRAGService(exercises, workouts, embedder, 10)

	out, err := svc.Retrieve(context.Background(), 7, "general advice?", model.RouteNeither)
	require.NoError(t, err)
	require.Equal(t, "no relevant data found", out)
	require.Empty(t, embedder.queries)
	require.Empty(t, exercises.calls)
	require.Empty(t, workouts.calls)
}

func TestRetrieveExercises(t *testing.T) {
	embedder := &stubEmbedder{queryVec: []float32{0.5, 0.5}}
	exercises := &stubSearch{hits: []model.SearchHit{
		{ID: 1, Text: "On 2026-08-01 performed Back Squat", Similarity: 0.95},
		{ID: 2, Text: "On 2026-07-28 performed Front Squat", Similarity: 0.90},
	}}
	workouts := &stubSearch{}
	svc := NewRAGService(exercises, workouts, embedder, 10)

	out, err := svc.Retrieve(context.Background(), 7, "how is my squat?", model.RouteExercises)
	require.NoError(t, err)
	require.Equal(t, "On 2026-08-01 performed Back Squat\n\nOn 2026-07-28 performed Front Squat", out)
	require.Equal(t, []searchCall{{userID: 7, limit: 10}}, exercises.calls)
	require.Empty(t, workouts.calls)
}

func TestRetrieveBothSplitsLimit(t *testing.T) {
	embedder := &stubEmbedder{queryVec: []float32{1}}
	exercises := &stubSearch{hits: []model.SearchHit{{ID: 1, Text: "exercise hit"}}}
	workouts := &stubSearch{hits: []model.SearchHit{{ID: 2, Text: "workout hit"}}}
	svc := NewRAGService(exercises, workouts, embedder, 10)

	out, err := svc.Retrieve(context.Background(), 7, "overview?", model.RouteBoth)
	require.NoError(t, err)
	require.Equal(t, []searchCall{{userID: 7, limit: 5}}, exercises.calls)
	require.Equal(t, []searchCall{{userID: 7, limit: 5}}, workouts.calls)
	require.Contains(t, out, "--- EXERCISES ---\nexercise hit")
	require.Contains(t, out, "--- WORKOUTS ---\nworkout hit")
}

func TestRetrieveEmbedFailure(t *testing.T) {
	embedder := &stubEmbedder{err: errors.New("provider down")}
	svc := NewRAGService(&stubSearch{}, &stubSearch{}, embedder, 10)

	_, err := svc.Retrieve(context.Background(), 7, "how is my squat?", model.RouteWorkouts)
	require.Error(t, err)
}

func TestRetrieveSearchFailure(t *testing.T) {
	embedder := &stubEmbedder{queryVec: []float32{1}}
	workouts := &stubSearch{err: errors.New("db gone")}
	svc := NewRAGService(&stubSearch{}, workouts, embedder, 10)

	_, err := svc.Retrieve(context.Background(), 7, "how is my week?", model.RouteWorkouts)
	require.Error(t, err)
}

func TestBuildAnswerPrompt(t *testing.T) {
	out := BuildAnswerPrompt("how is my squat?", "some context")
	require.Contains(t, out, "--- USER QUESTION ---\nhow is my squat?")
	require.Contains(t, out, "--- RETRIEVED CONTEXT ---\nsome context")
}
