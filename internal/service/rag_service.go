package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/liftlog/coach/internal/ai"
	"github.com/liftlog/coach/internal/model"
)

const noRelevantData = "no relevant data found"

// SearchGateway is the retrieval slice of an owning table: exact
// cosine-distance ranking delegated to the storage engine.
type SearchGateway interface {
	SearchByVector(ctx context.Context, vec []float32, userID int64, limit int) ([]model.SearchHit, error)
}

// RAGService embeds the question and pulls the closest stored texts for the
// routed scope.
type RAGService struct {
	exercises SearchGateway
	workouts  SearchGateway
	embedder  ai.Embedder
	limit     int
}

func NewRAGService(exercises, workouts SearchGateway, embedder ai.Embedder, limit int) *RAGService {
	if limit <= 0 {
		limit = 10
	}
	return &RAGService{
		exercises: exercises,
		workouts:  workouts,
		embedder:  embedder,
		limit:     limit,
	}
}

// Retrieve returns the formatted context block for the given scope. NEITHER
// short-circuits to a fixed marker without touching the embedder or the store.
func (s *RAGService) Retrieve(ctx context.Context, userID int64, prompt string, route model.Route) (string, error) {
	if route == model.RouteNeither {
		return noRelevantData, nil
	}
	queryVec, err := s.embedder.EmbedQuery(ctx, prompt)
	if err != nil {
		return "", err
	}
	switch route {
	case model.RouteExercises:
		hits, err := s.exercises.SearchByVector(ctx, queryVec, userID, s.limit)
		if err != nil {
			return "", err
		}
		return joinHits(hits), nil
	case model.RouteWorkouts:
		hits, err := s.workouts.SearchByVector(ctx, queryVec, userID, s.limit)
		if err != nil {
			return "", err
		}
		return joinHits(hits), nil
	case model.RouteBoth:
		half := s.limit / 2
		if half < 1 {
			half = 1
		}
		exHits, err := s.exercises.SearchByVector(ctx, queryVec, userID, half)
		if err != nil {
			return "", err
		}
		woHits, err := s.workouts.SearchByVector(ctx, queryVec, userID, half)
		if err != nil {
			return "", err
		}
		var sb strings.Builder
		sb.WriteString("--- EXERCISES ---\n")
		sb.WriteString(joinHits(exHits))
		sb.WriteString("\n\n--- WORKOUTS ---\n")
		sb.WriteString(joinHits(woHits))
		return sb.String(), nil
	default:
		logutil.GetLogger(ctx).Warn("unknown retrieval route", zap.String("route", string(route)))
		return noRelevantData, nil
	}
}

func joinHits(hits []model.SearchHit) string {
	texts := make([]string, 0, len(hits))
	for _, hit := range hits {
		texts = append(texts, hit.Text)
	}
	return strings.Join(texts, "\n\n")
}

// BuildAnswerPrompt combines the question with the retrieved context and the
// instruction not to invent facts beyond it.
func BuildAnswerPrompt(prompt, retrieved string) string {
	return fmt.Sprintf(`You will be given:
1) A user question
2) Retrieved context entries from a database

Some context entries may be irrelevant or only partially relevant.
Use only the context that helps answer the question.
If the context does not contain enough information, say so clearly.
Do not invent facts.

--- USER QUESTION ---
%s

--- RETRIEVED CONTEXT ---
%s

--- INSTRUCTIONS ---
Answer the question using the relevant context above.
Ignore irrelevant entries.`, prompt, retrieved)
}
