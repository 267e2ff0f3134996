package ai

import (
	"context"

	"github.com/liftlog/coach/internal/model"
)

// Embedder is the embedding surface services depend on.
type Embedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
	EmbedModelName() string
}

// Classifier runs constrained-label classification prompts.
type Classifier interface {
	Classify(ctx context.Context, prompt string) (string, error)
}

// Chatter generates the final answer from a role'd conversation.
type Chatter interface {
	Chat(ctx context.Context, system string, messages []model.Message) (string, error)
}
