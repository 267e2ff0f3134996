package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/liftlog/coach/internal/model"
)

var ErrUnavailable = errors.New("ai provider unavailable")

// IProvider is a remote model backend. Generate runs a single plain prompt
// (classification calls), Chat runs a role'd conversation with an optional
// system instruction, EmbedBatch returns one vector per input text in input
// order.
type IProvider interface {
	Name() string
	Generate(ctx context.Context, modelName string, prompt string, maxTokens int) (string, error)
	Chat(ctx context.Context, modelName string, system string, messages []model.Message) (string, error)
	EmbedBatch(ctx context.Context, modelName string, texts []string) ([][]float32, error)
}

type ProviderFactory func(args interface{}) (IProvider, error)

var registry = map[string]ProviderFactory{}

func Register(name string, factory ProviderFactory) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" || factory == nil {
		return
	}
	registry[key] = factory
}

func NewProvider(name string, args interface{}) (IProvider, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return nil, fmt.Errorf("ai.provider is required")
	}
	factory := registry[key]
	if factory == nil {
		return nil, fmt.Errorf("unsupported ai provider: %s", name)
	}
	return factory(args)
}

func decodeConfig(args interface{}, dst interface{}) error {
	if args == nil {
		return fmt.Errorf("ai provider config is required")
	}
	data, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("encode ai provider config: %w", err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("decode ai provider config: %w", err)
	}
	return nil
}
