package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/liftlog/coach/internal/model"
	appErr "github.com/liftlog/coach/internal/pkg/errors"
)

type ManagerConfig struct {
	ChatModel   string
	RouterModel string
	EmbedModel  string
	Timeout     time.Duration
	MaxRetries  int
}

// Manager fronts a provider with per-call timeouts and a small bounded retry
// count. Provider failures surface as appErr.ErrProvider after retries are
// exhausted; callers never see a partial batch.
type Manager struct {
	provider IProvider
	cfg      ManagerConfig
}

func NewManager(provider IProvider, cfg ManagerConfig) *Manager {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	return &Manager{provider: provider, cfg: cfg}
}

// EmbedBatch embeds texts in order, one vector per input. An error aborts the
// whole batch.
func (m *Manager) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	var vectors [][]float32
	err := m.withRetry(ctx, "embed_batch", func(callCtx context.Context) error {
		res, err := m.provider.EmbedBatch(callCtx, m.cfg.EmbedModel, texts)
		if err != nil {
			return err
		}
		vectors = res
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("%w: expected %d vectors, got %d", appErr.ErrProvider, len(texts), len(vectors))
	}
	return vectors, nil
}

func (m *Manager) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := m.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// Classify runs a single short-output classification prompt on the router
// model and returns the raw label text.
func (m *Manager) Classify(ctx context.Context, prompt string) (string, error) {
	var out string
	err := m.withRetry(ctx, "classify", func(callCtx context.Context) error {
		res, err := m.provider.Generate(callCtx, m.cfg.RouterModel, prompt, 15)
		if err != nil {
			return err
		}
		out = res
		return nil
	})
	return out, err
}

// Chat runs the full conversation on the answer model.
func (m *Manager) Chat(ctx context.Context, system string, messages []model.Message) (string, error) {
	var out string
	err := m.withRetry(ctx, "chat", func(callCtx context.Context) error {
		res, err := m.provider.Chat(callCtx, m.cfg.ChatModel, system, messages)
		if err != nil {
			return err
		}
		out = res
		return nil
	})
	return out, err
}

func (m *Manager) EmbedModelName() string {
	return m.cfg.EmbedModel
}

func (m *Manager) withRetry(ctx context.Context, op string, call func(ctx context.Context) error) error {
	var lastErr error
	for attempt := 0; attempt <= m.cfg.MaxRetries; attempt++ {
		callCtx, cancel := context.WithTimeout(ctx, m.cfg.Timeout)
		err := call(callCtx)
		cancel()
		if err == nil {
			return nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
		logutil.GetLogger(ctx).Warn("ai call failed",
			zap.String("op", op),
			zap.Int("attempt", attempt+1),
			zap.Error(err),
		)
	}
	return fmt.Errorf("%w: %s: %v", appErr.ErrProvider, op, lastErr)
}
