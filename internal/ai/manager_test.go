package ai

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/liftlog/coach/internal/model"
	appErr "github.com/liftlog/coach/internal/pkg/errors"
)

type fakeProvider struct {
	embedCalls    int
	embedResult   [][]float32
	embedErr      error
	failUntil     int
	generateCalls int
	generateOut   string
	chatSystem    string
	chatMessages  []model.Message
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Generate(ctx context.Context, modelName string, prompt string, maxTokens int) (string, error) {
	f.generateCalls++
	if f.generateCalls <= f.failUntil {
		return "", errors.New("upstream unavailable")
	}
	return f.generateOut, nil
}

func (f *fakeProvider) Chat(ctx context.Context, modelName string, system string, messages []model.Message) (string, error) {
	f.chatSystem = system
	f.chatMessages = messages
	return "answer", nil
}

func (f *fakeProvider) EmbedBatch(ctx context.Context, modelName string, texts []string) ([][]float32, error) {
	f.embedCalls++
	if f.embedErr != nil {
		return nil, f.embedErr
	}
	return f.embedResult, nil
}

func newTestManager(p IProvider, maxRetries int) *Manager {
	return NewManager(p, ManagerConfig{
		ChatModel:   "chat-model",
		RouterModel: "router-model",
		EmbedModel:  "embed-model",
		Timeout:     time.Second,
		MaxRetries:  maxRetries,
	})
}

func TestEmbedBatchEmptyInput(t *testing.T) {
	p := &fakeProvider{}
	m := newTestManager(p, 0)
	vectors, err := m.EmbedBatch(context.Background(), nil)
	require.NoError(t, err)
	require.Nil(t, vectors)
	require.Zero(t, p.embedCalls)
}

func TestEmbedBatchCardinality(t *testing.T) {
	p := &fakeProvider{embedResult: [][]float32{{0.1}}}
	m := newTestManager(p, 0)
	_, err := m.EmbedBatch(context.Background(), []string{"a", "b"})
	require.ErrorIs(t, err, appErr.ErrProvider)
}

func TestEmbedBatchSuccess(t *testing.T) {
	p := &fakeProvider{embedResult: [][]float32{{0.1}, {0.2}}}
	m := newTestManager(p, 0)
	vectors, err := m.EmbedBatch(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	require.Len(t, vectors, 2)
}

func TestEmbedBatchRetriesExhausted(t *testing.T) {
	p := &fakeProvider{embedErr: errors.New("boom")}
	m := newTestManager(p, 2)
	_, err := m.EmbedBatch(context.Background(), []string{"a"})
	require.ErrorIs(t, err, appErr.ErrProvider)
	require.Equal(t, 3, p.embedCalls, "one attempt plus two retries")
}

func TestClassifyRetriesThenSucceeds(t *testing.T) {
	p := &fakeProvider{generateOut: "EXERCISES", failUntil: 1}
	m := newTestManager(p, 2)
	out, err := m.Classify(context.Background(), "route this")
	require.NoError(t, err)
	require.Equal(t, "EXERCISES", out)
	require.Equal(t, 2, p.generateCalls)
}

func TestChatPassesSystemAndMessages(t *testing.T) {
	p := &fakeProvider{}
	m := newTestManager(p, 0)
	msgs := []model.Message{{Role: model.RoleHuman, Text: "hi"}}
	out, err := m.Chat(context.Background(), "system prompt", msgs)
	require.NoError(t, err)
	require.Equal(t, "answer", out)
	require.Equal(t, "system prompt", p.chatSystem)
	require.Equal(t, msgs, p.chatMessages)
}

func TestEmbedModelName(t *testing.T) {
	m := newTestManager(&fakeProvider{}, 0)
	require.Equal(t, "embed-model", m.EmbedModelName())
}
