package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, `{
		"port": 8080,
		"database": {"host": "localhost", "port": 5432, "user": "coach", "password": "x", "dbname": "coach"},
		"trigger": {"addr": "localhost:6379"},
		"ai": {"provider": "gemini", "chat_model": "gemini-2.0-flash", "embed_model": "text-embedding-004", "api_key": "k"}
	}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "info", cfg.LogConfig.Level)
	require.Equal(t, "workout-logged", cfg.Trigger.Stream)
	require.Equal(t, "embedding-worker-group", cfg.Trigger.Group)
	require.NotEmpty(t, cfg.Trigger.Consumer)
	require.Equal(t, 1000, cfg.Trigger.BlockMS)
	require.Equal(t, "gemini-2.0-flash", cfg.AI.RouterModel, "router model falls back to chat model")
	require.Equal(t, 30, cfg.AI.TimeoutSeconds)
	require.Equal(t, 2, cfg.AI.MaxRetries)
	require.Equal(t, 10, cfg.Chat.RetrieveLimit)
	require.Equal(t, 200, cfg.Chat.PollIntervalMS)
	require.Equal(t, 1024, cfg.Chat.QueryCacheSize)
	require.Equal(t, 3600, cfg.Chat.QueryCacheTTLS)
	require.Equal(t, "*/30 * * * *", cfg.Resync.Spec)
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"missing port", `{"database": {"host": "h"}, "trigger": {"addr": "a"}, "ai": {"provider": "p", "chat_model": "c", "embed_model": "e"}}`},
		{"missing database", `{"port": 1, "trigger": {"addr": "a"}, "ai": {"provider": "p", "chat_model": "c", "embed_model": "e"}}`},
		{"missing trigger addr", `{"port": 1, "database": {"host": "h"}, "ai": {"provider": "p", "chat_model": "c", "embed_model": "e"}}`},
		{"missing provider", `{"port": 1, "database": {"host": "h"}, "trigger": {"addr": "a"}, "ai": {"chat_model": "c", "embed_model": "e"}}`},
		{"missing chat model", `{"port": 1, "database": {"host": "h"}, "trigger": {"addr": "a"}, "ai": {"provider": "p", "embed_model": "e"}}`},
		{"missing embed model", `{"port": 1, "database": {"host": "h"}, "trigger": {"addr": "a"}, "ai": {"provider": "p", "chat_model": "c"}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			require.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	require.Error(t, err)
}

func TestLoadDSNOnly(t *testing.T) {
	path := writeConfig(t, `{
		"port": 8080,
		"database": {"dsn": "postgres://coach@localhost/coach"},
		"trigger": {"addr": "localhost:6379"},
		"ai": {"provider": "openai", "chat_model": "gpt-4o-mini", "embed_model": "text-embedding-3-small", "api_key": "k"}
	}`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "postgres://coach@localhost/coach", cfg.Database.DSN)
}
