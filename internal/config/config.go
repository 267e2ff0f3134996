package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/xxxsen/common/logger"
)

type Config struct {
	Port      int              `json:"port"`
	LogConfig logger.LogConfig `json:"log_config"`
	Database  DatabaseConfig   `json:"database"`
	Trigger   TriggerConfig    `json:"trigger"`
	AI        AIConfig         `json:"ai"`
	Chat      ChatConfig       `json:"chat"`
	Resync    ResyncConfig     `json:"resync"`
	CORS      []string         `json:"cors_allowlist"`
}

type DatabaseConfig struct {
	DSN      string `json:"dsn"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	DBName   string `json:"dbname"`
	SSLMode  string `json:"sslmode"`
}

// TriggerConfig describes the Redis stream the ingestion worker consumes.
type TriggerConfig struct {
	Addr     string `json:"addr"`
	Stream   string `json:"stream"`
	Group    string `json:"group"`
	Consumer string `json:"consumer"`
	BlockMS  int    `json:"block_ms"`
}

type AIConfig struct {
	Provider       string      `json:"provider"`
	ChatModel      string      `json:"chat_model"`
	RouterModel    string      `json:"router_model"`
	EmbedModel     string      `json:"embed_model"`
	APIKey         string      `json:"api_key"`
	TimeoutSeconds int         `json:"timeout_seconds"`
	MaxRetries     int         `json:"max_retries"`
	Data           interface{} `json:"data"`
}

type ChatConfig struct {
	RetrieveLimit  int `json:"retrieve_limit"`
	PollIntervalMS int `json:"poll_interval_ms"`
	QueryCacheSize int `json:"query_cache_size"`
	QueryCacheTTLS int `json:"query_cache_ttl_seconds"`
}

// ResyncConfig controls the periodic sweep that picks up users whose rows were
// never embedded because a trigger was lost.
type ResyncConfig struct {
	Enable bool   `json:"enable"`
	Spec   string `json:"spec"`
}

func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err := json.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Port == 0 {
		return nil, fmt.Errorf("port is required")
	}
	if cfg.Database.DSN == "" && cfg.Database.Host == "" {
		return nil, fmt.Errorf("database.dsn or database.host is required")
	}
	if cfg.Trigger.Addr == "" {
		return nil, fmt.Errorf("trigger.addr is required")
	}
	if cfg.AI.Provider == "" {
		return nil, fmt.Errorf("ai.provider is required")
	}
	if cfg.LogConfig.Level == "" {
		cfg.LogConfig.Level = "info"
	}
	if cfg.Trigger.Stream == "" {
		cfg.Trigger.Stream = "workout-logged"
	}
	if cfg.Trigger.Group == "" {
		cfg.Trigger.Group = "embedding-worker-group"
	}
	if cfg.Trigger.Consumer == "" {
		host, _ := os.Hostname()
		if host == "" {
			host = "coach"
		}
		cfg.Trigger.Consumer = host
	}
	if cfg.Trigger.BlockMS == 0 {
		cfg.Trigger.BlockMS = 1000
	}
	if cfg.AI.ChatModel == "" {
		return nil, fmt.Errorf("ai.chat_model is required")
	}
	if cfg.AI.RouterModel == "" {
		cfg.AI.RouterModel = cfg.AI.ChatModel
	}
	if cfg.AI.EmbedModel == "" {
		return nil, fmt.Errorf("ai.embed_model is required")
	}
	if cfg.AI.TimeoutSeconds == 0 {
		cfg.AI.TimeoutSeconds = 30
	}
	if cfg.AI.MaxRetries == 0 {
		cfg.AI.MaxRetries = 2
	}
	if cfg.Chat.RetrieveLimit == 0 {
		cfg.Chat.RetrieveLimit = 10
	}
	if cfg.Chat.PollIntervalMS == 0 {
		cfg.Chat.PollIntervalMS = 200
	}
	if cfg.Chat.QueryCacheSize == 0 {
		cfg.Chat.QueryCacheSize = 1024
	}
	if cfg.Chat.QueryCacheTTLS == 0 {
		cfg.Chat.QueryCacheTTLS = 3600
	}
	if cfg.Resync.Spec == "" {
		cfg.Resync.Spec = "*/30 * * * *"
	}
	return &cfg, nil
}
