package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logger"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/liftlog/coach/internal/ai"
	"github.com/liftlog/coach/internal/config"
	"github.com/liftlog/coach/internal/consumer"
	"github.com/liftlog/coach/internal/db"
	"github.com/liftlog/coach/internal/embedcache"
	"github.com/liftlog/coach/internal/handler"
	"github.com/liftlog/coach/internal/job"
	"github.com/liftlog/coach/internal/repo"
	"github.com/liftlog/coach/internal/schedule"
	"github.com/liftlog/coach/internal/service"
	"github.com/liftlog/coach/internal/session"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "coach",
		Short: "fitness RAG chat backend",
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config.json")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run the chat server and ingestion worker",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			return runServer(cfg)
		},
	}

	dbcheckCmd := &cobra.Command{
		Use:   "dbcheck",
		Short: "verify database connectivity",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			return runDBCheck(cfg)
		},
	}

	rootCmd.AddCommand(runCmd, dbcheckCmd)
	if err := rootCmd.Execute(); err != nil {
		logutil.GetLogger(context.Background()).Fatal("startup error", zap.Error(err))
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return nil, fmt.Errorf("--config is required")
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	logger.Init(
		cfg.LogConfig.File,
		cfg.LogConfig.Level,
		int(cfg.LogConfig.FileCount),
		int(cfg.LogConfig.FileSize),
		int(cfg.LogConfig.KeepDays),
		cfg.LogConfig.Console,
	)
	logutil.GetLogger(context.Background()).Info("config loaded", zap.String("config", path))
	return cfg, nil
}

func runServer(cfg *config.Config) error {
	rootLogger := logutil.GetLogger(context.Background())
	rootLogger.Info("starting server", zap.Int("port", cfg.Port))

	conn, err := db.Open(cfg.Database)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	if err := db.ApplyMigrations(conn); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}

	exerciseRepo := repo.NewExerciseRepo(conn)
	workoutRepo := repo.NewWorkoutRepo(conn)

	providerArgs := cfg.AI.Data
	if providerArgs == nil {
		providerArgs = cfg.AI
	}
	aiProvider, err := ai.NewProvider(cfg.AI.Provider, providerArgs)
	if err != nil {
		return fmt.Errorf("init ai provider: %w", err)
	}
	manager := ai.NewManager(aiProvider, ai.ManagerConfig{
		ChatModel:   cfg.AI.ChatModel,
		RouterModel: cfg.AI.RouterModel,
		EmbedModel:  cfg.AI.EmbedModel,
		Timeout:     time.Duration(cfg.AI.TimeoutSeconds) * time.Second,
		MaxRetries:  cfg.AI.MaxRetries,
	})
	embedder := embedcache.WrapQueryCache(
		manager,
		cfg.Chat.QueryCacheSize,
		time.Duration(cfg.Chat.QueryCacheTTLS)*time.Second,
	)

	embeddingService := service.NewEmbeddingService(exerciseRepo, workoutRepo, embedder)
	ragService := service.NewRAGService(exerciseRepo, workoutRepo, embedder, cfg.Chat.RetrieveLimit)
	routerService := service.NewRouterService(manager)
	guardrailService := service.NewGuardrailService(manager)
	chatService := service.NewChatService(guardrailService, routerService, ragService, manager)

	registry := session.NewRegistry()
	chatHandler := handler.NewChatHandler(chatService, registry, time.Duration(cfg.Chat.PollIntervalMS)*time.Millisecond)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	trigger, err := consumer.NewTriggerConsumer(cfg.Trigger, embeddingService)
	if err != nil {
		return fmt.Errorf("init trigger consumer: %w", err)
	}
	defer trigger.Close()
	go func() {
		if err := trigger.Run(ctx); err != nil && ctx.Err() == nil {
			rootLogger.Error("trigger consumer stopped", zap.Error(err))
		}
	}()

	if cfg.Resync.Enable {
		scheduler := schedule.NewCronScheduler()
		resync := job.NewResyncJob(exerciseRepo, workoutRepo, embeddingService)
		if err := scheduler.AddJob(resync, cfg.Resync.Spec); err != nil {
			return fmt.Errorf("schedule resync job: %w", err)
		}
		scheduler.Start(ctx)
		defer scheduler.Stop()
	}

	router := handler.NewRouter(handler.RouterDeps{
		Chat:          chatHandler,
		CORSAllowlist: cfg.CORS,
		ChatWindow:    time.Second,
	})
	server := &http.Server{
		Addr:    fmt.Sprintf("0.0.0.0:%d", cfg.Port),
		Handler: router,
	}
	go func() {
		rootLogger.Info("http server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			rootLogger.Error("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	rootLogger.Info("server stopping...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// runDBCheck is the standalone connectivity smoke test: it lists the public
// tables and counts users, nothing more.
func runDBCheck(cfg *config.Config) error {
	conn, err := db.Open(cfg.Database)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer conn.Close()

	var tables []string
	err = conn.Select(&tables, `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = 'public'
		ORDER BY table_name
	`)
	if err != nil {
		return fmt.Errorf("list tables: %w", err)
	}
	var userCount int64
	if err := conn.Get(&userCount, `SELECT COUNT(*) FROM users`); err != nil {
		return fmt.Errorf("count users: %w", err)
	}
	logutil.GetLogger(context.Background()).Info("database reachable",
		zap.Strings("tables", tables),
		zap.Int64("users", userCount),
	)
	return nil
}
