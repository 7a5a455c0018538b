package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/user/llm-router-go/internal/api"
	"github.com/user/llm-router-go/internal/api/middleware"
	"github.com/user/llm-router-go/internal/config"
	"github.com/user/llm-router-go/internal/database"
	"github.com/user/llm-router-go/internal/inference"
	"github.com/user/llm-router-go/internal/repository"
	"github.com/user/llm-router-go/internal/service"
	"github.com/user/llm-router-go/internal/version"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v":
			fmt.Println(version.Info())
			os.Exit(0)
		case "--help", "-h":
			printUsage()
			os.Exit(0)
		}
	}
	if err := run(); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func printUsage() {
	fmt.Printf("LLM Router - %s\n\n", version.Short())
	fmt.Println("Usage: llm-router [OPTIONS]")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --version, -v  Show version information")
	fmt.Println("  --help, -h     Show this help message")
	fmt.Println()
	fmt.Println("Without options, starts the routing server.")
	fmt.Println("Configuration comes from environment variables or a .env file.")
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := newLogger(cfg.Server.LogLevel, "logs", cfg.LogRotation)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()

	logger.Info("starting llm-router",
		zap.String("version", version.Short()),
		zap.String("host", cfg.Server.Host),
		zap.Int("port", cfg.Server.Port),
	)

	db, err := openDatabase(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("init database: %w", err)
	}
	defer db.Close()

	if err := database.RunMigrations(db); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	orgRepo := repository.NewOrgRepository(db, logger)
	adminRepo := repository.NewAdminRepository(db, logger)

	// Inference engines. Each owns its model behind a dedicated worker.
	httpClient := &http.Client{Timeout: time.Duration(cfg.Inference.TimeoutSeconds) * time.Second}
	embedderModel := inference.NewRemoteEmbedder(
		cfg.Inference.EmbeddingBaseURL,
		cfg.Inference.EmbeddingAPIKey,
		cfg.Inference.EmbeddingModel,
		httpClient,
	)
	classifierModel := inference.NewRemoteClassifier(
		cfg.Inference.ZeroShotURL,
		cfg.Inference.ZeroShotAPIKey,
		httpClient,
	)
	classifier := inference.NewClassifier(classifierModel, cfg.Inference.QueueSize, logger)
	defer classifier.Close()
	similarity := inference.NewSimilarityEngine(embedderModel, cfg.Inference.QueueSize, logger)
	defer similarity.Close()

	cache := service.NewDecisionCache(
		cfg.Cache.MaxEntries,
		time.Duration(cfg.Cache.TTLSeconds)*time.Second,
		logger,
	)

	engine := service.NewRoutingEngine(orgRepo, classifier, similarity, cache, logger)
	orgService := service.NewOrgService(orgRepo, logger)
	authService := service.NewAuthService(adminRepo, logger)

	if err := authService.CreateDefaultAdmin(
		context.Background(),
		cfg.Security.DefaultAdmin.Username,
		cfg.Security.DefaultAdmin.Password,
	); err != nil {
		logger.Warn("failed to create default admin", zap.Error(err))
	}

	server := api.NewServer(api.ServerDeps{
		Engine:      engine,
		OrgService:  orgService,
		AuthService: authService,
		RateLimit: &middleware.RateLimitConfig{
			Enabled:       cfg.RateLimit.Enabled,
			MaxRequests:   cfg.RateLimit.MaxRequests,
			WindowSeconds: cfg.RateLimit.WindowSeconds,
			ExemptPaths:   []string{"/api/health"},
		},
		DB:     db,
		Logger: logger,
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      server.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	logger.Info("server started", zap.String("addr", addr))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	logger.Info("server stopped")
	return nil
}

func openDatabase(path string) (*sql.DB, error) {
	if path == "" || path == ":memory:" {
		return database.NewInMemory()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return database.New(path)
}

func newLogger(level string, logDir string, rotation config.LogRotationConfig) (*zap.Logger, error) {
	var zapLevel zapcore.Level
	switch level {
	case "debug", "DEBUG":
		zapLevel = zap.DebugLevel
	case "warn", "WARN":
		zapLevel = zap.WarnLevel
	case "error", "ERROR":
		zapLevel = zap.ErrorLevel
	default:
		zapLevel = zap.InfoLevel
	}

	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("create log dir %s: %w", logDir, err)
	}

	lj := &lumberjack.Logger{
		Filename:   filepath.Join(logDir, "llm-router.log"),
		MaxSize:    rotation.MaxSizeMB,
		MaxBackups: rotation.MaxBackups,
		MaxAge:     rotation.MaxAgeDays,
		Compress:   rotation.Compress,
	}

	// File core: JSON encoder for structured log parsing.
	fileEncoderCfg := zap.NewProductionEncoderConfig()
	fileEncoderCfg.TimeKey = "ts"
	fileEncoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	fileCore := zapcore.NewCore(
		zapcore.NewJSONEncoder(fileEncoderCfg),
		zapcore.AddSync(lj),
		zapLevel,
	)

	// Console core: human-readable output to stdout.
	consoleEncoderCfg := zap.NewDevelopmentEncoderConfig()
	consoleEncoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	consoleEncoderCfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
	consoleCore := zapcore.NewCore(
		zapcore.NewConsoleEncoder(consoleEncoderCfg),
		zapcore.AddSync(os.Stdout),
		zapLevel,
	)

	return zap.New(zapcore.NewTee(fileCore, consoleCore)), nil
}
