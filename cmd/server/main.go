package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	testaiiroot "github.com/stojkeex/testaii"
	"github.com/stojkeex/testaii/internal/alert"
	"github.com/stojkeex/testaii/internal/config"
	"github.com/stojkeex/testaii/internal/handler"
	"github.com/stojkeex/testaii/internal/middleware"
	"github.com/stojkeex/testaii/internal/repository"
	"github.com/stojkeex/testaii/internal/service"
)

func main() {
	// Setup structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if cfg.GeminiAPIKey == "" {
		// Not fatal: every chat request will answer MISSING_API_KEY until
		// the key is configured.
		slog.Warn("GEMINI_API_KEY is not set, chat requests will fail")
	}

	// Setup context with graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to database
	pool, err := repository.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Run migrations
	migrationsFS, err := fs.Sub(testaiiroot.MigrationsFS, "migrations")
	if err != nil {
		slog.Error("failed to load embedded migrations", "error", err)
		os.Exit(1)
	}
	if err := repository.RunMigrations(cfg.DatabaseURL, migrationsFS); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Initialize repositories
	profileRepo := repository.NewProfileRepo(pool)
	messageRepo := repository.NewMessageRepo(pool)
	usageRepo := repository.NewUsageRepo(pool)

	// Initialize services
	rng := service.NewRand(time.Now().UnixNano())
	gate := service.NewPacingGate(config.MinDispatchInterval)
	assembler := service.NewPromptAssembler(rng)
	gemini := service.NewGeminiClient(cfg.GeminiAPIKey, cfg.GeminiURL)
	chatService := service.NewChatService(gemini, gate, assembler, rng)
	openerService := service.NewOpenerService(chatService, profileRepo, messageRepo, rng)
	usageService := service.NewUsageService(usageRepo)

	// Initialize telegram alerting (nil notifier when unconfigured)
	notifier, err := alert.New(cfg.LogBotToken, cfg.LogTelegramChatID)
	if err != nil {
		slog.Error("failed to create alert notifier", "error", err)
		os.Exit(1)
	}

	// Initialize handler and routes
	h := handler.New(handler.Deps{
		Cfg:      cfg,
		Chat:     chatService,
		Opener:   openerService,
		Usage:    usageService,
		Profiles: profileRepo,
		Messages: messageRepo,
		Notifier: notifier,
	})

	mux := http.NewServeMux()
	h.Register(mux)

	// Middleware chain: recover outermost, then logging, then rate limit
	var root http.Handler = mux
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			slog.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		defer rdb.Close()
		root = middleware.RateLimit(rdb, config.RateLimitPerMinute)(root)
	}
	root = middleware.Logging()(root)
	root = middleware.Recover()(root)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: root,
	}

	go func() {
		slog.Info("starting server", "port", cfg.Port)
		notifier.Startup(cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			notifier.Error(err, "http server")
			stop()
		}
	}()

	<-ctx.Done()

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
	slog.Info("server stopped gracefully")
}
