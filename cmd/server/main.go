package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/weaverhq/weaver/internal/config"
	"github.com/weaverhq/weaver/internal/database"
	"github.com/weaverhq/weaver/internal/logging"
	"github.com/weaverhq/weaver/internal/mail"
	"github.com/weaverhq/weaver/internal/modules"
	"github.com/weaverhq/weaver/internal/server"
	"github.com/weaverhq/weaver/internal/tokens"
	"github.com/weaverhq/weaver/internal/validation"
)

func main() {
	// Structured logging (JSON to stdout)
	logging.Setup()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	// Database
	db, err := database.Open(cfg)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}

	mods := server.DefaultModules()
	if err := database.Migrate(db, modules.Models(mods)...); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}
	if err := database.Seed(db, cfg); err != nil {
		slog.Error("seeding failed", "error", err)
		os.Exit(1)
	}

	// Persist ERROR+ logs, with retention
	dbLogHandler := logging.WithDatabase(db)
	cleanupDone := make(chan struct{})
	logging.StartCleanup(db, cfg.LogRetentionDays, cleanupDone)

	// One-time codes and cookie sessions
	sessions, codes, closeStores, err := openStores(cfg)
	if err != nil {
		slog.Error("token store connection failed", "error", err)
		os.Exit(1)
	}

	mailer, err := mail.New(cfg)
	if err != nil {
		slog.Error("mail transport setup failed", "transport", cfg.MailTransport, "error", err)
		os.Exit(1)
	}
	slog.Info("mail transport ready", "transport", mailer.Name())

	validator, err := validation.New()
	if err != nil {
		slog.Error("validator setup failed", "error", err)
		os.Exit(1)
	}

	// Sentry error tracking
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      cfg.AppEnv,
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	app := server.New(server.Dependencies{
		Config:    cfg,
		DB:        db,
		Validator: validator,
		Sessions:  sessions,
		Codes:     codes,
		Mailer:    mailer,
		Modules:   mods,
	})

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port, "env", cfg.AppEnv)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	close(cleanupDone)
	dbLogHandler.Stop()
	sentry.Flush(2 * time.Second)

	if closer, ok := mailer.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			slog.Warn("mail transport close error", "cause", err.Error())
		}
	}
	closeStores()

	if err := database.Close(db); err != nil {
		slog.Warn("database close error", "cause", err.Error())
	}

	slog.Info("server stopped")
}

// openStores connects the Redis-backed token stores, or falls back to
// in-process stores when REDIS_ADDR is empty.
func openStores(cfg *config.Config) (tokens.SessionStore, tokens.OneTimeTokenStore, func(), error) {
	if cfg.RedisAddr == "" {
		slog.Warn("REDIS_ADDR not set, using in-memory sessions and one-time codes")
		return tokens.NewMemorySessionStore(), tokens.NewMemoryOneTimeTokenStore(), func() {}, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	rdb, err := tokens.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return nil, nil, nil, err
	}
	closeFn := func() {
		if err := rdb.Close(); err != nil {
			slog.Warn("redis close error", "cause", err.Error())
		}
	}
	return tokens.NewRedisSessionStore(rdb), tokens.NewRedisOneTimeTokenStore(rdb), closeFn, nil
}
