// Copyright (c) 2026 ND Labs
// SPDX-License-Identifier: GPL-3.0-or-later

// Command eduspace runs the EduSpace learning platform server.
package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/nd-labs/eduspace/internal/ai"
	"github.com/nd-labs/eduspace/internal/cache"
	"github.com/nd-labs/eduspace/internal/config"
	"github.com/nd-labs/eduspace/internal/handler"
	"github.com/nd-labs/eduspace/internal/logging"
	"github.com/nd-labs/eduspace/internal/middleware"
	"github.com/nd-labs/eduspace/internal/scheduler"
	"github.com/nd-labs/eduspace/internal/service"
	"github.com/nd-labs/eduspace/internal/session"
	"github.com/nd-labs/eduspace/internal/store"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		slog.Error("failed to open database", "path", cfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	if err := store.Migrate(db); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}

	logger := setupLogger(cfg, db)
	slog.SetDefault(logger)

	kv := store.NewKV(db)
	if cfg.DoSeed {
		if err := store.Seed(context.Background(), kv); err != nil {
			logger.Error("seeding failed", "error", err)
			os.Exit(1)
		}
	}

	appCache, err := cache.New(cache.Options{
		RedisURL:   cfg.RedisURL,
		Prefix:     cfg.CachePrefix,
		DefaultTTL: time.Duration(cfg.CacheTTL) * time.Second,
		MaxItems:   cfg.CacheMaxSize,
	})
	if err != nil {
		logger.Error("cache setup failed", "error", err)
		os.Exit(1)
	}
	defer func() { _ = appCache.Close() }()

	assistant := ai.New(cfg.OpenAIKey, cfg.ChatModel, cfg.ImageModel)
	if !assistant.Enabled() {
		logger.Warn("no OpenAI key configured, assistant features disabled")
	}

	events := service.NewEventService(db)
	authSvc := service.NewAuthService(kv, cfg, events)
	users := service.NewUserService(kv, events)
	courses := service.NewCourseService(kv, appCache, events)
	suggestions := service.NewSuggestionService(kv, events)
	settings := service.NewSettingsService(kv, appCache, events)
	chat := service.NewChatService(kv, assistant)

	sessionManager := session.New(db, cfg.IsDevelopment())

	sched := scheduler.New(users, events, logger)
	if err := sched.Start(); err != nil {
		logger.Error("scheduler start failed", "error", err)
		os.Exit(1)
	}
	defer sched.Stop()

	router := handler.Routes(handler.Deps{
		DB:          db,
		Sessions:    sessionManager,
		Auth:        authSvc,
		Users:       users,
		Courses:     courses,
		Suggestions: suggestions,
		Settings:    settings,
		Chat:        chat,
		Events:      events,
		Assistant:   assistant,
		Protection:  middleware.NewLoginProtection(middleware.DefaultLoginProtectionConfig()),
		CSRF: middleware.CSRF(middleware.DefaultCSRFConfig(
			[]byte(cfg.SessionSecret), cfg.IsDevelopment())),
	})

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      2 * time.Minute, // AI calls can run long
		IdleTimeout:       2 * time.Minute,
	}

	go func() {
		logger.Info("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}

// setupLogger builds the slog logger: text in development, JSON in
// production, with WARN and above mirrored into the audit event table.
func setupLogger(cfg *config.Config, db *sql.DB) *slog.Logger {
	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var inner slog.Handler
	if cfg.IsDevelopment() {
		inner = slog.NewTextHandler(os.Stdout, opts)
	} else {
		inner = slog.NewJSONHandler(os.Stdout, opts)
	}
	return slog.New(logging.NewEventLogHandler(inner, db))
}
