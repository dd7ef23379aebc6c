package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chatrelay-backend/internal/config"
	"chatrelay-backend/internal/database"
	"chatrelay-backend/internal/handlers"
	"chatrelay-backend/internal/logging"
	"chatrelay-backend/internal/middleware"
	"chatrelay-backend/internal/ratelimit"
	"chatrelay-backend/internal/router"
	"chatrelay-backend/internal/services"
)

func main() {
	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()

	// ──── Step 2: Logging ────
	logger, err := logging.Init(cfg)
	if err != nil {
		logger.Warn("log file unavailable, logging to stderr", "error", err)
	}
	logger.Info("starting chat relay", "env", cfg.Env)

	if cfg.TogetherAPIKey == "" {
		logger.Warn("TOGETHER_API_KEY is not set; every chat request will fail with 500")
	}

	// ──── Step 3: Rate-limit store ────
	var store ratelimit.Store
	switch cfg.RateLimitStore {
	case config.RateLimitStoreRedis:
		redisClient, err := database.NewRedisClient(cfg.RedisURL)
		if err != nil {
			logger.Error("Redis connection failed", "error", err)
			os.Exit(1)
		}
		defer redisClient.Close()
		store = ratelimit.NewRedisStore(redisClient, cfg.RateLimitWindow)
		logger.Info("rate limiting backed by Redis", "window", cfg.RateLimitWindow.String())
	default:
		memStore := ratelimit.NewMemoryStore(cfg.RateLimitWindow, cfg.RateLimitMaxEntries)
		defer memStore.Close()
		store = memStore
		logger.Info("rate limiting in memory", "window", cfg.RateLimitWindow.String(), "max_entries", cfg.RateLimitMaxEntries)
	}

	// ──── Step 4: Services ────
	completionService := services.NewCompletionService(
		cfg.TogetherAPIKey,
		cfg.TogetherAPIURL,
		cfg.TogetherModel,
		services.WithHTTPClient(&http.Client{Timeout: cfg.MaxDuration}),
		services.WithLogger(logger),
	)

	var sessions *middleware.SessionAuth
	if cfg.SessionSecret != "" {
		sessions = middleware.NewSessionAuth(cfg.SessionSecret, cfg.SessionMaxAge)
	}
	authService := services.NewAuthService(nil, sessions, cfg.GoogleClientID)
	if authService.Enabled() {
		logger.Info("Google sign-in enabled")
	}

	// ──── Step 5: Handlers & Router ────
	chatHandler := handlers.NewChatHandler(completionService, cfg.MaxMessageLength, cfg.MaxDuration)
	authHandler := handlers.NewAuthHandler(authService, sessions, cfg.IsProduction())

	r := router.New(
		chatHandler,
		authHandler,
		middleware.NewRateLimiter(store),
		sessions,
		cfg.ChatRequireSession,
		cfg.FrontendURL,
		logger,
	)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.MaxDuration + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	idle := make(chan struct{})
	go func() {
		defer close(idle)
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), cfg.MaxDuration)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			logger.Error("shutdown failed", "error", err)
		}
	}()

	logger.Info("chat relay ready", "addr", "http://localhost:"+cfg.Port, "chat", "/api/chat")

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
	<-idle
	slog.Info("server stopped")
}
