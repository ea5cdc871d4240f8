package main

import (
	"context"
	"crypto/tls"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/relayforge/chatrelay/internal/api/router"
	appconfig "github.com/relayforge/chatrelay/internal/config"
	"github.com/relayforge/chatrelay/internal/conversation"
	"github.com/relayforge/chatrelay/internal/http/handlers"
	"github.com/relayforge/chatrelay/internal/images"
	"github.com/relayforge/chatrelay/internal/messaging"
	"github.com/relayforge/chatrelay/internal/observability/metrics"
	"github.com/relayforge/chatrelay/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting chatrelay API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	// A missing credential is a deployment mistake; fail now, not on the
	// first webhook.
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	store := conversation.NewStore(pool)

	var llm conversation.LLMClient = conversation.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIModel)
	if cfg.GeminiAPIKey != "" {
		gemini, err := conversation.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			logger.Error("failed to create gemini fallback client", "error", err)
			os.Exit(1)
		}
		defer func() { _ = gemini.Close() }()
		llm = conversation.NewFallbackLLMClient(llm, gemini, logger)
		logger.Info("gemini fallback enabled", "model", cfg.GeminiModel)
	}

	imageClient := images.NewClient(cfg.UnsplashAccessKey, cfg.UnsplashBaseURL, logger)
	sender := messaging.NewTwilioSender(cfg.TwilioAccountSID, cfg.TwilioAuthToken, logger)
	relayMetrics := metrics.NewRelayMetrics(nil)

	orchestrator := conversation.NewOrchestrator(store, llm, imageClient, sender, cfg.TwilioFromNumber, cfg.HistoryLimit, relayMetrics, logger)

	var deduper *messaging.Deduper
	if cfg.RedisAddr != "" {
		opts := &redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		}
		if cfg.RedisTLS {
			opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
		deduper = messaging.NewDeduper(redis.NewClient(opts), logger)
		logger.Info("webhook dedup enabled", "redis_addr", cfg.RedisAddr)
	}

	messagingHandler := messaging.NewHandler(orchestrator, deduper, relayMetrics, cfg.RequestTimeout, logger)
	adminHandler := handlers.NewAdminConversationsHandler(store, logger)

	r := router.New(&router.Config{
		Logger:             logger,
		MessagingHandler:   messagingHandler,
		AdminConversations: adminHandler,
		AdminJWTSecret:     cfg.AdminJWTSecret,
		MetricsHandler:     promhttp.Handler(),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
