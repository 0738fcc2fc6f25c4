package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq" // postgres driver

	"github.com/draftlinestudio/leads-backend/internal/api"
	"github.com/draftlinestudio/leads-backend/internal/config"
	"github.com/draftlinestudio/leads-backend/internal/email"
	"github.com/draftlinestudio/leads-backend/internal/notify"
	"github.com/draftlinestudio/leads-backend/internal/payments"
	"github.com/draftlinestudio/leads-backend/internal/pricing"
	"github.com/draftlinestudio/leads-backend/internal/store"
)

func main() {
	// ── Logger ────────────────────────────────────────────────────────────────
	// JSON in production, pretty text in development.
	var logger *slog.Logger
	if os.Getenv("ENV") == "production" {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
	} else {
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
	}
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	// ── Config ────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	logger.Info("config loaded", "env", cfg.Env, "port", cfg.Port, "email_provider", cfg.EmailProvider)

	// ── Pricing table ─────────────────────────────────────────────────────────
	table := pricing.Default()
	if err := table.Validate(); err != nil {
		return fmt.Errorf("pricing table: %w", err)
	}

	// ── Lead log (optional) ───────────────────────────────────────────────────
	// Without DATABASE_URL the service runs fine; submissions just are not
	// persisted locally.
	var leadLog store.Log = store.NoopLog{}
	if cfg.DatabaseURL != "" {
		log, pool, err := store.Open(cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("database: %w", err)
		}
		defer pool.Close()
		leadLog = log
		logger.Info("database connected")
	} else {
		logger.Info("no DATABASE_URL set, lead log disabled")
	}

	// ── Email ─────────────────────────────────────────────────────────────────
	sender, err := buildSender(cfg, cfg.EmailProvider)
	if err != nil {
		return fmt.Errorf("email: %w", err)
	}
	if cfg.EmailFallbackProvider != "" {
		secondary, err := buildSender(cfg, cfg.EmailFallbackProvider)
		if err != nil {
			return fmt.Errorf("email fallback: %w", err)
		}
		sender = email.NewFallbackSender(sender, secondary, logger)
		logger.Info("email: using fallback chain",
			"primary", cfg.EmailProvider, "secondary", cfg.EmailFallbackProvider)
	} else {
		logger.Info("email: single provider", "provider", cfg.EmailProvider)
	}

	// ── Notifications ─────────────────────────────────────────────────────────
	notifier := notify.New(sender, cfg.EstimateRecipient, cfg.ProviderTimeout, logger)

	// ── Stripe ────────────────────────────────────────────────────────────────
	paymentsClient := payments.NewClient(cfg.StripeSecretKey)

	// ── HTTP server ───────────────────────────────────────────────────────────
	handler := api.NewServer(
		table,
		notifier,
		sender,
		paymentsClient,
		leadLog,
		api.Config{
			FrontendURL:         cfg.FrontendURL,
			StripeWebhookSecret: cfg.StripeWebhookSecret,
			Env:                 cfg.Env,
			RateLimitMax:        cfg.RateLimitMax,
			RateLimitWindow:     cfg.RateLimitWindow,
		},
		logger,
	)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// ── Graceful shutdown ─────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	}

	// Give in-flight HTTP requests up to 20 seconds to finish.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	logger.Info("shutdown complete")
	return nil
}

// buildSender constructs the Sender for one provider name. Config validation
// has already checked that the provider's credentials are present.
func buildSender(cfg *config.Config, provider string) (email.Sender, error) {
	switch provider {
	case config.ProviderResend:
		return email.NewResendClient(cfg.ResendAPIKey, cfg.EmailFromAddr, cfg.EmailFromName, cfg.ProviderTimeout), nil
	case config.ProviderBrevo:
		return email.NewBrevoClient(cfg.BrevoAPIKey, cfg.EmailFromAddr, cfg.EmailFromName, cfg.ProviderTimeout), nil
	case config.ProviderSMTP:
		return email.NewSMTPClient(email.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Secure:   cfg.SMTPSecure,
			Username: cfg.SMTPUser,
			Password: cfg.SMTPPass,
			FromAddr: cfg.EmailFromAddr,
			FromName: cfg.EmailFromName,
			Timeout:  cfg.ProviderTimeout,
		})
	case config.ProviderWebhook:
		return email.NewWebhookClient(cfg.WebhookURL, cfg.EmailFromAddr, cfg.EmailFromName, cfg.ProviderTimeout), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", provider)
	}
}
