// Package config loads and validates all environment variables at startup.
// Every other package receives typed values — nothing reads os.Getenv
// directly.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Provider names accepted by EMAIL_PROVIDER / EMAIL_FALLBACK_PROVIDER.
const (
	ProviderResend  = "resend"
	ProviderBrevo   = "brevo"
	ProviderSMTP    = "smtp"
	ProviderWebhook = "webhook"
)

// Config is the fully-parsed application configuration.
type Config struct {
	// ── Server ────────────────────────────────────────────────────────────────
	Port        string // default "8080"
	Env         string // "development" | "staging" | "production"
	FrontendURL string // CORS origin + checkout redirect base

	// ── Email ─────────────────────────────────────────────────────────────────
	EmailProvider         string // resend | brevo | smtp | webhook
	EmailFallbackProvider string // optional second provider, same values
	EmailFromAddr         string
	EmailFromName         string
	EstimateRecipient     string // admin inbox for lead notifications

	ResendAPIKey string
	BrevoAPIKey  string

	SMTPHost     string
	SMTPPort     int
	SMTPSecure   bool
	SMTPUser     string
	SMTPPass     string
	WebhookURL   string

	// ── Stripe ────────────────────────────────────────────────────────────────
	StripeSecretKey     string
	StripeWebhookSecret string

	// ── Lead log (optional) ───────────────────────────────────────────────────
	DatabaseURL string

	// ── Rate limiting / timeouts ──────────────────────────────────────────────
	RateLimitMax    int           // default 5 requests
	RateLimitWindow time.Duration // default 15m
	ProviderTimeout time.Duration // default 10s per outbound provider call
}

// Load reads all environment variables and returns a validated Config.
// A .env file in the working directory is loaded first when present, so
// plain `go run ./cmd/api` works in development; real environment variables
// always take precedence over .env values.
func Load() (*Config, error) {
	_ = godotenv.Load() // missing file is fine

	c := &Config{
		Port:        getEnv("PORT", "8080"),
		Env:         getEnv("ENV", "development"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:5173"),

		EmailProvider:         getEnv("EMAIL_PROVIDER", ProviderResend),
		EmailFallbackProvider: os.Getenv("EMAIL_FALLBACK_PROVIDER"),
		EmailFromAddr:         getEnv("EMAIL_FROM_ADDR", "hello@draftline.studio"),
		EmailFromName:         getEnv("EMAIL_FROM_NAME", "Draftline Studio"),
		EstimateRecipient:     os.Getenv("ESTIMATE_RECIPIENT_EMAIL"),

		ResendAPIKey: os.Getenv("RESEND_API_KEY"),
		BrevoAPIKey:  os.Getenv("BREVO_API_KEY"),

		SMTPHost:   os.Getenv("SMTP_HOST"),
		SMTPPort:   getEnvAsInt("SMTP_PORT", 587),
		SMTPSecure: getEnvAsBool("SMTP_SECURE", false),
		SMTPUser:   os.Getenv("SMTP_USER"),
		SMTPPass:   os.Getenv("SMTP_PASS"),
		WebhookURL: os.Getenv("EMAIL_WEBHOOK_URL"),

		StripeSecretKey:     os.Getenv("STRIPE_SECRET_KEY"),
		StripeWebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),

		DatabaseURL: os.Getenv("DATABASE_URL"),

		RateLimitMax:    getEnvAsInt("RATE_LIMIT_MAX", 5),
		RateLimitWindow: getEnvAsDuration("RATE_LIMIT_WINDOW", 15*time.Minute),
		ProviderTimeout: getEnvAsDuration("PROVIDER_TIMEOUT", 10*time.Second),
	}

	return c, c.validate()
}

func (c *Config) validate() error {
	var errs []error

	if c.EstimateRecipient == "" {
		errs = append(errs, fmt.Errorf("missing required env var: ESTIMATE_RECIPIENT_EMAIL"))
	}
	if c.StripeSecretKey == "" {
		errs = append(errs, fmt.Errorf("missing required env var: STRIPE_SECRET_KEY"))
	}
	if c.StripeWebhookSecret == "" {
		errs = append(errs, fmt.Errorf("missing required env var: STRIPE_WEBHOOK_SECRET"))
	}

	// The selected providers must each be fully configured at startup —
	// a missing credential should fail here, not on the first submission.
	if err := c.validateProvider(c.EmailProvider); err != nil {
		errs = append(errs, err)
	}
	if c.EmailFallbackProvider != "" {
		if c.EmailFallbackProvider == c.EmailProvider {
			errs = append(errs, fmt.Errorf("EMAIL_FALLBACK_PROVIDER must differ from EMAIL_PROVIDER"))
		} else if err := c.validateProvider(c.EmailFallbackProvider); err != nil {
			errs = append(errs, err)
		}
	}

	if c.RateLimitMax <= 0 {
		errs = append(errs, fmt.Errorf("RATE_LIMIT_MAX must be positive, got %d", c.RateLimitMax))
	}

	return errors.Join(errs...)
}

func (c *Config) validateProvider(name string) error {
	switch name {
	case ProviderResend:
		if c.ResendAPIKey == "" {
			return fmt.Errorf("EMAIL_PROVIDER=resend requires RESEND_API_KEY")
		}
	case ProviderBrevo:
		if c.BrevoAPIKey == "" {
			return fmt.Errorf("EMAIL_PROVIDER=brevo requires BREVO_API_KEY")
		}
	case ProviderSMTP:
		if c.SMTPHost == "" || c.SMTPUser == "" || c.SMTPPass == "" {
			return fmt.Errorf("EMAIL_PROVIDER=smtp requires SMTP_HOST, SMTP_USER and SMTP_PASS")
		}
	case ProviderWebhook:
		if c.WebhookURL == "" {
			return fmt.Errorf("EMAIL_PROVIDER=webhook requires EMAIL_WEBHOOK_URL")
		}
	default:
		return fmt.Errorf("unknown email provider %q", name)
	}
	return nil
}

// ─── HELPERS ─────────────────────────────────────────────────────────────────

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	// Plain integers are treated as seconds; otherwise Go duration syntax
	// ("30s", "15m", "1h").
	if value, err := strconv.Atoi(valueStr); err == nil {
		return time.Duration(value) * time.Second
	}
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	return defaultValue
}
