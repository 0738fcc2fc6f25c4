// Package api implements the HTTP layer for the leads backend. Handlers are
// methods on *Server. Each handler file is responsible for one endpoint
// group and only imports the dependencies it actually uses.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"

	"github.com/draftlinestudio/leads-backend/internal/email"
	"github.com/draftlinestudio/leads-backend/internal/notify"
	"github.com/draftlinestudio/leads-backend/internal/payments"
	"github.com/draftlinestudio/leads-backend/internal/pricing"
	"github.com/draftlinestudio/leads-backend/internal/store"
)

// ServiceName appears in the health probe and log lines.
const ServiceName = "leads-backend"

// Config holds values read from environment variables at startup.
type Config struct {
	// FrontendURL is the allowed CORS origin and the base for the Stripe
	// checkout redirect URLs.
	FrontendURL string

	// StripeWebhookSecret is the signing secret from the Stripe dashboard.
	StripeWebhookSecret string

	// Env is "production", "staging", or "development".
	Env string

	// RateLimitMax requests per RateLimitWindow per source IP on the two
	// form endpoints.
	RateLimitMax    int
	RateLimitWindow time.Duration
}

// Server holds all shared dependencies. Each handler file attaches methods
// to this type and uses only the fields it needs.
type Server struct {
	// table computes quotes. Pure and safe for concurrent use.
	table *pricing.Table

	// notifier sends the admin + client notification pair per submission.
	notifier *notify.Dispatcher

	// mailer sends one-off emails (payment receipts) outside the pair.
	mailer email.Sender

	// payments creates Checkout Sessions and verifies webhook signatures.
	payments payments.Client

	// leadLog records submissions and payments; best-effort only.
	leadLog store.Log

	cfg    Config
	logger *slog.Logger
}

// NewServer constructs the Server and wires the chi router. The returned
// http.Handler is ready to pass to http.ListenAndServe.
func NewServer(
	table *pricing.Table,
	notifier *notify.Dispatcher,
	mailer email.Sender,
	paymentsClient payments.Client,
	leadLog store.Log,
	cfg Config,
	logger *slog.Logger,
) http.Handler {
	if cfg.RateLimitMax <= 0 {
		cfg.RateLimitMax = 5
	}
	if cfg.RateLimitWindow <= 0 {
		cfg.RateLimitWindow = 15 * time.Minute
	}

	s := &Server{
		table:    table,
		notifier: notifier,
		mailer:   mailer,
		payments: paymentsClient,
		leadLog:  leadLog,
		cfg:      cfg,
		logger:   logger,
	}

	return s.routes()
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	// ── Global middleware ─────────────────────────────────────────────────────
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggerMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(s.corsMiddleware)
	r.Use(middleware.Timeout(30 * time.Second))

	// ── Health ────────────────────────────────────────────────────────────────
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respond(w, http.StatusOK, map[string]string{
			"status":  "ok",
			"service": ServiceName,
		})
	})

	// ── Form endpoints — rate limited per source IP ───────────────────────────
	// httprate's counter is pluggable (WithLimitCounter), so a shared store
	// can replace the in-process window without touching handler logic.
	r.Group(func(r chi.Router) {
		r.Use(httprate.Limit(
			s.cfg.RateLimitMax,
			s.cfg.RateLimitWindow,
			httprate.WithKeyFuncs(httprate.KeyByIP),
			httprate.WithLimitHandler(s.handleRateLimited),
		))
		r.Post("/api/estimate", s.handleEstimate)
		r.Post("/api/contact", s.handleContact)
	})

	// ── Pricing + payments ────────────────────────────────────────────────────
	r.Post("/calculate-price", s.handleCalculatePrice)
	r.Post("/create-checkout-session", s.handleCreateCheckoutSession)

	// ── Stripe webhook — signature verification inside the handler ───────────
	r.Post("/webhooks/stripe", s.handleStripeWebhook)

	return r
}

// handleRateLimited writes the fixed 429 envelope for the form endpoints.
func (s *Server) handleRateLimited(w http.ResponseWriter, r *http.Request) {
	s.logger.Warn("rate limit exceeded",
		"path", r.URL.Path,
		"remote", r.RemoteAddr,
		"request_id", middleware.GetReqID(r.Context()),
	)
	respondErr(w, http.StatusTooManyRequests, "Too many requests. Please try again later.")
}
