package api

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/draftlinestudio/leads-backend/internal/email"
	"github.com/draftlinestudio/leads-backend/internal/payments"
)

// maxWebhookBytes bounds Stripe webhook bodies. The largest events Stripe
// delivers here are a few KB.
const maxWebhookBytes = 64 << 10

// handleStripeWebhook receives Stripe events. Signature verification happens
// before anything else; an unverified body is never parsed.
func (s *Server) handleStripeWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBytes))
	if err != nil {
		respondErr(w, http.StatusBadRequest, "Unable to read request body")
		return
	}

	event, err := s.payments.VerifyWebhook(payload, r.Header.Get("Stripe-Signature"), s.cfg.StripeWebhookSecret)
	if err != nil {
		s.logger.Warn("stripe webhook signature verification failed", slog.Any("error", err))
		respondErr(w, http.StatusBadRequest, "Invalid webhook signature")
		return
	}

	switch event.Type {
	case "checkout.session.completed":
		s.handleCheckoutCompleted(r, event)
	default:
		s.logger.Debug("ignoring stripe event", slog.String("type", event.Type), slog.String("id", event.ID))
	}

	// Ack everything that verified; Stripe retries non-2xx responses.
	respond(w, http.StatusOK, map[string]bool{"received": true})
}

// handleCheckoutCompleted records the payment and emails a receipt. Both steps
// are best-effort: a failure is logged but never turns into a non-2xx, since
// that would only make Stripe redeliver an event we already verified.
func (s *Server) handleCheckoutCompleted(r *http.Request, event payments.Event) {
	session, err := payments.ExtractCompletedSession(event)
	if err != nil {
		s.logger.Error("parse completed checkout session", slog.String("event_id", event.ID), slog.Any("error", err))
		return
	}

	s.logger.Info("checkout session completed",
		slog.String("session_id", session.ID),
		slog.String("invoice_id", session.InvoiceID),
		slog.Int64("amount_cents", session.AmountTotal),
	)

	if err := s.leadLog.MarkPaid(r.Context(), session.InvoiceID, session.ID, session.AmountTotal); err != nil {
		s.logger.Error("record payment", slog.String("invoice_id", session.InvoiceID), slog.Any("error", err))
	}

	if session.CustomerEmail == "" {
		s.logger.Warn("completed session has no customer email, skipping receipt", slog.String("session_id", session.ID))
		return
	}

	subject, htmlBody, textBody := email.RenderReceipt(session.CustomerName, session.Description, session.AmountTotal)
	if _, err := s.mailer.Send(r.Context(), email.Message{
		To:      session.CustomerEmail,
		Subject: subject,
		HTML:    htmlBody,
		Text:    textBody,
	}); err != nil {
		s.logger.Error("send payment receipt", slog.String("session_id", session.ID), slog.Any("error", err))
	}
}
