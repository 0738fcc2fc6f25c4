// Package store records submissions and payment confirmations in Postgres
// when DATABASE_URL is configured. The log is best-effort bookkeeping: a
// store failure is logged by the caller and never fails the HTTP response,
// and the service runs fine with the no-op log when no database is wired.
package store

import (
	"context"

	"github.com/draftlinestudio/leads-backend/internal/lead"
)

// Log is the capability handlers use to record lead activity.
type Log interface {
	// RecordSubmission inserts one immutable submission row together with
	// the per-recipient notification outcome.
	RecordSubmission(ctx context.Context, sub lead.Submission, adminSent, clientSent bool) error

	// MarkPaid records a completed Stripe checkout against the invoice that
	// was minted when the session was created.
	MarkPaid(ctx context.Context, invoiceID, checkoutSessionID string, amountCents int64) error
}

// NoopLog is wired when no DATABASE_URL is configured.
type NoopLog struct{}

func (NoopLog) RecordSubmission(context.Context, lead.Submission, bool, bool) error {
	return nil
}

func (NoopLog) MarkPaid(context.Context, string, string, int64) error {
	return nil
}
