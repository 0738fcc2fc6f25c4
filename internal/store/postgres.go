package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sqlc-dev/pqtype"

	"github.com/draftlinestudio/leads-backend/internal/lead"
)

// postgresLog is the concrete Log backed by a lead_log table; see schema.sql.
type postgresLog struct {
	pool *sql.DB
}

// Open connects to Postgres, tunes the pool, and verifies the connection
// before returning. The caller owns Close on the returned pool.
func Open(dsn string) (Log, *sql.DB, error) {
	pool, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("store: open: %w", err)
	}

	pool.SetMaxOpenConns(10)
	pool.SetMaxIdleConns(5)
	pool.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := pool.PingContext(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("store: ping: %w", err)
	}

	return &postgresLog{pool: pool}, pool, nil
}

func (l *postgresLog) RecordSubmission(ctx context.Context, sub lead.Submission, adminSent, clientSent bool) error {
	features := pqtype.NullRawMessage{}
	if len(sub.Features) > 0 {
		raw, err := json.Marshal(sub.Features)
		if err != nil {
			return fmt.Errorf("store: marshal features: %w", err)
		}
		features = pqtype.NullRawMessage{RawMessage: raw, Valid: true}
	}

	const q = `
		INSERT INTO lead_log (
			id, kind, name, email, phone, company, country, industry,
			subject, message, preferred_contact,
			project_type, budget, timeline, description, features,
			final_price, admin_email_sent, client_email_sent, submitted_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8,
			$9, $10, $11,
			$12, $13, $14, $15, $16,
			$17, $18, $19, $20
		)`

	_, err := l.pool.ExecContext(ctx, q,
		sub.ID, string(sub.Kind), sub.Name, sub.Email,
		nullString(sub.Phone), nullString(sub.Company),
		nullString(sub.Country), nullString(sub.Industry),
		nullString(sub.Subject), nullString(sub.Message), nullString(sub.PreferredContact),
		nullString(sub.ProjectType), nullString(sub.Budget),
		nullString(sub.Timeline), nullString(sub.Description), features,
		sub.FinalPrice, adminSent, clientSent, sub.SubmittedAt,
	)
	if err != nil {
		return fmt.Errorf("store: insert submission %s: %w", sub.ID, err)
	}
	return nil
}

func (l *postgresLog) MarkPaid(ctx context.Context, invoiceID, checkoutSessionID string, amountCents int64) error {
	const q = `
		INSERT INTO payment_log (invoice_id, checkout_session_id, amount_cents, paid_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (checkout_session_id) DO NOTHING`

	_, err := l.pool.ExecContext(ctx, q, invoiceID, checkoutSessionID, amountCents)
	if err != nil {
		return fmt.Errorf("store: mark paid %s: %w", checkoutSessionID, err)
	}
	return nil
}

// nullString converts a Go string to sql.NullString. Empty string → NULL.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
