// Package notify implements the dual-recipient notification dispatch for one
// submission: an admin alert to the agency inbox and a confirmation to the
// requester. The two sends are independent — failure of one never blocks the
// other, and the dispatch as a whole never fails.
package notify

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/draftlinestudio/leads-backend/internal/email"
	"github.com/draftlinestudio/leads-backend/internal/lead"
)

// Outcome reports, per recipient, whether the notification email was
// delivered. It is returned directly in the HTTP response envelope; it is
// never persisted by this package.
type Outcome struct {
	Admin  bool   `json:"admin"`
	Client bool   `json:"client"`
	Error  string `json:"error,omitempty"`
}

// Dispatcher sends the two notification emails for a submission through the
// configured Sender.
type Dispatcher struct {
	sender    email.Sender
	adminAddr string
	timeout   time.Duration
	logger    *slog.Logger
}

// New constructs a Dispatcher. adminAddr is the internal recipient for lead
// alerts (ESTIMATE_RECIPIENT_EMAIL). timeout bounds each individual send.
func New(sender email.Sender, adminAddr string, timeout time.Duration, logger *slog.Logger) *Dispatcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Dispatcher{
		sender:    sender,
		adminAddr: adminAddr,
		timeout:   timeout,
		logger:    logger,
	}
}

// Notify attempts both sends and reports per-recipient success. It never
// returns an error: provider failures are logged, folded into the Outcome
// flags, and joined into Outcome.Error for the response body.
//
// There are no retries and no idempotency — calling Notify twice sends two
// full sets of emails. Duplicate-submission defense lives in the rate
// limiter, not here.
func (d *Dispatcher) Notify(ctx context.Context, sub lead.Submission) Outcome {
	var out Outcome
	var errs []string

	out.Admin = d.send(ctx, email.RoleAdmin, d.adminAddr, sub, &errs)
	out.Client = d.send(ctx, email.RoleClient, sub.Email, sub, &errs)

	if len(errs) > 0 {
		out.Error = strings.Join(errs, "; ")
	}
	return out
}

func (d *Dispatcher) send(ctx context.Context, role email.Role, to string, sub lead.Submission, errs *[]string) bool {
	subject, htmlBody, textBody := email.Render(role, sub)

	sendCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	msgID, err := d.sender.Send(sendCtx, email.Message{
		To:      to,
		Subject: subject,
		HTML:    htmlBody,
		Text:    textBody,
	})
	if err != nil {
		d.logger.Error("notify: send failed",
			"role", string(role),
			"to", to,
			"submission_id", sub.ID,
			"error", err,
		)
		*errs = append(*errs, string(role)+": "+err.Error())
		return false
	}

	d.logger.Info("notify: sent",
		"role", string(role),
		"to", to,
		"submission_id", sub.ID,
		"message_id", msgID,
	)
	return true
}
