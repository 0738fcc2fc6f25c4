// Package payments defines the interface for Stripe Checkout calls and
// webhook verification. The concrete implementation wraps the official
// stripe-go SDK; tests inject a stub.
package payments

import (
	"context"
	"encoding/json"
	"fmt"
)

// CreateSessionParams holds the inputs for creating a Checkout Session.
// AmountCents is the full project price in cents — the single place where
// the dollar→cent conversion has already happened.
type CreateSessionParams struct {
	AmountCents int64
	Currency    string
	Name        string // line-item name, e.g. "E-commerce Store"
	Description string // line-item description shown on the Stripe page
	Email       string
	SuccessURL  string
	CancelURL   string
	Metadata    map[string]string
}

// Session is the subset of a Stripe Checkout Session that callers need.
type Session struct {
	ID          string
	URL         string
	AmountTotal int64
}

// Event is a parsed Stripe webhook event. DataRaw contains the raw JSON of
// the event's data.object so handlers can unmarshal only what they need.
type Event struct {
	ID      string
	Type    string
	DataRaw json.RawMessage
}

// Client is the interface the api package uses for all Stripe calls.
type Client interface {
	// CreateCheckoutSession creates a hosted payment page for the amount and
	// returns its URL for browser redirection.
	CreateCheckoutSession(ctx context.Context, p CreateSessionParams) (Session, error)

	// VerifyWebhook validates the Stripe-Signature header and returns the
	// parsed event. Returns an error if the signature is invalid or expired.
	VerifyWebhook(payload []byte, sigHeader string, secret string) (Event, error)
}

// CompletedSession is the slice of a checkout.session.completed payload the
// webhook handler consumes.
type CompletedSession struct {
	ID            string `json:"id"`
	AmountTotal   int64  `json:"amount_total"`
	CustomerEmail string `json:"customer_email"`
	CustomerName  string
	InvoiceID     string
	Description   string
}

// ExtractCompletedSession pulls the fields the webhook handler needs from a
// checkout.session.completed event.
func ExtractCompletedSession(event Event) (CompletedSession, error) {
	var obj struct {
		ID              string `json:"id"`
		AmountTotal     int64  `json:"amount_total"`
		CustomerEmail   string `json:"customer_email"`
		CustomerDetails struct {
			Email string `json:"email"`
			Name  string `json:"name"`
		} `json:"customer_details"`
		Metadata map[string]string `json:"metadata"`
	}
	if err := json.Unmarshal(event.DataRaw, &obj); err != nil {
		return CompletedSession{}, fmt.Errorf("payments: unmarshal checkout session: %w", err)
	}
	if obj.ID == "" {
		return CompletedSession{}, fmt.Errorf("payments: checkout session id is empty in event %s", event.ID)
	}

	cs := CompletedSession{
		ID:            obj.ID,
		AmountTotal:   obj.AmountTotal,
		CustomerEmail: obj.CustomerEmail,
		CustomerName:  obj.CustomerDetails.Name,
		InvoiceID:     obj.Metadata["invoice_id"],
		Description:   obj.Metadata["description"],
	}
	if cs.CustomerEmail == "" {
		cs.CustomerEmail = obj.CustomerDetails.Email
	}
	return cs, nil
}
