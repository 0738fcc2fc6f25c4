// Package email defines the interface for transactional email delivery and
// provides the concrete providers: Resend, Brevo, SMTP, and a generic
// webhook forwarder. Exactly one provider is selected at startup (optionally
// wrapped in a fallback chain) — there is no per-call provider branching.
package email

import "context"

// Message is one outbound email. Both an HTML and a plaintext part are
// always supplied.
type Message struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

// Sender is the capability the dispatcher uses to deliver one email.
// Implementations return the provider's message ID on success. Tests inject
// a stub that records calls without hitting the network.
//
// Implementations must be safe to call concurrently and must enforce their
// own delivery timeout so a hung provider cannot stall a request forever.
type Sender interface {
	Send(ctx context.Context, m Message) (messageID string, err error)
}
