package email

import (
	"context"
	"fmt"
	"log/slog"
)

// fallbackSender wraps two Sender implementations. It calls the primary
// first; if that returns an error it logs the failure and tries the
// secondary. Which provider is primary is decided once at startup in
// main.go — never per call.
type fallbackSender struct {
	primary   Sender
	secondary Sender
	logger    *slog.Logger
}

// NewFallbackSender returns a Sender that calls primary and, on failure,
// falls back to secondary. Either argument may be nil — if primary is nil it
// goes straight to secondary; if secondary is nil and primary fails, the
// primary error is returned directly.
func NewFallbackSender(primary, secondary Sender, logger *slog.Logger) Sender {
	return &fallbackSender{
		primary:   primary,
		secondary: secondary,
		logger:    logger,
	}
}

func (f *fallbackSender) Send(ctx context.Context, m Message) (string, error) {
	if f.primary != nil {
		id, err := f.primary.Send(ctx, m)
		if err == nil {
			return id, nil
		}
		f.logger.Warn("email: primary provider failed, trying secondary",
			"error", err,
			"to", m.To,
		)
		if f.secondary == nil {
			return "", fmt.Errorf("email: primary failed and no secondary configured: %w", err)
		}
	}

	return f.secondary.Send(ctx, m)
}
