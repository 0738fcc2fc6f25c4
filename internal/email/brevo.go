package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// brevoClient is the concrete Sender backed by the Brevo v3 transactional
// email API.
type brevoClient struct {
	apiKey     string
	fromAddr   string
	fromName   string
	httpClient *http.Client
}

// NewBrevoClient returns a Sender that delivers email via Brevo.
func NewBrevoClient(apiKey, fromAddr, fromName string, timeout time.Duration) Sender {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &brevoClient{
		apiKey:   apiKey,
		fromAddr: fromAddr,
		fromName: fromName,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// ─── BREVO API SHAPES ─────────────────────────────────────────────────────────

type brevoAddress struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type brevoRequest struct {
	Sender      brevoAddress   `json:"sender"`
	To          []brevoAddress `json:"to"`
	Subject     string         `json:"subject"`
	HTMLContent string         `json:"htmlContent"`
	TextContent string         `json:"textContent,omitempty"`
}

type brevoResponse struct {
	MessageID string `json:"messageId"`
	Code      string `json:"code"`
	Message   string `json:"message"`
}

// ─── SENDER IMPLEMENTATION ────────────────────────────────────────────────────

func (c *brevoClient) Send(ctx context.Context, m Message) (string, error) {
	reqBody := brevoRequest{
		Sender:      brevoAddress{Email: c.fromAddr, Name: c.fromName},
		To:          []brevoAddress{{Email: m.To}},
		Subject:     m.Subject,
		HTMLContent: m.HTML,
		TextContent: m.Text,
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("email: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		"https://api.brevo.com/v3/smtp/email",
		bytes.NewReader(bodyBytes),
	)
	if err != nil {
		return "", fmt.Errorf("email: build request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("email: http request: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return "", fmt.Errorf("email: read response: %w", err)
	}

	var parsed brevoResponse
	if err := json.Unmarshal(respBytes, &parsed); err != nil {
		return "", fmt.Errorf("email: unmarshal response (status %d): %w", resp.StatusCode, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if parsed.Code != "" {
			return "", fmt.Errorf("email: Brevo error %s: %s", parsed.Code, parsed.Message)
		}
		return "", fmt.Errorf("email: unexpected status %d: %.200s", resp.StatusCode, string(respBytes))
	}

	return parsed.MessageID, nil
}
