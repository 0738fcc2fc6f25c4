package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// webhookClient forwards the message as JSON to a configured endpoint (e.g.
// a Zapier/Make hook or an internal relay) instead of talking to a mail
// provider directly. Any 2xx response counts as delivered.
type webhookClient struct {
	url        string
	fromAddr   string
	fromName   string
	httpClient *http.Client
}

// NewWebhookClient returns a Sender that POSTs messages to url.
func NewWebhookClient(url, fromAddr, fromName string, timeout time.Duration) Sender {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &webhookClient{
		url:      url,
		fromAddr: fromAddr,
		fromName: fromName,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type webhookPayload struct {
	MessageID string `json:"message_id"`
	FromAddr  string `json:"from_addr"`
	FromName  string `json:"from_name"`
	To        string `json:"to"`
	Subject   string `json:"subject"`
	HTML      string `json:"html"`
	Text      string `json:"text"`
}

func (c *webhookClient) Send(ctx context.Context, m Message) (string, error) {
	// The hook has no message IDs of its own, so we mint one for correlation.
	id := uuid.NewString()

	bodyBytes, err := json.Marshal(webhookPayload{
		MessageID: id,
		FromAddr:  c.fromAddr,
		FromName:  c.fromName,
		To:        m.To,
		Subject:   m.Subject,
		HTML:      m.HTML,
		Text:      m.Text,
	})
	if err != nil {
		return "", fmt.Errorf("email: marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("email: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("email: webhook request: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4*1024))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("email: webhook returned status %d", resp.StatusCode)
	}

	return id, nil
}
