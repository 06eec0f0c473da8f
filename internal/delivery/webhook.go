package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/hostfolio/payout/internal/observability/tracing"
)

// WebhookMailer posts statement deliveries to a downstream notification
// service (the piece that actually emails owners).
type WebhookMailer struct {
	URL    string
	Client *http.Client
}

// NewWebhookMailer constructs a WebhookMailer with a traced HTTP client.
func NewWebhookMailer(url string) WebhookMailer {
	return WebhookMailer{
		URL:    url,
		Client: tracing.WrapHTTPClient(&http.Client{Timeout: 15 * time.Second}),
	}
}

type webhookPayload struct {
	Recipient   string          `json:"recipient"`
	Subject     string          `json:"subject"`
	StatementID string          `json:"statement_id"`
	Statement   json.RawMessage `json:"statement"`
}

// Send posts the delivery to the webhook.
func (m WebhookMailer) Send(ctx context.Context, msg Message) error {
	detail := json.RawMessage(msg.Body)
	if len(detail) == 0 {
		detail = json.RawMessage("null")
	}
	body, err := json.Marshal(webhookPayload{
		Recipient:   msg.Recipient,
		Subject:     msg.Subject,
		StatementID: msg.StatementID,
		Statement:   detail,
	})
	if err != nil {
		return fmt.Errorf("encode delivery payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build delivery request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := m.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("post delivery: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("delivery webhook responded %d", resp.StatusCode)
	}
	return nil
}
