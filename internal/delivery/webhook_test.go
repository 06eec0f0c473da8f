package delivery

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestWebhookMailerPostsDelivery(t *testing.T) {
	var received webhookPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Errorf("read body: %v", err)
		}
		if err := json.Unmarshal(body, &received); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	mailer := NewWebhookMailer(srv.URL)
	err := mailer.Send(context.Background(), Message{
		Recipient:   "owner@example.com",
		Subject:     "Owner statement 2024-06-04 to 2024-06-10",
		StatementID: "12345",
		Body:        []byte(`{"totals":{"owner_payout":930}}`),
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if received.Recipient != "owner@example.com" {
		t.Fatalf("recipient = %q", received.Recipient)
	}
	if received.StatementID != "12345" {
		t.Fatalf("statement id = %q", received.StatementID)
	}
	if len(received.Statement) == 0 {
		t.Fatal("expected statement detail in payload")
	}
}

func TestWebhookMailerRejectsServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	mailer := NewWebhookMailer(srv.URL)
	err := mailer.Send(context.Background(), Message{
		Recipient: "owner@example.com",
		Body:      []byte(`{}`),
	})
	if err == nil {
		t.Fatal("expected error for 502 response")
	}
}
