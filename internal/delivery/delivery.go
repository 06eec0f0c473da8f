// Package delivery sends finished statements to owners, guarded so a
// negative payout can never go out without human review.
package delivery

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/hostfolio/payout/internal/events"
	"github.com/hostfolio/payout/internal/logger"
	"github.com/hostfolio/payout/internal/observability/metrics"
	"github.com/hostfolio/payout/internal/statement/domain"
)

// Message is one outbound statement delivery.
type Message struct {
	Recipient   string
	Subject     string
	StatementID string
	Body        []byte
}

// Mailer sends statement messages to owners.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// LogMailer records deliveries to the log instead of sending them. The
// default in development and tests.
type LogMailer struct {
	Log *zap.Logger
}

// Send logs the delivery.
func (m LogMailer) Send(ctx context.Context, msg Message) error {
	log := m.Log
	if log == nil {
		log = logger.FromContext(ctx)
	}
	log.Info("statement delivery",
		zap.String("recipient", msg.Recipient),
		zap.String("statement_id", msg.StatementID),
		zap.String("subject", msg.Subject),
		zap.Int("body_bytes", len(msg.Body)),
	)
	return nil
}

// BlockedDeliveryError reports a delivery refused by the guard.
type BlockedDeliveryError struct {
	StatementID string
	OwnerPayout float64
	Reason      string
}

func (e *BlockedDeliveryError) Error() string {
	return fmt.Sprintf("statement %s delivery blocked (%s): owner payout %.2f", e.StatementID, e.Reason, e.OwnerPayout)
}

const reasonNegativePayout = "negative_owner_payout"

// ErrMissingRecipient reports a delivery request without a destination.
var ErrMissingRecipient = errors.New("missing_recipient")

// Guard wraps a Mailer and refuses to deliver statements whose payout is
// negative.
type Guard struct {
	mailer  Mailer
	log     *zap.Logger
	outbox  *events.Outbox
	metrics *metrics.StatementMetrics
}

// NewGuard constructs a delivery guard.
func NewGuard(mailer Mailer, log *zap.Logger, outbox *events.Outbox) *Guard {
	return &Guard{
		mailer:  mailer,
		log:     log.Named("delivery.guard"),
		outbox:  outbox,
		metrics: metrics.Statement(),
	}
}

// Deliver sends a statement to the recipient, or refuses with a
// BlockedDeliveryError when the owner payout is negative.
func (g *Guard) Deliver(ctx context.Context, stmt *domain.Statement, recipient string) error {
	if stmt == nil {
		return domain.ErrStatementNotFound
	}

	if stmt.OwnerPayout < 0 {
		blocked := &BlockedDeliveryError{
			StatementID: stmt.ID.String(),
			OwnerPayout: stmt.OwnerPayout,
			Reason:      reasonNegativePayout,
		}
		g.metrics.IncDeliveryBlocked()
		g.log.Warn("statement delivery blocked",
			zap.String("statement_id", blocked.StatementID),
			zap.Float64("owner_payout", blocked.OwnerPayout),
		)
		if g.outbox != nil {
			payload := events.StatementPayload{
				StatementID: stmt.ID.String(),
				OwnerID:     fmt.Sprintf("%d", stmt.OwnerID),
				PeriodStart: stmt.PeriodStart.Format("2006-01-02"),
				PeriodEnd:   stmt.PeriodEnd.Format("2006-01-02"),
				OwnerPayout: stmt.OwnerPayout,
			}
			if err := g.outbox.Publish(ctx, events.Event{
				OwnerID:   stmt.OwnerID,
				Type:      events.EventStatementDeliveryBlocked,
				Payload:   payload.ToMap(),
				DedupeKey: fmt.Sprintf("%s:%s", events.EventStatementDeliveryBlocked, stmt.Checksum),
			}); err != nil {
				g.log.Warn("publish blocked-delivery event failed", zap.Error(err))
			}
		}
		return blocked
	}

	msg := Message{
		Recipient:   strings.TrimSpace(recipient),
		Subject:     deliverySubject(stmt),
		StatementID: stmt.ID.String(),
		Body:        stmt.Detail,
	}
	if msg.Recipient == "" {
		return ErrMissingRecipient
	}
	if err := g.mailer.Send(ctx, msg); err != nil {
		return fmt.Errorf("send statement %s: %w", stmt.ID, err)
	}

	g.log.Info("statement delivered",
		zap.String("statement_id", stmt.ID.String()),
		zap.String("recipient", msg.Recipient),
	)
	return nil
}

func deliverySubject(stmt *domain.Statement) string {
	return fmt.Sprintf("Owner statement %s to %s",
		stmt.PeriodStart.Format("2006-01-02"),
		stmt.PeriodEnd.Format("2006-01-02"))
}
