package events

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// OutboxEvent is the stored outbox row. Writes go through raw SQL so the
// dedupe conflict clause stays explicit; the model exists for migration.
type OutboxEvent struct {
	ID        snowflake.ID      `gorm:"primaryKey"`
	OwnerID   int64             `gorm:"not null;uniqueIndex:idx_payout_events_dedupe"`
	EventType string            `gorm:"type:text;not null"`
	Payload   datatypes.JSONMap `gorm:"type:jsonb"`
	DedupeKey *string           `gorm:"uniqueIndex:idx_payout_events_dedupe"`
	Published bool              `gorm:"not null;default:false"`
	CreatedAt time.Time         `gorm:"not null"`
}

// TableName sets the database table name.
func (OutboxEvent) TableName() string { return "payout_events" }

// Event describes a payout event to store in the outbox.
type Event struct {
	OwnerID   int64
	Type      string
	Payload   map[string]any
	DedupeKey string
}

// Outbox inserts payout events into the payout_events table.
type Outbox struct {
	db    *gorm.DB
	genID *snowflake.Node
}

func NewOutbox(db *gorm.DB, genID *snowflake.Node) *Outbox {
	return &Outbox{db: db, genID: genID}
}

// Publish stores an event using the default database connection.
func (o *Outbox) Publish(ctx context.Context, event Event) error {
	return o.publish(ctx, o.db, event)
}

// PublishTx stores an event using an existing transaction.
func (o *Outbox) PublishTx(ctx context.Context, tx *gorm.DB, event Event) error {
	if tx == nil {
		return errors.New("missing_transaction")
	}
	return o.publish(ctx, tx, event)
}

func (o *Outbox) publish(ctx context.Context, db *gorm.DB, event Event) error {
	if o == nil || db == nil || o.genID == nil {
		return errors.New("outbox_unavailable")
	}
	if event.OwnerID == 0 {
		return errors.New("invalid_owner_id")
	}
	name := strings.TrimSpace(event.Type)
	if name == "" {
		return errors.New("missing_event_type")
	}

	payload := datatypes.JSONMap{}
	for key, value := range event.Payload {
		if strings.TrimSpace(key) == "" {
			continue
		}
		payload[key] = value
	}

	dedupe := strings.TrimSpace(event.DedupeKey)
	var dedupeValue any
	if dedupe != "" {
		dedupeValue = dedupe
	}

	now := time.Now().UTC()
	return db.WithContext(ctx).Exec(
		`INSERT INTO payout_events (id, owner_id, event_type, payload, dedupe_key, published, created_at)
		 VALUES (?, ?, ?, ?, ?, false, ?)
		 ON CONFLICT (owner_id, dedupe_key) DO NOTHING`,
		o.genID.Generate(),
		event.OwnerID,
		name,
		payload,
		dedupeValue,
		now,
	).Error
}
