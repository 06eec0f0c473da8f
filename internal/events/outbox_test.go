package events

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestOutbox(t *testing.T) (*Outbox, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&OutboxEvent{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}
	return NewOutbox(db, node), db
}

func countEvents(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var count int64
	if err := db.Model(&OutboxEvent{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return count
}

func TestPublishStoresEvent(t *testing.T) {
	outbox, db := newTestOutbox(t)

	err := outbox.Publish(context.Background(), Event{
		OwnerID:   42,
		Type:      EventStatementGenerated,
		Payload:   map[string]any{"statement_id": "123"},
		DedupeKey: "statement.generated:abc",
	})
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if got := countEvents(t, db); got != 1 {
		t.Fatalf("rows = %d, want 1", got)
	}

	var stored OutboxEvent
	if err := db.First(&stored).Error; err != nil {
		t.Fatalf("load: %v", err)
	}
	if stored.EventType != EventStatementGenerated {
		t.Fatalf("event type = %q", stored.EventType)
	}
	if stored.Published {
		t.Fatal("new events must start unpublished")
	}
}

func TestPublishDeduplicatesOnKey(t *testing.T) {
	outbox, db := newTestOutbox(t)

	event := Event{
		OwnerID:   42,
		Type:      EventStatementGenerated,
		Payload:   map[string]any{"statement_id": "123"},
		DedupeKey: "statement.generated:abc",
	}
	if err := outbox.Publish(context.Background(), event); err != nil {
		t.Fatalf("first Publish: %v", err)
	}
	if err := outbox.Publish(context.Background(), event); err != nil {
		t.Fatalf("second Publish: %v", err)
	}
	if got := countEvents(t, db); got != 1 {
		t.Fatalf("rows = %d, want 1 after dedupe", got)
	}

	// Same key for a different owner is a different event.
	other := event
	other.OwnerID = 43
	if err := outbox.Publish(context.Background(), other); err != nil {
		t.Fatalf("other-owner Publish: %v", err)
	}
	if got := countEvents(t, db); got != 2 {
		t.Fatalf("rows = %d, want 2", got)
	}
}

func TestPublishValidation(t *testing.T) {
	outbox, _ := newTestOutbox(t)

	if err := outbox.Publish(context.Background(), Event{Type: EventExpensesIngested}); err == nil {
		t.Fatal("expected error for missing owner id")
	}
	if err := outbox.Publish(context.Background(), Event{OwnerID: 42}); err == nil {
		t.Fatal("expected error for missing event type")
	}
	if err := outbox.PublishTx(context.Background(), nil, Event{OwnerID: 42, Type: EventExpensesIngested}); err == nil {
		t.Fatal("expected error for nil transaction")
	}
}
