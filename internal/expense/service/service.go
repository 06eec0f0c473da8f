package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/hostfolio/payout/internal/clock"
	"github.com/hostfolio/payout/internal/events"
	"github.com/hostfolio/payout/internal/expense/dedupe"
	"github.com/hostfolio/payout/internal/expense/domain"
	"github.com/hostfolio/payout/internal/observability/metrics"
	"github.com/hostfolio/payout/internal/period"
)

// ExpenseInput is one row of an uploaded expense sheet.
type ExpenseInput struct {
	PropertyID  *int64  `json:"property_id"`
	Date        string  `json:"date"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
	Vendor      string  `json:"vendor"`
	Category    string  `json:"category"`
	Type        string  `json:"type"`
}

// IngestRequest is one expense upload batch.
type IngestRequest struct {
	OwnerID  int64          `json:"owner_id"`
	Expenses []ExpenseInput `json:"expenses"`
}

// IngestResult reports what an upload produced. Duplicate warnings are
// advisory: every row is stored, flagged pairs are surfaced for review.
type IngestResult struct {
	UploadBatchID     uuid.UUID        `json:"upload_batch_id"`
	Stored            []domain.Expense `json:"stored"`
	DuplicateWarnings []dedupe.Warning `json:"duplicate_warnings,omitempty"`
}

// Service ingests expense upload batches.
type Service interface {
	Ingest(ctx context.Context, req IngestRequest) (*IngestResult, error)
}

var (
	ErrEmptyBatch     = errors.New("empty_expense_batch")
	ErrInvalidOwnerID = errors.New("invalid_owner_id")
)

type service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	clock   clock.Clock
	outbox  *events.Outbox
	metrics *metrics.StatementMetrics
}

// NewService constructs the expense ingestion service.
func NewService(db *gorm.DB, log *zap.Logger, genID *snowflake.Node, clk clock.Clock, outbox *events.Outbox) Service {
	if clk == nil {
		clk = clock.SystemClock{}
	}
	return &service{
		db:      db,
		log:     log.Named("expense.service"),
		genID:   genID,
		clock:   clk,
		outbox:  outbox,
		metrics: metrics.Statement(),
	}
}

// Ingest validates, stores, and duplicate-checks one upload batch.
func (s *service) Ingest(ctx context.Context, req IngestRequest) (*IngestResult, error) {
	log := s.log

	if req.OwnerID == 0 {
		return nil, ErrInvalidOwnerID
	}
	if len(req.Expenses) == 0 {
		return nil, ErrEmptyBatch
	}

	batchID := uuid.New()
	now := s.clock.Now().UTC()

	incoming := make([]domain.Expense, 0, len(req.Expenses))
	for _, input := range req.Expenses {
		date, err := period.ParseDate(input.Date)
		if err != nil {
			return nil, err
		}
		expense := domain.Expense{
			ID:            s.genID.Generate(),
			UploadBatchID: batchID,
			PropertyID:    input.PropertyID,
			Date:          date,
			Amount:        input.Amount,
			Description:   input.Description,
			Vendor:        input.Vendor,
			Category:      input.Category,
			Type:          input.Type,
			CreatedAt:     now,
		}
		expense.Normalize()
		incoming = append(incoming, expense)
	}

	existing, err := s.loadNeighbors(ctx, incoming)
	if err != nil {
		return nil, err
	}
	warnings := dedupe.FindDuplicates(existing, incoming)

	if err := s.db.WithContext(ctx).Create(&incoming).Error; err != nil {
		return nil, fmt.Errorf("store expenses: %w", err)
	}

	s.metrics.AddWarnings("duplicate_expense", len(warnings))

	if s.outbox != nil {
		payload := events.ExpenseBatchPayload{
			UploadBatchID:     batchID.String(),
			RecordCount:       len(incoming),
			DuplicateWarnings: len(warnings),
		}
		if err := s.outbox.Publish(ctx, events.Event{
			OwnerID:   req.OwnerID,
			Type:      events.EventExpensesIngested,
			Payload:   payload.ToMap(),
			DedupeKey: fmt.Sprintf("%s:%s", events.EventExpensesIngested, batchID),
		}); err != nil {
			log.Warn("publish expense batch event failed", zap.Error(err))
		}
	}

	log.Info("expense batch ingested",
		zap.String("upload_batch_id", batchID.String()),
		zap.Int("records", len(incoming)),
		zap.Int("duplicate_warnings", len(warnings)),
	)

	return &IngestResult{
		UploadBatchID:     batchID,
		Stored:            incoming,
		DuplicateWarnings: warnings,
	}, nil
}

// loadNeighbors fetches stored expenses near the batch's date range so the
// duplicate check has candidates to compare against.
func (s *service) loadNeighbors(ctx context.Context, incoming []domain.Expense) ([]domain.Expense, error) {
	min, max := incoming[0].Date, incoming[0].Date
	for _, expense := range incoming[1:] {
		if expense.Date.Before(min) {
			min = expense.Date
		}
		if expense.Date.After(max) {
			max = expense.Date
		}
	}

	var existing []domain.Expense
	if err := s.db.WithContext(ctx).
		Where("date >= ? AND date <= ?", min.AddDate(0, 0, -1), max.AddDate(0, 0, 1)).
		Find(&existing).Error; err != nil {
		return nil, fmt.Errorf("load expense neighbors: %w", err)
	}
	return existing, nil
}
