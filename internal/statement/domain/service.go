package domain

import (
	"context"
	"errors"
)

// CalculateRequest describes one statement calculation. Dates are ISO
// calendar dates.
type CalculateRequest struct {
	OwnerID         int64   `json:"owner_id"`
	PropertyIDs     []int64 `json:"property_ids"`
	StartDate       string  `json:"start_date"`
	EndDate         string  `json:"end_date"`
	CalculationType string  `json:"calculation_type"`
	FeeSchedule     string  `json:"fee_schedule"`
}

// Service computes and stores owner payout statements.
type Service interface {
	Calculate(ctx context.Context, req CalculateRequest) (*Statement, error)
	GetByID(ctx context.Context, id string) (*Statement, error)
}

var (
	ErrInvalidPropertySet = errors.New("invalid_property_set")
	ErrInvalidStatementID = errors.New("invalid_statement_id")
	ErrStatementNotFound  = errors.New("statement_not_found")
)
