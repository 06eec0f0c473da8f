package events

// Payout event types published to the outbox for downstream rollups and
// delivery tooling.
const (
	EventStatementGenerated       = "statement.generated"
	EventStatementDeliveryBlocked = "statement.delivery_blocked"
	EventExpensesIngested         = "expenses.ingested"
)

// StatementPayload captures the minimal data needed to reference a
// generated statement.
type StatementPayload struct {
	StatementID string  `json:"statement_id"`
	OwnerID     string  `json:"owner_id"`
	PeriodStart string  `json:"period_start"`
	PeriodEnd   string  `json:"period_end"`
	OwnerPayout float64 `json:"owner_payout"`
}

// ToMap converts a payload into an outbox-friendly map.
func (p StatementPayload) ToMap() map[string]any {
	return map[string]any{
		"statement_id": p.StatementID,
		"owner_id":     p.OwnerID,
		"period_start": p.PeriodStart,
		"period_end":   p.PeriodEnd,
		"owner_payout": p.OwnerPayout,
	}
}

// ExpenseBatchPayload captures the minimal data for an ingested upload
// batch.
type ExpenseBatchPayload struct {
	UploadBatchID     string `json:"upload_batch_id"`
	RecordCount       int    `json:"record_count"`
	DuplicateWarnings int    `json:"duplicate_warnings"`
}

// ToMap converts a payload into an outbox-friendly map.
func (p ExpenseBatchPayload) ToMap() map[string]any {
	return map[string]any{
		"upload_batch_id":    p.UploadBatchID,
		"record_count":       p.RecordCount,
		"duplicate_warnings": p.DuplicateWarnings,
	}
}
