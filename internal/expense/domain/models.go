package domain

import (
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
)

// DefaultCategory is applied when an expense arrives without one.
const DefaultCategory = "General"

// Expense is a dated monetary entry from the accounting integration or a
// spreadsheet upload. Positive amounts are upsells/credits, negative or
// absolute-valued amounts are costs. Read-only to the calculation engine.
type Expense struct {
	ID            snowflake.ID `gorm:"primaryKey" json:"id"`
	UploadBatchID uuid.UUID    `gorm:"type:uuid;index" json:"upload_batch_id"`

	// PropertyID is nil for shared/unassigned expenses.
	PropertyID *int64 `gorm:"index" json:"property_id"`

	Date        time.Time `gorm:"not null;index" json:"date"`
	Amount      float64   `gorm:"not null" json:"amount"`
	Description string    `gorm:"type:text" json:"description"`
	Vendor      string    `gorm:"type:text" json:"vendor"`
	Category    string    `gorm:"type:text" json:"category"`
	Type        string    `gorm:"type:text" json:"type"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (Expense) TableName() string { return "expenses" }

// Normalize fills documented defaults on optional fields.
func (e *Expense) Normalize() {
	if strings.TrimSpace(e.Category) == "" {
		e.Category = DefaultCategory
	}
}

// MatchesKeyword reports whether the expense's description, vendor,
// category, or type contains the keyword, case-insensitively. Rule dispatch
// is deliberately substring-based to stay faithful to legacy data.
func (e Expense) MatchesKeyword(keywords ...string) bool {
	haystacks := []string{e.Description, e.Vendor, e.Category, e.Type}
	for _, haystack := range haystacks {
		lowered := strings.ToLower(haystack)
		for _, keyword := range keywords {
			if strings.Contains(lowered, strings.ToLower(keyword)) {
				return true
			}
		}
	}
	return false
}

// IsUpsell reports whether the expense is an upsell: a positive amount or an
// explicit upsell type/category.
func (e Expense) IsUpsell() bool {
	if e.Amount > 0 {
		return true
	}
	return strings.EqualFold(strings.TrimSpace(e.Type), "upsell") ||
		strings.EqualFold(strings.TrimSpace(e.Category), "upsell")
}
