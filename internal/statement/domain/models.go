package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Statement is one computed owner payout statement. Never mutated after
// assembly; recalculating a period replaces the stored row wholesale.
type Statement struct {
	ID      snowflake.ID `gorm:"primaryKey" json:"id"`
	OwnerID int64        `gorm:"not null;index" json:"owner_id"`

	PropertyIDs datatypes.JSONSlice[int64] `gorm:"not null" json:"property_ids"`

	PeriodStart time.Time `gorm:"not null;index" json:"period_start"`
	PeriodEnd   time.Time `gorm:"not null;index" json:"period_end"`
	Type        string    `gorm:"type:text;not null" json:"type"`
	FeeSchedule string    `gorm:"type:text;not null" json:"fee_schedule"`

	TotalRevenue     float64 `json:"total_revenue"`
	TotalExpenses    float64 `json:"total_expenses"`
	TotalUpsells     float64 `json:"total_upsells"`
	PMCommission     float64 `json:"pm_commission"`
	PMPercentage     float64 `json:"pm_percentage"`
	TechFees         float64 `json:"tech_fees"`
	InsuranceFees    float64 `json:"insurance_fees"`
	TotalCleaningFee float64 `json:"total_cleaning_fee"`
	OwnerPayout      float64 `json:"owner_payout"`
	PropertyCount    int     `json:"property_count"`

	// Detail holds the full line-item breakdown (annotated reservations,
	// classified expenses, warnings) as produced by the engine.
	Detail datatypes.JSON `gorm:"type:jsonb" json:"detail"`

	// Checksum identifies the owner/property-set/period/type combination;
	// recalculation upserts on it.
	Checksum string `gorm:"uniqueIndex;not null" json:"-"`

	GeneratedAt time.Time `gorm:"not null" json:"generated_at"`
	CreatedAt   time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Statement) TableName() string { return "statements" }
