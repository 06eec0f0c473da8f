package domain

import (
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
)

// DefaultCommissionPercent applies when a listing has no configured rate.
const DefaultCommissionPercent = 15.0

// DefaultProrationMinNights is the stay length at which long-stay proration
// kicks in unless the listing overrides it.
const DefaultProrationMinNights = 28

// ListingProfile is the per-property rule configuration the statement
// pipeline consumes. Supplied by property configuration storage and treated
// as read-only by the engine.
type ListingProfile struct {
	ID         snowflake.ID `gorm:"primaryKey" json:"id"`
	PropertyID int64        `gorm:"not null;uniqueIndex" json:"property_id"`
	OwnerID    int64        `gorm:"not null;index" json:"owner_id"`

	// CommissionPercent is the PM commission rate; nil means the owner
	// default applies.
	CommissionPercent *float64 `json:"commission_percent"`

	// FutureCommissionPercent/From describe a fee-schedule transition:
	// reservations created on or after From are charged the new rate.
	FutureCommissionPercent *float64   `json:"future_commission_percent"`
	FutureCommissionFrom    *time.Time `json:"future_commission_from"`

	CoHost         bool     `gorm:"not null;default:false" json:"co_host"`
	CoHostPercent  *float64 `json:"co_host_percent"`
	CoHostFixedFee *float64 `json:"co_host_fixed_fee"`

	DisregardTax         bool `gorm:"not null;default:false" json:"disregard_tax"`
	AirbnbPassThroughTax bool `gorm:"not null;default:false" json:"airbnb_pass_through_tax"`

	CleaningPassThrough bool    `gorm:"not null;default:false" json:"cleaning_pass_through"`
	DefaultCleaningFee  float64 `json:"default_cleaning_fee"`

	WaiveCommission      bool       `gorm:"not null;default:false" json:"waive_commission"`
	WaiveCommissionUntil *time.Time `json:"waive_commission_until"`

	CoHostOnAirbnb bool `gorm:"not null;default:false" json:"co_host_on_airbnb"`

	ProrationEnabled   bool     `gorm:"not null;default:false" json:"proration_enabled"`
	ProrationMinNights int      `json:"proration_min_nights"`
	ProrationPercent   float64  `json:"proration_percent"`
	ProrationMaxAmount *float64 `json:"proration_max_amount"`

	// Legacy per-owner monthly fee amounts, amortized by /4.33 under the
	// legacy fee schedule. Nil falls back to the flat per-property schedule.
	MonthlyTechFee      *float64 `json:"monthly_tech_fee"`
	MonthlyInsuranceFee *float64 `json:"monthly_insurance_fee"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (ListingProfile) TableName() string { return "listing_profiles" }

// CommissionRangeError reports a commission percentage outside [0,100].
type CommissionRangeError struct {
	PropertyID int64
	Percent    float64
}

func (e *CommissionRangeError) Error() string {
	return fmt.Sprintf("listing profile for property %d has commission percent %.2f outside [0,100]", e.PropertyID, e.Percent)
}

// Validate enforces profile invariants.
func (p ListingProfile) Validate() error {
	if p.CommissionPercent != nil && (*p.CommissionPercent < 0 || *p.CommissionPercent > 100) {
		return &CommissionRangeError{PropertyID: p.PropertyID, Percent: *p.CommissionPercent}
	}
	if p.FutureCommissionPercent != nil && (*p.FutureCommissionPercent < 0 || *p.FutureCommissionPercent > 100) {
		return &CommissionRangeError{PropertyID: p.PropertyID, Percent: *p.FutureCommissionPercent}
	}
	return nil
}

// EffectiveCommissionPercent resolves the commission rate for a reservation
// created at bookedAt, honoring a pending fee-schedule transition.
func (p ListingProfile) EffectiveCommissionPercent(bookedAt time.Time) float64 {
	base := DefaultCommissionPercent
	if p.CommissionPercent != nil {
		base = *p.CommissionPercent
	}
	if p.FutureCommissionPercent != nil && p.FutureCommissionFrom != nil && !bookedAt.Before(*p.FutureCommissionFrom) {
		return *p.FutureCommissionPercent
	}
	return base
}

// CommissionWaived reports whether the waiver is active for a statement
// period ending on periodEnd. An absent expiry means indefinite; a set
// expiry is compared inclusively at end of day.
func (p ListingProfile) CommissionWaived(periodEnd time.Time) bool {
	if !p.WaiveCommission {
		return false
	}
	if p.WaiveCommissionUntil == nil {
		return true
	}
	expiry := p.WaiveCommissionUntil.AddDate(0, 0, 1)
	return periodEnd.Before(expiry)
}

// ProrationThreshold returns the minimum night count for proration.
func (p ListingProfile) ProrationThreshold() int {
	if p.ProrationMinNights > 0 {
		return p.ProrationMinNights
	}
	return DefaultProrationMinNights
}
