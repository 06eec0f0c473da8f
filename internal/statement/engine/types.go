package engine

import (
	"fmt"
	"strings"
	"time"

	"github.com/hostfolio/payout/internal/expense/dedupe"
	expensedomain "github.com/hostfolio/payout/internal/expense/domain"
	listingdomain "github.com/hostfolio/payout/internal/listing/domain"
	"github.com/hostfolio/payout/internal/period"
	reservationdomain "github.com/hostfolio/payout/internal/reservation/domain"
)

// CalculationType selects how reservations are assigned to the period.
type CalculationType string

const (
	// CalculationTypeCheckout includes reservations whose check-out date
	// falls inside the period.
	CalculationTypeCheckout CalculationType = "checkout"
	// CalculationTypeCalendar includes reservations overlapping the
	// period, pre-prorated by the upstream collaborator.
	CalculationTypeCalendar CalculationType = "calendar"
)

// InvalidCalculationTypeError reports an unknown calculation type.
type InvalidCalculationTypeError struct {
	Value string
}

func (e *InvalidCalculationTypeError) Error() string {
	return fmt.Sprintf("invalid calculation type %q, valid: %s, %s",
		e.Value, CalculationTypeCheckout, CalculationTypeCalendar)
}

// ParseCalculationType validates a raw calculation type string.
func ParseCalculationType(raw string) (CalculationType, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case string(CalculationTypeCheckout):
		return CalculationTypeCheckout, nil
	case string(CalculationTypeCalendar):
		return CalculationTypeCalendar, nil
	default:
		return "", &InvalidCalculationTypeError{Value: raw}
	}
}

// FeeSchedule selects how per-statement tech/insurance fees are computed.
type FeeSchedule string

const (
	// FeeScheduleFlat charges $50 tech / $25 insurance per property per
	// statement period.
	FeeScheduleFlat FeeSchedule = "flat"
	// FeeScheduleLegacy amortizes per-owner monthly amounts by 4.33 weeks
	// per month, the pre-unification convention.
	FeeScheduleLegacy FeeSchedule = "legacy"
)

// InvalidFeeScheduleError reports an unknown fee schedule.
type InvalidFeeScheduleError struct {
	Value string
}

func (e *InvalidFeeScheduleError) Error() string {
	return fmt.Sprintf("invalid fee schedule %q, valid: %s, %s",
		e.Value, FeeScheduleFlat, FeeScheduleLegacy)
}

// ParseFeeSchedule validates a raw fee schedule string. Empty selects flat.
func ParseFeeSchedule(raw string) (FeeSchedule, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", string(FeeScheduleFlat):
		return FeeScheduleFlat, nil
	case string(FeeScheduleLegacy):
		return FeeScheduleLegacy, nil
	default:
		return "", &InvalidFeeScheduleError{Value: raw}
	}
}

// MissingProfileError reports a requested property without a listing rule
// profile. Statement calculation never degrades silently on missing
// required configuration.
type MissingProfileError struct {
	PropertyID int64
}

func (e *MissingProfileError) Error() string {
	return fmt.Sprintf("missing listing profile for property %d", e.PropertyID)
}

// Input is one immutable calculation snapshot. All I/O happens before the
// engine runs; the engine itself is a pure function of this struct.
type Input struct {
	Reservations []reservationdomain.Reservation
	Expenses     []expensedomain.Expense
	Profiles     map[int64]listingdomain.ListingProfile
	PropertyIDs  []int64

	PeriodStart time.Time
	PeriodEnd   time.Time
	Type        CalculationType
	FeeSchedule FeeSchedule

	// FloorNegativePayout reproduces the legacy weekly-rules formulation
	// that never lets a payout go below zero. Range statements leave it
	// unset and rely on the delivery guard instead.
	FloorNegativePayout bool

	// DuplicateWarnings is an advisory side-list attached by the expense
	// ingestion collaborator.
	DuplicateWarnings []dedupe.Warning
}

// ReservationLine is a reservation annotated with every rule adjustment the
// pipeline applied. The source reservation is never mutated.
type ReservationLine struct {
	Reservation reservationdomain.Reservation `json:"reservation"`

	OriginalRevenue float64 `json:"original_revenue"`
	Revenue         float64 `json:"revenue"`

	CoHostAdjusted  bool   `json:"co_host_adjusted,omitempty"`
	Prorated        bool   `json:"prorated,omitempty"`
	ProrationReason string `json:"proration_reason,omitempty"`

	CommissionPercent float64 `json:"commission_percent"`
	Commission        float64 `json:"commission"`
	CommissionWaived  bool    `json:"commission_waived,omitempty"`

	TaxPassThrough    float64 `json:"tax_pass_through"`
	CleaningDeduction float64 `json:"cleaning_deduction"`

	// RevenueExcluded marks co-hosted-on-Airbnb reservations whose revenue
	// is paid to the owner directly by the platform.
	RevenueExcluded bool `json:"revenue_excluded,omitempty"`

	GrossPayout float64 `json:"gross_payout"`
}

// ExpenseKind classifies an accepted expense line.
type ExpenseKind string

const (
	ExpenseKindCost   ExpenseKind = "cost"
	ExpenseKindUpsell ExpenseKind = "upsell"
)

// ExpenseLine is an expense annotated with its classification.
type ExpenseLine struct {
	Expense expensedomain.Expense `json:"expense"`
	Kind    ExpenseKind           `json:"kind"`

	// Applied is the value added to the matching total: the raw amount for
	// upsells, the absolute value for costs.
	Applied float64 `json:"applied"`
}

// CleaningMismatchWarning flags a difference between pass-through cleanings
// implied by reservations and cleaning expenses recorded for the same
// properties and period. Informational only.
type CleaningMismatchWarning struct {
	ReservationCleanings int `json:"reservation_cleanings"`
	ExpenseCleanings     int `json:"expense_cleanings"`
	Difference           int `json:"difference"`
}

// Totals is the statement totals block. All values are rounded half-up to
// two decimals at assembly; accumulation is unrounded.
type Totals struct {
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
}

// Result is the assembled statement content. Immutable once returned; a
// recalculation produces a fresh Result.
type Result struct {
	Period            period.Window             `json:"period"`
	Type              CalculationType           `json:"type"`
	Reservations      []ReservationLine         `json:"reservations"`
	Expenses          []ExpenseLine             `json:"expenses"`
	LLCoverExpenses   []ExpenseLine             `json:"ll_cover_expenses"`
	DuplicateWarnings []dedupe.Warning          `json:"duplicate_warnings,omitempty"`
	CleaningMismatch  *CleaningMismatchWarning  `json:"cleaning_mismatch,omitempty"`
	Totals            Totals                    `json:"totals"`
}
