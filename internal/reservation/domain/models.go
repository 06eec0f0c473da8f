package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
)

// Status is the lifecycle state a booking channel reports for a reservation.
type Status string

const (
	StatusNew       Status = "new"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusInquiry   Status = "inquiry"
	StatusExpired   Status = "expired"
	StatusDeclined  Status = "declined"
	StatusUnknown   Status = "unknown"
)

// ValidStatuses lists every status the engine accepts from upstream feeds.
var ValidStatuses = []Status{
	StatusNew,
	StatusConfirmed,
	StatusCompleted,
	StatusCancelled,
	StatusInquiry,
	StatusExpired,
	StatusDeclined,
	StatusUnknown,
}

// NormalizeStatus maps raw channel statuses onto the engine's enumeration.
// The legacy "accepted" status is folded into confirmed.
func NormalizeStatus(raw string) Status {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "new":
		return StatusNew
	case "confirmed", "accepted":
		return StatusConfirmed
	case "completed":
		return StatusCompleted
	case "cancelled", "canceled":
		return StatusCancelled
	case "inquiry":
		return StatusInquiry
	case "expired":
		return StatusExpired
	case "declined":
		return StatusDeclined
	default:
		return StatusUnknown
	}
}

// InvalidStatusError reports a status outside the accepted enumeration.
type InvalidStatusError struct {
	Value string
}

func (e *InvalidStatusError) Error() string {
	valid := make([]string, 0, len(ValidStatuses))
	for _, s := range ValidStatuses {
		valid = append(valid, string(s))
	}
	return fmt.Sprintf("invalid reservation status %q, valid: %s", e.Value, strings.Join(valid, ", "))
}

// ParseStatus validates a raw status string, accepting the legacy "accepted"
// alias, and returns the normalized value.
func ParseStatus(raw string) (Status, error) {
	trimmed := strings.ToLower(strings.TrimSpace(raw))
	if trimmed == "accepted" {
		return StatusConfirmed, nil
	}
	for _, s := range ValidStatuses {
		if trimmed == string(s) {
			return s, nil
		}
	}
	return StatusUnknown, &InvalidStatusError{Value: raw}
}

// CountsTowardPayout reports whether a reservation in this status
// participates in financial totals.
func (s Status) CountsTowardPayout() bool {
	return s == StatusConfirmed
}

// Reservation is a booking fetched from the PMS integration. Records are
// immutable inside the calculation engine; adjustments are carried on
// derived statement lines.
type Reservation struct {
	ID               snowflake.ID `gorm:"primaryKey" json:"id"`
	ConfirmationCode string       `gorm:"uniqueIndex" json:"confirmation_code"`
	PropertyID       int64        `gorm:"not null;index" json:"property_id"`
	Channel          string       `gorm:"type:text" json:"channel"`
	Status           Status       `gorm:"type:text;not null;index" json:"status"`

	CheckIn  time.Time `gorm:"not null;index" json:"check_in"`
	CheckOut time.Time `gorm:"not null;index" json:"check_out"`
	Nights   int       `gorm:"not null" json:"nights"`

	BaseRate      float64 `json:"base_rate"`
	CleaningFee   float64 `json:"cleaning_fee"`
	PlatformFees  float64 `json:"platform_fees"`
	TaxAmount     float64 `json:"tax_amount"`
	ClientRevenue float64 `json:"client_revenue"`

	// HasDetailedFinance marks reservations whose itemized amounts were
	// populated by the channel rather than derived.
	HasDetailedFinance bool `json:"has_detailed_finance"`

	// BookedAt is the channel-side creation timestamp, used for
	// fee-schedule transition decisions.
	BookedAt  time.Time `gorm:"not null" json:"booked_at"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Reservation) TableName() string { return "reservations" }

// ChannelAirbnb is the booking channel that remits occupancy tax itself.
const ChannelAirbnb = "airbnb"

// IsAirbnb reports whether the reservation came through Airbnb.
func (r Reservation) IsAirbnb() bool {
	return strings.EqualFold(strings.TrimSpace(r.Channel), ChannelAirbnb)
}

// StayDatesError reports inconsistent check-in/check-out/night data.
type StayDatesError struct {
	ReservationID snowflake.ID
	CheckIn       time.Time
	CheckOut      time.Time
	Nights        int
}

func (e *StayDatesError) Error() string {
	return fmt.Sprintf("reservation %s has inconsistent stay dates: check_in=%s check_out=%s nights=%d",
		e.ReservationID, e.CheckIn.Format("2006-01-02"), e.CheckOut.Format("2006-01-02"), e.Nights)
}

// Validate enforces the stay-date invariant: check-out on or after check-in
// and a night count equal to the day difference.
func (r Reservation) Validate() error {
	if r.CheckOut.Before(r.CheckIn) {
		return &StayDatesError{ReservationID: r.ID, CheckIn: r.CheckIn, CheckOut: r.CheckOut, Nights: r.Nights}
	}
	days := int(r.CheckOut.Sub(r.CheckIn).Hours() / 24)
	if r.Nights != days {
		return &StayDatesError{ReservationID: r.ID, CheckIn: r.CheckIn, CheckOut: r.CheckOut, Nights: r.Nights}
	}
	return nil
}
