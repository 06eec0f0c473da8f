package engine

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/hostfolio/payout/internal/expense/dedupe"
	expensedomain "github.com/hostfolio/payout/internal/expense/domain"
	listingdomain "github.com/hostfolio/payout/internal/listing/domain"
	reservationdomain "github.com/hostfolio/payout/internal/reservation/domain"
)

func baseInput() Input {
	res := stay(1, date(2024, time.June, 7), 3, 1000)
	res.CheckOut = date(2024, time.June, 10)
	res.TaxAmount = 80
	return Input{
		Reservations: []reservationdomain.Reservation{res},
		Profiles:     map[int64]listingdomain.ListingProfile{1: {CommissionPercent: ptr(15.0)}},
		PropertyIDs:  []int64{1},
		PeriodStart:  date(2024, time.June, 4),
		PeriodEnd:    date(2024, time.June, 10),
		Type:         CalculationTypeCheckout,
	}
}

func TestEndToEndCheckoutScenario(t *testing.T) {
	result, err := Calculate(baseInput())
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}

	if result.Totals.TotalRevenue != 1000 {
		t.Fatalf("expected revenue 1000, got %v", result.Totals.TotalRevenue)
	}
	if result.Totals.PMCommission != 150 {
		t.Fatalf("expected commission 150, got %v", result.Totals.PMCommission)
	}
	if result.Totals.OwnerPayout != 930 {
		t.Fatalf("expected owner payout 930, got %v", result.Totals.OwnerPayout)
	}
	if result.Totals.PMPercentage != 15 {
		t.Fatalf("expected pm percentage 15, got %v", result.Totals.PMPercentage)
	}
	if result.Totals.TechFees != 50 || result.Totals.InsuranceFees != 25 {
		t.Fatalf("expected flat fees 50/25, got %v/%v", result.Totals.TechFees, result.Totals.InsuranceFees)
	}
	if result.Totals.PropertyCount != 1 {
		t.Fatalf("expected property count 1, got %d", result.Totals.PropertyCount)
	}
}

func TestIdempotentCalculation(t *testing.T) {
	in := baseInput()
	first, err := Calculate(in)
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	second, err := Calculate(in)
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}

	left, err := json.Marshal(first)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	right, err := json.Marshal(second)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !bytes.Equal(left, right) {
		t.Fatalf("expected byte-identical results on identical inputs")
	}
}

func TestCheckoutBoundaryInclusion(t *testing.T) {
	in := baseInput()

	onStart := stay(1, date(2024, time.June, 1), 3, 500)
	onStart.CheckOut = date(2024, time.June, 4)
	outside := stay(1, date(2024, time.June, 8), 3, 700)
	outside.CheckOut = date(2024, time.June, 11)
	in.Reservations = append(in.Reservations, onStart, outside)

	result, err := Calculate(in)
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	if len(result.Reservations) != 2 {
		t.Fatalf("expected boundary checkout included and later one excluded, got %d lines", len(result.Reservations))
	}
}

func TestCancelledReservationsExcluded(t *testing.T) {
	in := baseInput()
	cancelled := stay(1, date(2024, time.June, 6), 4, 800)
	cancelled.CheckOut = date(2024, time.June, 10)
	cancelled.Status = reservationdomain.StatusCancelled
	legacy := stay(1, date(2024, time.June, 5), 5, 600)
	legacy.CheckOut = date(2024, time.June, 10)
	legacy.Status = reservationdomain.Status("accepted")
	in.Reservations = append(in.Reservations, cancelled, legacy)

	result, err := Calculate(in)
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	if len(result.Reservations) != 2 {
		t.Fatalf("expected confirmed + legacy accepted, got %d", len(result.Reservations))
	}
	if result.Totals.TotalRevenue != 1600 {
		t.Fatalf("expected 1000 + 600 revenue, got %v", result.Totals.TotalRevenue)
	}
}

func TestReservationsSortedByCheckIn(t *testing.T) {
	in := baseInput()
	earlier := stay(1, date(2024, time.June, 2), 8, 400)
	earlier.CheckOut = date(2024, time.June, 10)
	in.Reservations = append(in.Reservations, earlier)

	result, err := Calculate(in)
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	if len(result.Reservations) != 2 {
		t.Fatalf("expected two lines, got %d", len(result.Reservations))
	}
	if !result.Reservations[0].Reservation.CheckIn.Equal(date(2024, time.June, 2)) {
		t.Fatalf("expected earliest check-in first")
	}
}

func TestMissingProfileFailsLoudly(t *testing.T) {
	in := baseInput()
	in.PropertyIDs = []int64{1, 99}

	_, err := Calculate(in)
	var missing *MissingProfileError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingProfileError, got %v", err)
	}
	if missing.PropertyID != 99 {
		t.Fatalf("expected offending property 99, got %d", missing.PropertyID)
	}
}

func TestInvalidCommissionRejected(t *testing.T) {
	in := baseInput()
	in.Profiles[1] = listingdomain.ListingProfile{PropertyID: 1, CommissionPercent: ptr(130.0)}

	_, err := Calculate(in)
	var rangeErr *listingdomain.CommissionRangeError
	if !errors.As(err, &rangeErr) {
		t.Fatalf("expected CommissionRangeError, got %v", err)
	}
}

func TestInvalidWindowRejected(t *testing.T) {
	in := baseInput()
	in.PeriodStart = date(2024, time.June, 10)
	in.PeriodEnd = date(2024, time.June, 4)
	if _, err := Calculate(in); err == nil {
		t.Fatalf("expected inverted window to fail")
	}
}

func TestNegativePayoutFlooredOnlyWhenRequested(t *testing.T) {
	in := baseInput()
	big := expensedomain.Expense{Date: date(2024, time.June, 5), Amount: -5000, Description: "roof repair"}
	in.Expenses = []expensedomain.Expense{big}

	unfloored, err := Calculate(in)
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	if unfloored.Totals.OwnerPayout >= 0 {
		t.Fatalf("expected negative payout to pass through, got %v", unfloored.Totals.OwnerPayout)
	}

	in.FloorNegativePayout = true
	floored, err := Calculate(in)
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	if floored.Totals.OwnerPayout != 0 {
		t.Fatalf("expected floored payout of 0, got %v", floored.Totals.OwnerPayout)
	}
}

func TestZeroRevenueDefaultsPMPercentage(t *testing.T) {
	in := baseInput()
	in.Reservations = nil
	result, err := Calculate(in)
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	if result.Totals.PMPercentage != 15 {
		t.Fatalf("expected default 15%% on zero revenue, got %v", result.Totals.PMPercentage)
	}
}

func TestLegacyFeeSchedule(t *testing.T) {
	in := baseInput()
	in.FeeSchedule = FeeScheduleLegacy
	in.Profiles[1] = listingdomain.ListingProfile{
		PropertyID:          1,
		CommissionPercent:   ptr(15.0),
		MonthlyTechFee:      ptr(216.5),
		MonthlyInsuranceFee: ptr(108.25),
	}

	result, err := Calculate(in)
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	if math.Abs(result.Totals.TechFees-50) > 1e-9 {
		t.Fatalf("expected 216.5/4.33 = 50, got %v", result.Totals.TechFees)
	}
	if math.Abs(result.Totals.InsuranceFees-25) > 1e-9 {
		t.Fatalf("expected 108.25/4.33 = 25, got %v", result.Totals.InsuranceFees)
	}
}

func TestLegacyFeeScheduleFallsBackToFlat(t *testing.T) {
	in := baseInput()
	in.FeeSchedule = FeeScheduleLegacy

	result, err := Calculate(in)
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	if result.Totals.TechFees != 50 || result.Totals.InsuranceFees != 25 {
		t.Fatalf("expected flat fallback 50/25, got %v/%v", result.Totals.TechFees, result.Totals.InsuranceFees)
	}
}

func TestCoHostOnAirbnbAggregation(t *testing.T) {
	in := baseInput()
	in.Profiles[1] = listingdomain.ListingProfile{PropertyID: 1, CommissionPercent: ptr(15.0), CoHostOnAirbnb: true}
	res := in.Reservations[0]
	res.Channel = "airbnb"
	in.Reservations = []reservationdomain.Reservation{res}

	result, err := Calculate(in)
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	if result.Totals.TotalRevenue != 0 {
		t.Fatalf("co-hosted airbnb revenue must not count, got %v", result.Totals.TotalRevenue)
	}
	if result.Totals.OwnerPayout != -150 {
		t.Fatalf("expected payout of -commission = -150, got %v", result.Totals.OwnerPayout)
	}
}

func TestCleaningMismatchWarning(t *testing.T) {
	in := baseInput()
	in.Profiles[1] = listingdomain.ListingProfile{PropertyID: 1, CommissionPercent: ptr(15.0), CleaningPassThrough: true}
	res := in.Reservations[0]
	res.CleaningFee = 173
	in.Reservations = []reservationdomain.Reservation{res}

	result, err := Calculate(in)
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	if result.CleaningMismatch == nil {
		t.Fatalf("expected a cleaning mismatch warning")
	}
	if result.CleaningMismatch.ReservationCleanings != 1 || result.CleaningMismatch.ExpenseCleanings != 0 {
		t.Fatalf("unexpected counts: %+v", result.CleaningMismatch)
	}
	if result.CleaningMismatch.Difference != 1 {
		t.Fatalf("expected signed difference 1, got %d", result.CleaningMismatch.Difference)
	}
	if result.Totals.TotalCleaningFee != 155 {
		t.Fatalf("expected reverse-engineered cleaning total 155, got %v", result.Totals.TotalCleaningFee)
	}

	// A matching cleaning expense clears the warning.
	cleaning := expenseOn(1, date(2024, time.June, 9), -90)
	cleaning.Category = "Cleaning"
	in.Expenses = []expensedomain.Expense{cleaning}
	result, err = Calculate(in)
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	if result.CleaningMismatch != nil {
		t.Fatalf("expected no warning when counts agree, got %+v", result.CleaningMismatch)
	}
}

func TestDuplicateWarningsPassThrough(t *testing.T) {
	in := baseInput()
	in.DuplicateWarnings = []dedupe.Warning{{Confidence: dedupe.ConfidencePossible}}
	result, err := Calculate(in)
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	if len(result.DuplicateWarnings) != 1 {
		t.Fatalf("expected side-list preserved, got %d", len(result.DuplicateWarnings))
	}
}

func TestUpsellsAndExpensesInPayout(t *testing.T) {
	in := baseInput()
	upsell := expenseOn(1, date(2024, time.June, 6), 45)
	upsell.Type = "upsell"
	cost := expenseOn(1, date(2024, time.June, 6), -120)
	cost.Category = "maintenance"
	in.Expenses = []expensedomain.Expense{upsell, cost}

	result, err := Calculate(in)
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	want := 930.0 + 45 - 120
	if result.Totals.OwnerPayout != want {
		t.Fatalf("expected payout %v, got %v", want, result.Totals.OwnerPayout)
	}
}
