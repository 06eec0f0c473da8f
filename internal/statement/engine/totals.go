package engine

import (
	"math"

	listingdomain "github.com/hostfolio/payout/internal/listing/domain"
)

// Flat per-property fee amounts, the unified engine convention.
const (
	FlatTechFeePerProperty      = 50.0
	FlatInsuranceFeePerProperty = 25.0
)

// WeeksPerMonth amortizes legacy per-owner monthly fees onto weekly
// statements.
const WeeksPerMonth = 4.33

// aggregate folds reservation lines and classified expenses into the totals
// block. Accumulation stays unrounded; rounding happens at assembly.
func aggregate(
	lines []ReservationLine,
	expenses classifiedExpenses,
	profiles map[int64]listingdomain.ListingProfile,
	propertyIDs []int64,
	schedule FeeSchedule,
	floorNegative bool,
) Totals {
	totals := Totals{PropertyCount: len(propertyIDs)}

	var payoutSum float64
	for _, line := range lines {
		if !line.RevenueExcluded {
			totals.TotalRevenue += line.Revenue
		}
		if !line.CommissionWaived {
			totals.PMCommission += line.Revenue * line.CommissionPercent / 100
		}
		totals.TotalCleaningFee += line.CleaningDeduction
		payoutSum += line.GrossPayout
	}

	if totals.TotalRevenue > 0 {
		totals.PMPercentage = totals.PMCommission / totals.TotalRevenue * 100
	} else {
		totals.PMPercentage = listingdomain.DefaultCommissionPercent
	}

	totals.TechFees, totals.InsuranceFees = feeTotals(profiles, propertyIDs, schedule)

	totals.TotalExpenses = expenses.totalExpenses
	totals.TotalUpsells = expenses.totalUpsells

	totals.OwnerPayout = payoutSum + totals.TotalUpsells - totals.TotalExpenses
	if floorNegative && totals.OwnerPayout < 0 {
		totals.OwnerPayout = 0
	}
	return totals
}

// feeTotals computes tech/insurance fees under the selected schedule. The
// legacy schedule amortizes per-owner monthly amounts by 4.33 weeks per
// month; properties without configured amounts fall back to the flat
// per-property fees.
func feeTotals(profiles map[int64]listingdomain.ListingProfile, propertyIDs []int64, schedule FeeSchedule) (tech, insurance float64) {
	for _, id := range propertyIDs {
		profile, ok := profiles[id]
		if schedule == FeeScheduleLegacy && ok && profile.MonthlyTechFee != nil {
			tech += *profile.MonthlyTechFee / WeeksPerMonth
		} else {
			tech += FlatTechFeePerProperty
		}
		if schedule == FeeScheduleLegacy && ok && profile.MonthlyInsuranceFee != nil {
			insurance += *profile.MonthlyInsuranceFee / WeeksPerMonth
		} else {
			insurance += FlatInsuranceFeePerProperty
		}
	}
	return tech, insurance
}

// cleaningMismatch compares pass-through cleanings implied by reservations
// against cleaning expenses recorded for the period. Nil when they agree.
func cleaningMismatch(lines []ReservationLine, expenses classifiedExpenses) *CleaningMismatchWarning {
	var reservationCleanings int
	for _, line := range lines {
		if line.CleaningDeduction > 0 {
			reservationCleanings++
		}
	}
	if reservationCleanings == 0 && expenses.cleaningExpenseCount == 0 {
		return nil
	}
	if reservationCleanings == expenses.cleaningExpenseCount {
		return nil
	}
	return &CleaningMismatchWarning{
		ReservationCleanings: reservationCleanings,
		ExpenseCleanings:     expenses.cleaningExpenseCount,
		Difference:           reservationCleanings - expenses.cleaningExpenseCount,
	}
}

// round2 rounds half-up to two decimal places.
func round2(v float64) float64 {
	return math.Floor(v*100+0.5) / 100
}

func (t Totals) rounded() Totals {
	t.TotalRevenue = round2(t.TotalRevenue)
	t.TotalExpenses = round2(t.TotalExpenses)
	t.TotalUpsells = round2(t.TotalUpsells)
	t.PMCommission = round2(t.PMCommission)
	t.PMPercentage = round2(t.PMPercentage)
	t.TechFees = round2(t.TechFees)
	t.InsuranceFees = round2(t.InsuranceFees)
	t.TotalCleaningFee = round2(t.TotalCleaningFee)
	t.OwnerPayout = round2(t.OwnerPayout)
	return t
}
