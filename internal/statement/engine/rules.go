package engine

import (
	"fmt"
	"math"

	listingdomain "github.com/hostfolio/payout/internal/listing/domain"
	"github.com/hostfolio/payout/internal/period"
	reservationdomain "github.com/hostfolio/payout/internal/reservation/domain"
)

// applyRules runs the per-reservation financial rule pipeline. Order
// matters: later rules consume the results of earlier ones.
func applyRules(
	res reservationdomain.Reservation,
	profile listingdomain.ListingProfile,
	window period.Window,
	calcType CalculationType,
) ReservationLine {
	line := ReservationLine{
		Reservation:     res,
		OriginalRevenue: res.ClientRevenue,
		Revenue:         res.ClientRevenue,
	}

	// 1. Co-hosting split.
	if profile.CoHost {
		if profile.CoHostPercent != nil && *profile.CoHostPercent > 0 {
			line.Revenue = res.ClientRevenue * (*profile.CoHostPercent / 100)
		}
		if profile.CoHostFixedFee != nil {
			line.Revenue -= *profile.CoHostFixedFee
		}
		if line.Revenue < 0 {
			line.Revenue = 0
		}
		line.CoHostAdjusted = true
	}

	// 2. Long-stay proration.
	if profile.ProrationEnabled && res.Nights >= profile.ProrationThreshold() {
		line.Revenue = line.Revenue * (profile.ProrationPercent / 100)
		if profile.ProrationMaxAmount != nil && line.Revenue > *profile.ProrationMaxAmount {
			line.Revenue = *profile.ProrationMaxAmount
		}
		line.Prorated = true
		line.ProrationReason = fmt.Sprintf("long stay of %d nights prorated at %.2f%%", res.Nights, profile.ProrationPercent)
	}

	// 3. Effective commission rate, honoring a fee-schedule transition
	// keyed on the reservation's creation timestamp.
	line.CommissionPercent = profile.EffectiveCommissionPercent(res.BookedAt)

	// 4. Commission waiver. The rate stays reported for transparency; only
	// the deducted amount is zeroed.
	line.CommissionWaived = profile.CommissionWaived(window.End)
	if !line.CommissionWaived {
		line.Commission = line.Revenue * line.CommissionPercent / 100
	}

	// 5. Tax responsibility pass-through. Airbnb remits tax itself unless
	// the listing explicitly passes it through.
	taxOwed := res.TaxAmount
	if profile.DisregardTax {
		taxOwed = 0
	} else if res.IsAirbnb() && !profile.AirbnbPassThroughTax {
		taxOwed = 0
	}
	line.TaxPassThrough = taxOwed

	// 7. Reverse-engineered cleaning fee pass-through. In calendar mode a
	// check-out past the period end means the cleaning has not happened in
	// this statement yet.
	if profile.CleaningPassThrough && res.CleaningFee > 0 {
		pastPeriod := calcType == CalculationTypeCalendar && period.DateOf(res.CheckOut).After(window.End)
		if !pastPeriod {
			line.CleaningDeduction = ReverseCleaningFee(res.CleaningFee, line.CommissionPercent)
		}
	}

	// 6. Co-host-on-Airbnb: the platform pays the owner directly, so only
	// the PM's cut and the cleaning pass-through flow through this
	// statement.
	if res.IsAirbnb() && profile.CoHostOnAirbnb {
		line.RevenueExcluded = true
		line.GrossPayout = -line.Commission - line.CleaningDeduction
		return line
	}

	line.GrossPayout = line.Revenue - line.Commission + line.TaxPassThrough - line.CleaningDeduction
	return line
}

// ReverseCleaningFee derives the owner-facing cleaning cost from the
// guest-paid fee: back out the commission markup, then round up to the
// nearest $5.
func ReverseCleaningFee(guestPaidFee, commissionPercent float64) float64 {
	base := guestPaidFee / (1 + commissionPercent/100)
	return math.Ceil(base/5) * 5
}
