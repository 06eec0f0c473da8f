package engine

import (
	"sort"

	"github.com/hostfolio/payout/internal/period"
	reservationdomain "github.com/hostfolio/payout/internal/reservation/domain"
)

// filterReservations selects the reservations that settle in the period:
// property membership, confirmed status, and (in checkout mode) a check-out
// date inside the window, inclusive at both ends. Calendar-mode membership
// is decided upstream by the proration pre-processor, so only property and
// status checks apply. The result is sorted by check-in date; ties keep
// their original order.
func filterReservations(
	reservations []reservationdomain.Reservation,
	properties map[int64]struct{},
	window period.Window,
	calcType CalculationType,
) []reservationdomain.Reservation {
	filtered := make([]reservationdomain.Reservation, 0, len(reservations))
	for _, res := range reservations {
		if _, ok := properties[res.PropertyID]; !ok {
			continue
		}
		if !reservationdomain.NormalizeStatus(string(res.Status)).CountsTowardPayout() {
			continue
		}
		if calcType == CalculationTypeCheckout && !window.Contains(res.CheckOut) {
			continue
		}
		filtered = append(filtered, res)
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].CheckIn.Before(filtered[j].CheckIn)
	})
	return filtered
}

func propertySet(ids []int64) map[int64]struct{} {
	set := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
