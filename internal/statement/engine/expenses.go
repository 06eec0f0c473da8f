package engine

import (
	"math"

	expensedomain "github.com/hostfolio/payout/internal/expense/domain"
	listingdomain "github.com/hostfolio/payout/internal/listing/domain"
	"github.com/hostfolio/payout/internal/period"
)

// classifiedExpenses is the outcome of one classification pass.
type classifiedExpenses struct {
	accepted []ExpenseLine
	llCover  []ExpenseLine

	totalExpenses float64
	totalUpsells  float64

	// cleaningExpenseCount counts cleaning-tagged expenses seen for
	// pass-through properties in the period, for the mismatch warning.
	cleaningExpenseCount int
}

// classifyExpenses routes raw expenses in a single pass. Dispatch is
// case-insensitive substring matching on free-text fields to stay faithful
// to how legacy records are tagged.
func classifyExpenses(
	expenses []expensedomain.Expense,
	properties map[int64]struct{},
	profiles map[int64]listingdomain.ListingProfile,
	window period.Window,
) classifiedExpenses {
	var out classifiedExpenses
	for _, exp := range expenses {
		if exp.PropertyID != nil {
			if _, ok := properties[*exp.PropertyID]; !ok {
				continue
			}
		}
		if !window.Contains(exp.Date) {
			continue
		}

		if exp.MatchesKeyword("ll cover", "llcover") {
			out.llCover = append(out.llCover, ExpenseLine{Expense: exp, Kind: ExpenseKindCost, Applied: 0})
			continue
		}

		if isCleaningOrSupplies(exp) && propertyPassesThroughCleaning(exp, profiles) {
			if exp.MatchesKeyword("cleaning") {
				out.cleaningExpenseCount++
			}
			// Recovered from guests via the cleaning pass-through, so
			// never charged to the owner.
			continue
		}

		line := ExpenseLine{Expense: exp}
		if exp.IsUpsell() {
			line.Kind = ExpenseKindUpsell
			line.Applied = exp.Amount
			out.totalUpsells += exp.Amount
		} else {
			line.Kind = ExpenseKindCost
			line.Applied = math.Abs(exp.Amount)
			out.totalExpenses += line.Applied
		}
		out.accepted = append(out.accepted, line)
	}
	return out
}

func isCleaningOrSupplies(exp expensedomain.Expense) bool {
	return exp.MatchesKeyword("cleaning", "supplies")
}

func propertyPassesThroughCleaning(exp expensedomain.Expense, profiles map[int64]listingdomain.ListingProfile) bool {
	if exp.PropertyID == nil {
		return false
	}
	profile, ok := profiles[*exp.PropertyID]
	return ok && profile.CleaningPassThrough
}
