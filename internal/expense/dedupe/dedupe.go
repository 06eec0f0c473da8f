package dedupe

import (
	"math"
	"strings"
	"time"

	expensedomain "github.com/hostfolio/payout/internal/expense/domain"
)

// Confidence labels how strongly a pair looks like the same expense.
type Confidence string

const (
	ConfidenceHigh     Confidence = "high"
	ConfidencePossible Confidence = "possible"
)

// Tolerances for considering two expenses the same underlying charge.
const (
	amountTolerance = 0.01
	dateTolerance   = 24 * time.Hour
)

// Warning pairs two records that are probably the same expense. Detection is
// advisory: nothing is removed, the pair is surfaced for manual review.
type Warning struct {
	Existing   expensedomain.Expense `json:"existing"`
	Incoming   expensedomain.Expense `json:"incoming"`
	Confidence Confidence            `json:"confidence"`
}

// FindDuplicates compares an incoming expense set against existing records
// and flags probable duplicates: amounts within one cent, dates within one
// day, and one description a case-insensitive substring of the other.
func FindDuplicates(existing, incoming []expensedomain.Expense) []Warning {
	var warnings []Warning
	for _, in := range incoming {
		for _, ex := range existing {
			if !amountsMatch(ex.Amount, in.Amount) {
				continue
			}
			if !datesMatch(ex.Date, in.Date) {
				continue
			}
			if !descriptionsMatch(ex.Description, in.Description) {
				continue
			}
			warnings = append(warnings, Warning{
				Existing:   ex,
				Incoming:   in,
				Confidence: scorePair(ex, in),
			})
		}
	}
	return warnings
}

func amountsMatch(a, b float64) bool {
	return math.Abs(a-b) <= amountTolerance
}

func datesMatch(a, b time.Time) bool {
	diff := a.Sub(b)
	if diff < 0 {
		diff = -diff
	}
	return diff <= dateTolerance
}

func descriptionsMatch(a, b string) bool {
	left := strings.ToLower(strings.TrimSpace(a))
	right := strings.ToLower(strings.TrimSpace(b))
	if left == "" || right == "" {
		return false
	}
	return strings.Contains(left, right) || strings.Contains(right, left)
}

func scorePair(a, b expensedomain.Expense) Confidence {
	sameDay := a.Date.Equal(b.Date)
	sameDescription := strings.EqualFold(strings.TrimSpace(a.Description), strings.TrimSpace(b.Description))
	if sameDay && sameDescription && a.Amount == b.Amount {
		return ConfidenceHigh
	}
	return ConfidencePossible
}
