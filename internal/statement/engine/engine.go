// Package engine implements the payout statement calculation: period
// assignment, the per-reservation financial rule pipeline, expense
// classification, and totals aggregation. The engine is a pure, synchronous
// computation over one in-memory input snapshot; all I/O belongs to the
// callers.
package engine

import (
	"github.com/hostfolio/payout/internal/period"
)

// Calculate runs the full pipeline and assembles an immutable statement
// result. Input validation failures abort with no partial result;
// data-quality findings are attached as warnings instead.
func Calculate(in Input) (*Result, error) {
	window, err := period.NewWindow(in.PeriodStart, in.PeriodEnd)
	if err != nil {
		return nil, err
	}

	calcType := in.Type
	if calcType == "" {
		calcType = CalculationTypeCheckout
	}
	if _, err := ParseCalculationType(string(calcType)); err != nil {
		return nil, err
	}

	schedule, err := ParseFeeSchedule(string(in.FeeSchedule))
	if err != nil {
		return nil, err
	}

	for _, id := range in.PropertyIDs {
		profile, ok := in.Profiles[id]
		if !ok {
			return nil, &MissingProfileError{PropertyID: id}
		}
		if err := profile.Validate(); err != nil {
			return nil, err
		}
	}
	for _, res := range in.Reservations {
		if err := res.Validate(); err != nil {
			return nil, err
		}
	}

	properties := propertySet(in.PropertyIDs)
	reservations := filterReservations(in.Reservations, properties, window, calcType)

	lines := make([]ReservationLine, 0, len(reservations))
	for _, res := range reservations {
		lines = append(lines, applyRules(res, in.Profiles[res.PropertyID], window, calcType))
	}

	expenses := classifyExpenses(in.Expenses, properties, in.Profiles, window)

	totals := aggregate(lines, expenses, in.Profiles, in.PropertyIDs, schedule, in.FloorNegativePayout)

	return &Result{
		Period:            window,
		Type:              calcType,
		Reservations:      lines,
		Expenses:          expenses.accepted,
		LLCoverExpenses:   expenses.llCover,
		DuplicateWarnings: in.DuplicateWarnings,
		CleaningMismatch:  cleaningMismatch(lines, expenses),
		Totals:            totals.rounded(),
	}, nil
}
