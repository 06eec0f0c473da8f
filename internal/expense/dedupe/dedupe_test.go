package dedupe

import (
	"testing"
	"time"

	expensedomain "github.com/hostfolio/payout/internal/expense/domain"
)

func expense(desc string, amount float64, date time.Time) expensedomain.Expense {
	return expensedomain.Expense{Description: desc, Amount: amount, Date: date}
}

func TestFindDuplicatesExactMatchIsHighConfidence(t *testing.T) {
	day := time.Date(2024, time.June, 5, 0, 0, 0, 0, time.UTC)
	existing := []expensedomain.Expense{expense("Pool service", -80, day)}
	incoming := []expensedomain.Expense{expense("pool service", -80, day)}

	warnings := FindDuplicates(existing, incoming)
	if len(warnings) != 1 {
		t.Fatalf("expected 1 warning, got %d", len(warnings))
	}
	if warnings[0].Confidence != ConfidenceHigh {
		t.Fatalf("expected high confidence, got %s", warnings[0].Confidence)
	}
}

func TestFindDuplicatesSubstringAndNearValues(t *testing.T) {
	day := time.Date(2024, time.June, 5, 0, 0, 0, 0, time.UTC)
	existing := []expensedomain.Expense{expense("Pool service - June", -80, day)}
	incoming := []expensedomain.Expense{expense("pool service", -80.01, day.AddDate(0, 0, 1))}

	warnings := FindDuplicates(existing, incoming)
	if len(warnings) != 1 {
		t.Fatalf("expected 1 warning, got %d", len(warnings))
	}
	if warnings[0].Confidence != ConfidencePossible {
		t.Fatalf("expected possible confidence, got %s", warnings[0].Confidence)
	}
}

func TestFindDuplicatesRespectsTolerances(t *testing.T) {
	day := time.Date(2024, time.June, 5, 0, 0, 0, 0, time.UTC)
	existing := []expensedomain.Expense{expense("Pool service", -80, day)}

	offAmount := []expensedomain.Expense{expense("pool service", -80.02, day)}
	if got := FindDuplicates(existing, offAmount); len(got) != 0 {
		t.Fatalf("expected amount outside tolerance to be ignored, got %d warnings", len(got))
	}

	offDate := []expensedomain.Expense{expense("pool service", -80, day.AddDate(0, 0, 2))}
	if got := FindDuplicates(existing, offDate); len(got) != 0 {
		t.Fatalf("expected date outside tolerance to be ignored, got %d warnings", len(got))
	}

	offDesc := []expensedomain.Expense{expense("lawn care", -80, day)}
	if got := FindDuplicates(existing, offDesc); len(got) != 0 {
		t.Fatalf("expected unrelated description to be ignored, got %d warnings", len(got))
	}
}
