package cashier

import (
	"errors"
	"testing"
)

func TestChipBreakdownValue(test *testing.T) {
	test.Parallel()
	breakdown := mustChips(test, 50, 20, 0, 0)
	if breakdown.Value() != 15000 {
		test.Fatalf("expected value 15000, got %d", breakdown.Value())
	}
	if breakdown.Count() != 70 {
		test.Fatalf("expected 70 chips, got %d", breakdown.Count())
	}
}

func TestChipBreakdownRejectsNegativeCount(test *testing.T) {
	test.Parallel()
	_, err := NewChipBreakdown(-1, 0, 0, 0)
	if !errors.Is(err, ErrInvalidChipBreakdown) {
		test.Fatalf("expected ErrInvalidChipBreakdown, got %v", err)
	}
}

func TestChipBreakdownAdd(test *testing.T) {
	test.Parallel()
	combined := mustChips(test, 10, 5, 0, 0).Add(mustChips(test, 2, 0, 1, 0))
	expected := mustChips(test, 12, 5, 1, 0)
	if combined != expected {
		test.Fatalf("expected %v, got %v", expected, combined)
	}
}

func TestChipBreakdownPortionRoundsDown(test *testing.T) {
	test.Parallel()
	breakdown := mustChips(test, 30, 0, 0, 0) // worth 3000
	portion := breakdown.Portion(1000)
	if portion.Chips100 != 10 {
		test.Fatalf("expected 10 chips attributed, got %d", portion.Chips100)
	}
	uneven := mustChips(test, 3, 1, 0, 0) // worth 800
	attributed := uneven.Portion(500)
	if attributed.Value() > 500 {
		test.Fatalf("attributed value %d exceeds portion", attributed.Value())
	}
}

func TestChipBreakdownPortionFullCoversEverything(test *testing.T) {
	test.Parallel()
	breakdown := mustChips(test, 3, 1, 0, 0)
	if portion := breakdown.Portion(breakdown.Value()); portion != breakdown {
		test.Fatalf("expected full breakdown, got %v", portion)
	}
	if portion := breakdown.Portion(0); !portion.IsZero() {
		test.Fatalf("expected zero portion, got %v", portion)
	}
}

func TestChipBreakdownString(test *testing.T) {
	test.Parallel()
	if got := mustChips(test, 50, 20, 0, 0).String(); got != "100x50 500x20" {
		test.Fatalf("unexpected rendering %q", got)
	}
	if got := (ChipBreakdown{}).String(); got != "none" {
		test.Fatalf("expected none, got %q", got)
	}
}
