package cashier

import (
	"fmt"
	"strings"
)

// Denomination is one of the four physical chip face values.
type Denomination int64

const (
	Denom100   Denomination = 100
	Denom500   Denomination = 500
	Denom5000  Denomination = 5000
	Denom10000 Denomination = 10000
)

// Denominations lists the face values in ascending order.
var Denominations = [4]Denomination{Denom100, Denom500, Denom5000, Denom10000}

// ChipBreakdown is a fixed per-denomination chip count.
type ChipBreakdown struct {
	Chips100   int64 `json:"chips_100"`
	Chips500   int64 `json:"chips_500"`
	Chips5000  int64 `json:"chips_5000"`
	Chips10000 int64 `json:"chips_10000"`
}

// NewChipBreakdown validates that every count is non-negative.
func NewChipBreakdown(chips100, chips500, chips5000, chips10000 int64) (ChipBreakdown, error) {
	breakdown := ChipBreakdown{
		Chips100:   chips100,
		Chips500:   chips500,
		Chips5000:  chips5000,
		Chips10000: chips10000,
	}
	for _, denomination := range Denominations {
		if breakdown.CountOf(denomination) < 0 {
			return ChipBreakdown{}, fmt.Errorf("%w: negative count for %d", ErrInvalidChipBreakdown, denomination)
		}
	}
	return breakdown, nil
}

// CountOf returns the count for a single denomination.
func (breakdown ChipBreakdown) CountOf(denomination Denomination) int64 {
	switch denomination {
	case Denom100:
		return breakdown.Chips100
	case Denom500:
		return breakdown.Chips500
	case Denom5000:
		return breakdown.Chips5000
	case Denom10000:
		return breakdown.Chips10000
	}
	return 0
}

func (breakdown *ChipBreakdown) setCount(denomination Denomination, count int64) {
	switch denomination {
	case Denom100:
		breakdown.Chips100 = count
	case Denom500:
		breakdown.Chips500 = count
	case Denom5000:
		breakdown.Chips5000 = count
	case Denom10000:
		breakdown.Chips10000 = count
	}
}

// Value returns the total face value of the breakdown.
func (breakdown ChipBreakdown) Value() Amount {
	var total int64
	for _, denomination := range Denominations {
		total += breakdown.CountOf(denomination) * int64(denomination)
	}
	return Amount(total)
}

// Count returns the total number of chips across denominations.
func (breakdown ChipBreakdown) Count() int64 {
	var total int64
	for _, denomination := range Denominations {
		total += breakdown.CountOf(denomination)
	}
	return total
}

// IsZero reports whether every count is zero.
func (breakdown ChipBreakdown) IsZero() bool {
	return breakdown.Count() == 0
}

// Add returns the per-denomination sum of two breakdowns.
func (breakdown ChipBreakdown) Add(other ChipBreakdown) ChipBreakdown {
	result := ChipBreakdown{}
	for _, denomination := range Denominations {
		result.setCount(denomination, breakdown.CountOf(denomination)+other.CountOf(denomination))
	}
	return result
}

// Portion attributes a value slice of the breakdown proportionally per
// denomination, rounding down. Used only for settlement audit trails;
// the attributed face value may undershoot the requested portion.
func (breakdown ChipBreakdown) Portion(portion Amount) ChipBreakdown {
	value := breakdown.Value()
	if value <= 0 || portion <= 0 {
		return ChipBreakdown{}
	}
	if portion >= value {
		return breakdown
	}
	result := ChipBreakdown{}
	for _, denomination := range Denominations {
		count := breakdown.CountOf(denomination) * int64(portion) / int64(value)
		result.setCount(denomination, count)
	}
	return result
}

// String renders the breakdown as "100x50 500x20".
func (breakdown ChipBreakdown) String() string {
	parts := make([]string, 0, len(Denominations))
	for _, denomination := range Denominations {
		count := breakdown.CountOf(denomination)
		if count != 0 {
			parts = append(parts, fmt.Sprintf("%dx%d", denomination, count))
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, " ")
}

// ChipShortage describes one denomination the cashier cannot supply.
type ChipShortage struct {
	Denomination Denomination
	Requested    int64
	Available    int64
}
