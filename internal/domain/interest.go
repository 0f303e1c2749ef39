package domain

import (
	"sort"

	"github.com/shopspring/decimal"
)

// InterestScheduleTable maps an installment count to the fixed interest
// percentage charged on the principal.
type InterestScheduleTable map[int]decimal.Decimal

// DefaultInterestSchedule is the tier set offered to customers.
var DefaultInterestSchedule = InterestScheduleTable{
	1: decimal.Zero,
	2: decimal.RequireFromString("2.5"),
	3: decimal.NewFromInt(5),
	4: decimal.RequireFromString("7.5"),
	5: decimal.NewFromInt(10),
}

// Rate returns the interest percentage for count, false when count is not a tier.
func (t InterestScheduleTable) Rate(count int) (decimal.Decimal, bool) {
	rate, ok := t[count]
	return rate, ok
}

// Counts lists the supported installment counts in ascending order.
func (t InterestScheduleTable) Counts() []int {
	counts := make([]int, 0, len(t))
	for count := range t {
		counts = append(counts, count)
	}
	sort.Ints(counts)
	return counts
}
