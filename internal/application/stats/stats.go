// Package stats computes the aggregate counters shown above each collection:
// per-status counts, percentages and money totals.
package stats

import (
	"sort"

	"github.com/erp/posconsole/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Summary is the payload of the /stats endpoints
type Summary struct {
	Total    int64            `json:"total"`
	ByStatus map[string]int64 `json:"by_status"`
	Amount   decimal.Decimal  `json:"amount"`
}

// Count returns the number of records with the given status
func (s Summary) Count(status string) int64 {
	return s.ByStatus[status]
}

// Breakdown returns the per-status shares of the summary
func (s Summary) Breakdown() []StatusShare {
	return StatusBreakdown(s.ByStatus)
}

// StatusShare is one row of a status breakdown
type StatusShare struct {
	Status  string
	Count   int64
	Percent float64
}

// StatusBreakdown converts per-status counts into shares sorted by count
// (descending, then status name). Percentages have one decimal place and are
// distributed by largest remainder so that they add up to exactly 100 for a
// non-empty total. A zero total yields 0% for every status.
func StatusBreakdown(counts map[string]int64) []StatusShare {
	shares := make([]StatusShare, 0, len(counts))
	var total int64
	for status, count := range counts {
		if count < 0 {
			count = 0
		}
		total += count
		shares = append(shares, StatusShare{Status: status, Count: count})
	}
	sort.Slice(shares, func(i, j int) bool {
		if shares[i].Count != shares[j].Count {
			return shares[i].Count > shares[j].Count
		}
		return shares[i].Status < shares[j].Status
	})
	if total == 0 {
		return shares
	}

	// work in tenths of a percent
	const scale = 1000
	tenths := make([]int64, len(shares))
	remainders := make([]int64, len(shares))
	var allotted int64
	for i, sh := range shares {
		tenths[i] = sh.Count * scale / total
		remainders[i] = sh.Count * scale % total
		allotted += tenths[i]
	}
	order := make([]int, len(shares))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return remainders[order[a]] > remainders[order[b]]
	})
	for k := 0; allotted < scale && k < len(order); k++ {
		tenths[order[k]]++
		allotted++
	}
	for i := range shares {
		shares[i].Percent = float64(tenths[i]) / 10
	}
	return shares
}

// Percent returns part/total as a percentage rounded to one decimal place
func Percent(part, total int64) float64 {
	if total <= 0 {
		return 0
	}
	return float64((part*1000+total/2)/total) / 10
}

// SumDecimal totals a money field over items with decimal arithmetic
func SumDecimal[T any](items []T, fn func(T) decimal.Decimal) decimal.Decimal {
	sum := decimal.Zero
	for _, item := range items {
		sum = sum.Add(fn(item))
	}
	return sum
}

// CountByStatus counts records per status
func CountByStatus[T shared.Record](items []T) map[string]int64 {
	counts := make(map[string]int64)
	for _, item := range items {
		counts[item.RecordStatus()]++
	}
	return counts
}

// Summarize builds a Summary from fully loaded records.
// amount may be nil when the collection has no money field.
func Summarize[T shared.Record](items []T, amount func(T) decimal.Decimal) Summary {
	s := Summary{
		Total:    int64(len(items)),
		ByStatus: CountByStatus(items),
		Amount:   decimal.Zero,
	}
	if amount != nil {
		s.Amount = SumDecimal(items, amount)
	}
	return s
}
