package analytics

import (
	"math"
	"slices"
)

// Summary holds the descriptive statistics of one group of scores. All
// pointers are nil for an empty group.
type Summary struct {
	Count  int
	Min    *int
	Max    *int
	Avg    *float64
	StdDev *float64
	Median *float64
}

// Describe computes the summary of scores. The standard deviation is the
// population one (divide by n).
func Describe(scores []int) Summary {
	n := len(scores)
	if n == 0 {
		return Summary{}
	}

	sorted := slices.Clone(scores)
	slices.Sort(sorted)

	var sum float64
	for _, s := range sorted {
		sum += float64(s)
	}
	mean := sum / float64(n)

	var sumSq float64
	for _, s := range sorted {
		d := float64(s) - mean
		sumSq += d * d
	}
	std := math.Sqrt(sumSq / float64(n))

	mid := n / 2
	median := float64(sorted[mid])
	if n%2 == 0 {
		median = float64(sorted[mid-1]+sorted[mid]) / 2
	}

	return Summary{
		Count:  n,
		Min:    ptr(sorted[0]),
		Max:    ptr(sorted[n-1]),
		Avg:    ptr(Round2(mean)),
		StdDev: ptr(Round2(std)),
		Median: ptr(Round2(median)),
	}
}

// Mean returns the rounded arithmetic mean, or nil for no values.
func Mean(values []int) *float64 {
	if len(values) == 0 {
		return nil
	}
	var sum float64
	for _, v := range values {
		sum += float64(v)
	}
	return ptr(Round2(sum / float64(len(values))))
}

// Round2 rounds to two decimal places, half away from zero.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Round1 rounds to one decimal place, half away from zero.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// Percent returns 100*part/total rounded to one decimal; 0 when total is 0.
func Percent(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return Round1(100 * float64(part) / float64(total))
}

func ptr[T any](v T) *T {
	return &v
}

// valueOr dereferences p, falling back to def for nil.
func valueOr(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}
