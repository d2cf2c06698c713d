// Package pricing holds the arithmetic behind service and repair totals.
package pricing

import "math"

// Line is one attached spare part.
type Line struct {
	Quantity  int     `db:"quantity"`
	UnitPrice float64 `db:"unit_price"`
}

// Round2 rounds half away from zero to cents.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// PartsTotal is Σ(qty × unit_price) rounded to cents.
func PartsTotal(lines []Line) float64 {
	return Round2(sumLines(lines))
}

// ServiceTotal is labor plus the parts total, rounded to cents.
func ServiceTotal(labor float64, lines []Line) float64 {
	return Round2(labor + sumLines(lines))
}

func sumLines(lines []Line) float64 {
	var sum float64
	for _, l := range lines {
		sum += float64(l.Quantity) * l.UnitPrice
	}
	return sum
}

// RepairTotal sums service prices. It returns nil when there are none.
func RepairTotal(prices []float64) *float64 {
	if len(prices) == 0 {
		return nil
	}
	var sum float64
	for _, p := range prices {
		sum += p
	}
	total := Round2(sum)
	return &total
}
