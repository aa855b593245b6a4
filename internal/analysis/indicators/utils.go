package indicators

import (
	"math"

	"condor-trader/internal/models"
)

// mean calculates the arithmetic mean of a slice of float64.
func mean(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	var total float64
	for _, v := range values {
		total += v
	}
	return total / float64(len(values))
}

// sampleStd calculates the sample standard deviation (ddof=1). A single
// observation has no defined deviation and yields NaN, which the fill pass
// resolves.
func sampleStd(values []float64) float64 {
	n := len(values)
	if n < 2 {
		return math.NaN()
	}
	m := mean(values)
	var variance float64
	for _, v := range values {
		diff := v - m
		variance += diff * diff
	}
	variance /= float64(n - 1)
	return math.Sqrt(variance)
}

// trueRange calculates the true range for a bar given the previous close.
func trueRange(current, previous models.PriceBar) float64 {
	highLow := current.High - current.Low
	highClose := math.Abs(current.High - previous.Close)
	lowClose := math.Abs(current.Low - previous.Close)
	return math.Max(highLow, math.Max(highClose, lowClose))
}

// closePrices extracts close prices from bars.
func closePrices(bars []models.PriceBar) []float64 {
	prices := make([]float64, len(bars))
	for i, b := range bars {
		prices[i] = b.Close
	}
	return prices
}

// window returns the trailing expanding window ending at index i: the last
// min(period, i+1) elements.
func window(values []float64, i, period int) []float64 {
	start := i - period + 1
	if start < 0 {
		start = 0
	}
	return values[start : i+1]
}

// fillSeries resolves NaN gaps in place: backward fill, then forward fill,
// then the numeric default, in that priority order.
func fillSeries(values []float64, def float64) {
	n := len(values)
	// Backward fill: propagate the next defined value into earlier gaps.
	next := math.NaN()
	for i := n - 1; i >= 0; i-- {
		if math.IsNaN(values[i]) {
			values[i] = next
		} else {
			next = values[i]
		}
	}
	// Forward fill for trailing gaps.
	prev := math.NaN()
	for i := 0; i < n; i++ {
		if math.IsNaN(values[i]) {
			values[i] = prev
		} else {
			prev = values[i]
		}
	}
	// Whatever survives both passes gets the default.
	for i := range values {
		if math.IsNaN(values[i]) {
			values[i] = def
		}
	}
}
