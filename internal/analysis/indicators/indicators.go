// Package indicators computes the derived technical series for a price
// series. All rolling computations use expanding-window semantics: a bar at
// index i sees a window of min(period, i+1) bars, so a series shorter than
// the configured window degrades gracefully instead of erroring. Each
// function returns a slice aligned to its input.
package indicators

import (
	"math"

	"condor-trader/internal/models"
)

// Default periods for the condor regime pipeline.
const (
	SMAPeriod        = 20
	BollingerStdMult = 2.0
	RSIPeriod        = 14
	MACDFastPeriod   = 12
	MACDSlowPeriod   = 26
	MACDSignalPeriod = 9
	ATRPeriod        = 14
)

// rsiEpsilon guards the RSI denominator away from exact zero.
const rsiEpsilon = 0.0001

// SMA calculates the simple moving average with an expanding window.
func SMA(values []float64, period int) []float64 {
	result := make([]float64, len(values))
	for i := range values {
		result[i] = mean(window(values, i, period))
	}
	return result
}

// RollingStd calculates the rolling sample standard deviation with an
// expanding window. The first bar has no defined deviation (NaN).
func RollingStd(values []float64, period int) []float64 {
	result := make([]float64, len(values))
	for i := range values {
		result[i] = sampleStd(window(values, i, period))
	}
	return result
}

// EMA calculates the exponential moving average seeded at the first value,
// not at zero, so it is defined from the first bar onward.
func EMA(values []float64, period int) []float64 {
	result := make([]float64, len(values))
	if len(values) == 0 {
		return result
	}
	multiplier := 2.0 / float64(period+1)
	result[0] = values[0]
	for i := 1; i < len(values); i++ {
		result[i] = (values[i]-result[i-1])*multiplier + result[i-1]
	}
	return result
}

// RSI calculates the relative strength index from rolling means of gains
// and losses. The first bar has no price delta and is left NaN for the
// fill pass.
func RSI(closes []float64, period int) []float64 {
	n := len(closes)
	result := make([]float64, n)
	if n == 0 {
		return result
	}
	result[0] = math.NaN()

	gains := make([]float64, n)
	losses := make([]float64, n)
	for i := 1; i < n; i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			gains[i] = change
		} else {
			losses[i] = -change
		}
	}

	for i := 1; i < n; i++ {
		// Window over deltas only; the first bar carries none.
		start := i - period + 1
		if start < 1 {
			start = 1
		}
		avgGain := mean(gains[start : i+1])
		avgLoss := mean(losses[start : i+1])
		if avgLoss < rsiEpsilon {
			avgLoss = rsiEpsilon
		}
		rs := avgGain / avgLoss
		result[i] = 100 - 100/(1+rs)
	}
	return result
}

// ATR calculates the average true range as a rolling mean of true range
// with an expanding window. The first bar's true range is high minus low.
func ATR(bars []models.PriceBar, period int) []float64 {
	n := len(bars)
	result := make([]float64, n)
	if n == 0 {
		return result
	}

	tr := make([]float64, n)
	tr[0] = bars[0].High - bars[0].Low
	for i := 1; i < n; i++ {
		tr[i] = trueRange(bars[i], bars[i-1])
	}
	for i := range tr {
		result[i] = mean(window(tr, i, period))
	}
	return result
}

// Enrich computes the full derived-series set for a price series. The
// output is aligned to the input and every derived field is defined for
// every bar: gaps from undefined math are resolved by backward fill, then
// forward fill, then a neutral default.
func Enrich(bars []models.PriceBar) []models.IndicatorBar {
	n := len(bars)
	out := make([]models.IndicatorBar, n)
	if n == 0 {
		return out
	}

	closes := closePrices(bars)

	sma := SMA(closes, SMAPeriod)
	std := RollingStd(closes, SMAPeriod)

	upper := make([]float64, n)
	lower := make([]float64, n)
	width := make([]float64, n)
	for i := 0; i < n; i++ {
		upper[i] = sma[i] + BollingerStdMult*std[i]
		lower[i] = sma[i] - BollingerStdMult*std[i]
		if sma[i] != 0 {
			width[i] = (upper[i] - lower[i]) / sma[i] * 100
		} else {
			width[i] = math.NaN()
		}
	}

	rsi := RSI(closes, RSIPeriod)

	ema12 := EMA(closes, MACDFastPeriod)
	ema26 := EMA(closes, MACDSlowPeriod)
	macd := make([]float64, n)
	for i := 0; i < n; i++ {
		macd[i] = ema12[i] - ema26[i]
	}
	signal := EMA(macd, MACDSignalPeriod)
	histogram := make([]float64, n)
	for i := 0; i < n; i++ {
		histogram[i] = macd[i] - signal[i]
	}

	atr := ATR(bars, ATRPeriod)
	atrPct := make([]float64, n)
	for i := 0; i < n; i++ {
		if bars[i].Close != 0 {
			atrPct[i] = atr[i] / bars[i].Close * 100
		} else {
			atrPct[i] = math.NaN()
		}
	}

	fillSeries(sma, 0)
	fillSeries(std, 0)
	fillSeries(upper, 0)
	fillSeries(lower, 0)
	fillSeries(width, 0)
	fillSeries(rsi, 50) // neutral RSI
	fillSeries(macd, 0)
	fillSeries(signal, 0)
	fillSeries(histogram, 0)
	fillSeries(atr, 0)
	fillSeries(atrPct, 0)

	for i := 0; i < n; i++ {
		out[i] = models.IndicatorBar{
			PriceBar:      bars[i],
			SMA20:         sma[i],
			BBStd:         std[i],
			BBUpper:       upper[i],
			BBLower:       lower[i],
			BBWidth:       width[i],
			RSI:           rsi[i],
			EMA12:         ema12[i],
			EMA26:         ema26[i],
			MACD:          macd[i],
			MACDSignal:    signal[i],
			MACDHistogram: histogram[i],
			ATR:           atr[i],
			ATRPercent:    atrPct[i],
		}
	}
	return out
}
