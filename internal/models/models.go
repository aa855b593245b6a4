// Package models provides domain models for the condor trading application.
package models

import (
	"time"
)

// PriceBar represents OHLCV data for a time period.
type PriceBar struct {
	Timestamp time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    int64
}

// IndicatorBar is a PriceBar enriched with derived technical series.
// Every derived field is defined for any bar of a non-empty series; short
// series use expanding windows and the fill policy in the indicators package.
type IndicatorBar struct {
	PriceBar

	SMA20   float64
	BBStd   float64
	BBUpper float64
	BBLower float64
	BBWidth float64 // (upper-lower)/SMA20 * 100

	RSI float64

	EMA12         float64
	EMA26         float64
	MACD          float64
	MACDSignal    float64
	MACDHistogram float64

	ATR        float64
	ATRPercent float64 // ATR/close * 100
}

// Signal classifies the market regime for iron condor entry.
type Signal string

const (
	SignalStrongEntry Signal = "STRONG_ENTRY"
	SignalEntry       Signal = "ENTRY"
	SignalNeutral     Signal = "NEUTRAL"
	SignalCaution     Signal = "CAUTION"
	SignalExitAvoid   Signal = "EXIT_AVOID"
)

// RegimeScore is the output of the regime scorer.
type RegimeScore struct {
	EntryScore int
	RiskScore  int
	Signal     Signal
}
