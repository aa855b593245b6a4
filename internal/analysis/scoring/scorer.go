// Package scoring classifies the current market regime for iron condor
// entry. The scorer is a pure function of the latest indicator snapshot and
// the current price: additive rules accumulate an entry-favorability score
// and a risk score, and the pair maps to a categorical signal.
package scoring

import (
	"math"

	"condor-trader/internal/models"
)

// MinHistory is the minimum number of bars required before the scorer
// trusts the indicator snapshot.
const MinHistory = 20

// Thresholds holds the rule-table constants. They are strategy parameters
// exposed for tuning; DefaultThresholds returns the canonical values.
type Thresholds struct {
	RSIIdealLow   float64
	RSIIdealHigh  float64
	RSIOKLow      float64
	RSIOKHigh     float64
	RSIRiskLow    float64
	RSIRiskHigh   float64

	BBPosIdealLow  float64
	BBPosIdealHigh float64
	BBPosOKLow     float64
	BBPosOKHigh    float64
	BBPosRiskLow   float64
	BBPosRiskHigh  float64

	WidthIdeal float64
	WidthOK    float64
	WidthRisk  float64

	ATRIdeal float64
	ATROK    float64
	ATRRisk  float64

	MACDCalm   float64
	MACDStrong float64
}

// DefaultThresholds returns the canonical rule table.
func DefaultThresholds() Thresholds {
	return Thresholds{
		RSIIdealLow:  45,
		RSIIdealHigh: 55,
		RSIOKLow:     40,
		RSIOKHigh:    60,
		RSIRiskLow:   35,
		RSIRiskHigh:  65,

		BBPosIdealLow:  0.4,
		BBPosIdealHigh: 0.6,
		BBPosOKLow:     0.3,
		BBPosOKHigh:    0.7,
		BBPosRiskLow:   0.25,
		BBPosRiskHigh:  0.75,

		WidthIdeal: 5,
		WidthOK:    7,
		WidthRisk:  10,

		ATRIdeal: 0.8,
		ATROK:    1.2,
		ATRRisk:  2.0,

		MACDCalm:   0.3,
		MACDStrong: 1.0,
	}
}

// Scorer scores regime snapshots against a threshold table.
type Scorer struct {
	thresholds Thresholds
}

// NewScorer creates a scorer with the canonical thresholds.
func NewScorer() *Scorer {
	return &Scorer{thresholds: DefaultThresholds()}
}

// NewScorerWithThresholds creates a scorer with custom thresholds.
func NewScorerWithThresholds(t Thresholds) *Scorer {
	return &Scorer{thresholds: t}
}

// cautiousDefault is returned when the snapshot cannot be trusted.
func cautiousDefault() models.RegimeScore {
	return models.RegimeScore{EntryScore: 0, RiskScore: 9, Signal: models.SignalNeutral}
}

// Score evaluates the latest indicator snapshot. historyLen is the number
// of bars behind the snapshot; with fewer than MinHistory bars, or any
// required indicator missing, the maximally cautious default is returned.
func (s *Scorer) Score(latest models.IndicatorBar, currentPrice float64, historyLen int) models.RegimeScore {
	if historyLen < MinHistory || !snapshotComplete(latest) {
		return cautiousDefault()
	}

	t := s.thresholds
	entry, risk := 0, 0

	// RSI in the neutral band favors range-bound premium selling.
	switch {
	case latest.RSI >= t.RSIIdealLow && latest.RSI <= t.RSIIdealHigh:
		entry += 2
	case latest.RSI >= t.RSIOKLow && latest.RSI <= t.RSIOKHigh:
		entry += 1
	case latest.RSI < t.RSIRiskLow || latest.RSI > t.RSIRiskHigh:
		risk += 2
	}

	// Position of price within the Bollinger band.
	bandRange := latest.BBUpper - latest.BBLower
	if bandRange > 0 {
		pos := (currentPrice - latest.BBLower) / bandRange
		switch {
		case pos >= t.BBPosIdealLow && pos <= t.BBPosIdealHigh:
			entry += 2
		case pos >= t.BBPosOKLow && pos <= t.BBPosOKHigh:
			entry += 1
		case pos < t.BBPosRiskLow || pos > t.BBPosRiskHigh:
			risk += 2
		}
	}

	// Narrow bands mean low realized volatility.
	switch {
	case latest.BBWidth < t.WidthIdeal:
		entry += 2
	case latest.BBWidth < t.WidthOK:
		entry += 1
	case latest.BBWidth > t.WidthRisk:
		risk += 2
	}

	switch {
	case latest.ATRPercent < t.ATRIdeal:
		entry += 2
	case latest.ATRPercent < t.ATROK:
		entry += 1
	case latest.ATRPercent > t.ATRRisk:
		risk += 2
	}

	// MACD near zero means no strong directional trend.
	if currentPrice > 0 {
		strength := math.Abs(latest.MACD/currentPrice) * 100
		if strength < t.MACDCalm {
			entry++
		} else if strength > t.MACDStrong {
			risk++
		}
	}

	return models.RegimeScore{
		EntryScore: entry,
		RiskScore:  risk,
		Signal:     Classify(entry, risk),
	}
}

// Classify maps a score pair to a signal. Rules are evaluated in priority
// order; the first match wins.
func Classify(entry, risk int) models.Signal {
	switch {
	case entry >= 6 && risk <= 3:
		return models.SignalStrongEntry
	case entry >= 4 && risk <= 4:
		return models.SignalEntry
	case risk >= 6:
		return models.SignalExitAvoid
	case risk >= 5:
		return models.SignalCaution
	default:
		return models.SignalNeutral
	}
}

// snapshotComplete reports whether every indicator the rule table reads is
// a finite number.
func snapshotComplete(b models.IndicatorBar) bool {
	for _, v := range []float64{b.RSI, b.BBLower, b.BBUpper, b.BBWidth, b.ATRPercent, b.MACD} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
