// Package strategy constructs iron condor candidates from an option chain.
// Selection is a deterministic nearest-match heuristic: short legs are the
// out-of-the-money strikes whose delta magnitude is closest to the target,
// long legs are the next strike further out. It does not try to be optimal.
package strategy

import (
	"math"
	"sort"

	"condor-trader/internal/errors"
	"condor-trader/internal/models"
)

// ContractMultiplier converts per-share option prices to dollars per
// contract.
const ContractMultiplier = 100

// DefaultTargetDelta is the canonical short-leg delta magnitude.
const DefaultTargetDelta = 0.20

// SelectIronCondor picks a 4-leg condor from the chain for one expiration.
// All failure modes wrap errors.ErrNoCandidate and are normal outcomes:
// the caller treats them as "no setup at this delta", not as faults.
func SelectIronCondor(chain models.OptionChain, expiration string, spot, targetDelta float64) (*models.IronCondorCandidate, error) {
	quotes, ok := chain.Expirations[expiration]
	if !ok {
		return nil, errors.Wrapf(errors.ErrExpirationNotFound, "expiration %s", expiration)
	}

	// Only out-of-the-money strikes are eligible as short legs.
	var calls, puts []models.OptionQuote
	for _, q := range quotes {
		switch {
		case q.Side == models.Call && q.Strike > spot:
			calls = append(calls, q)
		case q.Side == models.Put && q.Strike < spot:
			puts = append(puts, q)
		}
	}
	if len(calls) == 0 || len(puts) == 0 {
		return nil, errors.Wrapf(errors.ErrNoShortStrike, "spot %.2f", spot)
	}

	sort.SliceStable(calls, func(i, j int) bool { return calls[i].Strike < calls[j].Strike })
	sort.SliceStable(puts, func(i, j int) bool { return puts[i].Strike > puts[j].Strike })

	shortCall := closestDelta(calls, targetDelta)
	shortPut := closestDelta(puts, targetDelta)

	longCall, ok := nextFurtherOut(calls, shortCall.Strike, true)
	if !ok {
		return nil, errors.Wrapf(errors.ErrNoProtectiveStrike, "no call above %.2f", shortCall.Strike)
	}
	longPut, ok := nextFurtherOut(puts, shortPut.Strike, false)
	if !ok {
		return nil, errors.Wrapf(errors.ErrNoProtectiveStrike, "no put below %.2f", shortPut.Strike)
	}

	credit := (shortCall.Bid + shortPut.Bid - longCall.Ask - longPut.Ask) * ContractMultiplier
	width := math.Max(longCall.Strike-shortCall.Strike, shortPut.Strike-longPut.Strike)
	maxLoss := math.Max(width*ContractMultiplier-credit, 0)

	pop := (1 - math.Abs(shortCall.Greeks.Delta) - math.Abs(shortPut.Greeks.Delta)) * 100
	pop = math.Max(0, math.Min(100, pop))

	c := &models.IronCondorCandidate{
		ShortCall:           shortCall,
		LongCall:            longCall,
		ShortPut:            shortPut,
		LongPut:             longPut,
		Expiration:          expiration,
		Credit:              credit,
		MaxProfit:           math.Max(credit, 0),
		MaxLoss:             maxLoss,
		BreakevenUpper:      shortCall.Strike + credit/ContractMultiplier,
		BreakevenLower:      shortPut.Strike - credit/ContractMultiplier,
		ProbabilityOfProfit: pop,
	}
	if credit <= 0 {
		// A debit condor means crossed or stale quotes; keep the candidate
		// visible but flag it so the caller can surface a data warning.
		c.DataQualityWarning = true
	}
	return c, nil
}

// closestDelta returns the quote whose delta magnitude is closest to the
// target. Exact ties resolve to the first in iteration order; with sorted
// inputs that makes selection deterministic for a given chain.
func closestDelta(quotes []models.OptionQuote, target float64) models.OptionQuote {
	best := quotes[0]
	bestDist := math.Abs(math.Abs(best.Greeks.Delta) - target)
	for _, q := range quotes[1:] {
		d := math.Abs(math.Abs(q.Greeks.Delta) - target)
		if d < bestDist {
			best = q
			bestDist = d
		}
	}
	return best
}

// nextFurtherOut finds the long leg: the first strike strictly beyond the
// short strike, moving away from the money. Calls walk up, puts walk down.
func nextFurtherOut(sorted []models.OptionQuote, shortStrike float64, up bool) (models.OptionQuote, bool) {
	for _, q := range sorted {
		if up && q.Strike > shortStrike {
			return q, true
		}
		if !up && q.Strike < shortStrike {
			return q, true
		}
	}
	return models.OptionQuote{}, false
}

// TargetDeltas are the delta magnitudes scanned when presenting setups.
var TargetDeltas = []float64{0.15, 0.20, 0.30}

// ScanResult pairs a target delta with its outcome for presentation.
type ScanResult struct {
	TargetDelta float64
	Candidate   *models.IronCondorCandidate // nil when no setup exists
}

// Scan selects a candidate for each target delta. Missing setups appear as
// nil candidates, never as errors.
func Scan(chain models.OptionChain, expiration string, spot float64) []ScanResult {
	results := make([]ScanResult, 0, len(TargetDeltas))
	for _, delta := range TargetDeltas {
		c, err := SelectIronCondor(chain, expiration, spot, delta)
		if err != nil {
			c = nil
		}
		results = append(results, ScanResult{TargetDelta: delta, Candidate: c})
	}
	return results
}
