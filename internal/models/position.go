package models

import "time"

// PositionStatus represents the lifecycle state of a paper position.
type PositionStatus string

const (
	PositionOpen   PositionStatus = "open"
	PositionClosed PositionStatus = "closed"
)

// Position is a paper-traded iron condor held in the portfolio ledger.
// Once closed it is immutable history.
type Position struct {
	ID        int
	Candidate IronCondorCandidate
	Quantity  int // contracts, >= 1

	EntryCredit float64 // candidate.MaxProfit * quantity
	MarginHeld  float64 // candidate.MaxLoss * quantity, reserved from cash

	EntryTime  time.Time
	Expiration string

	Status      PositionStatus
	CloseTime   time.Time // zero until closed
	RealizedPnL float64   // defined once closed

	// UnrealizedPnL is the last marked-to-market value for an open
	// position; informational only, not part of the cash invariant.
	UnrealizedPnL float64
}
