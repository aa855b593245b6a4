// Package paper implements the paper-trading portfolio ledger. A Portfolio
// is owned by its calling context (one per session) and tracks cash, open
// positions and closed history with a strict cash invariant: cash only
// decreases by margin held on open and only increases by margin plus
// realized P&L on close.
package paper

import (
	"fmt"
	"sync"
	"time"

	"condor-trader/internal/errors"
	"condor-trader/internal/models"
)

// DefaultInitialCash is the starting balance when none is configured.
const DefaultInitialCash = 10000.0

// Result reports the outcome of a ledger operation. Rejections carry a
// human-readable reason and leave the portfolio untouched.
type Result struct {
	OK       bool
	Message  string
	Position *models.Position // set on successful open
}

// Stats is the aggregate view of the portfolio.
type Stats struct {
	AccountValue  float64
	Cash          float64
	TotalPnL      float64
	RealizedPnL   float64
	UnrealizedPnL float64
	OpenPositions int
	ClosedTrades  int
	WinningTrades int
	LosingTrades  int
	WinRate       float64
	AvgWin        float64
	AvgLoss       float64
	ROI           float64
}

// Portfolio is the paper ledger. Methods are safe for use from a single
// session; the mutex only guarantees that each operation is atomic with
// respect to the cash invariant.
type Portfolio struct {
	mu sync.Mutex

	initialCash float64
	cash        float64
	open        []*models.Position
	closed      []*models.Position
	tradeCount  int

	now func() time.Time
}

// NewPortfolio creates a portfolio with the given starting cash. A
// non-positive balance falls back to the default.
func NewPortfolio(initialCash float64) *Portfolio {
	if initialCash <= 0 {
		initialCash = DefaultInitialCash
	}
	return &Portfolio{
		initialCash: initialCash,
		cash:        initialCash,
		now:         time.Now,
	}
}

// Open opens a paper position from a selector candidate. Margin equal to
// the candidate's max loss per contract times quantity is reserved from
// cash; the operation is rejected without state change if that would drive
// cash negative.
func (p *Portfolio) Open(candidate *models.IronCondorCandidate, quantity int) Result {
	if candidate == nil {
		return Result{OK: false, Message: "no valid setup provided"}
	}
	if quantity < 1 {
		return Result{OK: false, Message: errors.ErrInvalidQuantity.Error()}
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	credit := candidate.MaxProfit * float64(quantity)
	margin := candidate.MaxLoss * float64(quantity)

	if margin > p.cash {
		return Result{
			OK:      false,
			Message: fmt.Sprintf("insufficient cash: need $%.2f, have $%.2f", margin, p.cash),
		}
	}

	p.tradeCount++
	pos := &models.Position{
		ID:          p.tradeCount,
		Candidate:   *candidate,
		Quantity:    quantity,
		EntryCredit: credit,
		MarginHeld:  margin,
		EntryTime:   p.now(),
		Expiration:  candidate.Expiration,
		Status:      models.PositionOpen,
	}

	p.cash -= margin
	p.open = append(p.open, pos)

	return Result{
		OK:       true,
		Message:  fmt.Sprintf("opened trade #%d, credit $%.2f, margin $%.2f", pos.ID, credit, margin),
		Position: pos,
	}
}

// Close closes an open position at an explicit dollar closing cost (the
// total cost to buy back both spreads). Realized P&L is entry credit minus
// closing cost; the reserved margin plus P&L returns to cash.
func (p *Portfolio) Close(positionID int, closingCost float64) Result {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i, pos := range p.open {
		if pos.ID != positionID {
			continue
		}
		pnl := pos.EntryCredit - closingCost

		pos.Status = models.PositionClosed
		pos.CloseTime = p.now()
		pos.RealizedPnL = pnl
		pos.UnrealizedPnL = 0

		p.cash += pos.MarginHeld + pnl
		p.open = append(p.open[:i], p.open[i+1:]...)
		p.closed = append(p.closed, pos)

		return Result{
			OK:       true,
			Message:  fmt.Sprintf("closed trade #%d, P&L $%.2f", pos.ID, pnl),
			Position: pos,
		}
	}
	return Result{OK: false, Message: fmt.Sprintf("position #%d not found or already closed", positionID)}
}

// MarkToMarket updates the unrealized P&L of an open position from the
// current cost to close it. Informational only; cash is untouched.
func (p *Portfolio) MarkToMarket(positionID int, currentClosingCost float64) Result {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, pos := range p.open {
		if pos.ID == positionID {
			pos.UnrealizedPnL = pos.EntryCredit - currentClosingCost
			return Result{OK: true, Message: fmt.Sprintf("marked trade #%d", pos.ID), Position: pos}
		}
	}
	return Result{OK: false, Message: fmt.Sprintf("position #%d not found or already closed", positionID)}
}

// Stats computes the aggregate portfolio statistics. Account value is cash
// plus reserved margin plus unrealized P&L of open positions; with no
// closed trades the win rate is zero, never a division by zero.
func (p *Portfolio) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()

	s := Stats{
		Cash:          p.cash,
		OpenPositions: len(p.open),
		ClosedTrades:  len(p.closed),
	}

	accountValue := p.cash
	for _, pos := range p.open {
		accountValue += pos.MarginHeld + pos.UnrealizedPnL
		s.UnrealizedPnL += pos.UnrealizedPnL
	}

	var sumWins, sumLosses float64
	for _, pos := range p.closed {
		s.RealizedPnL += pos.RealizedPnL
		if pos.RealizedPnL > 0 {
			s.WinningTrades++
			sumWins += pos.RealizedPnL
		} else if pos.RealizedPnL < 0 {
			s.LosingTrades++
			sumLosses += pos.RealizedPnL
		}
	}

	s.AccountValue = accountValue
	s.TotalPnL = accountValue - p.initialCash
	if s.ClosedTrades > 0 {
		s.WinRate = float64(s.WinningTrades) / float64(s.ClosedTrades) * 100
	}
	if s.WinningTrades > 0 {
		s.AvgWin = sumWins / float64(s.WinningTrades)
	}
	if s.LosingTrades > 0 {
		s.AvgLoss = sumLosses / float64(s.LosingTrades)
	}
	s.ROI = (accountValue - p.initialCash) / p.initialCash * 100

	return s
}

// Cash returns the free cash balance.
func (p *Portfolio) Cash() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cash
}

// InitialCash returns the configured starting balance.
func (p *Portfolio) InitialCash() float64 {
	return p.initialCash
}

// OpenPositions returns a snapshot copy of the open positions, ordered by id.
func (p *Portfolio) OpenPositions() []models.Position {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]models.Position, 0, len(p.open))
	for _, pos := range p.open {
		out = append(out, *pos)
	}
	return out
}

// ClosedPositions returns a snapshot copy of the closed-trade history in
// close order.
func (p *Portfolio) ClosedPositions() []models.Position {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]models.Position, 0, len(p.closed))
	for _, pos := range p.closed {
		out = append(out, *pos)
	}
	return out
}

// TradeCount returns the monotonic trade counter.
func (p *Portfolio) TradeCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.tradeCount
}

// Restore rebuilds a portfolio from persisted state. Used by the store when
// loading a saved session; it trusts the snapshot and re-derives nothing.
func Restore(initialCash, cash float64, tradeCount int, open, closed []models.Position) *Portfolio {
	p := NewPortfolio(initialCash)
	p.cash = cash
	p.tradeCount = tradeCount
	for i := range open {
		pos := open[i]
		p.open = append(p.open, &pos)
	}
	for i := range closed {
		pos := closed[i]
		p.closed = append(p.closed, &pos)
	}
	return p
}
