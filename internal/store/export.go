package store

import (
	"fmt"
	"os"

	"github.com/gocarina/gocsv"

	"condor-trader/internal/models"
)

// tradeRow is the flat CSV shape of one closed trade.
type tradeRow struct {
	ID             int     `csv:"id"`
	Expiration     string  `csv:"expiration"`
	Quantity       int     `csv:"quantity"`
	ShortCall      float64 `csv:"short_call_strike"`
	LongCall       float64 `csv:"long_call_strike"`
	ShortPut       float64 `csv:"short_put_strike"`
	LongPut        float64 `csv:"long_put_strike"`
	EntryCredit    float64 `csv:"entry_credit"`
	MarginHeld     float64 `csv:"margin_held"`
	EntryTime      string  `csv:"entry_time"`
	CloseTime      string  `csv:"close_time"`
	RealizedPnL    float64 `csv:"realized_pnl"`
	ProbabilityPct float64 `csv:"entry_pop_pct"`
}

// ExportTradesCSV writes the closed-trade history to a CSV file at path.
func ExportTradesCSV(path string, trades []models.Position) error {
	rows := make([]tradeRow, 0, len(trades))
	for _, t := range trades {
		row := tradeRow{
			ID:             t.ID,
			Expiration:     t.Expiration,
			Quantity:       t.Quantity,
			ShortCall:      t.Candidate.ShortCall.Strike,
			LongCall:       t.Candidate.LongCall.Strike,
			ShortPut:       t.Candidate.ShortPut.Strike,
			LongPut:        t.Candidate.LongPut.Strike,
			EntryCredit:    t.EntryCredit,
			MarginHeld:     t.MarginHeld,
			EntryTime:      t.EntryTime.Format("2006-01-02 15:04:05"),
			RealizedPnL:    t.RealizedPnL,
			ProbabilityPct: t.Candidate.ProbabilityOfProfit,
		}
		if !t.CloseTime.IsZero() {
			row.CloseTime = t.CloseTime.Format("2006-01-02 15:04:05")
		}
		rows = append(rows, row)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	defer f.Close()

	if err := gocsv.MarshalFile(&rows, f); err != nil {
		return fmt.Errorf("failed to write CSV: %w", err)
	}
	return nil
}
