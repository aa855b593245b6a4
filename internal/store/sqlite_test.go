package store

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"condor-trader/internal/models"
	"condor-trader/internal/paper"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "paper.db")
	s, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testCandidate() *models.IronCondorCandidate {
	return &models.IronCondorCandidate{
		ShortCall:           models.OptionQuote{Strike: 590, Side: models.Call, Bid: 2.05, Ask: 2.25},
		LongCall:            models.OptionQuote{Strike: 595, Side: models.Call, Bid: 1.20, Ask: 1.40},
		ShortPut:            models.OptionQuote{Strike: 570, Side: models.Put, Bid: 2.00, Ask: 2.20},
		LongPut:             models.OptionQuote{Strike: 565, Side: models.Put, Bid: 1.15, Ask: 1.35},
		Expiration:          "2026-09-25",
		Credit:              130,
		MaxProfit:           130,
		MaxLoss:             370,
		BreakevenUpper:      591.30,
		BreakevenLower:      568.70,
		ProbabilityOfProfit: 56,
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p := paper.NewPortfolio(10000)
	p.Open(testCandidate(), 1)
	p.Open(testCandidate(), 2)
	p.Close(1, 30)

	if err := s.SavePortfolio(ctx, p); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := s.LoadPortfolio(ctx)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded == nil {
		t.Fatal("load returned nil after save")
	}

	if loaded.InitialCash() != p.InitialCash() {
		t.Errorf("initial cash = %v, want %v", loaded.InitialCash(), p.InitialCash())
	}
	if loaded.Cash() != p.Cash() {
		t.Errorf("cash = %v, want %v", loaded.Cash(), p.Cash())
	}
	if loaded.TradeCount() != p.TradeCount() {
		t.Errorf("trade count = %d, want %d", loaded.TradeCount(), p.TradeCount())
	}

	open := loaded.OpenPositions()
	if len(open) != 1 {
		t.Fatalf("got %d open positions, want 1", len(open))
	}
	if open[0].ID != 2 || open[0].Quantity != 2 {
		t.Errorf("open position = id %d qty %d, want id 2 qty 2", open[0].ID, open[0].Quantity)
	}
	if open[0].Candidate.ShortCall.Strike != 590 {
		t.Errorf("candidate short call = %v, want 590", open[0].Candidate.ShortCall.Strike)
	}

	closed := loaded.ClosedPositions()
	if len(closed) != 1 {
		t.Fatalf("got %d closed positions, want 1", len(closed))
	}
	if closed[0].RealizedPnL != 100 {
		t.Errorf("closed P&L = %v, want 100", closed[0].RealizedPnL)
	}
	if closed[0].CloseTime.IsZero() {
		t.Error("closed position has zero close time")
	}

	// Statistics survive the round trip.
	if got, want := loaded.Stats().RealizedPnL, p.Stats().RealizedPnL; got != want {
		t.Errorf("realized P&L = %v, want %v", got, want)
	}
}

func TestLoadWithoutSaveReturnsNil(t *testing.T) {
	s := newTestStore(t)

	p, err := s.LoadPortfolio(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p != nil {
		t.Errorf("got portfolio %+v from empty store, want nil", p)
	}
}

func TestSaveOverwritesPreviousSnapshot(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p := paper.NewPortfolio(10000)
	p.Open(testCandidate(), 1)
	if err := s.SavePortfolio(ctx, p); err != nil {
		t.Fatalf("first save failed: %v", err)
	}

	p.Close(1, 0)
	if err := s.SavePortfolio(ctx, p); err != nil {
		t.Fatalf("second save failed: %v", err)
	}

	loaded, err := s.LoadPortfolio(ctx)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if n := len(loaded.OpenPositions()); n != 0 {
		t.Errorf("got %d open positions, want 0 after overwrite", n)
	}
	if n := len(loaded.ClosedPositions()); n != 1 {
		t.Errorf("got %d closed positions, want 1", n)
	}
}

func TestExportTradesCSV(t *testing.T) {
	p := paper.NewPortfolio(10000)
	p.Open(testCandidate(), 1)
	p.Close(1, 30)

	path := filepath.Join(t.TempDir(), "trades.csv")
	if err := ExportTradesCSV(path, p.ClosedPositions()); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading export: %v", err)
	}
	content := string(data)
	for _, want := range []string{"id", "short_call_strike", "realized_pnl", "590", "100"} {
		if !strings.Contains(content, want) {
			t.Errorf("export missing %q:\n%s", want, content)
		}
	}
}
