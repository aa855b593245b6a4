// Package store persists the paper portfolio in SQLite and exports the
// closed-trade history to CSV. A save is a whole-portfolio snapshot; loading
// restores exactly what was saved.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"condor-trader/internal/models"
	"condor-trader/internal/paper"
)

// SQLiteStore persists portfolio snapshots in a single SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database at dbPath.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetConnMaxLifetime(time.Hour)

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

// initSchema creates the tables on first open.
func (s *SQLiteStore) initSchema() error {
	schema := `
	-- Single-row portfolio snapshot metadata
	CREATE TABLE IF NOT EXISTS portfolio (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		initial_cash REAL NOT NULL,
		cash REAL NOT NULL,
		trade_count INTEGER NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	-- Positions, open and closed
	CREATE TABLE IF NOT EXISTS positions (
		id INTEGER PRIMARY KEY,
		status TEXT NOT NULL,
		quantity INTEGER NOT NULL,
		entry_credit REAL NOT NULL,
		margin_held REAL NOT NULL,
		entry_time DATETIME NOT NULL,
		expiration TEXT NOT NULL,
		close_time DATETIME,
		realized_pnl REAL NOT NULL DEFAULT 0,
		unrealized_pnl REAL NOT NULL DEFAULT 0,
		candidate TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_positions_status ON positions(status);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SavePortfolio overwrites the stored snapshot with the portfolio's current
// state, atomically.
func (s *SQLiteStore) SavePortfolio(ctx context.Context, p *paper.Portfolio) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT OR REPLACE INTO portfolio (id, initial_cash, cash, trade_count, updated_at)
		VALUES (1, ?, ?, ?, ?)
	`, p.InitialCash(), p.Cash(), p.TradeCount(), time.Now())
	if err != nil {
		return fmt.Errorf("failed to save portfolio: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM positions`); err != nil {
		return fmt.Errorf("failed to clear positions: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO positions (id, status, quantity, entry_credit, margin_held, entry_time, expiration, close_time, realized_pnl, unrealized_pnl, candidate)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	insert := func(pos models.Position) error {
		candidate, err := json.Marshal(pos.Candidate)
		if err != nil {
			return fmt.Errorf("failed to encode candidate: %w", err)
		}
		var closeTime interface{}
		if !pos.CloseTime.IsZero() {
			closeTime = pos.CloseTime
		}
		_, err = stmt.ExecContext(ctx, pos.ID, pos.Status, pos.Quantity, pos.EntryCredit,
			pos.MarginHeld, pos.EntryTime, pos.Expiration, closeTime, pos.RealizedPnL,
			pos.UnrealizedPnL, string(candidate))
		if err != nil {
			return fmt.Errorf("failed to insert position: %w", err)
		}
		return nil
	}

	for _, pos := range p.OpenPositions() {
		if err := insert(pos); err != nil {
			return err
		}
	}
	for _, pos := range p.ClosedPositions() {
		if err := insert(pos); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// LoadPortfolio restores the stored snapshot. Returns (nil, nil) when no
// snapshot has ever been saved.
func (s *SQLiteStore) LoadPortfolio(ctx context.Context) (*paper.Portfolio, error) {
	var initialCash, cash float64
	var tradeCount int
	err := s.db.QueryRowContext(ctx, `
		SELECT initial_cash, cash, trade_count FROM portfolio WHERE id = 1
	`).Scan(&initialCash, &cash, &tradeCount)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load portfolio: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, status, quantity, entry_credit, margin_held, entry_time, expiration, close_time, realized_pnl, unrealized_pnl, candidate
		FROM positions ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query positions: %w", err)
	}
	defer rows.Close()

	var open, closed []models.Position
	for rows.Next() {
		var pos models.Position
		var closeTime sql.NullTime
		var candidateJSON string

		if err := rows.Scan(&pos.ID, &pos.Status, &pos.Quantity, &pos.EntryCredit,
			&pos.MarginHeld, &pos.EntryTime, &pos.Expiration, &closeTime,
			&pos.RealizedPnL, &pos.UnrealizedPnL, &candidateJSON); err != nil {
			return nil, fmt.Errorf("failed to scan position: %w", err)
		}
		if err := json.Unmarshal([]byte(candidateJSON), &pos.Candidate); err != nil {
			return nil, fmt.Errorf("failed to decode candidate: %w", err)
		}
		if closeTime.Valid {
			pos.CloseTime = closeTime.Time
		}

		if pos.Status == models.PositionClosed {
			closed = append(closed, pos)
		} else {
			open = append(open, pos)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating positions: %w", err)
	}

	return paper.Restore(initialCash, cash, tradeCount, open, closed), nil
}
