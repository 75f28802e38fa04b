// Package store provides persistence for bar data and backtest results.
// Bars live in Parquet or CSV files on disk; finished runs and their trade
// ledgers are written to SQLite.
package store

import (
	"context"
	"errors"
	"time"

	"quantsim/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("store: not found")

// BarStore reads and writes OHLCV bar series keyed by symbol.
type BarStore interface {
	// WriteBars persists bars for a symbol, merging with any existing data.
	// Bars with duplicate timestamps are replaced by the incoming record.
	WriteBars(ctx context.Context, symbol string, bars []domain.Bar) error

	// ReadBars returns all bars for the symbol within [start, end],
	// sorted by timestamp. A symbol with no data yields an empty slice.
	ReadBars(ctx context.Context, symbol string, start, end time.Time) ([]domain.Bar, error)

	// ListSymbols returns the symbols that have stored bar data, sorted.
	ListSymbols(ctx context.Context) ([]string, error)
}

// RunRecord summarizes one persisted backtest run.
type RunRecord struct {
	ID          int64
	Symbol      string
	CreatedAt   time.Time
	Bars        int
	StartEquity float64
	FinalEquity float64
	TotalTrades int
	WinRate     float64
	MaxDrawdown float64
	CAGR        float64
}

// ResultStore persists backtest runs and their trade ledgers.
type ResultStore interface {
	// SaveRun inserts a run summary and returns its assigned ID.
	SaveRun(ctx context.Context, run *RunRecord) (int64, error)

	// SaveTrades attaches a trade ledger to a previously saved run.
	SaveTrades(ctx context.Context, runID int64, trades []domain.Trade) error

	// GetRun retrieves a single run by ID. Returns ErrNotFound when absent.
	GetRun(ctx context.Context, id int64) (*RunRecord, error)

	// ListRuns returns all saved runs, most recent first.
	ListRuns(ctx context.Context) ([]RunRecord, error)

	// ListTrades returns the trade ledger for a run, in entry-time order.
	ListTrades(ctx context.Context, runID int64) ([]domain.Trade, error)

	Close() error
}
