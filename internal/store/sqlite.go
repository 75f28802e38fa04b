package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.

	"quantsim/internal/domain"
)

// Compile-time interface check.
var _ ResultStore = (*SQLiteStore)(nil)

// SQLiteStore implements ResultStore backed by a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS runs (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	symbol        TEXT NOT NULL,
	created_at    INTEGER NOT NULL,
	bars          INTEGER NOT NULL,
	start_equity  REAL NOT NULL,
	final_equity  REAL NOT NULL,
	total_trades  INTEGER NOT NULL,
	win_rate      REAL NOT NULL,
	max_drawdown  REAL NOT NULL,
	cagr          REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS trades (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id      INTEGER NOT NULL REFERENCES runs(id),
	direction   INTEGER NOT NULL,
	entry_time  INTEGER NOT NULL,
	entry_price REAL NOT NULL,
	exit_time   INTEGER NOT NULL,
	exit_price  REAL NOT NULL,
	size        INTEGER NOT NULL,
	pnl         REAL NOT NULL,
	pnl_pct     REAL NOT NULL,
	exit_reason TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_trades_run ON trades(run_id, entry_time);
`

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and ensures
// the schema exists.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveRun inserts a run summary and returns its assigned ID.
func (s *SQLiteStore) SaveRun(ctx context.Context, run *RunRecord) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (symbol, created_at, bars, start_equity, final_equity,
			total_trades, win_rate, max_drawdown, cagr)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.Symbol, run.CreatedAt.UnixMilli(), run.Bars, run.StartEquity,
		run.FinalEquity, run.TotalTrades, run.WinRate, run.MaxDrawdown, run.CAGR)
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	run.ID = id
	return id, nil
}

// SaveTrades attaches a trade ledger to a run inside one transaction.
func (s *SQLiteStore) SaveTrades(ctx context.Context, runID int64, trades []domain.Trade) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO trades (run_id, direction, entry_time, entry_price,
			exit_time, exit_price, size, pnl, pnl_pct, exit_reason)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, t := range trades {
		_, err := stmt.ExecContext(ctx,
			runID, int(t.Direction), t.EntryTime.UnixMilli(), t.EntryPrice,
			t.ExitTime.UnixMilli(), t.ExitPrice, t.Size, t.PnL, t.PnLPct,
			string(t.ExitReason))
		if err != nil {
			return fmt.Errorf("insert trade: %w", err)
		}
	}
	return tx.Commit()
}

// GetRun retrieves a single run by ID.
func (s *SQLiteStore) GetRun(ctx context.Context, id int64) (*RunRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, symbol, created_at, bars, start_equity, final_equity,
			total_trades, win_rate, max_drawdown, cagr
		FROM runs WHERE id = ?`, id)

	run, err := scanRun(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return run, nil
}

// ListRuns returns all saved runs, most recent first.
func (s *SQLiteStore) ListRuns(ctx context.Context) ([]RunRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, symbol, created_at, bars, start_equity, final_equity,
			total_trades, win_rate, max_drawdown, cagr
		FROM runs ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// ListTrades returns the trade ledger for a run, in entry-time order.
func (s *SQLiteStore) ListTrades(ctx context.Context, runID int64) ([]domain.Trade, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT direction, entry_time, entry_price, exit_time, exit_price,
			size, pnl, pnl_pct, exit_reason
		FROM trades WHERE run_id = ? ORDER BY entry_time, id`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trades []domain.Trade
	for rows.Next() {
		var (
			t          domain.Trade
			dir        int
			entryMs    int64
			exitMs     int64
			exitReason string
		)
		if err := rows.Scan(&dir, &entryMs, &t.EntryPrice, &exitMs,
			&t.ExitPrice, &t.Size, &t.PnL, &t.PnLPct, &exitReason); err != nil {
			return nil, err
		}
		t.Direction = domain.Direction(dir)
		t.EntryTime = time.UnixMilli(entryMs).UTC()
		t.ExitTime = time.UnixMilli(exitMs).UTC()
		t.ExitReason = domain.ExitReason(exitReason)
		trades = append(trades, t)
	}
	return trades, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*RunRecord, error) {
	var (
		run       RunRecord
		createdMs int64
	)
	err := row.Scan(&run.ID, &run.Symbol, &createdMs, &run.Bars,
		&run.StartEquity, &run.FinalEquity, &run.TotalTrades, &run.WinRate,
		&run.MaxDrawdown, &run.CAGR)
	if err != nil {
		return nil, err
	}
	run.CreatedAt = time.UnixMilli(createdMs).UTC()
	return &run, nil
}
