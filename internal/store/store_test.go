package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"quantsim/internal/domain"
)

func writeFile(t *testing.T, path, content string) error {
	t.Helper()
	return os.WriteFile(path, []byte(content), 0o644)
}

func sampleBars(n int) []domain.Bar {
	start := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	bars := make([]domain.Bar, n)
	for i := range bars {
		price := 100.0 + float64(i)
		bars[i] = domain.Bar{
			Timestamp: start.AddDate(0, 0, i),
			Open:      price,
			High:      price + 1,
			Low:       price - 1,
			Close:     price + 0.5,
			Volume:    1000,
		}
	}
	return bars
}

func TestParquetRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewParquetStore(t.TempDir())
	bars := sampleBars(10)

	if err := s.WriteBars(ctx, "eurusd", bars); err != nil {
		t.Fatalf("WriteBars() error = %v", err)
	}

	got, err := s.ReadBars(ctx, "EURUSD", bars[0].Timestamp, bars[9].Timestamp)
	if err != nil {
		t.Fatalf("ReadBars() error = %v", err)
	}
	if len(got) != len(bars) {
		t.Fatalf("ReadBars() returned %d bars, want %d", len(got), len(bars))
	}
	for i, b := range got {
		if !b.Timestamp.Equal(bars[i].Timestamp) || b.Close != bars[i].Close {
			t.Errorf("bar %d = %+v, want %+v", i, b, bars[i])
		}
	}
}

func TestParquetMergeReplacesDuplicates(t *testing.T) {
	ctx := context.Background()
	s := NewParquetStore(t.TempDir())
	bars := sampleBars(5)

	if err := s.WriteBars(ctx, "EURUSD", bars); err != nil {
		t.Fatalf("WriteBars() error = %v", err)
	}

	// Rewrite bar 2 with a corrected close.
	fixed := bars[2]
	fixed.Close = 999
	if err := s.WriteBars(ctx, "EURUSD", []domain.Bar{fixed}); err != nil {
		t.Fatalf("WriteBars() error = %v", err)
	}

	got, err := s.ReadBars(ctx, "EURUSD", bars[0].Timestamp, bars[4].Timestamp)
	if err != nil {
		t.Fatalf("ReadBars() error = %v", err)
	}
	if len(got) != 5 {
		t.Fatalf("len = %d, want 5 after merge", len(got))
	}
	if got[2].Close != 999 {
		t.Errorf("merged close = %v, want 999", got[2].Close)
	}
}

func TestParquetMissingSymbol(t *testing.T) {
	ctx := context.Background()
	s := NewParquetStore(t.TempDir())
	got, err := s.ReadBars(ctx, "ABSENT", time.Time{}, time.Now())
	if err != nil {
		t.Fatalf("ReadBars() on missing symbol error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("ReadBars() on missing symbol returned %d bars", len(got))
	}
}

func TestParquetListSymbols(t *testing.T) {
	ctx := context.Background()
	s := NewParquetStore(t.TempDir())
	for _, sym := range []string{"GBPUSD", "EURUSD"} {
		if err := s.WriteBars(ctx, sym, sampleBars(2)); err != nil {
			t.Fatalf("WriteBars(%s) error = %v", sym, err)
		}
	}
	symbols, err := s.ListSymbols(ctx)
	if err != nil {
		t.Fatalf("ListSymbols() error = %v", err)
	}
	if len(symbols) != 2 || symbols[0] != "EURUSD" || symbols[1] != "GBPUSD" {
		t.Errorf("ListSymbols() = %v, want [EURUSD GBPUSD]", symbols)
	}
}

func TestCSVRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bars.csv")
	bars := sampleBars(6)

	if err := WriteCSVBars(path, bars); err != nil {
		t.Fatalf("WriteCSVBars() error = %v", err)
	}
	got, err := ReadCSVBars(path)
	if err != nil {
		t.Fatalf("ReadCSVBars() error = %v", err)
	}
	if len(got) != len(bars) {
		t.Fatalf("ReadCSVBars() returned %d bars, want %d", len(got), len(bars))
	}
	for i, b := range got {
		if !b.Timestamp.Equal(bars[i].Timestamp) {
			t.Errorf("bar %d timestamp = %v, want %v", i, b.Timestamp, bars[i].Timestamp)
		}
		if b.Open != bars[i].Open || b.Close != bars[i].Close {
			t.Errorf("bar %d = %+v, want %+v", i, b, bars[i])
		}
	}
}

func TestCSVRejectsBadInput(t *testing.T) {
	dir := t.TempDir()
	cases := []struct {
		name    string
		content string
	}{
		{"empty file", ""},
		{"wrong header", "date,o,h,l,c,v\n2024-06-03,1,2,0.5,1.5,100\n"},
		{"bad timestamp", "timestamp,open,high,low,close,volume\nyesterday,1,2,0.5,1.5,100\n"},
		{"bad number", "timestamp,open,high,low,close,volume\n2024-06-03,one,2,0.5,1.5,100\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(dir, "bad.csv")
			if err := writeFile(t, path, tc.content); err != nil {
				t.Fatal(err)
			}
			if _, err := ReadCSVBars(path); err == nil {
				t.Errorf("ReadCSVBars() accepted invalid input:\n%s", tc.content)
			}
		})
	}
}

func TestSQLiteRunRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "results.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}
	defer s.Close()

	run := &RunRecord{
		Symbol:      "EURUSD",
		CreatedAt:   time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC),
		Bars:        250,
		StartEquity: 10000,
		FinalEquity: 11250,
		TotalTrades: 2,
		WinRate:     0.5,
		MaxDrawdown: -0.0667,
		CAGR:        0.12,
	}
	id, err := s.SaveRun(ctx, run)
	if err != nil {
		t.Fatalf("SaveRun() error = %v", err)
	}
	if id == 0 {
		t.Fatal("SaveRun() returned zero ID")
	}

	trades := []domain.Trade{
		{
			Direction:  domain.Long,
			EntryTime:  time.Date(2024, 6, 4, 0, 0, 0, 0, time.UTC),
			EntryPrice: 100,
			ExitTime:   time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC),
			ExitPrice:  110,
			Size:       10,
			PnL:        100,
			PnLPct:     10,
			ExitReason: domain.ExitTakeProfit,
		},
		{
			Direction:  domain.Short,
			EntryTime:  time.Date(2024, 6, 6, 0, 0, 0, 0, time.UTC),
			EntryPrice: 110,
			ExitTime:   time.Date(2024, 6, 7, 0, 0, 0, 0, time.UTC),
			ExitPrice:  112,
			Size:       10,
			PnL:        -20,
			PnLPct:     -1.8,
			ExitReason: domain.ExitStopLoss,
		},
	}
	if err := s.SaveTrades(ctx, id, trades); err != nil {
		t.Fatalf("SaveTrades() error = %v", err)
	}

	got, err := s.GetRun(ctx, id)
	if err != nil {
		t.Fatalf("GetRun() error = %v", err)
	}
	if got.Symbol != "EURUSD" || got.Bars != 250 || got.FinalEquity != 11250 {
		t.Errorf("GetRun() = %+v, want saved run", got)
	}
	if !got.CreatedAt.Equal(run.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, run.CreatedAt)
	}

	ledger, err := s.ListTrades(ctx, id)
	if err != nil {
		t.Fatalf("ListTrades() error = %v", err)
	}
	if len(ledger) != 2 {
		t.Fatalf("ListTrades() returned %d trades, want 2", len(ledger))
	}
	if ledger[0].Direction != domain.Long || ledger[0].ExitReason != domain.ExitTakeProfit {
		t.Errorf("trade 0 = %+v, want long take_profit", ledger[0])
	}
	if ledger[1].Direction != domain.Short || ledger[1].PnL != -20 {
		t.Errorf("trade 1 = %+v, want short with -20 pnl", ledger[1])
	}

	runs, err := s.ListRuns(ctx)
	if err != nil {
		t.Fatalf("ListRuns() error = %v", err)
	}
	if len(runs) != 1 || runs[0].ID != id {
		t.Errorf("ListRuns() = %+v, want single run %d", runs, id)
	}
}

func TestSQLiteGetRunNotFound(t *testing.T) {
	ctx := context.Background()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "results.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}
	defer s.Close()

	if _, err := s.GetRun(ctx, 42); err != ErrNotFound {
		t.Errorf("GetRun(42) error = %v, want ErrNotFound", err)
	}
}
