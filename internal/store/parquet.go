package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/parquet-go/parquet-go"

	"quantsim/internal/domain"
)

// Compile-time interface check.
var _ BarStore = (*ParquetStore)(nil)

// ParquetStore implements BarStore using one Parquet file per symbol.
type ParquetStore struct {
	DataDir string
}

// NewParquetStore creates a ParquetStore rooted at the given data directory.
func NewParquetStore(dataDir string) *ParquetStore {
	return &ParquetStore{DataDir: dataDir}
}

// barRecord is the on-disk Parquet schema for a bar.
type barRecord struct {
	Timestamp int64   `parquet:"timestamp,timestamp(millisecond)"` // Unix ms
	Open      float64 `parquet:"open"`
	High      float64 `parquet:"high"`
	Low       float64 `parquet:"low"`
	Close     float64 `parquet:"close"`
	Volume    float64 `parquet:"volume"`
}

// WriteBars merges the incoming bars into the symbol's Parquet file,
// replacing records that share a timestamp.
func (s *ParquetStore) WriteBars(_ context.Context, symbol string, bars []domain.Bar) error {
	if len(bars) == 0 {
		return nil
	}

	incoming := make([]barRecord, 0, len(bars))
	for _, b := range bars {
		incoming = append(incoming, barRecord{
			Timestamp: b.Timestamp.UnixMilli(),
			Open:      b.Open,
			High:      b.High,
			Low:       b.Low,
			Close:     b.Close,
			Volume:    b.Volume,
		})
	}

	path := s.barPath(symbol)
	existing, _ := readParquetFile[barRecord](path)
	merged := mergeBarRecords(existing, incoming)

	if err := writeParquetFile(path, merged); err != nil {
		return fmt.Errorf("writing bars for %s: %w", symbol, err)
	}
	return nil
}

// ReadBars returns the symbol's bars within [start, end], sorted by
// timestamp. A missing file yields an empty result, not an error.
func (s *ParquetStore) ReadBars(_ context.Context, symbol string, start, end time.Time) ([]domain.Bar, error) {
	records, err := readParquetFile[barRecord](s.barPath(symbol))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading bars for %s: %w", symbol, err)
	}

	var bars []domain.Bar
	for _, r := range records {
		ts := time.UnixMilli(r.Timestamp).UTC()
		if (ts.Equal(start) || ts.After(start)) && (ts.Equal(end) || ts.Before(end)) {
			bars = append(bars, domain.Bar{
				Timestamp: ts,
				Open:      r.Open,
				High:      r.High,
				Low:       r.Low,
				Close:     r.Close,
				Volume:    r.Volume,
			})
		}
	}
	return bars, nil
}

// ListSymbols lists all symbols with a bar file, sorted.
func (s *ParquetStore) ListSymbols(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.DataDir, "bars"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var symbols []string
	for _, e := range entries {
		if name, ok := strings.CutSuffix(e.Name(), ".parquet"); ok && !e.IsDir() {
			symbols = append(symbols, name)
		}
	}
	sort.Strings(symbols)
	return symbols, nil
}

// barPath returns the bar file path: <DataDir>/bars/<SYMBOL>.parquet
func (s *ParquetStore) barPath(symbol string) string {
	return filepath.Join(s.DataDir, "bars", strings.ToUpper(symbol)+".parquet")
}

func writeParquetFile[T any](path string, records []T) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return parquet.WriteFile(path, records)
}

func readParquetFile[T any](path string) ([]T, error) {
	return parquet.ReadFile[T](path)
}

// mergeBarRecords deduplicates by timestamp, preferring incoming records.
// Results are sorted by timestamp.
func mergeBarRecords(existing, incoming []barRecord) []barRecord {
	seen := make(map[int64]barRecord, len(existing)+len(incoming))
	for _, r := range existing {
		seen[r.Timestamp] = r
	}
	for _, r := range incoming {
		seen[r.Timestamp] = r
	}

	merged := make([]barRecord, 0, len(seen))
	for _, r := range seen {
		merged = append(merged, r)
	}
	sort.Slice(merged, func(i, j int) bool {
		return merged[i].Timestamp < merged[j].Timestamp
	})
	return merged
}
