package store

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strconv"
	"time"

	"quantsim/internal/domain"
)

// csvHeader is the canonical column order for bar CSV files.
var csvHeader = []string{"timestamp", "open", "high", "low", "close", "volume"}

// csvTimeLayouts are the accepted timestamp formats, tried in order.
var csvTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ReadCSVBars loads a bar series from a CSV file. The first row must be a
// header matching csvHeader. Rows are returned sorted by timestamp.
func ReadCSVBars(path string) ([]domain.Bar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open bar csv: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read bar csv %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("bar csv %s is empty", path)
	}
	if len(rows[0]) < len(csvHeader) || rows[0][0] != csvHeader[0] {
		return nil, fmt.Errorf("bar csv %s: unexpected header %v", path, rows[0])
	}

	bars := make([]domain.Bar, 0, len(rows)-1)
	for i, row := range rows[1:] {
		bar, err := parseCSVBar(row)
		if err != nil {
			return nil, fmt.Errorf("bar csv %s row %d: %w", path, i+2, err)
		}
		bars = append(bars, bar)
	}
	sort.Slice(bars, func(i, j int) bool {
		return bars[i].Timestamp.Before(bars[j].Timestamp)
	})
	return bars, nil
}

// WriteCSVBars writes a bar series to a CSV file with the canonical header.
func WriteCSVBars(path string, bars []domain.Bar) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create bar csv: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return err
	}
	for _, b := range bars {
		row := []string{
			b.Timestamp.UTC().Format(time.RFC3339),
			strconv.FormatFloat(b.Open, 'f', -1, 64),
			strconv.FormatFloat(b.High, 'f', -1, 64),
			strconv.FormatFloat(b.Low, 'f', -1, 64),
			strconv.FormatFloat(b.Close, 'f', -1, 64),
			strconv.FormatFloat(b.Volume, 'f', -1, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func parseCSVBar(row []string) (domain.Bar, error) {
	if len(row) < len(csvHeader) {
		return domain.Bar{}, fmt.Errorf("want %d columns, got %d", len(csvHeader), len(row))
	}

	ts, err := parseCSVTime(row[0])
	if err != nil {
		return domain.Bar{}, err
	}

	vals := make([]float64, 5)
	for i := 0; i < 5; i++ {
		v, err := strconv.ParseFloat(row[i+1], 64)
		if err != nil {
			return domain.Bar{}, fmt.Errorf("column %s: %w", csvHeader[i+1], err)
		}
		vals[i] = v
	}

	return domain.Bar{
		Timestamp: ts,
		Open:      vals[0],
		High:      vals[1],
		Low:       vals[2],
		Close:     vals[3],
		Volume:    vals[4],
	}, nil
}

func parseCSVTime(s string) (time.Time, error) {
	for _, layout := range csvTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	// Unix seconds as a last resort.
	if secs, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(secs, 0).UTC(), nil
	}
	return time.Time{}, fmt.Errorf("unparseable timestamp %q", s)
}
