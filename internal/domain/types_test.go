package domain

import (
	"testing"
	"time"
)

func TestDirection(t *testing.T) {
	if Long.Opposite() != Short {
		t.Errorf("Long.Opposite() = %v, want Short", Long.Opposite())
	}
	if Short.Opposite() != Long {
		t.Errorf("Short.Opposite() = %v, want Long", Short.Opposite())
	}
	if Neutral.Opposite() != Neutral {
		t.Errorf("Neutral.Opposite() = %v, want Neutral", Neutral.Opposite())
	}

	if Long.String() != "LONG" {
		t.Errorf("Long.String() = %q, want %q", Long.String(), "LONG")
	}
	if Short.String() != "SHORT" {
		t.Errorf("Short.String() = %q, want %q", Short.String(), "SHORT")
	}
	if Neutral.String() != "NEUTRAL" {
		t.Errorf("Neutral.String() = %q, want %q", Neutral.String(), "NEUTRAL")
	}

	// The signed values participate directly in price arithmetic.
	if int(Long) != 1 || int(Short) != -1 || int(Neutral) != 0 {
		t.Error("Direction constants have unexpected signed values")
	}
}

func TestPositionStateString(t *testing.T) {
	cases := []struct {
		state PositionState
		want  string
	}{
		{Flat, "flat"},
		{Open, "open"},
		{Closed, "closed"},
	}
	for _, c := range cases {
		if got := c.state.String(); got != c.want {
			t.Errorf("PositionState(%d).String() = %q, want %q", c.state, got, c.want)
		}
	}
}

func TestSameDay(t *testing.T) {
	a := time.Date(2024, 3, 15, 23, 59, 0, 0, time.UTC)
	b := time.Date(2024, 3, 15, 0, 1, 0, 0, time.UTC)
	c := time.Date(2024, 3, 16, 0, 1, 0, 0, time.UTC)

	if !SameDay(a, b) {
		t.Error("SameDay should be true for timestamps on the same UTC date")
	}
	if SameDay(a, c) {
		t.Error("SameDay should be false across a date boundary")
	}
}

func TestExitReasonValues(t *testing.T) {
	if ExitStopLoss != "stop_loss" {
		t.Errorf("ExitStopLoss = %q, want %q", ExitStopLoss, "stop_loss")
	}
	if ExitTakeProfit != "take_profit" {
		t.Errorf("ExitTakeProfit = %q, want %q", ExitTakeProfit, "take_profit")
	}
	if ExitEndOfData != "end_of_data" {
		t.Errorf("ExitEndOfData = %q, want %q", ExitEndOfData, "end_of_data")
	}
}

func TestTradeDuration(t *testing.T) {
	tr := Trade{
		EntryTime: time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC),
		ExitTime:  time.Date(2024, 6, 3, 15, 0, 0, 0, time.UTC),
	}
	if got := tr.Duration(); got != 6*time.Hour {
		t.Errorf("Duration() = %v, want 6h", got)
	}
}
