package util

import "testing"

func TestNewLoggerLevels(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error", "DEBUG", "bogus", ""} {
		if logger := NewLogger(level); logger == nil {
			t.Errorf("NewLogger(%q) = nil", level)
		}
	}
}
