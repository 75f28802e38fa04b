package builtins

import (
	"quantsim/internal/domain"
	"quantsim/internal/indicator"
	"quantsim/internal/strategy"
)

// Compile-time interface check.
var _ strategy.Strategy = (*MACDCross)(nil)

// MACDCross votes on MACD line / signal line crossovers, gated by a minimum
// ADX so the strategy only fires when a trend has measurable strength.
type MACDCross struct {
	adxMin float64
}

// NewMACDCross creates the MACD crossover strategy with the given ADX
// trend-strength gate (conventionally 20).
func NewMACDCross(adxMin float64) *MACDCross {
	return &MACDCross{adxMin: adxMin}
}

// Name returns "macd_crossover".
func (s *MACDCross) Name() string {
	return strategy.NameMACDCrossover
}

// Vote detects a MACD/signal cross at bar i with the ADX gate open.
func (s *MACDCross) Vote(f *indicator.Frame, i int) domain.Direction {
	if i < 1 {
		return domain.Neutral
	}
	linePrev, sigPrev := f.MACD[i-1], f.MACDSignal[i-1]
	line, sig := f.MACD[i], f.MACDSignal[i]
	adx := f.ADX[i]
	if !indicator.Valid(linePrev) || !indicator.Valid(sigPrev) ||
		!indicator.Valid(line) || !indicator.Valid(sig) || !indicator.Valid(adx) {
		return domain.Neutral
	}
	if adx <= s.adxMin {
		return domain.Neutral
	}
	if linePrev <= sigPrev && line > sig {
		return domain.Long
	}
	if linePrev >= sigPrev && line < sig {
		return domain.Short
	}
	return domain.Neutral
}
