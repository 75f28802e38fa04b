package builtins

import (
	"quantsim/internal/domain"
	"quantsim/internal/indicator"
	"quantsim/internal/strategy"
)

// Compile-time interface check.
var _ strategy.Strategy = (*RSIReversal)(nil)

// RSIReversal is a mean-reversion strategy: it votes Long when the RSI exits
// its oversold zone (crosses upward through the oversold level) with the
// stochastic %K rising in confirmation, and Short on the mirrored overbought
// exit with %K falling.
type RSIReversal struct {
	oversold   float64
	overbought float64
}

// NewRSIReversal creates the RSI reversal strategy with the given oversold
// and overbought levels (conventionally 30 and 70).
func NewRSIReversal(oversold, overbought float64) *RSIReversal {
	return &RSIReversal{
		oversold:   oversold,
		overbought: overbought,
	}
}

// Name returns "rsi_reversal".
func (s *RSIReversal) Name() string {
	return strategy.NameRSIReversal
}

// Vote checks for an RSI zone exit confirmed by the stochastic oscillator.
func (s *RSIReversal) Vote(f *indicator.Frame, i int) domain.Direction {
	if i < 1 {
		return domain.Neutral
	}
	rsiPrev, rsi := f.RSI[i-1], f.RSI[i]
	kPrev, k := f.StochK[i-1], f.StochK[i]
	if !indicator.Valid(rsiPrev) || !indicator.Valid(rsi) ||
		!indicator.Valid(kPrev) || !indicator.Valid(k) {
		return domain.Neutral
	}
	if rsiPrev <= s.oversold && rsi > s.oversold && k > kPrev {
		return domain.Long
	}
	if rsiPrev >= s.overbought && rsi < s.overbought && k < kPrev {
		return domain.Short
	}
	return domain.Neutral
}
