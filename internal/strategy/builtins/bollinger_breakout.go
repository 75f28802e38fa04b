package builtins

import (
	"quantsim/internal/domain"
	"quantsim/internal/indicator"
	"quantsim/internal/strategy"
)

// Compile-time interface check.
var _ strategy.Strategy = (*BollingerBreakout)(nil)

// BollingerBreakout votes Long when the close breaks above the upper band
// with positive rate-of-change, and Short on a lower-band breakout with
// negative rate-of-change.
type BollingerBreakout struct{}

// NewBollingerBreakout creates the Bollinger breakout strategy.
func NewBollingerBreakout() *BollingerBreakout {
	return &BollingerBreakout{}
}

// Name returns "bollinger_breakout".
func (s *BollingerBreakout) Name() string {
	return strategy.NameBollingerBreakout
}

// Vote detects a band breakout at bar i confirmed by momentum.
func (s *BollingerBreakout) Vote(f *indicator.Frame, i int) domain.Direction {
	if i < 1 {
		return domain.Neutral
	}
	upPrev, up := f.BBUpper[i-1], f.BBUpper[i]
	loPrev, lo := f.BBLower[i-1], f.BBLower[i]
	roc := f.ROC[i]
	if !indicator.Valid(upPrev) || !indicator.Valid(up) ||
		!indicator.Valid(loPrev) || !indicator.Valid(lo) || !indicator.Valid(roc) {
		return domain.Neutral
	}
	closePrev, close := f.Bars[i-1].Close, f.Bars[i].Close
	if closePrev <= upPrev && close > up && roc > 0 {
		return domain.Long
	}
	if closePrev >= loPrev && close < lo && roc < 0 {
		return domain.Short
	}
	return domain.Neutral
}
