// Package builtins provides the built-in sub-strategy implementations that
// ship with quantsim.
package builtins

import (
	"quantsim/internal/domain"
	"quantsim/internal/indicator"
	"quantsim/internal/strategy"
)

// Compile-time interface check.
var _ strategy.Strategy = (*EMACross)(nil)

// EMACross votes Long when the fast EMA crosses from at-or-below to above
// the slow EMA between the previous and current bar, Short on the mirrored
// downward cross, and Neutral otherwise.
type EMACross struct{}

// NewEMACross creates the EMA crossover strategy.
func NewEMACross() *EMACross {
	return &EMACross{}
}

// Name returns "ema_crossover".
func (s *EMACross) Name() string {
	return strategy.NameEMACrossover
}

// Vote detects a fast/slow EMA cross at bar i. Both bars of the cross must
// be outside the EMA warm-up window.
func (s *EMACross) Vote(f *indicator.Frame, i int) domain.Direction {
	if i < 1 {
		return domain.Neutral
	}
	fastPrev, slowPrev := f.EMAFast[i-1], f.EMASlow[i-1]
	fast, slow := f.EMAFast[i], f.EMASlow[i]
	if !indicator.Valid(fastPrev) || !indicator.Valid(slowPrev) ||
		!indicator.Valid(fast) || !indicator.Valid(slow) {
		return domain.Neutral
	}
	if fastPrev <= slowPrev && fast > slow {
		return domain.Long
	}
	if fastPrev >= slowPrev && fast < slow {
		return domain.Short
	}
	return domain.Neutral
}
