package builtins

import "quantsim/internal/strategy"

// RegisterAll registers every built-in sub-strategy with its conventional
// thresholds: RSI 30/70 zones and an ADX gate of 20.
func RegisterAll(r *strategy.Registry) {
	r.Register(NewEMACross())
	r.Register(NewRSIReversal(30, 70))
	r.Register(NewMACDCross(20))
	r.Register(NewBollingerBreakout())
}
