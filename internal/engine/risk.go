// Package engine contains the risk sizing engine and the backtest simulator
// that together turn signals into simulated trade outcomes.
package engine

import (
	"math"

	"quantsim/internal/domain"
	"quantsim/internal/metrics"
)

// RiskConfig holds the pre-trade risk parameters.
type RiskConfig struct {
	// RiskPerTrade is the fraction of equity put at risk per trade.
	RiskPerTrade float64
	// ATRStopMult and ATRTakeMult scale the ATR into stop-loss and
	// take-profit distances.
	ATRStopMult float64
	ATRTakeMult float64
	// DailyLossLimit halts trading for the rest of the day once the
	// accumulated daily loss reaches this fraction of equity.
	DailyLossLimit float64
	// MaxTradesPerDay caps the number of trades per calendar day.
	MaxTradesPerDay int
}

// RejectReason explains why the risk sizer declined to produce an order.
// A rejection is a normal decision outcome, not an error.
type RejectReason string

const (
	RejectNone         RejectReason = ""
	RejectMaxTrades    RejectReason = "max_trades_per_day"
	RejectDailyLoss    RejectReason = "daily_loss_limit"
	RejectStopDistance RejectReason = "zero_stop_distance"
	RejectZeroSize     RejectReason = "zero_size"
)

// RiskSizer converts a raw signal plus current account state into an
// executable order under the configured risk limits. It is a pure decision
// function: it never mutates the account.
type RiskSizer struct {
	cfg RiskConfig
}

// NewRiskSizer creates a RiskSizer with the given limits.
func NewRiskSizer(cfg RiskConfig) *RiskSizer {
	return &RiskSizer{cfg: cfg}
}

// SizeOrder evaluates the rejection rules and, when none applies, sizes an
// order for the signal. The returned order is nil whenever a rejection rule
// fires; the second value names the rule.
func (r *RiskSizer) SizeOrder(sig *domain.Signal, acct domain.Account, atr float64) (*domain.Order, RejectReason) {
	if reason := r.check(acct, atr); reason != RejectNone {
		metrics.OrdersRejected.WithLabelValues(string(reason)).Inc()
		return nil, reason
	}

	stopDistance := atr * r.cfg.ATRStopMult
	riskAmount := acct.Equity * r.cfg.RiskPerTrade
	size := int64(math.Floor(riskAmount / stopDistance))
	if size == 0 {
		metrics.OrdersRejected.WithLabelValues(string(RejectZeroSize)).Inc()
		return nil, RejectZeroSize
	}

	d := float64(sig.Direction)
	return &domain.Order{
		Direction:  sig.Direction,
		EntryPrice: sig.EntryPrice,
		StopLoss:   sig.EntryPrice - d*stopDistance,
		TakeProfit: sig.EntryPrice + d*atr*r.cfg.ATRTakeMult,
		Size:       size,
		RiskAmount: riskAmount,
	}, RejectNone
}

// check applies the pre-sizing rejection rules in order.
func (r *RiskSizer) check(acct domain.Account, atr float64) RejectReason {
	if acct.TradesToday >= r.cfg.MaxTradesPerDay {
		return RejectMaxTrades
	}
	if acct.DailyLoss >= acct.Equity*r.cfg.DailyLossLimit {
		return RejectDailyLoss
	}
	if math.IsNaN(atr) || atr*r.cfg.ATRStopMult <= 0 {
		return RejectStopDistance
	}
	return RejectNone
}
