// Package domain defines the core data types shared across the quantsim
// system: bars, votes, signals, orders, positions, trades, and account state.
package domain

import "time"

// Direction is the side of a vote, signal, or position. Long and Short carry
// the signed values used directly in PnL and stop-distance arithmetic.
type Direction int

const (
	Short   Direction = -1
	Neutral Direction = 0
	Long    Direction = 1
)

// Opposite returns the mirrored direction. Neutral maps to itself.
func (d Direction) Opposite() Direction {
	return -d
}

// String returns "LONG", "SHORT", or "NEUTRAL".
func (d Direction) String() string {
	switch d {
	case Long:
		return "LONG"
	case Short:
		return "SHORT"
	default:
		return "NEUTRAL"
	}
}

// Bar is a single OHLCV candle. Bars are immutable once produced; the bar
// source guarantees strictly increasing timestamps.
type Bar struct {
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    float64   `json:"volume"`
}

// Vote is a single sub-strategy's directional opinion at one bar index.
type Vote struct {
	Strategy  string    `json:"strategy"`
	Direction Direction `json:"direction"`
}

// Signal is an actionable consensus produced by the voting engine. It is
// emitted only when the consensus rule is satisfied and is immutable
// afterwards. StopLoss and TakeProfit are the ATR-scaled exit levels
// computed at emission time.
type Signal struct {
	Timestamp  time.Time `json:"timestamp"`
	Direction  Direction `json:"direction"`
	EntryPrice float64   `json:"entry_price"`
	StopLoss   float64   `json:"stop_loss"`
	TakeProfit float64   `json:"take_profit"`
	Votes      []Vote    `json:"votes"`
	VoteCount  int       `json:"vote_count"` // votes agreeing with Direction
	TieBreak   bool      `json:"tie_break"`  // true when both directions qualified
}

// Order is an executable instruction derived from a Signal plus account
// state by the risk sizing engine.
type Order struct {
	Direction  Direction `json:"direction"`
	EntryPrice float64   `json:"entry_price"`
	StopLoss   float64   `json:"stop_loss"`
	TakeProfit float64   `json:"take_profit"`
	Size       int64     `json:"size"` // units, always >= 1 for an accepted order
	RiskAmount float64   `json:"risk_amount"`
}

// Account holds the mutable per-run trading state. The backtest simulator is
// the only mutator; daily fields reset at each calendar day boundary.
type Account struct {
	Equity      float64
	DailyLoss   float64 // losses accumulated today, stored as a positive number
	TradesToday int
}

// ExitReason explains why a position was closed.
type ExitReason string

const (
	ExitStopLoss   ExitReason = "stop_loss"
	ExitTakeProfit ExitReason = "take_profit"
	ExitEndOfData  ExitReason = "end_of_data"
)

// Trade is the immutable record of a closed position, appended to the trade
// ledger owned by the backtest simulator.
type Trade struct {
	Direction  Direction  `json:"direction"`
	EntryTime  time.Time  `json:"entry_time"`
	EntryPrice float64    `json:"entry_price"`
	ExitTime   time.Time  `json:"exit_time"`
	ExitPrice  float64    `json:"exit_price"`
	Size       int64      `json:"size"`
	PnL        float64    `json:"pnl"`
	PnLPct     float64    `json:"pnl_pct"`
	ExitReason ExitReason `json:"exit_reason"`
}

// Duration is the time the position was held.
func (t Trade) Duration() time.Duration {
	return t.ExitTime.Sub(t.EntryTime)
}

// PositionState enumerates the position-slot state machine.
type PositionState int

const (
	Flat PositionState = iota
	Open
	Closed
)

// String returns the lowercase state name.
func (s PositionState) String() string {
	switch s {
	case Open:
		return "open"
	case Closed:
		return "closed"
	default:
		return "flat"
	}
}

// Position is a single position slot. A slot in state Open owns its
// originating Order; once Closed it carries the resolved Trade and is
// archived to the ledger, after which the slot returns to Flat.
type Position struct {
	State     PositionState
	Order     Order
	OpenedAt  time.Time
	Trade     *Trade // set only in state Closed
}

// EquityPoint is one sample of the mark-to-market equity curve.
type EquityPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Equity    float64   `json:"equity"`
}

// SameDay reports whether two timestamps fall on the same calendar day in
// UTC. The simulator uses it to detect trading-day boundaries.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}
