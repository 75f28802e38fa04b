package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"quantsim/internal/domain"
	"quantsim/internal/indicator"
	"quantsim/internal/metrics"
	"quantsim/internal/strategy"
)

// ErrInsufficientData is returned when the bar sequence is shorter than the
// configured warm-up window. No partial computation is attempted.
var ErrInsufficientData = errors.New("engine: insufficient bars for warm-up")

// SimConfig holds the execution-simulation parameters.
type SimConfig struct {
	// Capital is the starting equity.
	Capital float64
	// Spread is added against the position direction at entry.
	Spread float64
	// Slippage offsets the realized exit price from the theoretical SL/TP
	// level in the adverse direction.
	Slippage float64
	// WarmupBars is the minimum bar count required before simulation starts.
	WarmupBars int
}

// Result collects everything a single backtest run produces. The trade
// ledger and equity curve are owned by the simulator and returned as
// snapshots; callers must not mutate them.
type Result struct {
	StartEquity float64
	EquityCurve []domain.EquityPoint
	Trades      []domain.Trade
	Signals     []domain.Signal
	Rejections  map[RejectReason]int
	Account     domain.Account
}

// Simulator replays a bar sequence through the voting and risk engines,
// managing a single position slot through the Flat → Open → Closed state
// machine. Each Run owns its account, slot, and curve, so independent runs
// (parameter sweeps) need no coordination.
type Simulator struct {
	voting *strategy.VotingEngine
	risk   *RiskSizer
	cfg    SimConfig
	log    *slog.Logger
}

// NewSimulator wires a simulator from its two decision engines. A nil
// logger falls back to slog.Default().
func NewSimulator(voting *strategy.VotingEngine, risk *RiskSizer, cfg SimConfig, log *slog.Logger) *Simulator {
	if log == nil {
		log = slog.Default()
	}
	return &Simulator{
		voting: voting,
		risk:   risk,
		cfg:    cfg,
		log:    log,
	}
}

// Run processes the frame's bars strictly in order, one pass, no lookahead.
// Every decision at bar i depends only on data at indices <= i.
func (s *Simulator) Run(f *indicator.Frame) (*Result, error) {
	if f == nil || f.Len() == 0 {
		return nil, fmt.Errorf("%w: empty bar sequence", ErrInsufficientData)
	}
	if f.Len() < s.cfg.WarmupBars {
		return nil, fmt.Errorf("%w: have %d bars, warm-up needs %d",
			ErrInsufficientData, f.Len(), s.cfg.WarmupBars)
	}

	res := &Result{
		StartEquity: s.cfg.Capital,
		EquityCurve: make([]domain.EquityPoint, 0, f.Len()),
		Rejections:  make(map[RejectReason]int),
		Account:     domain.Account{Equity: s.cfg.Capital},
	}
	slot := domain.Position{State: domain.Flat}
	var prevTS time.Time

	for i := range f.Bars {
		bar := f.Bars[i]

		// Trading-day boundary: reset the daily limits before anything else.
		if i > 0 && !domain.SameDay(prevTS, bar.Timestamp) {
			res.Account.DailyLoss = 0
			res.Account.TradesToday = 0
		}

		// Step 1: manage an open position against this bar's range.
		if slot.State == domain.Open {
			if exitPrice, reason, hit := exitLevel(slot.Order, bar, s.cfg.Slippage); hit {
				s.closePosition(res, &slot, bar.Timestamp, exitPrice, reason)
			}
		}

		// Step 2: a flat slot may open on a fresh signal.
		if slot.State == domain.Flat {
			if sig := s.voting.Evaluate(f, i); sig != nil {
				res.Signals = append(res.Signals, *sig)
				order, reject := s.risk.SizeOrder(sig, res.Account, f.ATR[i])
				if order == nil {
					res.Rejections[reject]++
					s.log.Debug("signal rejected",
						"time", bar.Timestamp, "direction", sig.Direction.String(),
						"reason", string(reject))
				} else {
					// Spread is paid at entry, against the position.
					order.EntryPrice += float64(order.Direction) * s.cfg.Spread
					slot = domain.Position{
						State:    domain.Open,
						Order:    *order,
						OpenedAt: bar.Timestamp,
					}
					s.log.Debug("position opened",
						"time", bar.Timestamp, "direction", order.Direction.String(),
						"entry", order.EntryPrice, "size", order.Size,
						"stop", order.StopLoss, "take", order.TakeProfit)
				}
			}
		}

		// Step 3: one equity point per bar, marked to the bar's close.
		eq := res.Account.Equity
		if slot.State == domain.Open {
			eq += pnl(slot.Order, bar.Close)
		}
		res.EquityCurve = append(res.EquityCurve, domain.EquityPoint{
			Timestamp: bar.Timestamp,
			Equity:    eq,
		})
		metrics.EquityGauge.Set(eq)
		prevTS = bar.Timestamp
	}

	// A position still open at the end of the data is force-closed at the
	// final close price.
	if slot.State == domain.Open {
		last := f.Bars[f.Len()-1]
		s.closePosition(res, &slot, last.Timestamp, last.Close, domain.ExitEndOfData)
		// Rewrite the final equity point: the close is now realized.
		res.EquityCurve[len(res.EquityCurve)-1].Equity = res.Account.Equity
	}

	s.log.Info("backtest finished",
		"bars", f.Len(), "trades", len(res.Trades),
		"signals", len(res.Signals), "final_equity", res.Account.Equity)
	return res, nil
}

// closePosition resolves the slot to Closed, archives the trade, updates the
// account, and returns the slot to Flat.
func (s *Simulator) closePosition(res *Result, slot *domain.Position, ts time.Time, exitPrice float64, reason domain.ExitReason) {
	o := slot.Order
	realized := pnl(o, exitPrice)

	trade := domain.Trade{
		Direction:  o.Direction,
		EntryTime:  slot.OpenedAt,
		EntryPrice: o.EntryPrice,
		ExitTime:   ts,
		ExitPrice:  exitPrice,
		Size:       o.Size,
		PnL:        realized,
		ExitReason: reason,
	}
	if notional := o.EntryPrice * float64(o.Size); notional > 0 {
		trade.PnLPct = realized / notional * 100
	}

	slot.State = domain.Closed
	slot.Trade = &trade
	res.Trades = append(res.Trades, trade)

	res.Account.Equity += realized
	if realized < 0 {
		res.Account.DailyLoss += -realized
	}
	res.Account.TradesToday++

	metrics.TradesClosed.WithLabelValues(string(reason)).Inc()
	s.log.Debug("position closed",
		"time", ts, "direction", o.Direction.String(),
		"exit", exitPrice, "pnl", realized, "reason", string(reason))

	// Archive done; the slot is free again.
	*slot = domain.Position{State: domain.Flat}
}

// exitLevel checks an open order against the bar's high/low. When both the
// stop-loss and take-profit levels fall inside the bar's range the stop wins;
// the simulator does not model the intrabar path. The returned price already
// includes adverse slippage.
func exitLevel(o domain.Order, bar domain.Bar, slippage float64) (float64, domain.ExitReason, bool) {
	switch o.Direction {
	case domain.Long:
		if bar.Low <= o.StopLoss {
			return o.StopLoss - slippage, domain.ExitStopLoss, true
		}
		if bar.High >= o.TakeProfit {
			return o.TakeProfit - slippage, domain.ExitTakeProfit, true
		}
	case domain.Short:
		if bar.High >= o.StopLoss {
			return o.StopLoss + slippage, domain.ExitStopLoss, true
		}
		if bar.Low <= o.TakeProfit {
			return o.TakeProfit + slippage, domain.ExitTakeProfit, true
		}
	}
	return 0, "", false
}

// pnl computes the signed profit of the order at the given price.
func pnl(o domain.Order, price float64) float64 {
	return float64(o.Direction) * (price - o.EntryPrice) * float64(o.Size)
}
