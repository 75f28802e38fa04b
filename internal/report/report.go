// Package report derives aggregate performance statistics from an equity
// curve and a trade ledger. Reports are stateless snapshots recomputed on
// demand; indeterminate ratios are nil, never coerced to zero or infinity.
package report

import (
	"fmt"
	"math"
	"strings"

	"quantsim/internal/domain"
)

// Report is the derived performance snapshot of one backtest run. Ratio
// fields are pointers: nil marks an arithmetically indeterminate value
// (zero-variance returns, zero-loss profit factor) and serializes to JSON
// null.
type Report struct {
	Bars        int     `json:"bars"`
	StartEquity float64 `json:"start_equity"`
	FinalEquity float64 `json:"final_equity"`

	CAGR        float64  `json:"cagr"`
	Sharpe      *float64 `json:"sharpe"`
	Sortino     *float64 `json:"sortino"`
	MaxDrawdown float64  `json:"max_drawdown"` // negative fraction

	TotalTrades   int      `json:"total_trades"`
	WinningTrades int      `json:"winning_trades"`
	LosingTrades  int      `json:"losing_trades"`
	WinRate       float64  `json:"win_rate"`
	ProfitFactor  *float64 `json:"profit_factor"` // nil when gross loss is zero and gross profit positive

	TotalPnL    float64 `json:"total_pnl"`
	TotalPnLPct float64 `json:"total_pnl_pct"`
	AvgPnL      float64 `json:"avg_pnl"`
	AvgWin      float64 `json:"avg_win"`
	AvgLoss     float64 `json:"avg_loss"`
	BestTrade   float64 `json:"best_trade"`
	WorstTrade  float64 `json:"worst_trade"`
	GrossProfit float64 `json:"gross_profit"`
	GrossLoss   float64 `json:"gross_loss"`
}

// Compute derives a Report from the equity curve and trade ledger.
// periodsPerYear annualizes the per-bar return statistics (252 for daily
// bars).
func Compute(curve []domain.EquityPoint, trades []domain.Trade, periodsPerYear float64) Report {
	r := Report{Bars: len(curve)}
	if len(curve) == 0 {
		return r
	}
	r.StartEquity = curve[0].Equity
	r.FinalEquity = curve[len(curve)-1].Equity

	r.CAGR = cagr(r.StartEquity, r.FinalEquity, len(curve), periodsPerYear)
	r.MaxDrawdown = MaxDrawdown(curve)

	returns := barReturns(curve)
	r.Sharpe = annualizedRatio(returns, returns, periodsPerYear)
	r.Sortino = annualizedRatio(returns, negatives(returns), periodsPerYear)

	r.TotalTrades = len(trades)
	for _, t := range trades {
		r.TotalPnL += t.PnL
		switch {
		case t.PnL > 0:
			r.WinningTrades++
			r.GrossProfit += t.PnL
		case t.PnL < 0:
			r.LosingTrades++
			r.GrossLoss += -t.PnL
		}
		if t.PnL > r.BestTrade {
			r.BestTrade = t.PnL
		}
		if t.PnL < r.WorstTrade {
			r.WorstTrade = t.PnL
		}
	}
	if r.TotalTrades > 0 {
		r.WinRate = float64(r.WinningTrades) / float64(r.TotalTrades)
		r.AvgPnL = r.TotalPnL / float64(r.TotalTrades)
	}
	if r.WinningTrades > 0 {
		r.AvgWin = r.GrossProfit / float64(r.WinningTrades)
	}
	if r.LosingTrades > 0 {
		r.AvgLoss = -r.GrossLoss / float64(r.LosingTrades)
	}
	if r.StartEquity > 0 {
		r.TotalPnLPct = r.TotalPnL / r.StartEquity * 100
	}

	switch {
	case r.GrossLoss > 0:
		pf := r.GrossProfit / r.GrossLoss
		r.ProfitFactor = &pf
	case r.GrossProfit > 0:
		r.ProfitFactor = nil // no losing trades: the ratio is unbounded
	default:
		zero := 0.0
		r.ProfitFactor = &zero
	}

	return r
}

// Summary renders the report as a human-readable block for terminal output.
func (r Report) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Bars:           %d\n", r.Bars)
	fmt.Fprintf(&b, "Start equity:   %.2f\n", r.StartEquity)
	fmt.Fprintf(&b, "Final equity:   %.2f\n", r.FinalEquity)
	fmt.Fprintf(&b, "Total PnL:      %.2f (%.2f%%)\n", r.TotalPnL, r.TotalPnLPct)
	fmt.Fprintf(&b, "CAGR:           %.2f%%\n", r.CAGR*100)
	fmt.Fprintf(&b, "Max drawdown:   %.2f%%\n", r.MaxDrawdown*100)
	fmt.Fprintf(&b, "Sharpe:         %s\n", fmtRatio(r.Sharpe))
	fmt.Fprintf(&b, "Sortino:        %s\n", fmtRatio(r.Sortino))
	fmt.Fprintf(&b, "Trades:         %d (%d won, %d lost)\n", r.TotalTrades, r.WinningTrades, r.LosingTrades)
	fmt.Fprintf(&b, "Win rate:       %.1f%%\n", r.WinRate*100)
	fmt.Fprintf(&b, "Profit factor:  %s\n", fmtRatio(r.ProfitFactor))
	fmt.Fprintf(&b, "Avg win/loss:   %.2f / %.2f\n", r.AvgWin, r.AvgLoss)
	fmt.Fprintf(&b, "Best/worst:     %.2f / %.2f\n", r.BestTrade, r.WorstTrade)
	return b.String()
}

func fmtRatio(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", *v)
}

// MaxDrawdown returns the maximum peak-to-trough decline of the equity curve
// as a negative fraction (0 when the curve never declines).
func MaxDrawdown(curve []domain.EquityPoint) float64 {
	peak := math.Inf(-1)
	maxDD := 0.0
	for _, p := range curve {
		if p.Equity > peak {
			peak = p.Equity
		}
		if peak > 0 {
			if dd := p.Equity/peak - 1; dd < maxDD {
				maxDD = dd
			}
		}
	}
	return maxDD
}

// cagr annualizes the total return over the observed bar count.
func cagr(start, end float64, bars int, periodsPerYear float64) float64 {
	if start <= 0 || end <= 0 || bars == 0 {
		return 0
	}
	return math.Pow(end/start, periodsPerYear/float64(bars)) - 1
}

// barReturns computes bar-to-bar fractional returns.
func barReturns(curve []domain.EquityPoint) []float64 {
	if len(curve) < 2 {
		return nil
	}
	out := make([]float64, 0, len(curve)-1)
	for i := 1; i < len(curve); i++ {
		prev := curve[i-1].Equity
		if prev == 0 {
			out = append(out, 0)
			continue
		}
		out = append(out, curve[i].Equity/prev-1)
	}
	return out
}

func negatives(returns []float64) []float64 {
	var out []float64
	for _, r := range returns {
		if r < 0 {
			out = append(out, r)
		}
	}
	return out
}

// annualizedRatio computes mean(returns)/stdev(denom) × sqrt(periodsPerYear).
// It returns nil when the denominator series has zero variance — the ratio is
// indeterminate, not zero.
func annualizedRatio(returns, denom []float64, periodsPerYear float64) *float64 {
	if len(returns) == 0 {
		return nil
	}
	sd := stdev(denom)
	if sd == 0 {
		return nil
	}
	v := mean(returns) / sd * math.Sqrt(periodsPerYear)
	return &v
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// stdev is the population standard deviation.
func stdev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := mean(values)
	sum := 0.0
	for _, v := range values {
		d := v - m
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)))
}
