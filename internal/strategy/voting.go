package strategy

import (
	"fmt"

	"quantsim/internal/domain"
	"quantsim/internal/indicator"
	"quantsim/internal/metrics"
)

// Canonical names of the built-in sub-strategies.
const (
	NameEMACrossover      = "ema_crossover"
	NameRSIReversal       = "rsi_reversal"
	NameMACDCrossover     = "macd_crossover"
	NameBollingerBreakout = "bollinger_breakout"
)

// TieBreak selects how the voting engine resolves bars where both directions
// reach the vote threshold simultaneously.
type TieBreak string

const (
	// TieScore picks the direction with the higher raw vote count; an exact
	// count tie yields no signal.
	TieScore TieBreak = "score"
	// TiePriority picks the direction voted by the highest-priority strategy
	// (EMA > MACD > RSI > Bollinger).
	TiePriority TieBreak = "priority"
	// TieADXTrend picks the direction on which the trend-confirming
	// strategies (MACD and EMA) agree, otherwise no signal.
	TieADXTrend TieBreak = "adx_trend"
	// TieConservative never resolves: no signal when both directions qualify.
	TieConservative TieBreak = "conservative"
	// TieMomentum follows the sign of the rate-of-change at the bar.
	TieMomentum TieBreak = "momentum"
)

// tiePriority is the fixed strategy precedence used by TiePriority, highest
// first.
var tiePriority = []string{
	NameEMACrossover,
	NameMACDCrossover,
	NameRSIReversal,
	NameBollingerBreakout,
}

// VotingConfig parameterizes a voting engine instance.
type VotingConfig struct {
	// Enabled lists the sub-strategies that participate in the vote.
	Enabled []string
	// MinVotes is the consensus threshold per direction (default 2).
	MinVotes int
	// TieBreak resolves bars where both directions qualify.
	TieBreak TieBreak
	// WarmupBars suppresses all votes for the first WarmupBars bars.
	WarmupBars int
	// ATRStopMult and ATRTakeMult scale the ATR into the stop-loss and
	// take-profit distances stamped onto emitted signals.
	ATRStopMult float64
	ATRTakeMult float64
}

// VotingEngine evaluates the enabled sub-strategies at a bar index and
// combines their votes into a final Signal under the consensus rule. It is a
// pure decision function: it holds no mutable state and is safe to share
// across independent simulation runs.
type VotingEngine struct {
	cfg        VotingConfig
	strategies []Strategy
}

// NewVotingEngine resolves the enabled strategy names against the registry
// and validates the tie-break method. Unknown names surface as configuration
// errors before any bar is processed.
func NewVotingEngine(cfg VotingConfig, reg *Registry) (*VotingEngine, error) {
	if cfg.MinVotes < 1 {
		return nil, fmt.Errorf("strategy: min_strategy_votes must be >= 1, got %d", cfg.MinVotes)
	}
	switch cfg.TieBreak {
	case TieScore, TiePriority, TieADXTrend, TieConservative, TieMomentum:
	default:
		return nil, fmt.Errorf("strategy: unknown tie-break method %q", cfg.TieBreak)
	}
	if len(cfg.Enabled) == 0 {
		return nil, fmt.Errorf("strategy: no sub-strategies enabled")
	}
	strategies := make([]Strategy, 0, len(cfg.Enabled))
	for _, name := range cfg.Enabled {
		s, ok := reg.Get(name)
		if !ok {
			return nil, fmt.Errorf("strategy: unknown strategy %q", name)
		}
		strategies = append(strategies, s)
	}
	return &VotingEngine{cfg: cfg, strategies: strategies}, nil
}

// Votes returns the individual votes of all enabled strategies at bar i.
// Inside the global warm-up window every vote is Neutral.
func (e *VotingEngine) Votes(f *indicator.Frame, i int) []domain.Vote {
	votes := make([]domain.Vote, len(e.strategies))
	for j, s := range e.strategies {
		dir := domain.Neutral
		if i >= e.cfg.WarmupBars {
			dir = s.Vote(f, i)
		}
		votes[j] = domain.Vote{Strategy: s.Name(), Direction: dir}
	}
	return votes
}

// Evaluate runs the consensus rule at bar i and returns the emitted Signal,
// or nil when no direction qualifies.
func (e *VotingEngine) Evaluate(f *indicator.Frame, i int) *domain.Signal {
	if i < 0 || i >= f.Len() || i < e.cfg.WarmupBars {
		return nil
	}
	votes := e.Votes(f, i)

	var long, short int
	for _, v := range votes {
		switch v.Direction {
		case domain.Long:
			long++
		case domain.Short:
			short++
		}
	}

	longQ := long >= e.cfg.MinVotes
	shortQ := short >= e.cfg.MinVotes

	var dir domain.Direction
	tie := longQ && shortQ
	switch {
	case tie:
		dir = e.resolveTie(f, i, votes, long, short)
	case longQ:
		dir = domain.Long
	case shortQ:
		dir = domain.Short
	}
	if dir == domain.Neutral {
		return nil
	}

	count := long
	if dir == domain.Short {
		count = short
	}

	bar := f.Bars[i]
	sig := &domain.Signal{
		Timestamp:  bar.Timestamp,
		Direction:  dir,
		EntryPrice: bar.Close,
		Votes:      votes,
		VoteCount:  count,
		TieBreak:   tie,
	}
	if atr := f.ATR[i]; indicator.Valid(atr) && atr > 0 {
		d := float64(dir)
		sig.StopLoss = bar.Close - d*atr*e.cfg.ATRStopMult
		sig.TakeProfit = bar.Close + d*atr*e.cfg.ATRTakeMult
	}
	metrics.SignalsEmitted.WithLabelValues(dir.String()).Inc()
	return sig
}

// resolveTie applies the configured tie-break method when both directions
// reached the vote threshold at the same bar. A Neutral result means no
// signal is emitted.
func (e *VotingEngine) resolveTie(f *indicator.Frame, i int, votes []domain.Vote, long, short int) domain.Direction {
	switch e.cfg.TieBreak {
	case TieScore:
		if long > short {
			return domain.Long
		}
		if short > long {
			return domain.Short
		}
		return domain.Neutral

	case TiePriority:
		byName := make(map[string]domain.Direction, len(votes))
		for _, v := range votes {
			byName[v.Strategy] = v.Direction
		}
		for _, name := range tiePriority {
			if d, ok := byName[name]; ok && d != domain.Neutral {
				return d
			}
		}
		return domain.Neutral

	case TieADXTrend:
		var ema, macd domain.Direction
		for _, v := range votes {
			switch v.Strategy {
			case NameEMACrossover:
				ema = v.Direction
			case NameMACDCrossover:
				macd = v.Direction
			}
		}
		if ema != domain.Neutral && ema == macd {
			return ema
		}
		return domain.Neutral

	case TieMomentum:
		roc := f.ROC[i]
		if !indicator.Valid(roc) {
			return domain.Neutral
		}
		if roc > 0 {
			return domain.Long
		}
		if roc < 0 {
			return domain.Short
		}
		return domain.Neutral

	default: // TieConservative
		return domain.Neutral
	}
}
