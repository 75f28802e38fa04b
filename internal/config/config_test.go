package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg, err := Default()
	if err != nil {
		t.Fatalf("Default() error = %v", err)
	}
	if cfg.Indicator.EMAFast != 12 || cfg.Indicator.EMASlow != 26 {
		t.Errorf("EMA periods = %d/%d, want 12/26", cfg.Indicator.EMAFast, cfg.Indicator.EMASlow)
	}
	if cfg.Strategy.MinVotes != 2 {
		t.Errorf("MinVotes = %d, want 2", cfg.Strategy.MinVotes)
	}
	if len(cfg.Strategy.Enabled) != 4 {
		t.Errorf("Enabled = %v, want all four strategies", cfg.Strategy.Enabled)
	}
	if cfg.Risk.RiskPerTrade != 0.0075 {
		t.Errorf("RiskPerTrade = %v, want 0.0075", cfg.Risk.RiskPerTrade)
	}
	if cfg.Execution.Capital != 10000 {
		t.Errorf("Capital = %v, want 10000", cfg.Execution.Capital)
	}
	if cfg.Report.PeriodsPerYear != 252 {
		t.Errorf("PeriodsPerYear = %v, want 252", cfg.Report.PeriodsPerYear)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeTemp(t, `
symbol: GBPUSD
strategy:
  min_strategy_votes: 3
  enabled_strategies: [ema_crossover, macd_crossover, rsi_reversal]
  tie_break_method: priority
risk:
  risk_per_trade: 0.01
  max_trades_per_day: 3
execution:
  capital: 25000
  simulate_spread: 0.0002
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Symbol != "GBPUSD" {
		t.Errorf("Symbol = %q, want GBPUSD", cfg.Symbol)
	}
	if cfg.Strategy.MinVotes != 3 {
		t.Errorf("MinVotes = %d, want 3", cfg.Strategy.MinVotes)
	}
	if cfg.Strategy.TieBreak != "priority" {
		t.Errorf("TieBreak = %q, want priority", cfg.Strategy.TieBreak)
	}
	if cfg.Execution.Capital != 25000 {
		t.Errorf("Capital = %v, want 25000", cfg.Execution.Capital)
	}
	if cfg.Execution.SimulateSpread != 0.0002 {
		t.Errorf("SimulateSpread = %v, want 0.0002", cfg.Execution.SimulateSpread)
	}
	// Unset sections still receive defaults.
	if cfg.Indicator.RSIPeriod != 14 {
		t.Errorf("RSIPeriod = %d, want default 14", cfg.Indicator.RSIPeriod)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	path := writeTemp(t, "symbol: EURUSD\n")
	t.Setenv("QUANTSIM_SYMBOL", "USDJPY")
	t.Setenv("QUANTSIM_CAPITAL", "50000")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Symbol != "USDJPY" {
		t.Errorf("Symbol = %q, want env override USDJPY", cfg.Symbol)
	}
	if cfg.Execution.Capital != 50000 {
		t.Errorf("Capital = %v, want env override 50000", cfg.Execution.Capital)
	}
}

func TestValidateRejects(t *testing.T) {
	cases := []struct {
		name string
		yaml string
	}{
		{"fast ema not below slow", "indicators:\n  ema_fast: 26\n  ema_slow: 26\n"},
		{"unknown strategy", "strategy:\n  enabled_strategies: [golden_cross]\n"},
		{"unknown tie break", "strategy:\n  tie_break_method: coin_flip\n"},
		{"negative risk", "risk:\n  risk_per_trade: -0.01\n"},
		{"excessive risk", "risk:\n  risk_per_trade: 0.9\n"},
		{"negative spread", "execution:\n  simulate_spread: -0.1\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeTemp(t, tc.yaml)
			if _, err := Load(path); err == nil {
				t.Errorf("Load() accepted invalid config:\n%s", tc.yaml)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("Load() of a missing file did not fail")
	}
}

func TestConversions(t *testing.T) {
	cfg, err := Default()
	if err != nil {
		t.Fatalf("Default() error = %v", err)
	}
	p := cfg.IndicatorParams()
	if p.EMAFast != 12 || p.EMASlow != 26 || p.BBK != 2.0 {
		t.Errorf("IndicatorParams = %+v, want defaults carried over", p)
	}
	v := cfg.VotingConfig()
	if v.MinVotes != 2 || v.ATRStopMult != 1.5 || v.ATRTakeMult != 2.0 {
		t.Errorf("VotingConfig = %+v, want min votes 2 and ATR mults 1.5/2.0", v)
	}
	r := cfg.RiskCfg()
	if r.RiskPerTrade != 0.0075 || r.MaxTradesPerDay != 5 {
		t.Errorf("RiskCfg = %+v, want defaults carried over", r)
	}
	s := cfg.SimCfg()
	if s.Capital != 10000 || s.WarmupBars != 50 {
		t.Errorf("SimCfg = %+v, want capital 10000 and warmup 50", s)
	}
}
