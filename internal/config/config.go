// Package config loads and validates the YAML configuration consumed by the
// voting engine, the risk sizer, and the backtest simulator. Invalid
// configuration is surfaced here, before any bar is processed.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"quantsim/internal/engine"
	"quantsim/internal/indicator"
	"quantsim/internal/strategy"
)

// ---------------------------------------------------------------------------
// Configuration structs
// ---------------------------------------------------------------------------

// Config is the top-level configuration for quantsim.
type Config struct {
	Symbol    string          `yaml:"symbol" default:"EURUSD"`
	Storage   Storage         `yaml:"storage"`
	Logging   Logging         `yaml:"logging"`
	Indicator IndicatorConfig `yaml:"indicators"`
	Strategy  StrategyConfig  `yaml:"strategy"`
	Risk      RiskConfig      `yaml:"risk"`
	Execution ExecutionConfig `yaml:"execution"`
	Report    ReportConfig    `yaml:"report"`
}

// Storage holds paths for bar data and result persistence.
type Storage struct {
	DataDir    string `yaml:"data_dir" default:"data"`
	SQLitePath string `yaml:"sqlite_path" default:"quantsim.db"`
}

// Logging configures the application logger.
type Logging struct {
	Level string `yaml:"level" default:"info"`
}

// IndicatorConfig holds the period parameters for the indicator library.
type IndicatorConfig struct {
	EMAFast        int     `yaml:"ema_fast" default:"12" validate:"gt=0"`
	EMASlow        int     `yaml:"ema_slow" default:"26" validate:"gt=0"`
	RSIPeriod      int     `yaml:"rsi_period" default:"14" validate:"gt=0"`
	MACDSignal     int     `yaml:"macd_signal" default:"9" validate:"gt=0"`
	ATRPeriod      int     `yaml:"atr_period" default:"14" validate:"gt=0"`
	BBPeriod       int     `yaml:"bb_period" default:"20" validate:"gt=0"`
	BBK            float64 `yaml:"bb_k" default:"2.0" validate:"gt=0"`
	StochK         int     `yaml:"stoch_k" default:"14" validate:"gt=0"`
	StochD         int     `yaml:"stoch_d" default:"3" validate:"gt=0"`
	WilliamsPeriod int     `yaml:"williams_period" default:"14" validate:"gt=0"`
	ADXPeriod      int     `yaml:"adx_period" default:"14" validate:"gt=0"`
	CCIPeriod      int     `yaml:"cci_period" default:"20" validate:"gt=0"`
	MomentumPeriod int     `yaml:"momentum_period" default:"10" validate:"gt=0"`
	ROCPeriod      int     `yaml:"roc_period" default:"10" validate:"gt=0"`
}

// StrategyConfig selects the sub-strategies and the consensus rule.
type StrategyConfig struct {
	Enabled    []string `yaml:"enabled_strategies" default:"[\"ema_crossover\",\"rsi_reversal\",\"macd_crossover\",\"bollinger_breakout\"]"`
	MinVotes   int      `yaml:"min_strategy_votes" default:"2" validate:"gte=1"`
	TieBreak   string   `yaml:"tie_break_method" default:"score"`
	WarmupBars int      `yaml:"warmup_bars" default:"50" validate:"gte=0"`
}

// RiskConfig holds the risk sizing parameters.
type RiskConfig struct {
	RiskPerTrade    float64 `yaml:"risk_per_trade" default:"0.0075" validate:"gt=0,lte=0.5"`
	ATRSLMult       float64 `yaml:"atr_sl_mult" default:"1.5" validate:"gt=0"`
	ATRTPMult       float64 `yaml:"atr_tp_mult" default:"2.0" validate:"gt=0"`
	DailyLossLimit  float64 `yaml:"daily_loss_limit" default:"0.02" validate:"gt=0,lte=1"`
	MaxTradesPerDay int     `yaml:"max_trades_per_day" default:"5" validate:"gte=1"`
}

// ExecutionConfig holds the execution-simulation parameters.
type ExecutionConfig struct {
	Capital          float64 `yaml:"capital" default:"10000" validate:"gt=0"`
	SimulateSpread   float64 `yaml:"simulate_spread" default:"0" validate:"gte=0"`
	SimulateSlippage float64 `yaml:"simulate_slippage" default:"0" validate:"gte=0"`
}

// ReportConfig holds the reporting parameters.
type ReportConfig struct {
	PeriodsPerYear float64 `yaml:"periods_per_year" default:"252" validate:"gt=0"`
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

var validate = validator.New()

// knownStrategies enumerates the valid enabled_strategies entries.
var knownStrategies = map[string]bool{
	strategy.NameEMACrossover:      true,
	strategy.NameRSIReversal:       true,
	strategy.NameMACDCrossover:     true,
	strategy.NameBollingerBreakout: true,
}

// Default returns a configuration populated entirely from struct-tag
// defaults.
func Default() (*Config, error) {
	cfg := &Config{}
	if err := defaults.Set(cfg); err != nil {
		return nil, fmt.Errorf("config: apply defaults: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load reads the YAML configuration file at the given path, fills unset
// fields from defaults, applies environment variable overrides, and
// validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := defaults.Set(cfg); err != nil {
		return nil, fmt.Errorf("config: apply defaults: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides checks well-known environment variables and overrides
// the corresponding configuration fields when they are set.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("QUANTSIM_SYMBOL"); v != "" {
		cfg.Symbol = v
	}
	if v := os.Getenv("QUANTSIM_DATA_DIR"); v != "" {
		cfg.Storage.DataDir = v
	}
	if v := os.Getenv("QUANTSIM_SQLITE_PATH"); v != "" {
		cfg.Storage.SQLitePath = v
	}
	if v := os.Getenv("QUANTSIM_CAPITAL"); v != "" {
		if c, err := strconv.ParseFloat(v, 64); err == nil && c > 0 {
			cfg.Execution.Capital = c
		}
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

// Validate surfaces configuration problems before any bar processing:
// out-of-range numerics, unrecognized strategy names, and unknown tie-break
// methods.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.Indicator.EMAFast >= c.Indicator.EMASlow {
		return fmt.Errorf("config: ema_fast (%d) must be less than ema_slow (%d)",
			c.Indicator.EMAFast, c.Indicator.EMASlow)
	}
	if len(c.Strategy.Enabled) == 0 {
		return fmt.Errorf("config: enabled_strategies must not be empty")
	}
	for _, name := range c.Strategy.Enabled {
		if !knownStrategies[name] {
			return fmt.Errorf("config: unrecognized strategy %q", name)
		}
	}
	switch strategy.TieBreak(c.Strategy.TieBreak) {
	case strategy.TieScore, strategy.TiePriority, strategy.TieADXTrend,
		strategy.TieConservative, strategy.TieMomentum:
	default:
		return fmt.Errorf("config: unknown tie_break_method %q", c.Strategy.TieBreak)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Conversions into the engine parameter types
// ---------------------------------------------------------------------------

// IndicatorParams maps the indicator section onto the library's parameters.
func (c *Config) IndicatorParams() indicator.Params {
	return indicator.Params{
		EMAFast:    c.Indicator.EMAFast,
		EMASlow:    c.Indicator.EMASlow,
		RSIPeriod:  c.Indicator.RSIPeriod,
		MACDSignal: c.Indicator.MACDSignal,
		ATRPeriod:  c.Indicator.ATRPeriod,
		BBPeriod:   c.Indicator.BBPeriod,
		BBK:        c.Indicator.BBK,
		StochK:     c.Indicator.StochK,
		StochD:     c.Indicator.StochD,
		WilliamsP:  c.Indicator.WilliamsPeriod,
		ADXPeriod:  c.Indicator.ADXPeriod,
		CCIPeriod:  c.Indicator.CCIPeriod,
		MomentumP:  c.Indicator.MomentumPeriod,
		ROCPeriod:  c.Indicator.ROCPeriod,
	}
}

// VotingConfig maps the strategy section onto the voting engine's
// configuration.
func (c *Config) VotingConfig() strategy.VotingConfig {
	return strategy.VotingConfig{
		Enabled:     c.Strategy.Enabled,
		MinVotes:    c.Strategy.MinVotes,
		TieBreak:    strategy.TieBreak(c.Strategy.TieBreak),
		WarmupBars:  c.Strategy.WarmupBars,
		ATRStopMult: c.Risk.ATRSLMult,
		ATRTakeMult: c.Risk.ATRTPMult,
	}
}

// RiskCfg maps the risk section onto the risk sizer's configuration.
func (c *Config) RiskCfg() engine.RiskConfig {
	return engine.RiskConfig{
		RiskPerTrade:    c.Risk.RiskPerTrade,
		ATRStopMult:     c.Risk.ATRSLMult,
		ATRTakeMult:     c.Risk.ATRTPMult,
		DailyLossLimit:  c.Risk.DailyLossLimit,
		MaxTradesPerDay: c.Risk.MaxTradesPerDay,
	}
}

// SimCfg maps the execution section onto the simulator's configuration.
func (c *Config) SimCfg() engine.SimConfig {
	return engine.SimConfig{
		Capital:    c.Execution.Capital,
		Spread:     c.Execution.SimulateSpread,
		Slippage:   c.Execution.SimulateSlippage,
		WarmupBars: c.Strategy.WarmupBars,
	}
}
