// quantsim-signal evaluates the most recent bar of a series and prints the
// consensus signal, and the sized order that would be submitted for it, as
// JSON. With no consensus it reports direction "neutral" and no order.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"quantsim/internal/config"
	"quantsim/internal/domain"
	"quantsim/internal/engine"
	"quantsim/internal/indicator"
	"quantsim/internal/store"
	"quantsim/internal/strategy"
	"quantsim/internal/strategy/builtins"
	"quantsim/internal/util"
)

// signalExport is the JSON document printed to stdout.
type signalExport struct {
	Symbol    string              `json:"symbol"`
	Timestamp time.Time           `json:"timestamp"`
	Direction string              `json:"direction"`
	Signal    *domain.Signal      `json:"signal,omitempty"`
	Order     *domain.Order       `json:"order,omitempty"`
	Rejection engine.RejectReason `json:"rejection,omitempty"`
	Votes     []domain.Vote       `json:"votes"`
}

func main() {
	var (
		cfgPath = flag.String("config", "", "path to YAML config (default: config/quantsim.yaml if present)")
		symbol  = flag.String("symbol", "", "symbol to evaluate (default: from config)")
		csvPath = flag.String("csv", "", "load bars from a CSV file instead of the Parquet store")
		equity  = flag.Float64("equity", 0, "account equity for sizing (default: configured capital)")
	)
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	util.SetDefault(util.NewLogger(cfg.Logging.Level))

	sym := cfg.Symbol
	if *symbol != "" {
		sym = *symbol
	}

	ctx := context.Background()
	var bars []domain.Bar
	if *csvPath != "" {
		bars, err = store.ReadCSVBars(*csvPath)
	} else {
		bars, err = store.NewParquetStore(cfg.Storage.DataDir).
			ReadBars(ctx, sym, time.Unix(0, 0).UTC(), time.Now().UTC())
	}
	if err != nil {
		log.Fatalf("failed to load bars: %v", err)
	}
	if len(bars) == 0 {
		log.Fatalf("no bars found for %s", sym)
	}

	frame, err := indicator.Compute(bars, cfg.IndicatorParams())
	if err != nil {
		log.Fatalf("failed to compute indicators: %v", err)
	}

	reg := strategy.NewRegistry()
	builtins.RegisterAll(reg)
	voting, err := strategy.NewVotingEngine(cfg.VotingConfig(), reg)
	if err != nil {
		log.Fatalf("failed to build voting engine: %v", err)
	}

	last := frame.Len() - 1
	out := signalExport{
		Symbol:    sym,
		Timestamp: bars[last].Timestamp,
		Direction: domain.Neutral.String(),
		Votes:     voting.Votes(frame, last),
	}

	if sig := voting.Evaluate(frame, last); sig != nil {
		out.Direction = sig.Direction.String()
		out.Signal = sig

		capital := cfg.Execution.Capital
		if *equity > 0 {
			capital = *equity
		}
		acct := domain.Account{Equity: capital}
		sizer := engine.NewRiskSizer(cfg.RiskCfg())
		order, reject := sizer.SizeOrder(sig, acct, frame.ATR[last])
		out.Order = order
		out.Rejection = reject
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		log.Fatalf("failed to marshal signal: %v", err)
	}
	fmt.Println(string(data))
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		path = "config/quantsim.yaml"
		if p := os.Getenv("QUANTSIM_CONFIG"); p != "" {
			path = p
		}
		if _, err := os.Stat(path); err != nil {
			return config.Default()
		}
	}
	return config.Load(path)
}
