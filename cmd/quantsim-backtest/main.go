// quantsim-backtest replays a stored bar series through the voting and risk
// engines and prints a performance report. Results can optionally be written
// to a JSON file and persisted to SQLite.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"quantsim/internal/config"
	"quantsim/internal/domain"
	"quantsim/internal/engine"
	"quantsim/internal/indicator"
	"quantsim/internal/report"
	"quantsim/internal/store"
	"quantsim/internal/strategy"
	"quantsim/internal/strategy/builtins"
	"quantsim/internal/util"
)

// runExport is the JSON document written by -json.
type runExport struct {
	Symbol      string               `json:"symbol"`
	GeneratedAt time.Time            `json:"generated_at"`
	Report      report.Report        `json:"report"`
	Trades      []domain.Trade       `json:"trades"`
	EquityCurve []domain.EquityPoint `json:"equity_curve"`
}

func main() {
	var (
		cfgPath  = flag.String("config", "", "path to YAML config (default: config/quantsim.yaml if present)")
		symbol   = flag.String("symbol", "", "symbol to backtest (default: from config)")
		csvPath  = flag.String("csv", "", "load bars from a CSV file instead of the Parquet store")
		startStr = flag.String("start", "", "start date YYYY-MM-DD for Parquet reads")
		endStr   = flag.String("end", "", "end date YYYY-MM-DD for Parquet reads")
		jsonPath = flag.String("json", "", "write the full result as JSON to this path")
		save     = flag.Bool("save", false, "persist the run and trade ledger to SQLite")
	)
	flag.Parse()

	// .env is optional; real environment variables win.
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
	bars, err := loadBars(ctx, cfg, sym, *csvPath, *startStr, *endStr)
	if err != nil {
		log.Fatalf("failed to load bars: %v", err)
	}
	if len(bars) == 0 {
		log.Fatalf("no bars found for %s", sym)
	}
	slog.Info("bars loaded", "symbol", sym, "count", len(bars))

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
	sim := engine.NewSimulator(voting, engine.NewRiskSizer(cfg.RiskCfg()), cfg.SimCfg(), slog.Default())

	res, err := sim.Run(frame)
	if err != nil {
		log.Fatalf("backtest failed: %v", err)
	}

	rep := report.Compute(res.EquityCurve, res.Trades, cfg.Report.PeriodsPerYear)

	fmt.Printf("Backtest %s (%d bars)\n\n", sym, len(bars))
	fmt.Print(rep.Summary())
	if len(res.Rejections) > 0 {
		fmt.Printf("\nRejected orders:\n")
		for reason, n := range res.Rejections {
			fmt.Printf("  %-20s %d\n", reason, n)
		}
	}

	if *jsonPath != "" {
		export := runExport{
			Symbol:      sym,
			GeneratedAt: time.Now().UTC(),
			Report:      rep,
			Trades:      res.Trades,
			EquityCurve: res.EquityCurve,
		}
		data, err := json.MarshalIndent(export, "", "  ")
		if err != nil {
			log.Fatalf("failed to marshal result: %v", err)
		}
		if err := os.WriteFile(*jsonPath, data, 0o644); err != nil {
			log.Fatalf("failed to write %s: %v", *jsonPath, err)
		}
		slog.Info("result written", "path", *jsonPath)
	}

	if *save {
		if err := saveRun(ctx, cfg, sym, res, rep); err != nil {
			log.Fatalf("failed to persist run: %v", err)
		}
	}
}

// loadConfig loads the file at path, or falls back to the default location
// and finally to built-in defaults when no file exists.
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

// loadBars reads the bar series either from a CSV file or from the Parquet
// store configured in cfg.Storage.
func loadBars(ctx context.Context, cfg *config.Config, symbol, csvPath, startStr, endStr string) ([]domain.Bar, error) {
	if csvPath != "" {
		return store.ReadCSVBars(csvPath)
	}

	start := time.Unix(0, 0).UTC()
	end := time.Now().UTC()
	var err error
	if startStr != "" {
		if start, err = time.Parse("2006-01-02", startStr); err != nil {
			return nil, fmt.Errorf("bad -start: %w", err)
		}
	}
	if endStr != "" {
		if end, err = time.Parse("2006-01-02", endStr); err != nil {
			return nil, fmt.Errorf("bad -end: %w", err)
		}
		end = end.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}

	return store.NewParquetStore(cfg.Storage.DataDir).ReadBars(ctx, symbol, start, end)
}

func saveRun(ctx context.Context, cfg *config.Config, symbol string, res *engine.Result, rep report.Report) error {
	db, err := store.NewSQLiteStore(cfg.Storage.SQLitePath)
	if err != nil {
		return err
	}
	defer db.Close()

	run := &store.RunRecord{
		Symbol:      symbol,
		CreatedAt:   time.Now().UTC(),
		Bars:        rep.Bars,
		StartEquity: rep.StartEquity,
		FinalEquity: rep.FinalEquity,
		TotalTrades: rep.TotalTrades,
		WinRate:     rep.WinRate,
		MaxDrawdown: rep.MaxDrawdown,
		CAGR:        rep.CAGR,
	}
	id, err := db.SaveRun(ctx, run)
	if err != nil {
		return err
	}
	if err := db.SaveTrades(ctx, id, res.Trades); err != nil {
		return err
	}
	slog.Info("run persisted", "id", id, "trades", len(res.Trades))
	return nil
}
