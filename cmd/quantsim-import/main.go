// quantsim-import converts a CSV bar file into the Parquet bar store,
// merging with any bars already stored for the symbol.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"quantsim/internal/config"
	"quantsim/internal/store"
	"quantsim/internal/util"
)

func main() {
	var (
		cfgPath = flag.String("config", "", "path to YAML config (default: config/quantsim.yaml if present)")
		symbol  = flag.String("symbol", "", "symbol to store the bars under (required)")
		csvPath = flag.String("csv", "", "CSV bar file to import (required)")
	)
	flag.Parse()

	_ = godotenv.Load()

	if *symbol == "" || *csvPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	util.SetDefault(util.NewLogger(cfg.Logging.Level))

	bars, err := store.ReadCSVBars(*csvPath)
	if err != nil {
		log.Fatalf("failed to read %s: %v", *csvPath, err)
	}
	if len(bars) == 0 {
		log.Fatalf("%s contains no bars", *csvPath)
	}

	pstore := store.NewParquetStore(cfg.Storage.DataDir)
	if err := pstore.WriteBars(context.Background(), *symbol, bars); err != nil {
		log.Fatalf("failed to write bars: %v", err)
	}

	slog.Info("import complete",
		"symbol", *symbol,
		"bars", len(bars),
		"from", bars[0].Timestamp,
		"to", bars[len(bars)-1].Timestamp,
		"dataDir", cfg.Storage.DataDir)
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
