package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/ardanlabs/conf"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"wallet-credit-score/internal/pipeline"
	"wallet-credit-score/internal/reporting"
	"wallet-credit-score/internal/storage/backend"
)

const envPrefix = "WALLET_SCORE"

func main() {
	if err := run(); err != nil {
		log.Fatalf("main: exited with error: %s", err.Error())
	}
}

// run regenerates report files for a stored run without rescoring.
// Data quality is not persisted, so the regenerated report omits it.
func run() error {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "loading .env")
	}

	var cfg struct {
		RunID         string `conf:"optional"`
		Wallet        string `conf:"optional"`
		OutputDir     string `conf:"default:out"`
		PostgresDSN   string `conf:"optional,mask"`
		ClickHouseDSN string `conf:"optional,mask"`
		PebbleDir     string `conf:"optional"`
	}

	if err := conf.Parse(os.Args[1:], envPrefix, &cfg); err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			usage, err := conf.Usage(envPrefix, &cfg)
			if err != nil {
				return errors.Wrap(err, "generating config usage")
			}
			fmt.Println(usage)
			return nil
		}
		return errors.Wrap(err, "parsing config")
	}

	if cfg.PostgresDSN == "" && cfg.PebbleDir == "" {
		return errors.New("postgres-dsn or pebble-dir is required, runs are not kept in memory between invocations")
	}

	config := zap.NewProductionConfig()
	config.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout(time.DateTime)
	zl, err := config.Build()
	if err != nil {
		return errors.Wrap(err, "creating logger")
	}
	defer zl.Sync()
	logger := zl.Sugar()

	ctx := context.Background()

	stores, err := backend.Open(ctx, backend.Config{
		PostgresDSN:   cfg.PostgresDSN,
		ClickHouseDSN: cfg.ClickHouseDSN,
		PebbleDir:     cfg.PebbleDir,
	}, logger)
	if err != nil {
		return errors.Wrap(err, "opening storage")
	}
	defer stores.Close()

	// Single wallet lookup
	if cfg.Wallet != "" {
		rec, err := stores.Scores.GetLatestByWallet(ctx, cfg.Wallet)
		if err != nil {
			return errors.Wrapf(err, "looking up wallet %s", cfg.Wallet)
		}
		fmt.Printf("%s,%d (run %s)\n", rec.Wallet, rec.CreditScore, rec.RunID)
		return nil
	}

	// Features live in memory unless ClickHouse is configured
	featureStore := stores.Features
	if stores.FeatureBackend == "memory" {
		featureStore = nil
	}

	report, err := reporting.NewGenerator(stores.Scores, featureStore).Generate(ctx, cfg.RunID)
	if err != nil {
		return errors.Wrap(err, "generating report")
	}

	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		return errors.Wrap(err, "creating output dir")
	}

	files := map[string]string{
		pipeline.ScoresFile: reporting.RenderScoresCSV(report.Scores),
		pipeline.ReportFile: reporting.RenderMarkdown(report),
	}
	if len(report.Features) > 0 {
		files[pipeline.FeaturesFile] = reporting.RenderFeaturesCSV(report.Features)
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(cfg.OutputDir, name), []byte(content), 0644); err != nil {
			return errors.Wrapf(err, "writing %s", name)
		}
	}

	chart, err := os.Create(filepath.Join(cfg.OutputDir, pipeline.ChartFile))
	if err != nil {
		return errors.Wrap(err, "creating chart file")
	}
	defer chart.Close()
	if err := reporting.RenderHistogramPNG(chart, report.Histogram); err != nil {
		return errors.Wrap(err, "rendering chart")
	}

	logger.Infow("report regenerated", "runID", report.Run.RunID, "wallets", report.Summary.Wallets, "dir", cfg.OutputDir)
	return nil
}
