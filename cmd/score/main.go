package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ardanlabs/conf"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"wallet-credit-score/internal/address"
	"wallet-credit-score/internal/ingestion"
	"wallet-credit-score/internal/observability"
	"wallet-credit-score/internal/pipeline"
	"wallet-credit-score/internal/storage/backend"
)

const envPrefix = "WALLET_SCORE"

func main() {
	if err := run(); err != nil {
		log.Fatalf("main: exited with error: %s", err.Error())
	}
}

func run() error {
	// .env is optional; real environment variables win
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "loading .env")
	}

	var cfg struct {
		InputFile       string `conf:"default:user-wallet-transactions.json"`
		UseFixtures     bool   `conf:"default:false"`
		OutputDir       string `conf:"default:out"`
		AsOf            string `conf:"optional"`
		AddressPolicy   string `conf:"default:any"`
		PostgresDSN     string `conf:"optional,mask"`
		ClickHouseDSN   string `conf:"optional,mask"`
		PebbleDir       string `conf:"optional"`
		Migrate         bool   `conf:"default:true"`
		MetricsTextfile string `conf:"optional"`
		LogLevel        string `conf:"default:info"`
	}

	if err := conf.Parse(os.Args[1:], envPrefix, &cfg); err != nil {
		switch {
		case errors.Is(err, conf.ErrHelpWanted):
			usage, err := conf.Usage(envPrefix, &cfg)
			if err != nil {
				return errors.Wrap(err, "generating config usage")
			}
			fmt.Println(usage)
			return nil
		case errors.Is(err, conf.ErrVersionWanted):
			version, err := conf.VersionString(envPrefix, &cfg)
			if err != nil {
				return errors.Wrap(err, "generating config version")
			}
			fmt.Println(version)
			return nil
		}
		return errors.Wrap(err, "parsing config")
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return errors.Wrap(err, "creating logger")
	}
	defer logger.Sync()

	out, err := conf.String(&cfg)
	if err != nil {
		return errors.Wrap(err, "generating config for output")
	}
	logger.Infof("Config:\n%v", out)

	policy, err := address.ParsePolicy(cfg.AddressPolicy)
	if err != nil {
		return errors.Wrap(err, "parsing address policy")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var source ingestion.EventSource
	if cfg.UseFixtures {
		logger.Info("using built-in fixture events")
		source = pipeline.FixtureSource()
	} else {
		source = ingestion.NewFileSource(cfg.InputFile)
	}

	stores, err := backend.Open(ctx, backend.Config{
		PostgresDSN:   cfg.PostgresDSN,
		ClickHouseDSN: cfg.ClickHouseDSN,
		PebbleDir:     cfg.PebbleDir,
		Migrate:       cfg.Migrate,
	}, logger)
	if err != nil {
		return errors.Wrap(err, "opening storage")
	}
	defer stores.Close()

	scorer := pipeline.NewScorer(source, ingestion.NewNormalizer(policy, logger), logger).
		WithScoreStore(stores.Scores).
		WithFeatureStore(stores.Features).
		WithOutputDir(cfg.OutputDir)

	if cfg.AsOf != "" {
		asOf, err := time.Parse(time.RFC3339, cfg.AsOf)
		if err != nil {
			return errors.Wrapf(err, "parsing as-of time %q", cfg.AsOf)
		}
		scorer = scorer.WithAsOf(asOf)
	}

	res, runErr := scorer.Run(ctx)

	// Publish metrics for failed runs too
	if cfg.MetricsTextfile != "" {
		if err := observability.WriteTextfile(cfg.MetricsTextfile); err != nil {
			logger.Warnw("writing metrics textfile", "path", cfg.MetricsTextfile, "error", err)
		}
	}

	if runErr != nil {
		var empty *pipeline.EmptyPopulationError
		if errors.As(runErr, &empty) {
			logger.Errorw("no wallet could be scored", "eventsRead", empty.EventsRead, "eventsSkipped", empty.EventsSkipped)
		}
		return errors.Wrap(runErr, "scoring run")
	}

	for _, c := range res.Quality.Checks {
		if !c.Pass {
			logger.Warnw("data quality check failed", "check", c.Name, "threshold", c.Threshold, "actual", c.Actual)
		}
	}

	fmt.Printf("Run %s: %d wallets scored, %d of %d events skipped, outputs in %s\n",
		res.Run.RunID, res.Run.WalletCount, res.Run.EventsSkipped, res.Run.EventsRead, cfg.OutputDir)
	return nil
}

func newLogger(level string) (*zap.SugaredLogger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}

	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(lvl)
	// readable date instead of an epoch time
	config.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout(time.DateTime)

	logger, err := config.Build()
	if err != nil {
		return nil, err
	}
	return logger.Sugar(), nil
}
