// Package main serves stored wallet credit scores and Prometheus metrics:
// - /wallets/{wallet}: latest score of one wallet
// - /runs/latest, /runs/{runID}: run metadata
// - /runs/{runID}/scores.csv: all scores of a run
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ardanlabs/conf"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"wallet-credit-score/internal/storage/backend"
)

const envPrefix = "WALLET_SCORE"

func main() {
	if err := run(); err != nil {
		log.Fatalf("main: exited with error: %s", err.Error())
	}
}

func run() error {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "loading .env")
	}

	var cfg struct {
		HttpHost        string        `conf:"default:0.0.0.0:8080"`
		ShutdownTimeout time.Duration `conf:"default:10s"`
		PostgresDSN     string        `conf:"optional,mask"`
		PebbleDir       string        `conf:"optional"`
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
		return errors.New("postgres-dsn or pebble-dir is required")
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
		PostgresDSN: cfg.PostgresDSN,
		PebbleDir:   cfg.PebbleDir,
	}, logger)
	if err != nil {
		return errors.Wrap(err, "opening storage")
	}
	defer stores.Close()

	srv := &http.Server{
		Addr:              cfg.HttpHost,
		Handler:           newServer(stores.Scores, logger).routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	serverError := make(chan error, 1)
	go func() {
		logger.Infow("starting http server", "addr", cfg.HttpHost)
		serverError <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverError:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "http server")
		}
		return nil
	case sig := <-shutdown:
		logger.Infow("shutting down", "signal", sig.String())
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return errors.Wrap(err, "graceful shutdown")
		}
		return nil
	}
}
