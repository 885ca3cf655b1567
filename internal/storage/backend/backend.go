// Package backend selects and opens the score and feature stores for a command.
package backend

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"wallet-credit-score/internal/storage"
	chstore "wallet-credit-score/internal/storage/clickhouse"
	"wallet-credit-score/internal/storage/memory"
	"wallet-credit-score/internal/storage/migrations"
	"wallet-credit-score/internal/storage/pebbledb"
	pgstore "wallet-credit-score/internal/storage/postgres"
)

// Config names the backends to open. Empty fields fall back to memory.
// PostgresDSN takes precedence over PebbleDir for scores.
type Config struct {
	PostgresDSN   string
	ClickHouseDSN string
	PebbleDir     string
	Migrate       bool // apply embedded migrations before use
}

// Backends holds the opened stores and what must be closed on shutdown.
type Backends struct {
	Scores   storage.ScoreStore
	Features storage.FeatureStore

	ScoreBackend   string
	FeatureBackend string

	closers []func() error
}

// Open connects every configured backend.
func Open(ctx context.Context, cfg Config, logger *zap.SugaredLogger) (b *Backends, err error) {
	b = &Backends{
		Scores:         memory.NewScoreStore(),
		Features:       memory.NewFeatureStore(),
		ScoreBackend:   "memory",
		FeatureBackend: "memory",
	}
	defer func() {
		if err != nil {
			b.Close()
			b = nil
		}
	}()

	switch {
	case cfg.PostgresDSN != "":
		pool, err := pgstore.NewPool(ctx, cfg.PostgresDSN)
		if err != nil {
			return b, fmt.Errorf("connect to postgres: %w", err)
		}
		b.closers = append(b.closers, func() error { pool.Close(); return nil })
		if cfg.Migrate {
			if err := migrations.RunPostgresMigrations(ctx, pool, logger); err != nil {
				return b, fmt.Errorf("postgres migrations: %w", err)
			}
		}
		b.Scores = pgstore.NewScoreStore(pool)
		b.ScoreBackend = "postgres"
	case cfg.PebbleDir != "":
		store, err := pebbledb.NewScoreStore(cfg.PebbleDir)
		if err != nil {
			return b, fmt.Errorf("open pebble store: %w", err)
		}
		b.closers = append(b.closers, store.Close)
		b.Scores = store
		b.ScoreBackend = "pebble"
	}

	if cfg.ClickHouseDSN != "" {
		var conn *chstore.Conn
		if cfg.Migrate {
			conn, err = migrations.RunClickhouseMigrations(ctx, cfg.ClickHouseDSN, logger)
		} else {
			conn, err = chstore.NewConn(ctx, cfg.ClickHouseDSN)
		}
		if err != nil {
			return b, fmt.Errorf("connect to clickhouse: %w", err)
		}
		b.closers = append(b.closers, conn.Close)
		b.Features = chstore.NewFeatureStore(conn)
		b.FeatureBackend = "clickhouse"
	}

	logger.Infow("storage backends ready", "scores", b.ScoreBackend, "features", b.FeatureBackend)
	return b, nil
}

// Close releases backends in reverse order of opening and returns the first error.
func (b *Backends) Close() error {
	var first error
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	b.closers = nil
	return first
}
