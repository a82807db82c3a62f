package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/panjf2000/ants/v2"
	"gorm.io/gorm"

	"studydeck/internal/bootstrap"
	"studydeck/internal/config"
	"studydeck/internal/pkg/workpool"
	"studydeck/internal/repository"
)

// env holds what a subcommand needs. The logger writes to stderr so
// stdout stays machine readable.
type env struct {
	cfg    *config.Config
	logger *slog.Logger
	db     *gorm.DB
	store  *repository.Store
	pool   *ants.Pool
}

func openEnv(ctx context.Context, withPool bool) (*env, error) {
	if configFile != "" {
		if err := os.Setenv("CONFIG_FILE", configFile); err != nil {
			return nil, err
		}
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}
	logger := bootstrap.NewLogger(cfg.App.Env, cfg.App.LogLevel)

	db, err := bootstrap.OpenDatabase(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	e := &env{cfg: cfg, logger: logger, db: db, store: repository.NewStore(db)}
	if withPool {
		pool, err := workpool.New(cfg.Ingest.PoolSize)
		if err != nil {
			_ = e.close()
			return nil, err
		}
		e.pool = pool
	}
	return e, nil
}

func (e *env) close() error {
	if e.pool != nil {
		e.pool.Release()
	}
	sqlDB, err := e.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
