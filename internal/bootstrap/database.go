package bootstrap

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"studydeck/internal/config"
	mysqlClient "studydeck/internal/platform/mysql"
	postgresClient "studydeck/internal/platform/postgres"
	"studydeck/internal/repository"
)

// OpenDatabase connects to the configured driver and, when enabled, runs
// the schema migration.
func OpenDatabase(ctx context.Context, cfg config.DatabaseConfig) (*gorm.DB, error) {
	var (
		db  *gorm.DB
		err error
	)
	switch cfg.Driver {
	case "postgres":
		db, err = postgresClient.New(ctx, cfg.DSN, cfg.MaxOpenConns)
	case "mysql":
		db, err = mysqlClient.New(ctx, cfg.DSN, cfg.MaxOpenConns)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}
	if cfg.AutoMigrate {
		if err := repository.Migrate(ctx, db); err != nil {
			return nil, err
		}
	}
	return db, nil
}

func closeDatabase(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
