package database

import (
	"context"
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"storefront/internal/retry"
)

type Options struct {
	DSN    string
	LogSQL bool
}

// NewPostgres opens the shared gorm pool and waits for the database to answer.
func NewPostgres(ctx context.Context, opts Options) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(opts.DSN), GormConfig(opts.LogSQL))
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(time.Hour)

	err = retry.DoWithRetry(ctx, 6, 500*time.Millisecond, func() error {
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		return sqlDB.PingContext(pingCtx)
	})
	if err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	return db, nil
}

// GormConfig is shared by the postgres pool and the sqlite databases used in tests.
func GormConfig(logSQL bool) *gorm.Config {
	lvl := logger.Silent
	if logSQL {
		lvl = logger.Info
	}
	return &gorm.Config{
		Logger: logger.New(log.New(log.Writer(), "", log.LstdFlags), logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  lvl,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		}),
		TranslateError: true,
	}
}

func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
