package database

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const (
	initialRetryDelay = time.Second
	maxRetryDelay     = 10 * time.Second
)

// opener is swapped in tests
type opener func(dsn string) (*gorm.DB, error)

func openPostgres(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Error),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	return db, nil
}

// Connect opens the lead database, retrying with exponential backoff while the
// server comes up. maxRetries of zero means a single attempt.
func Connect(ctx context.Context, dsn string, maxRetries int, log *zap.Logger) (*gorm.DB, error) {
	return connect(ctx, dsn, maxRetries, log, openPostgres)
}

func connect(ctx context.Context, dsn string, maxRetries int, log *zap.Logger, open opener) (*gorm.DB, error) {
	attempts := maxRetries + 1
	var lastErr error

	for attempt := 1; attempt <= attempts; attempt++ {
		db, err := open(dsn)
		if err == nil {
			log.Info("Connected to database", zap.Int("attempt", attempt))
			return db, nil
		}
		lastErr = err

		if attempt == attempts {
			break
		}

		delay := backoff(attempt)
		log.Warn("Database connection failed, retrying",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", attempts),
			zap.Duration("retry_in", delay),
			zap.Error(err),
		)

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("database connection canceled: %w", ctx.Err())
		case <-time.After(delay):
		}
	}

	return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", attempts, lastErr)
}

// backoff doubles from one second and caps at ten
func backoff(attempt int) time.Duration {
	delay := initialRetryDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= maxRetryDelay {
			return maxRetryDelay
		}
	}
	return delay
}
