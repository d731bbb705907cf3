// Package dbutil 은 DB 연결 헬퍼를 둔다.
package dbutil

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"gorm.io/gorm"
)

// RetryConfig: DB 연결 재시도 설정
type RetryConfig struct {
	MaxAttempts int           // 최대 시도 횟수 (기본: 5)
	BaseDelay   time.Duration // 첫 대기 시간 (기본: 2초)
	MaxDelay    time.Duration // 대기 시간 상한 (기본: 30초)
}

// DefaultRetryConfig: 기본 재시도 설정
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{MaxAttempts: 5, BaseDelay: 2 * time.Second, MaxDelay: 30 * time.Second}
}

// OpenFunc: DB 연결을 한 번 시도하는 함수
type OpenFunc func(ctx context.Context) (*gorm.DB, *sql.DB, error)

// OpenWithRetry: 지수 백오프로 openFn 을 최대 MaxAttempts 번 시도한다.
// DB 컨테이너가 늦게 뜨는 경우를 위한 것이다.
func OpenWithRetry(ctx context.Context, openFn OpenFunc, cfg RetryConfig, logger *slog.Logger) (*gorm.DB, *sql.DB, error) {
	def := DefaultRetryConfig()
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = def.MaxAttempts
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = def.BaseDelay
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = def.MaxDelay
	}
	if logger == nil {
		logger = slog.Default()
	}

	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = cfg.BaseDelay
	eb.MaxInterval = cfg.MaxDelay
	eb.Multiplier = 2
	eb.RandomizationFactor = 0
	eb.MaxElapsedTime = 0

	policy := backoff.WithContext(backoff.WithMaxRetries(eb, uint64(cfg.MaxAttempts-1)), ctx)

	var (
		db       *gorm.DB
		sqlDB    *sql.DB
		attempts int
	)
	op := func() error {
		attempts++
		var err error
		db, sqlDB, err = openFn(ctx)
		return err
	}
	notify := func(err error, delay time.Duration) {
		logger.Warn("db_connect_retry",
			slog.Int("attempt", attempts),
			slog.Int("max_attempts", cfg.MaxAttempts),
			slog.Duration("delay", delay),
			slog.Any("error", err),
		)
	}

	if err := backoff.RetryNotify(op, policy, notify); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, nil, fmt.Errorf("db connect cancelled: %w", ctxErr)
		}
		return nil, nil, fmt.Errorf("db connect failed after %d attempts: %w", attempts, err)
	}
	if attempts > 1 {
		logger.Info("db_connect_success_after_retry", slog.Int("attempts", attempts))
	}
	return db, sqlDB, nil
}
