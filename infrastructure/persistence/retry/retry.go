package retry

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"strings"
	"time"

	"storefront/config"
	"storefront/domain/order"
	"storefront/domain/shared"
	"storefront/pkg/logger"

	mysqlDriver "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Config struct {
	Enabled                       bool
	MaxAttempts                   int
	InitialDelay                  time.Duration
	MaxDelay                      time.Duration
	BackoffFactor                 float64
	JitterEnabled                 bool
	RetryOnConcurrentModification bool
	RetryOnDeadlock               bool
	RetryOnLockTimeout            bool
	RetryPredicate                func(error) bool
}

var DefaultConfig = Config{
	Enabled:                       true,
	MaxAttempts:                   3,
	InitialDelay:                  100 * time.Millisecond,
	MaxDelay:                      2 * time.Second,
	BackoffFactor:                 2.0,
	JitterEnabled:                 true,
	RetryOnConcurrentModification: true,
	RetryOnDeadlock:               true,
	RetryOnLockTimeout:            true,
}

func FromAppConfig(appConfig *config.Config) Config {
	retryConfig := appConfig.Database.Retry

	cfg := Config{
		Enabled:                       retryConfig.Enabled,
		MaxAttempts:                   retryConfig.MaxAttempts,
		InitialDelay:                  retryConfig.InitialDelay,
		MaxDelay:                      retryConfig.MaxDelay,
		BackoffFactor:                 retryConfig.BackoffFactor,
		JitterEnabled:                 retryConfig.JitterEnabled,
		RetryOnConcurrentModification: retryConfig.RetryOnConflict,
		RetryOnDeadlock:               retryConfig.RetryOnDeadlock,
		RetryOnLockTimeout:            retryConfig.RetryOnTimeout,
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultConfig.MaxAttempts
	}
	if cfg.BackoffFactor <= 0 {
		cfg.BackoffFactor = DefaultConfig.BackoffFactor
	}
	return cfg
}

func ExponentialBackoffWithJitter(attempt int, config Config) time.Duration {
	if attempt <= 0 {
		return 0
	}
	delay := float64(config.InitialDelay) * math.Pow(config.BackoffFactor, float64(attempt-1))
	if config.MaxDelay > 0 && delay > float64(config.MaxDelay) {
		delay = float64(config.MaxDelay)
	}
	if config.JitterEnabled {
		jitterFactor := 0.8 + rand.Float64()*0.4
		delay = delay * jitterFactor
	}
	if delay < 0 {
		delay = 0
	}

	return time.Duration(delay)
}

// IsConcurrentModification stale-version failure from any repository
func IsConcurrentModification(err error) bool {
	if errors.Is(err, order.ErrConcurrentModification) || shared.ReasonOf(err) == order.ReasonConcurrentModified {
		return true
	}
	return strings.Contains(err.Error(), "modified by another transaction")
}

func IsRetryableError(err error, config Config) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if config.RetryPredicate != nil && config.RetryPredicate(err) {
		return true
	}
	if config.RetryOnConcurrentModification && IsConcurrentModification(err) {
		return true
	}
	var mysqlErr *mysqlDriver.MySQLError
	if errors.As(err, &mysqlErr) {
		switch mysqlErr.Number {
		case 1213:
			return config.RetryOnDeadlock
		case 1205:
			return config.RetryOnLockTimeout
		}
	}
	errStr := strings.ToLower(err.Error())
	if strings.Contains(errStr, "deadlock") || strings.Contains(errStr, "lock wait timeout") {
		if config.RetryOnDeadlock {
			return true
		}
	}
	if errors.Is(err, gorm.ErrInvalidTransaction) ||
		(strings.Contains(errStr, "connection") && strings.Contains(errStr, "lost")) {
		return true
	}

	return false
}

func ExecuteWithRetry(ctx context.Context, config Config, fn func(ctx context.Context) error) error {
	if !config.Enabled || config.MaxAttempts <= 1 {
		return fn(ctx)
	}

	var lastErr error
	for attempt := 1; attempt <= config.MaxAttempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		err := fn(ctx)
		if err == nil {
			return nil
		}

		lastErr = err
		if !IsRetryableError(err, config) || attempt == config.MaxAttempts {
			break
		}

		delay := ExponentialBackoffWithJitter(attempt, config)
		logger.FromContext(ctx).Debug("retrying transaction",
			zap.Int("attempt", attempt), zap.Duration("delay", delay), zap.Error(err))
		if delay > 0 {
			timer := time.NewTimer(delay)
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			}
		}
	}

	return lastErr
}
