package logger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront/infrastructure/persistence"

	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

// GormLoggerConfig tuning for SQL logging
type GormLoggerConfig struct {
	SlowThreshold             time.Duration
	IgnoreRecordNotFoundError bool
}

func DefaultGormLoggerConfig() *GormLoggerConfig {
	return &GormLoggerConfig{
		SlowThreshold:             200 * time.Millisecond,
		IgnoreRecordNotFoundError: true,
	}
}

// GormLoggerAdapter routes gorm logs into zap, tagging each line with the
// request id found in the statement context.
type GormLoggerAdapter struct {
	level  gormlogger.LogLevel
	base   *zap.Logger
	config *GormLoggerConfig
}

func NewGormLoggerAdapter(level gormlogger.LogLevel) *GormLoggerAdapter {
	return NewGormLoggerAdapterWithConfig(level, DefaultGormLoggerConfig())
}

func NewGormLoggerAdapterWithConfig(level gormlogger.LogLevel, cfg *GormLoggerConfig) *GormLoggerAdapter {
	if cfg == nil {
		cfg = DefaultGormLoggerConfig()
	}
	return &GormLoggerAdapter{level: level, base: Get().Named("gorm"), config: cfg}
}

// GormLevel maps the application log level onto gorm's
func GormLevel(level string) gormlogger.LogLevel {
	switch parseLevel(level).String() {
	case "debug":
		return gormlogger.Info
	case "info", "warn":
		return gormlogger.Warn
	default:
		return gormlogger.Error
	}
}

func (l *GormLoggerAdapter) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *l
	clone.level = level
	return &clone
}

func (l *GormLoggerAdapter) forContext(ctx context.Context) *zap.Logger {
	if id := persistence.RequestIDFromContext(ctx); id != "" {
		return l.base.With(zap.String("request_id", id))
	}
	return l.base
}

func (l *GormLoggerAdapter) Info(ctx context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Info {
		l.forContext(ctx).Info(fmt.Sprintf(msg, args...))
	}
}

func (l *GormLoggerAdapter) Warn(ctx context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Warn {
		l.forContext(ctx).Warn(fmt.Sprintf(msg, args...))
	}
}

func (l *GormLoggerAdapter) Error(ctx context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Error {
		l.forContext(ctx).Error(fmt.Sprintf(msg, args...))
	}
}

func (l *GormLoggerAdapter) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := fc()
	fields := []zap.Field{
		zap.String("sql", sql),
		zap.Duration("elapsed", elapsed),
		zap.Int64("rows", rows),
	}
	log := l.forContext(ctx)

	switch {
	case err != nil && l.level >= gormlogger.Error:
		if errors.Is(err, gormlogger.ErrRecordNotFound) && l.config.IgnoreRecordNotFoundError {
			return
		}
		log.Error("Database operation failed", append(fields, zap.Error(err))...)
	case l.config.SlowThreshold > 0 && elapsed > l.config.SlowThreshold && l.level >= gormlogger.Warn:
		log.Warn("Slow SQL query", append(fields, zap.Duration("threshold", l.config.SlowThreshold))...)
	case l.level >= gormlogger.Info:
		log.Debug("SQL query executed", fields...)
	}
}
