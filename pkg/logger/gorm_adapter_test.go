package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"storefront/infrastructure/persistence"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func observe(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	t.Cleanup(Replace(zap.New(core)))
	return logs
}

func TestGormAdapterRespectsLevel(t *testing.T) {
	tests := []struct {
		name      string
		level     gormlogger.LogLevel
		wantInfo  bool
		wantWarn  bool
		wantQuery bool
	}{
		{"silent", gormlogger.Silent, false, false, false},
		{"warn", gormlogger.Warn, false, true, false},
		{"info", gormlogger.Info, true, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logs := observe(t)
			adapter := NewGormLoggerAdapter(tt.level)
			ctx := context.Background()

			adapter.Info(ctx, "opened %s", "pool")
			adapter.Warn(ctx, "pool %d%% used", 90)
			adapter.Trace(ctx, time.Now(), func() (string, int64) { return "SELECT 1", 1 }, nil)

			assert.Equal(t, tt.wantInfo, logs.FilterMessage("opened pool").Len() == 1)
			assert.Equal(t, tt.wantWarn, logs.FilterMessage("pool 90% used").Len() == 1)
			assert.Equal(t, tt.wantQuery, logs.FilterMessage("SQL query executed").Len() == 1)
		})
	}
}

func TestGormAdapterSlowQueryCarriesRequestID(t *testing.T) {
	logs := observe(t)
	adapter := NewGormLoggerAdapterWithConfig(gormlogger.Warn, &GormLoggerConfig{SlowThreshold: time.Millisecond})
	ctx := persistence.ContextWithRequestID(context.Background(), "req-42")

	adapter.Trace(ctx, time.Now().Add(-10*time.Millisecond), func() (string, int64) {
		return "UPDATE products SET quantity = quantity - 1", 1
	}, nil)

	entries := logs.FilterMessage("Slow SQL query").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "req-42", entries[0].ContextMap()["request_id"])
	assert.Equal(t, "UPDATE products SET quantity = quantity - 1", entries[0].ContextMap()["sql"])
}

func TestGormAdapterErrors(t *testing.T) {
	logs := observe(t)
	adapter := NewGormLoggerAdapter(gormlogger.Error)
	ctx := context.Background()

	adapter.Trace(ctx, time.Now(), func() (string, int64) { return "SELECT * FROM orders WHERE id = 'x'", 0 }, gormlogger.ErrRecordNotFound)
	assert.Zero(t, logs.FilterMessage("Database operation failed").Len())

	adapter.Trace(ctx, time.Now(), func() (string, int64) { return "INSERT INTO carts", 0 }, errors.New("duplicate key"))
	assert.Equal(t, 1, logs.FilterMessage("Database operation failed").Len())

	quiet := adapter.LogMode(gormlogger.Silent)
	quiet.Trace(ctx, time.Now(), func() (string, int64) { return "INSERT INTO carts", 0 }, errors.New("duplicate key"))
	assert.Equal(t, 1, logs.FilterMessage("Database operation failed").Len())
}

func TestGormLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Info, GormLevel("debug"))
	assert.Equal(t, gormlogger.Warn, GormLevel("info"))
	assert.Equal(t, gormlogger.Error, GormLevel("error"))
}
