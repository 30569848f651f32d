package logger

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"storefront/config"
	"storefront/domain/shared"
	"storefront/infrastructure/persistence"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNilLoggerSafety(t *testing.T) {
	t.Cleanup(Replace(nil))

	assert.NotPanics(t, func() {
		Debug("debug")
		Info("info")
		Warn("warn")
		Error("error")
		With(zap.String("key", "value")).Info("with")
		WithRequestID("id").Info("with request id")
		WithContext(map[string]any{"k": 1}).Info("with context")
		FromContext(context.Background()).Info("from context")
	})
	assert.NoError(t, Sync())
}

func TestInitStdout(t *testing.T) {
	prev := Get()
	t.Cleanup(Replace(prev))

	require.NoError(t, Init(&config.LogConfig{Level: "debug", Output: "stdout"}, "development"))
	assert.Equal(t, zapcore.DebugLevel, Level())

	UpdateLevel("warn")
	assert.Equal(t, zapcore.WarnLevel, Level())
	assert.False(t, Get().Core().Enabled(zapcore.InfoLevel))

	UpdateLevel("nonsense")
	assert.Equal(t, zapcore.InfoLevel, Level())
}

func TestInitFileOutput(t *testing.T) {
	prev := Get()
	t.Cleanup(Replace(prev))
	path := filepath.Join(t.TempDir(), "logs", "app.log")

	require.NoError(t, Init(&config.LogConfig{Level: "info", Format: "json", Output: "file", FilePath: path}, "production"))
	Info("written to file", zap.Int("n", 1))
	require.NoError(t, Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"written to file"`)
}

func TestInitFileOutputRequiresPath(t *testing.T) {
	err := Init(&config.LogConfig{Output: "file"}, "production")
	assert.Error(t, err)
}

func TestFromContextAddsRequestID(t *testing.T) {
	logs := observe(t)
	ctx := persistence.ContextWithRequestID(context.Background(), "req-7")

	FromContext(ctx).Info("hello")

	entries := logs.FilterMessage("hello").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "req-7", entries[0].ContextMap()["request_id"])
}

func TestErrorFieldsIncludeReason(t *testing.T) {
	logs := observe(t)
	err := shared.NewError(shared.ErrInvalidInput, "order", "EMPTY_ORDER", "items", "No items in order")

	Error("create order failed", ErrorFields(err)...)

	entries := logs.FilterMessage("create order failed").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "EMPTY_ORDER", fields["reason"])
	assert.Contains(t, fields, "origin")
}

func TestErrorFieldsIncludeCause(t *testing.T) {
	logs := observe(t)
	err := shared.NewError(shared.ErrGateway, "payment", "GATEWAY_UNAVAILABLE", "", "Payment provider unavailable")
	err.Cause = fmt.Errorf("dial tcp 10.0.0.1:443: connection refused")

	Warn("verify failed", ErrorFields(err)...)

	entries := logs.FilterMessage("verify failed").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "Payment provider unavailable", fields["error"])
	assert.Equal(t, "dial tcp 10.0.0.1:443: connection refused", fields["cause"])
}
