/*
Package logger - process-wide structured logging on top of zap.

Every helper is safe before Init: calls are dropped and With* return a Nop logger.
*/
package logger

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"storefront/config"
	"storefront/domain/shared"
	"storefront/infrastructure/persistence"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	log       *zap.Logger
	atomLevel = zap.NewAtomicLevelAt(zapcore.InfoLevel)
)

// Init builds the global logger from config. env picks the default encoder
// when format is empty: console for development, json otherwise.
func Init(cfg *config.LogConfig, env string) error {
	atomLevel = zap.NewAtomicLevelAt(parseLevel(cfg.Level))

	writer, err := newWriteSyncer(cfg)
	if err != nil {
		return err
	}

	core := zapcore.NewCore(newEncoder(cfg.Format, env), writer, atomLevel)
	log = zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
	return nil
}

// Replace swaps the global logger, returning a func that restores the previous one
func Replace(l *zap.Logger) func() {
	prev := log
	log = l
	return func() { log = prev }
}

func newEncoder(format, env string) zapcore.Encoder {
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.MillisDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	switch format {
	case "json":
		return zapcore.NewJSONEncoder(encoderConfig)
	case "console":
		return zapcore.NewConsoleEncoder(encoderConfig)
	}
	if env == "dev" || env == "development" {
		return zapcore.NewConsoleEncoder(encoderConfig)
	}
	return zapcore.NewJSONEncoder(encoderConfig)
}

func newWriteSyncer(cfg *config.LogConfig) (zapcore.WriteSyncer, error) {
	if cfg.Output != "file" {
		return zapcore.AddSync(os.Stdout), nil
	}
	if cfg.FilePath == "" {
		return nil, errors.New("log.file_path is required when log.output is file")
	}
	if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	return zapcore.AddSync(&lumberjack.Logger{
		Filename:   cfg.FilePath,
		MaxSize:    50,
		MaxBackups: 7,
		MaxAge:     14,
		Compress:   true,
	}), nil
}

func parseLevel(level string) zapcore.Level {
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(strings.ToLower(level))); err != nil {
		return zapcore.InfoLevel
	}
	return l
}

func Get() *zap.Logger {
	if log == nil {
		return zap.NewNop()
	}
	return log
}

// UpdateLevel changes the level at runtime
func UpdateLevel(level string) {
	atomLevel.SetLevel(parseLevel(level))
}

// Level current level
func Level() zapcore.Level {
	return atomLevel.Level()
}

func Sync() error {
	if log == nil {
		return nil
	}
	if err := log.Sync(); err != nil {
		// stdout is not syncable on most terminals
		msg := err.Error()
		if !strings.Contains(msg, "inappropriate ioctl for device") &&
			!strings.Contains(msg, "invalid argument") &&
			!strings.Contains(msg, "bad file descriptor") {
			return err
		}
	}
	return nil
}

func With(fields ...zap.Field) *zap.Logger {
	if log == nil {
		return zap.NewNop()
	}
	return log.With(fields...)
}

func WithRequestID(requestID string) *zap.Logger {
	return With(zap.String("request_id", requestID))
}

// FromContext logger carrying the request id stored in ctx, if any
func FromContext(ctx context.Context) *zap.Logger {
	if id := persistence.RequestIDFromContext(ctx); id != "" {
		return WithRequestID(id)
	}
	return Get()
}

// WithContext logger with arbitrary key/value fields
func WithContext(fields map[string]any) *zap.Logger {
	if log == nil {
		return zap.NewNop()
	}
	zapFields := make([]zap.Field, 0, len(fields))
	for k, v := range fields {
		if err, ok := v.(error); ok {
			zapFields = append(zapFields, zap.NamedError(k, err))
			continue
		}
		zapFields = append(zapFields, zap.Any(k, v))
	}
	return log.With(zapFields...)
}

// ErrorFields error plus its domain reason and origin stack when present
func ErrorFields(err error) []zap.Field {
	fields := []zap.Field{zap.Error(err)}
	if reason := shared.ReasonOf(err); reason != "" {
		fields = append(fields, zap.String("reason", reason))
	}
	var de *shared.DomainError
	if errors.As(err, &de) && de.Cause != nil {
		fields = append(fields, zap.NamedError("cause", de.Cause))
	}
	var stacker shared.Stacker
	if errors.As(err, &stacker) {
		if stack := stacker.Stack(); len(stack) > 0 {
			fields = append(fields, zap.Strings("origin", stack))
		}
	}
	return fields
}

func Debug(msg string, fields ...zap.Field) {
	if log != nil {
		log.Debug(msg, fields...)
	}
}

func Info(msg string, fields ...zap.Field) {
	if log != nil {
		log.Info(msg, fields...)
	}
}

func Warn(msg string, fields ...zap.Field) {
	if log != nil {
		log.Warn(msg, fields...)
	}
}

func Error(msg string, fields ...zap.Field) {
	if log != nil {
		log.Error(msg, fields...)
	}
}

func Fatal(msg string, fields ...zap.Field) {
	if log != nil {
		log.Fatal(msg, fields...)
	}
}
