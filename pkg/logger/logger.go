// Package logger provides a zap-based application logger.
package logger

import (
	"context"
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level is a logging priority.
type Level = zapcore.Level

// Supported levels.
const (
	LevelDebug = zapcore.DebugLevel
	LevelInfo  = zapcore.InfoLevel
	LevelWarn  = zapcore.WarnLevel
	LevelError = zapcore.ErrorLevel
)

// TraceIDFn extracts a trace id from a context, or returns "".
type TraceIDFn func(ctx context.Context) string

// Logger writes structured JSON logs tagged with the service name and the
// trace id of the request context.
type Logger struct {
	sugar   *zap.SugaredLogger
	traceID TraceIDFn
}

// New builds a logger writing JSON lines at or above level to w.
func New(w io.Writer, level Level, service string, traceID TraceIDFn) *Logger {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "time"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.AddSync(w), level)
	z := zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1)).With(zap.String("service", service))
	return &Logger{sugar: z.Sugar(), traceID: traceID}
}

// NewNop returns a logger that discards everything.
func NewNop() *Logger {
	return &Logger{sugar: zap.NewNop().Sugar()}
}

// ParseLevel maps a level name such as "debug" to a Level, defaulting to info.
func ParseLevel(s string) Level {
	l, err := zapcore.ParseLevel(s)
	if err != nil {
		return LevelInfo
	}
	return l
}

// Debug logs a message with alternating key/value pairs.
func (l *Logger) Debug(ctx context.Context, msg string, kv ...any) {
	l.sugar.Debugw(msg, l.withTrace(ctx, kv)...)
}

// Info logs a message with alternating key/value pairs.
func (l *Logger) Info(ctx context.Context, msg string, kv ...any) {
	l.sugar.Infow(msg, l.withTrace(ctx, kv)...)
}

// Warn logs a message with alternating key/value pairs.
func (l *Logger) Warn(ctx context.Context, msg string, kv ...any) {
	l.sugar.Warnw(msg, l.withTrace(ctx, kv)...)
}

// Error logs a message with alternating key/value pairs.
func (l *Logger) Error(ctx context.Context, msg string, kv ...any) {
	l.sugar.Errorw(msg, l.withTrace(ctx, kv)...)
}

// Sync flushes buffered entries.
func (l *Logger) Sync() error {
	return l.sugar.Sync()
}

func (l *Logger) withTrace(ctx context.Context, kv []any) []any {
	if l.traceID == nil || ctx == nil {
		return kv
	}
	if id := l.traceID(ctx); id != "" {
		return append(kv, "trace_id", id)
	}
	return kv
}
