package logger

import (
	"context"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type ctxKey struct{}

// global writes production JSON to stderr until Init applies the configured
// level, so failures while loading config are still reported.
var global = zap.Must(zap.NewProduction(zap.AddCallerSkip(1))).Sugar()

// Init replaces the package logger. Level is one of zap's level names.
func Init(level string) error {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return err
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	l, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return err
	}

	global = l.Sugar()
	return nil
}

func Sync() {
	_ = global.Sync()
}

// WithFields returns a context whose log lines carry the given key-value pairs.
func WithFields(ctx context.Context, keysAndValues ...interface{}) context.Context {
	prev, _ := ctx.Value(ctxKey{}).([]interface{})
	fields := make([]interface{}, 0, len(prev)+len(keysAndValues))
	fields = append(fields, prev...)
	fields = append(fields, keysAndValues...)
	return context.WithValue(ctx, ctxKey{}, fields)
}

func from(ctx context.Context) *zap.SugaredLogger {
	if ctx == nil {
		return global
	}
	if fields, ok := ctx.Value(ctxKey{}).([]interface{}); ok {
		return global.With(fields...)
	}
	return global
}

func Debugf(ctx context.Context, format string, args ...interface{}) {
	from(ctx).Debugf(format, args...)
}

func Infof(ctx context.Context, format string, args ...interface{}) {
	from(ctx).Infof(format, args...)
}

func Warnf(ctx context.Context, format string, args ...interface{}) {
	from(ctx).Warnf(format, args...)
}

func Errorf(ctx context.Context, format string, args ...interface{}) {
	from(ctx).Errorf(format, args...)
}

func Error(ctx context.Context, args ...interface{}) {
	from(ctx).Error(args...)
}

func Fatal(ctx context.Context, args ...interface{}) {
	from(ctx).Fatal(args...)
}
