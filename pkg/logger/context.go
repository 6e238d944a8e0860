package logger

import (
	"context"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type ctxLoggerKey struct{}

var (
	global atomic.Pointer[Logger]

	// Резервный logger пишет только предупреждения и ошибки, пока глобальный не задан.
	fallback = sync.OnceValue(func() *Logger {
		cfg := zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
		z, err := cfg.Build()
		if err != nil {
			z = zap.NewNop()
		}
		return &Logger{l: z.With(zap.String("logger", "fallback"))}
	})
)

// NewContext кладет logger в контекст.
func NewContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, ctxLoggerKey{}, l)
}

// SetGlobalLogger заменяет глобальный logger. nil возвращает резервный.
func SetGlobalLogger(l *Logger) {
	global.Store(l)
}

// Log возвращает logger из контекста, затем глобальный, затем резервный.
func Log(ctx context.Context) *Logger {
	if ctx != nil {
		if l, ok := ctx.Value(ctxLoggerKey{}).(*Logger); ok && l != nil {
			return l
		}
	}
	if l := global.Load(); l != nil {
		return l
	}
	return fallback()
}
