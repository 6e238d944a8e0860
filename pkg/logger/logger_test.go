package logger_test

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"notekeeper/pkg/logger"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name    string
		env     logger.Environment
		level   string
		wantErr bool
	}{
		{name: "development with debug", env: logger.Development, level: "debug"},
		{name: "production with default level", env: logger.Production, level: ""},
		{name: "level is case insensitive", env: logger.Production, level: "WARN"},
		{name: "unknown level", env: logger.Development, level: "verbose", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, err := logger.NewLogger(tt.env, tt.level)
			if tt.wantErr {
				require.Error(t, err)
				assert.Nil(t, log)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, log)
		})
	}
}

func TestLog(t *testing.T) {
	logger.SetGlobalLogger(nil)
	defer logger.SetGlobalLogger(nil)

	t.Run("returns logger from context when available", func(t *testing.T) {
		contextLogger := logger.NewNop()
		globalLogger := logger.NewNop()
		logger.SetGlobalLogger(globalLogger)

		result := logger.Log(logger.NewContext(context.Background(), contextLogger))
		assert.Same(t, contextLogger, result)
	})

	t.Run("returns global logger when no logger in context", func(t *testing.T) {
		globalLogger := logger.NewNop()
		logger.SetGlobalLogger(globalLogger)

		assert.Same(t, globalLogger, logger.Log(context.Background()))
	})

	t.Run("returns the same fallback logger instance each time", func(t *testing.T) {
		logger.SetGlobalLogger(nil)

		first := logger.Log(context.Background())
		second := logger.Log(context.Background())
		require.NotNil(t, first)
		assert.Same(t, first, second, "fallback logger should be a singleton")
	})
}

func TestRequestIDIsAttached(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := logger.New(zap.New(core))

	ctx := logger.NewRequestIDContext(context.Background(), "req-42")
	log.Info(ctx, "with id", zap.String("k", "v"))
	log.With(zap.String("component", "test")).Debug(context.Background(), "without id")

	entries := logs.All()
	require.Len(t, entries, 2)

	assert.Equal(t, "req-42", entries[0].ContextMap()[logger.RequestID])
	assert.Equal(t, "v", entries[0].ContextMap()["k"])

	_, hasID := entries[1].ContextMap()[logger.RequestID]
	assert.False(t, hasID)
	assert.Equal(t, "test", entries[1].ContextMap()["component"])
}

func TestNewRequestIDContext(t *testing.T) {
	t.Run("keeps provided id", func(t *testing.T) {
		ctx := logger.NewRequestIDContext(context.Background(), "given")
		id, ok := logger.GetRequestID(ctx)
		require.True(t, ok)
		assert.Equal(t, "given", id)
	})

	t.Run("generates uuid when empty", func(t *testing.T) {
		ctx := logger.NewRequestIDContext(context.Background(), "")
		id, ok := logger.GetRequestID(ctx)
		require.True(t, ok)
		_, err := uuid.Parse(id)
		assert.NoError(t, err)
	})

	t.Run("replaces unsafe id", func(t *testing.T) {
		ctx := logger.NewRequestIDContext(context.Background(), "bad id\nwith newline")
		id, ok := logger.GetRequestID(ctx)
		require.True(t, ok)
		_, err := uuid.Parse(id)
		assert.NoError(t, err)
	})

	t.Run("missing id", func(t *testing.T) {
		_, ok := logger.GetRequestID(context.Background())
		assert.False(t, ok)
	})
}

func TestValidRequestID(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{"req-42", true},
		{"6f1c2e7a-3b1d-4c55-9f00-1a2b3c4d5e6f", true},
		{"trace:abc_1.2", true},
		{"", false},
		{"with space", false},
		{"new\nline", false},
		{"кириллица", false},
		{strings.Repeat("a", logger.MaxRequestIDLength+1), false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, logger.ValidRequestID(tt.id), tt.id)
	}
}
