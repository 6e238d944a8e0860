// Package ratelimit реализует ограничение частоты запросов с фиксированным окном в Redis.
package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"notekeeper/internal/config"
	svc "notekeeper/internal/ports/services"
	"notekeeper/pkg/logger"
)

const (
	LogMethodAllow = "allow"

	ErrorFailedToConnect = "failed to connect to redis"
	ErrorFailedToCount   = "failed to count request in redis"
	ErrorFailedToClose   = "failed to close redis connection"
)

// RedisLimiter считает запросы в окне фиксированной длины.
// Ключ окна включает номер окна, поэтому счетчик сбрасывается сам при смене окна.
type RedisLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
	prefix string
	now    func() time.Time
}

var _ svc.RateLimiter = (*RedisLimiter)(nil)

// NewRedisClient создает клиента Redis и проверяет соединение.
func NewRedisClient(ctx context.Context, cfg *config.RateLimitConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.GetRedisAddress(),
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		DialTimeout:  cfg.ConnectTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		PoolSize:     cfg.PoolSize,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%s: %w", ErrorFailedToConnect, err)
	}

	return client, nil
}

// NewRedisLimiter создает ограничитель на limit запросов за window.
func NewRedisLimiter(client *redis.Client, limit int, window time.Duration, prefix string) *RedisLimiter {
	return &RedisLimiter{
		client: client,
		limit:  limit,
		window: window,
		prefix: prefix,
		now:    time.Now,
	}
}

// WithClock подменяет источник времени.
func (l *RedisLimiter) WithClock(now func() time.Time) *RedisLimiter {
	l.now = now
	return l
}

// Allow увеличивает счетчик key в текущем окне и сообщает, укладывается ли запрос в лимит.
func (l *RedisLimiter) Allow(ctx context.Context, key string) (*svc.RateDecision, error) {
	log := logger.Log(ctx).With(zap.String("method", LogMethodAllow), zap.String("key", key))

	windowStart := l.now().Truncate(l.window)
	redisKey := l.prefix + key + ":" + strconv.FormatInt(windowStart.Unix(), 10)

	var incr *redis.IntCmd
	_, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, redisKey)
		pipe.Expire(ctx, redisKey, l.window)
		return nil
	})
	if err != nil {
		log.Error(ctx, ErrorFailedToCount, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", ErrorFailedToCount, err)
	}

	count := int(incr.Val())
	remaining := l.limit - count
	if remaining < 0 {
		remaining = 0
	}

	return &svc.RateDecision{
		Allowed:   count <= l.limit,
		Limit:     l.limit,
		Remaining: remaining,
		ResetAt:   windowStart.Add(l.window),
	}, nil
}

// Close закрывает соединение с Redis.
func (l *RedisLimiter) Close() error {
	if err := l.client.Close(); err != nil {
		return fmt.Errorf("%s: %w", ErrorFailedToClose, err)
	}
	return nil
}
