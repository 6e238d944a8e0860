// Package config содержит конфигурацию сервиса заметок.
package config

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	pkgconfig "notekeeper/pkg/config"
	"notekeeper/pkg/logger"
)

// Константы ошибок и сообщений для конфигурации.
const (
	ServiceName         = "notekeeper"
	LogConfigLoaded     = "notekeeper configuration loaded"
	ErrFailedLoadConfig = "failed to load configuration"
)

// DefaultEnvFile - необязательный .env файл рядом с бинарником.
const DefaultEnvFile = ".env"

// Config представляет полную конфигурацию приложения.
type Config struct {
	Postgres  PostgresConfig  `yaml:"postgres"`
	HTTP      HTTPConfig      `yaml:"http"`
	GRPC      GRPCConfig      `yaml:"grpc"`
	JWT       JWTConfig       `yaml:"jwt"`
	Logging   LoggingConfig   `yaml:"logging"`
	Shutdown  ShutdownConfig  `yaml:"shutdown"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Kafka     KafkaConfig     `yaml:"kafka"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// Load загружает конфигурацию из окружения и .env файлов.
func Load(ctx context.Context, envFiles ...string) (*Config, error) {
	log := logger.Log(ctx)

	cfg, err := pkgconfig.Load[Config](ctx, ServiceName, envFiles...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrFailedLoadConfig, err)
	}

	log.Info(ctx, LogConfigLoaded,
		zap.String("postgres_host", cfg.Postgres.Host),
		zap.Int("postgres_port", cfg.Postgres.Port),
		zap.String("http_address", cfg.HTTP.GetAddress()),
		zap.String("grpc_address", cfg.GRPC.GetAddress()),
		zap.String("jwt_issuer", cfg.JWT.Issuer),
		zap.String("jwt_audience", cfg.JWT.Audience),
		zap.Duration("jwt_ttl", cfg.JWT.GetTokenTTL()),
		zap.String("log_level", cfg.Logging.Level),
		zap.String("log_mode", cfg.Logging.Mode),
		zap.Int("shutdown_timeout_seconds", cfg.Shutdown.Timeout),
		zap.Bool("rate_limit_enabled", cfg.RateLimit.Enabled),
		zap.Strings("kafka_brokers", cfg.Kafka.Brokers),
		zap.Bool("metrics_enabled", cfg.Metrics.Enabled))

	return cfg, nil
}
