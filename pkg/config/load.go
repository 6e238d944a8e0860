// Package config загружает конфигурацию из переменных окружения и необязательного .env файла.
package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"notekeeper/pkg/logger"
)

const (
	msgLoadingConfiguration = "loading configuration"
	msgConfigurationLoaded  = "configuration loaded successfully"
	msgEnvFileSkipped       = "env file not found, using process environment"

	errFailedReadEnvFile       = "failed to read env file"
	errFailedLoadConfiguration = "failed to load configuration"

	attrService = "service"
	attrPath    = "path"
)

// Load читает env-файлы (если есть) и заполняет T через теги cleanenv.
// Уже заданные переменные окружения имеют приоритет над файлом.
func Load[T any](ctx context.Context, serviceName string, envFiles ...string) (*T, error) {
	log := logger.Log(ctx).With(zap.String(attrService, serviceName))

	log.Info(ctx, msgLoadingConfiguration, zap.Strings(attrPath, envFiles))

	for _, path := range envFiles {
		if err := godotenv.Load(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				log.Debug(ctx, msgEnvFileSkipped, zap.String(attrPath, path))
				continue
			}
			return nil, fmt.Errorf("%s %s: %w", errFailedReadEnvFile, path, err)
		}
	}

	var cfg T
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		log.Error(ctx, errFailedLoadConfiguration, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errFailedLoadConfiguration, err)
	}

	log.Info(ctx, msgConfigurationLoaded)
	return &cfg, nil
}
