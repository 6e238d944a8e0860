package config

import (
	"notekeeper/pkg/logger"
)

// LoggingConfig содержит настройки логирования.
type LoggingConfig struct {
	Level string `yaml:"level" env:"NOTEKEEPER_LOGGER_LEVEL" env-default:"info"`
	Mode  string `yaml:"mode" env:"NOTEKEEPER_LOGGER_MODE" env-default:"development"`
}

// GetEnvironment переводит строку режима в logger.Environment.
func (l *LoggingConfig) GetEnvironment() logger.Environment {
	if l.Mode == string(logger.Production) {
		return logger.Production
	}
	return logger.Development
}
