package config

import "fmt"

// MetricsConfig - отдельный listener для /metrics Prometheus.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" env:"NOTEKEEPER_METRICS_ENABLED" env-default:"true"`
	Host    string `yaml:"host" env:"NOTEKEEPER_METRICS_HOST" env-default:"0.0.0.0"`
	Port    int    `yaml:"port" env:"NOTEKEEPER_METRICS_PORT" env-default:"9090"`
	Path    string `yaml:"path" env:"NOTEKEEPER_METRICS_PATH" env-default:"/metrics"`
}

// GetAddress возвращает адрес listener метрик.
func (c *MetricsConfig) GetAddress() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
