package config

import (
	"fmt"
	"net/url"
	"time"
)

// PostgresConfig содержит настройки подключения к базе данных.
type PostgresConfig struct {
	Host           string        `yaml:"host" env:"NOTEKEEPER_POSTGRES_HOST" env-default:"localhost"`
	Port           int           `yaml:"port" env:"NOTEKEEPER_POSTGRES_PORT" env-default:"5432"`
	User           string        `yaml:"user" env:"NOTEKEEPER_POSTGRES_USER" env-default:"postgres"`
	Password       string        `yaml:"password" env:"NOTEKEEPER_POSTGRES_PASSWORD" env-default:"postgres"`
	Database       string        `yaml:"database" env:"NOTEKEEPER_POSTGRES_DB" env-default:"notekeeper"`
	SSLMode        string        `yaml:"ssl_mode" env:"NOTEKEEPER_POSTGRES_SSLMODE" env-default:"disable"`
	MinConn        int           `yaml:"min_conn" env:"NOTEKEEPER_POSTGRES_MIN_CONN" env-default:"1"`
	MaxConn        int           `yaml:"max_conn" env:"NOTEKEEPER_POSTGRES_MAX_CONN" env-default:"10"`
	ConnectTimeout time.Duration `yaml:"connect_timeout" env:"NOTEKEEPER_POSTGRES_CONNECT_TIMEOUT" env-default:"5s"`
	MigrationsDir  string        `yaml:"migrations_dir" env:"NOTEKEEPER_POSTGRES_MIGRATIONS_DIR" env-default:"migrations/notekeeper"`
}

// GetDSN возвращает строку подключения к PostgreSQL.
func (p *PostgresConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode)
}

// GetConnectionURL возвращает URL подключения для миграций.
func (p *PostgresConfig) GetConnectionURL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(p.User, p.Password),
		Host:     fmt.Sprintf("%s:%d", p.Host, p.Port),
		Path:     "/" + p.Database,
		RawQuery: "sslmode=" + url.QueryEscape(p.SSLMode),
	}
	return u.String()
}
