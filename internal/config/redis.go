package config

import (
	"net"
	"strconv"
	"time"
)

// RateLimitConfig - ограничение частоты запросов по IP с хранением счетчиков в Redis.
type RateLimitConfig struct {
	Enabled        bool          `yaml:"enabled" env:"NOTEKEEPER_RATE_LIMIT_ENABLED" env-default:"false"`
	Limit          int           `yaml:"limit" env:"NOTEKEEPER_RATE_LIMIT_REQUESTS" env-default:"100"`
	Window         time.Duration `yaml:"window" env:"NOTEKEEPER_RATE_LIMIT_WINDOW" env-default:"1m"`
	RedisHost      string        `yaml:"redis_host" env:"NOTEKEEPER_REDIS_HOST" env-default:"localhost"`
	RedisPort      int           `yaml:"redis_port" env:"NOTEKEEPER_REDIS_PORT" env-default:"6379"`
	RedisPassword  string        `yaml:"redis_password" env:"NOTEKEEPER_REDIS_PASSWORD" env-default:""`
	RedisDB        int           `yaml:"redis_db" env:"NOTEKEEPER_REDIS_DB" env-default:"0"`
	ConnectTimeout time.Duration `yaml:"connect_timeout" env:"NOTEKEEPER_REDIS_CONNECT_TIMEOUT" env-default:"5s"`
	ReadTimeout    time.Duration `yaml:"read_timeout" env:"NOTEKEEPER_REDIS_READ_TIMEOUT" env-default:"3s"`
	WriteTimeout   time.Duration `yaml:"write_timeout" env:"NOTEKEEPER_REDIS_WRITE_TIMEOUT" env-default:"3s"`
	PoolSize       int           `yaml:"pool_size" env:"NOTEKEEPER_REDIS_POOL_SIZE" env-default:"10"`
	KeyPrefix      string        `yaml:"key_prefix" env:"NOTEKEEPER_RATE_LIMIT_KEY_PREFIX" env-default:"ratelimit:"`
}

// GetRedisAddress возвращает адрес Redis.
func (c *RateLimitConfig) GetRedisAddress() string {
	return net.JoinHostPort(c.RedisHost, strconv.Itoa(c.RedisPort))
}
