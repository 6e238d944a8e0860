package config

import "time"

// Значения по умолчанию для токенов.
const (
	DefaultTokenTTL   = 60 * time.Minute
	DefaultBCryptCost = 12
)

// JWTConfig содержит настройки выпуска токенов и хэширования паролей.
// Ключ подписи не имеет значения по умолчанию: пустой ключ - фатальная ошибка на старте.
type JWTConfig struct {
	SecretKey  string `yaml:"secret_key" env:"NOTEKEEPER_JWT_SECRET_KEY"`
	TokenTTL   string `yaml:"token_ttl" env:"NOTEKEEPER_JWT_TOKEN_TTL" env-default:"60m"`
	Issuer     string `yaml:"issuer" env:"NOTEKEEPER_JWT_ISSUER" env-default:"notekeeper"`
	Audience   string `yaml:"audience" env:"NOTEKEEPER_JWT_AUDIENCE" env-default:"notekeeper-clients"`
	BCryptCost int    `yaml:"bcrypt_cost" env:"NOTEKEEPER_BCRYPT_COST" env-default:"12"`
}

// GetTokenTTL возвращает время жизни токена.
func (c *JWTConfig) GetTokenTTL() time.Duration {
	duration, err := time.ParseDuration(c.TokenTTL)
	if err != nil || duration <= 0 {
		return DefaultTokenTTL
	}
	return duration
}
