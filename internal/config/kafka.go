package config

import "time"

// KafkaConfig настраивает публикацию событий о выдаче доступа к заметкам.
// Пустой список брокеров отключает публикацию.
type KafkaConfig struct {
	Brokers      []string      `yaml:"brokers" env:"NOTEKEEPER_KAFKA_BROKERS" env-separator:","`
	Topic        string        `yaml:"topic" env:"NOTEKEEPER_KAFKA_SHARE_TOPIC" env-default:"notes.shared"`
	WriteTimeout time.Duration `yaml:"write_timeout" env:"NOTEKEEPER_KAFKA_WRITE_TIMEOUT" env-default:"5s"`
}

// Enabled сообщает, настроены ли брокеры.
func (c *KafkaConfig) Enabled() bool {
	return len(c.Brokers) > 0
}
