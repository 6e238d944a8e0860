// Package events публикует доменные события в Kafka.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"notekeeper/internal/config"
	"notekeeper/internal/domain/entities"
	svc "notekeeper/internal/ports/services"
	"notekeeper/pkg/logger"
)

// EventNoteShared - тип события о выдаче доступа.
const EventNoteShared = "note.shared"

// DefaultBatchTimeout ограничивает ожидание неполного батча при синхронной публикации.
const DefaultBatchTimeout = 10 * time.Millisecond

// ShareEvent - тело сообщения о выдаче доступа.
type ShareEvent struct {
	Type        string    `json:"type"`
	GrantID     int64     `json:"grant_id"`
	NoteID      int64     `json:"note_id"`
	RecipientID int64     `json:"recipient_id"`
	SharerID    int64     `json:"sharer_id"`
	SharedAt    time.Time `json:"shared_at"`
}

// MessageWriter - часть kafka.Writer, нужная публикатору.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher реализует ShareEventPublisher поверх kafka.Writer.
type KafkaPublisher struct {
	writer  MessageWriter
	timeout time.Duration
}

var _ svc.ShareEventPublisher = (*KafkaPublisher)(nil)

// NewKafkaPublisher создает публикатор для брокеров и топика из конфигурации.
// Сообщения одной заметки попадают в одну партицию.
func NewKafkaPublisher(cfg *config.KafkaConfig) *KafkaPublisher {
	return NewPublisherWithWriter(NewWriter(cfg), cfg.WriteTimeout)
}

// NewWriter собирает kafka.Writer по конфигурации.
func NewWriter(cfg *config.KafkaConfig) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		BatchTimeout:           DefaultBatchTimeout,
		WriteTimeout:           cfg.WriteTimeout,
		AllowAutoTopicCreation: true,
	}
}

// NewPublisherWithWriter создает публикатор с произвольным writer.
func NewPublisherWithWriter(writer MessageWriter, timeout time.Duration) *KafkaPublisher {
	return &KafkaPublisher{writer: writer, timeout: timeout}
}

// PublishShared отправляет событие о выдаче доступа.
func (p *KafkaPublisher) PublishShared(ctx context.Context, grant *entities.ShareGrant) error {
	value, err := json.Marshal(ShareEvent{
		Type:        EventNoteShared,
		GrantID:     grant.ID,
		NoteID:      grant.NoteID,
		RecipientID: grant.RecipientID,
		SharerID:    grant.SharerID,
		SharedAt:    grant.SharedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to encode share event: %w", err)
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatInt(grant.NoteID, 10)),
		Value: value,
	})
	if err != nil {
		return fmt.Errorf("failed to send message to kafka: %w", err)
	}

	logger.Log(ctx).Debug(ctx, "share event published", zap.Int64("grantID", grant.ID))
	return nil
}

// Close закрывает writer.
func (p *KafkaPublisher) Close() error {
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("failed to close kafka producer: %w", err)
	}
	return nil
}
