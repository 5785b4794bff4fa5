package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"eventify/internal/logger"
	"eventify/internal/models"

	"github.com/segmentio/kafka-go"
)

// MessageWriter is the part of *kafka.Writer the producer uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer publishes event lifecycle notifications, one topic per kind:
// <prefix>.event.created, <prefix>.event.updated, <prefix>.event.deleted.
type Producer struct {
	Writer      MessageWriter
	TopicPrefix string
	Logger      *logger.Logger
}

func NewProducer(brokers []string, topicPrefix string, log *logger.Logger) *Producer {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		BatchTimeout:           50 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}
	return &Producer{Writer: writer, TopicPrefix: topicPrefix, Logger: log}
}

// Topics lists every topic the producer may write to.
func (p *Producer) Topics() []string {
	return []string{
		p.topicFor(models.EventCreated),
		p.topicFor(models.EventUpdated),
		p.topicFor(models.EventDeleted),
	}
}

func (p *Producer) topicFor(kind string) string {
	if p.TopicPrefix == "" {
		return kind
	}
	return p.TopicPrefix + "." + kind
}

// Message builds the Kafka message for n, keyed by event id so all
// notifications for one event land on the same partition.
func (p *Producer) Message(n models.EventNotification) (kafka.Message, error) {
	value, err := json.Marshal(n)
	if err != nil {
		return kafka.Message{}, err
	}
	return kafka.Message{
		Topic: p.topicFor(n.Type),
		Key:   []byte(n.Event.ID),
		Value: value,
		Time:  n.OccurredAt,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(n.Type)},
		},
	}, nil
}

func (p *Producer) Publish(ctx context.Context, n models.EventNotification) error {
	msg, err := p.Message(n)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", n.Type, err)
	}

	if err := p.Writer.WriteMessages(ctx, msg); err != nil {
		p.Logger.LogKafka("PUBLISH_FAILED", msg.Topic, err.Error())
		return err
	}
	p.Logger.LogKafka("PUBLISHED", msg.Topic, fmt.Sprintf("event %s", n.Event.ID))
	return nil
}

func (p *Producer) Close() error {
	return p.Writer.Close()
}
