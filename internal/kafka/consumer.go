package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"eventify/internal/logger"
	"eventify/internal/models"

	"github.com/segmentio/kafka-go"
)

// Consumer follows the lifecycle topics as a member of a consumer group.
type Consumer struct {
	reader *kafka.Reader
	log    *logger.Logger
}

func NewConsumer(brokers []string, topics []string, groupID string, log *logger.Logger) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     brokers,
		GroupID:     groupID,
		GroupTopics: topics,
		MinBytes:    1,
		MaxBytes:    10e6, // 10MB
	})
	return &Consumer{reader: reader, log: log}
}

// Decode parses a lifecycle message produced by Producer.
func Decode(msg kafka.Message) (models.EventNotification, error) {
	var n models.EventNotification
	if err := json.Unmarshal(msg.Value, &n); err != nil {
		return n, fmt.Errorf("decode message at %s/%d/%d: %w", msg.Topic, msg.Partition, msg.Offset, err)
	}
	return n, nil
}

// Run hands every notification to handler until ctx is cancelled.
// Undecodable messages are logged and skipped.
func (c *Consumer) Run(ctx context.Context, handler func(models.EventNotification)) error {
	c.log.LogKafka("CONSUMER_STARTED", fmt.Sprint(c.reader.Config().GroupTopics), "")
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return fmt.Errorf("read message: %w", err)
		}

		n, err := Decode(msg)
		if err != nil {
			c.log.LogKafka("DECODE_FAILED", msg.Topic, err.Error())
			continue
		}
		handler(n)
	}
}

// Close gracefully shuts down the Kafka reader
func (c *Consumer) Close() error {
	return c.reader.Close()
}
