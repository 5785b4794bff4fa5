package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"eventify/internal/logger"
	"eventify/internal/models"

	"github.com/go-redis/redis/v8"
)

// Publisher fans lifecycle notifications out over a Redis pub/sub channel.
type Publisher struct {
	Client  *redis.Client
	Channel string
	Logger  *logger.Logger
}

func NewPublisher(client *redis.Client, channel string, log *logger.Logger) *Publisher {
	return &Publisher{Client: client, Channel: channel, Logger: log}
}

func (p *Publisher) Publish(ctx context.Context, n models.EventNotification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", n.Type, err)
	}

	receivers, err := p.Client.Publish(ctx, p.Channel, payload).Result()
	if err != nil {
		return fmt.Errorf("publish to %s: %w", p.Channel, err)
	}
	p.Logger.Debug("REDIS", fmt.Sprintf("Published %s for %s to %d subscriber(s)", n.Type, n.Event.ID, receivers))
	return nil
}

// Subscribe delivers notifications from channel to handler until ctx ends.
func Subscribe(ctx context.Context, client *redis.Client, channel string, log *logger.Logger, handler func(models.EventNotification)) error {
	pubsub := client.Subscribe(ctx, channel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe to %s: %w", channel, err)
	}
	log.Info("REDIS", fmt.Sprintf("Subscribed to %s", channel))

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var n models.EventNotification
			if err := json.Unmarshal([]byte(msg.Payload), &n); err != nil {
				log.Warn("REDIS", fmt.Sprintf("Dropping malformed notification on %s: %v", channel, err))
				continue
			}
			handler(n)
		}
	}
}
