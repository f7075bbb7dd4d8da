// Package kafka forwards domain events to Kafka topics so downstream
// consumers (insight and alert generators live outside this service) can
// react to budget and transaction activity.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/envelope-budget/internal/core/events"
	kafkago "github.com/segmentio/kafka-go"
)

type Publisher struct {
	writer      *kafkago.Writer
	topicPrefix string
	logger      *slog.Logger
}

func NewPublisher(brokers []string, topicPrefix string, logger *slog.Logger) *Publisher {
	return &Publisher{
		writer: &kafkago.Writer{
			Addr:                   kafkago.TCP(brokers...),
			Balancer:               &kafkago.LeastBytes{},
			AllowAutoTopicCreation: true,
		},
		topicPrefix: topicPrefix,
		logger:      logger,
	}
}

// Publish writes one event to the topic <prefix>.<event_type>, keyed by the
// event ID so replays stay partition-stable.
func (p *Publisher) Publish(ctx context.Context, event events.Event) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event %s: %w", event.EventID(), err)
	}

	msg := kafkago.Message{
		Topic: fmt.Sprintf("%s.%s", p.topicPrefix, event.EventType()),
		Key:   []byte(event.EventID()),
		Value: value,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("failed to publish event to kafka",
			"event_type", event.EventType(),
			"event_id", event.EventID(),
			"error", err)
		return err
	}

	p.logger.Debug("event published to kafka",
		"topic", msg.Topic,
		"event_id", event.EventID())
	return nil
}

// Forward subscribes the publisher to the given event types on the bus.
func (p *Publisher) Forward(bus *events.EventBus, eventTypes ...string) {
	for _, eventType := range eventTypes {
		bus.Subscribe(eventType, func(ctx context.Context, event events.Event) error {
			return p.Publish(ctx, event)
		})
	}
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}
