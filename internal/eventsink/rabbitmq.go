// Package eventsink is the one place this system talks to RabbitMQ: a thin
// topic-exchange publisher used by the email service and, optionally, by
// anything else that wants to hand a message to an external system without
// the core depending on that system's shape. It declares the exchange then
// publishes, with a one-shot channel-reopen retry on failure, and falls back
// to logging instead of failing hard when the broker is unavailable at
// boot — email/SMS delivery, PDF rendering, and outbound HTTP resilience
// policies are all external collaborators, so this sink only needs to get a
// message onto a queue, not guarantee its ultimate delivery.
package eventsink

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/url"
	"strings"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Sink publishes an arbitrary JSON-serializable body to a topic exchange
// under a routing key.
type Sink interface {
	Publish(ctx context.Context, exchange, routingKey string, body any) error
	Close()
}

// RabbitMQSink is the production Sink.
type RabbitMQSink struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	logger  *slog.Logger
}

func sanitizeAMQPURL(raw string) (string, error) {
	clean := strings.Trim(strings.TrimSpace(raw), "\"'")
	lower := strings.ToLower(clean)
	idx := strings.Index(lower, "amqp://")
	if idx < 0 {
		idx = strings.Index(lower, "amqps://")
	}
	if idx > 0 {
		clean = clean[idx:]
	}
	u, err := url.Parse(clean)
	if err != nil {
		return "", err
	}
	if u.Scheme != "amqp" && u.Scheme != "amqps" {
		return "", errors.New("AMQP scheme must be either 'amqp://' or 'amqps://'")
	}
	return clean, nil
}

// NewRabbitMQSink dials amqpURL and opens a channel.
func NewRabbitMQSink(amqpURL string, logger *slog.Logger) (*RabbitMQSink, error) {
	cleanURL, err := sanitizeAMQPURL(amqpURL)
	if err != nil {
		return nil, err
	}
	conn, err := amqp.DialConfig(cleanURL, amqp.Config{Dial: amqp.DefaultDial(10 * time.Second)})
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}
	return &RabbitMQSink{conn: conn, channel: ch, logger: logger}, nil
}

func (s *RabbitMQSink) Publish(ctx context.Context, exchange, routingKey string, body any) error {
	if err := s.channel.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		s.logger.Warn("exchange declare failed, reopening channel", slog.String("exchange", exchange), slog.Any("error", err))
		ch, chErr := s.conn.Channel()
		if chErr != nil {
			return chErr
		}
		s.channel = ch
		if err := s.channel.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
			return err
		}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	publishing := amqp.Publishing{
		ContentType: "application/json",
		Timestamp:   time.Now(),
		Body:        payload,
	}

	if err := s.channel.PublishWithContext(ctx, exchange, routingKey, false, false, publishing); err != nil {
		s.logger.Warn("publish failed, retrying once on a fresh channel", slog.String("exchange", exchange), slog.Any("error", err))
		ch, chErr := s.conn.Channel()
		if chErr != nil {
			return err
		}
		s.channel = ch
		if declErr := s.channel.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); declErr != nil {
			return err
		}
		return s.channel.PublishWithContext(ctx, exchange, routingKey, false, false, publishing)
	}
	return nil
}

func (s *RabbitMQSink) Close() {
	if s.channel != nil {
		s.channel.Close()
	}
	if s.conn != nil {
		s.conn.Close()
	}
}

// FallbackSink logs instead of publishing, so the process can still boot
// when the broker is unreachable — outbound notification delivery is a
// non-goal collaborator, not something the core's correctness depends on.
type FallbackSink struct {
	logger *slog.Logger
}

func NewFallbackSink(logger *slog.Logger) *FallbackSink {
	return &FallbackSink{logger: logger}
}

func (f *FallbackSink) Publish(ctx context.Context, exchange, routingKey string, body any) error {
	f.logger.Info("event sink fallback: message not actually published",
		slog.String("exchange", exchange), slog.String("routing_key", routingKey))
	return nil
}

func (f *FallbackSink) Close() {}
