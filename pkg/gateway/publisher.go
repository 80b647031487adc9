package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/roboricindustries/raycon-chatclient/pkg/schemas/common"
)

// Publisher sends envelopes to the exchange and routing key of an event type.
type Publisher interface {
	Publish(ctx context.Context, em common.EventMeta, env common.Envelope) error
}

var _ Publisher = (*Client)(nil)

// Publish implements Publisher on top of PublishJSON.
func (c *Client) Publish(ctx context.Context, em common.EventMeta, env common.Envelope) error {
	if env.Meta.Type == "" {
		env.Meta.Type = em.EventType
	}
	return c.PublishJSON(ctx, em.Exchange, em.RoutingKey, env)
}

// PublishJSON publishes an Envelope as JSON with proper AMQP headers.
func (c *Client) PublishJSON(ctx context.Context, exchange, routingKey string, env common.Envelope) error {
	msg, err := c.publishing(env)
	if err != nil {
		return err
	}
	_, pool := c.current()
	ch, err := pool.Borrow(ctx, time.Duration(c.config.PoolRetryDelayMs)*time.Millisecond)
	if err != nil {
		return fmt.Errorf("borrow channel: %w", err)
	}
	defer pool.Return(ch)

	return ch.PublishWithContext(ctx, FirstNonEmpty(exchange, c.config.GatewayExchange), routingKey, false, false, msg)
}

// PublishConfirmed publishes and waits for the broker to confirm the message.
func (c *Client) PublishConfirmed(ctx context.Context, em common.EventMeta, env common.Envelope) error {
	if env.Meta.Type == "" {
		env.Meta.Type = em.EventType
	}
	msg, err := c.publishing(env)
	if err != nil {
		return err
	}
	return c.WithConfirmChan(ctx, func(ch *amqp.Channel, confirms <-chan amqp.Confirmation) error {
		if err := ch.PublishWithContext(ctx, FirstNonEmpty(em.Exchange, c.config.GatewayExchange), em.RoutingKey, false, false, msg); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case conf, ok := <-confirms:
			if !ok {
				return errConnClosed
			}
			if !conf.Ack {
				return fmt.Errorf("broker nacked message %s", env.Meta.ID)
			}
			return nil
		}
	})
}

// WithConfirmChan lends a channel in confirm mode to fn.
func (c *Client) WithConfirmChan(
	ctx context.Context,
	fn func(ch *amqp.Channel, confirms <-chan amqp.Confirmation) error,
) error {
	_, pool := c.current()
	ch, err := pool.Borrow(ctx, time.Duration(c.config.PoolRetryDelayMs)*time.Millisecond)
	if err != nil {
		return fmt.Errorf("borrow channel: %w", err)
	}
	// confirm mode cannot be turned off, so the channel is not pooled again
	defer func() { _ = SafeClose(ch); pool.Return(ch) }()

	if err := ch.Confirm(false); err != nil {
		return fmt.Errorf("confirm mode: %w", err)
	}
	confirms := ch.NotifyPublish(make(chan amqp.Confirmation, 1))
	return fn(ch, confirms)
}

func (c *Client) publishing(env common.Envelope) (amqp.Publishing, error) {
	// Ensure metadata consistency
	if env.Meta.ID == "" {
		env.Meta.ID = uuid.NewString()
	}
	if env.Meta.CorrelationID == "" {
		env.Meta.CorrelationID = env.Meta.ID
	}
	if env.Meta.Time.IsZero() {
		env.Meta.Time = time.Now().UTC()
	}
	if env.Meta.Producer == "" {
		env.Meta.Producer = c.config.Producer
	}

	body, err := json.Marshal(env)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("marshal envelope: %w", err)
	}
	return amqp.Publishing{
		ContentType:   "application/json",
		Body:          body,
		DeliveryMode:  amqp.Persistent,
		MessageId:     env.Meta.ID,
		CorrelationId: env.Meta.CorrelationID,
		Type:          env.Meta.Type,
		Timestamp:     env.Meta.Time,
		AppId:         c.config.Producer,
	}, nil
}

// FallbackPublisher drops envelopes with a warning. It stands in when no
// broker is configured.
type FallbackPublisher struct {
	log *slog.Logger
}

func NewFallback(logger *slog.Logger) Publisher {
	return &FallbackPublisher{log: logger}
}

func (p *FallbackPublisher) Publish(_ context.Context, em common.EventMeta, env common.Envelope) error {
	if p.log != nil {
		p.log.Warn("FallbackPublisher: skipped publish",
			slog.String("key", em.RoutingKey),
			slog.String("id", env.Meta.ID),
		)
	}
	return nil
}
