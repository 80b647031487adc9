package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// RetrySpec configures the DLX-based retry pipeline.
type RetrySpec struct {
	Enabled     bool
	TTL         time.Duration
	MaxAttempts int

	DeadExchange  string
	DeadQueue     string
	FinalExchange string
	FinalQueue    string
}

// ConsumerSpec defines a single supervised consumer.
type ConsumerSpec struct {
	Name         string
	Exchange     string // main exchange to bind
	ExchangeKind string // default: topic
	Queue        string
	BindingKey   string // routing key for main bind & requeue
	Prefetch     int    // 0 => use global default
	Retry        *RetrySpec

	// If true, poison messages are published to the final queue then acked.
	// If false, poison messages are just acked.
	PoisonToFinal bool

	Consume func(ctx context.Context, d amqp.Delivery) error
}

// ErrPoison marks a delivery that must never be retried (bad content).
var ErrPoison = errors.New("poison message")

// JSONHandler decodes the body into T. Decode failures become ErrPoison.
func JSONHandler[T any](h func(context.Context, T) error) func(context.Context, amqp.Delivery) error {
	return func(ctx context.Context, d amqp.Delivery) error {
		var v T
		if err := json.Unmarshal(d.Body, &v); err != nil {
			return fmt.Errorf("%w: decode %s: %v", ErrPoison, d.RoutingKey, err)
		}
		return h(ctx, v)
	}
}

// RunWithConsumers starts every spec and supervises them until ctx is done,
// restarting closed consumers and reconnecting after connection loss.
func (c *Client) RunWithConsumers(ctx context.Context, specs ...ConsumerSpec) error {
	c.consumerClosed = make(chan string, len(specs)*2)
	c.consumerSpecs = make(map[string]ConsumerSpec, len(specs))

	for _, s := range specs {
		c.consumerSpecs[s.Name] = s
		if err := c.startConsumer(ctx, s); err != nil {
			return fmt.Errorf("start %s: %w", s.Name, err)
		}
	}

	conn, _ := c.current()
	errCh := conn.NotifyClose(make(chan *amqp.Error, 1))
	base := Dsec(c.config.ReconnectBackoffBaseSeconds, 1)
	capd := Dsec(c.config.ReconnectBackoffCapSeconds, 30)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case name := <-c.consumerClosed:
			if s, ok := c.consumerSpecs[name]; ok {
				if err := c.startConsumer(ctx, s); err != nil && c.logger != nil {
					c.logger.Error("restart consumer failed", slog.String("name", name), slog.Any("error", err))
				}
			}

		case err, ok := <-errCh:
			if !ok {
				err = &amqp.Error{Reason: "connection closed"}
			}
			if c.logger != nil {
				c.logger.Error("amqp connection closed, reconnecting", slog.Any("error", err))
			}
			if err := c.reconnectLoop(ctx, base, capd); err != nil {
				return err
			}
			for _, s := range c.consumerSpecs {
				if err := c.startConsumer(ctx, s); err != nil && c.logger != nil {
					c.logger.Error("restart consumer after reconnect failed", slog.String("name", s.Name), slog.Any("error", err))
				}
			}
			conn, _ := c.current()
			errCh = conn.NotifyClose(make(chan *amqp.Error, 1))
		}
	}
}

func (c *Client) reconnectLoop(ctx context.Context, base, capd time.Duration) error {
	backoff := base
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		err := c.reconnect(ctx)
		if err == nil {
			return nil
		}
		wait := JitteredDelay(backoff, capd, c.config.ReconnectJitterPercent)
		if c.logger != nil {
			c.logger.Error("reconnect failed", slog.Any("error", err), slog.Duration("retry_in", wait))
		}
		if err := sleepCtx(ctx, wait); err != nil {
			return err
		}
		if backoff*2 < capd {
			backoff *= 2
		}
	}
}

// startConsumer declares the per-consumer topology and runs the loop.
func (c *Client) startConsumer(ctx context.Context, spec ConsumerSpec) error {
	conn, _ := c.current()
	ch, err := conn.Channel()
	if err != nil {
		return err
	}

	pf := spec.Prefetch
	if pf <= 0 {
		pf = c.config.ConsumerPrefetch
		if pf <= 0 {
			pf = 1
		}
	}
	if err := ch.Qos(pf, 0, false); err != nil {
		_ = ch.Close()
		return err
	}
	if err := declareConsumerTopology(ch, spec); err != nil {
		_ = ch.Close()
		return err
	}
	msgs, err := ch.Consume(spec.Queue, "", false, false, false, false, nil)
	if err != nil {
		_ = ch.Close()
		return err
	}
	closeCh := ch.NotifyClose(make(chan *amqp.Error, 1))

	c.consumerWG.Add(1)
	go func() {
		defer c.consumerWG.Done()
		defer func() { _ = SafeClose(ch) }()
		for {
			select {
			case <-ctx.Done():
				return

			case <-closeCh:
				requeuePending(msgs)
				// a dead connection restarts every consumer from RunWithConsumers
				if cur, _ := c.current(); cur == conn && !conn.IsClosed() {
					select {
					case c.consumerClosed <- spec.Name:
					default:
					}
				}
				return

			case d, ok := <-msgs:
				if !ok {
					return
				}
				c.handleDelivery(ctx, ch, spec, d)
			}
		}
	}()

	if c.logger != nil {
		c.logger.Info("consumer started", slog.String("name", spec.Name), slog.String("queue", spec.Queue), slog.Int("prefetch", pf))
	}
	return nil
}

// handleDelivery runs the consumer and settles the delivery.
func (c *Client) handleDelivery(ctx context.Context, ch *amqp.Channel, spec ConsumerSpec, d amqp.Delivery) {
	retry := spec.Retry != nil && spec.Retry.Enabled
	if retry && spec.Retry.MaxAttempts > 0 && DeathCount(d, spec.Queue) >= spec.Retry.MaxAttempts {
		_ = PublishFinal(ch, finalExchange(spec), d)
		_ = d.Ack(false)
		return
	}

	err := spec.Consume(ctx, d)
	switch {
	case errors.Is(err, ErrPoison):
		if c.logger != nil {
			c.logger.Warn("poison message", slog.String("name", spec.Name), slog.String("message_id", d.MessageId), slog.Any("error", err))
		}
		if spec.PoisonToFinal {
			_ = PublishFinal(ch, finalExchange(spec), d)
		}
		_ = d.Ack(false)

	case err != nil:
		if c.logger != nil {
			c.logger.Error("consume failed", slog.String("name", spec.Name), slog.String("message_id", d.MessageId), slog.Any("error", err))
		}
		// dead-letter into the retry stage when configured, else requeue right away
		_ = d.Nack(false, !retry)

	default:
		_ = d.Ack(false)
	}
}

// requeuePending nacks whatever is already buffered so the broker can
// redeliver it sooner.
func requeuePending(msgs <-chan amqp.Delivery) {
	for {
		select {
		case d, ok := <-msgs:
			if !ok {
				return
			}
			_ = d.Nack(false, true)
		default:
			return
		}
	}
}

// declareConsumerTopology declares main queue/bind, DLX/TTL queue, and final queue.
func declareConsumerTopology(ch *amqp.Channel, s ConsumerSpec) error {
	exKind := FirstNonEmpty(s.ExchangeKind, "topic")
	if err := ch.ExchangeDeclare(s.Exchange, exKind, true, false, false, false, nil); err != nil {
		return err
	}
	retry := s.Retry != nil && s.Retry.Enabled

	mainArgs := amqp.Table{}
	if retry {
		mainArgs["x-dead-letter-exchange"] = deadExchange(s)
	}
	if _, err := ch.QueueDeclare(s.Queue, true, false, false, false, mainArgs); err != nil {
		return err
	}
	if err := ch.QueueBind(s.Queue, s.BindingKey, s.Exchange, false, nil); err != nil {
		return err
	}

	if retry {
		if err := ch.ExchangeDeclare(deadExchange(s), "fanout", true, false, false, false, nil); err != nil {
			return err
		}
		dArgs := amqp.Table{
			"x-message-ttl":             int32(s.Retry.TTL / time.Millisecond),
			"x-dead-letter-exchange":    s.Exchange,
			"x-dead-letter-routing-key": s.BindingKey,
		}
		if _, err := ch.QueueDeclare(deadQueue(s), true, false, false, false, dArgs); err != nil {
			return err
		}
		if err := ch.QueueBind(deadQueue(s), "", deadExchange(s), false, nil); err != nil {
			return err
		}
	}

	if retry || s.PoisonToFinal {
		if err := ch.ExchangeDeclare(finalExchange(s), "fanout", true, false, false, false, nil); err != nil {
			return err
		}
		if _, err := ch.QueueDeclare(finalQueue(s), true, false, false, false, nil); err != nil {
			return err
		}
		if err := ch.QueueBind(finalQueue(s), "", finalExchange(s), false, nil); err != nil {
			return err
		}
	}
	return nil
}
