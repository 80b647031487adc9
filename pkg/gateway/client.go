// Package gateway is the event source of the chat client: a supervised AMQP
// client that consumes server-pushed chat events and publishes envelopes.
package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

type Client struct {
	mu     sync.RWMutex
	conn   *amqp.Connection
	pool   *ChannelPool
	config Config
	logger *slog.Logger

	consumerWG     sync.WaitGroup
	consumerClosed chan string
	consumerSpecs  map[string]ConsumerSpec
}

func (c *Client) Config() Config { return c.config }

func NewClient(ctx context.Context, config Config, logger *slog.Logger) (*Client, error) {
	const op = "gateway.NewClient"

	if config.URL == "" {
		return nil, fmt.Errorf("rabbitmq URL is required")
	}

	if logger != nil {
		host := ""
		if u, _ := url.Parse(config.URL); u != nil {
			host = u.Host
		}
		logger.With("op", op).Info("connecting to rabbitmq", slog.String("host", host))
	}

	// amqp091 dials without a ctx; bound the attempt with our own deadline
	timeoutSec := config.ConnTimeoutSeconds
	if timeoutSec <= 0 {
		timeoutSec = 30
	}
	dialCtx, cancel := context.WithTimeout(ctx, time.Duration(timeoutSec)*time.Second)
	defer cancel()
	if dialCtx.Err() != nil {
		return nil, fmt.Errorf("context done before connection attempt: %w", dialCtx.Err())
	}

	client := &Client{
		config: config,
		logger: logger,
	}
	if err := client.connect(dialCtx); err != nil {
		if logger != nil {
			logger.With("op", op).Error("connect failed", slog.Any("error", err))
		}
		return nil, err
	}

	if logger != nil {
		logger.With("op", op).Info("client ready")
	}
	return client, nil
}

// connect dials, declares exchanges and builds the publish pool.
func (c *Client) connect(ctx context.Context) error {
	conn, err := c.config.dialer()(ctx, c.config.URL)
	if err != nil {
		return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	tempCh, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("open channel: %w", err)
	}
	if err := c.setupExchanges(tempCh); err != nil {
		_ = tempCh.Close()
		conn.Close()
		return err
	}
	_ = tempCh.Close()

	c.mu.Lock()
	c.conn = conn
	c.pool = NewChannelPool(conn, c.config.poolSize())
	c.mu.Unlock()
	return nil
}

// setupExchanges declares only exchanges here.
// Queues/bindings are per-consumer (so they can carry DLX/TTL args).
func (c *Client) setupExchanges(ch *amqp.Channel) error {
	declare := func(ex string) error {
		if ex == "" {
			return nil
		}
		return ch.ExchangeDeclare(ex, "topic", true, false, false, false, nil)
	}
	if err := declare(c.config.GatewayExchange); err != nil {
		return fmt.Errorf("declare gateway exchange: %w", err)
	}
	for _, ex := range c.config.Exchanges {
		if err := declare(ex); err != nil {
			return fmt.Errorf("declare extra exchange %q: %w", ex, err)
		}
	}
	return nil
}

func (c *Client) current() (*amqp.Connection, *ChannelPool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.conn, c.pool
}

// reconnect tears down the old connection and builds a new one.
func (c *Client) reconnect(ctx context.Context) error {
	const op = "gateway.reconnect"

	conn, pool := c.current()
	if pool != nil {
		pool.Close()
	}
	if conn != nil && !conn.IsClosed() {
		_ = conn.Close()
	}
	if err := c.connect(ctx); err != nil {
		return err
	}
	if c.logger != nil {
		c.logger.With("op", op).Info("reconnected")
	}
	return nil
}

// Close waits briefly for consumers to stop, then closes pool and connection.
func (c *Client) Close() {
	done := make(chan struct{})
	go func() {
		c.consumerWG.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
	}
	conn, pool := c.current()
	if pool != nil {
		pool.Close()
	}
	if conn != nil {
		_ = conn.Close()
	}
}
