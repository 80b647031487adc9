package gateway

import (
	"context"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Dialer opens an AMQP connection. Tests and DialWithRetry plug in here.
type Dialer func(ctx context.Context, url string) (*amqp.Connection, error)

// Config defines the broker connection and the gateway topology defaults.
type Config struct {
	URL string
	// Exchange the gateway pushes chat events to. Declared on connect.
	GatewayExchange string
	// Extra exchanges declared on connect.
	Exchanges []string
	// Producer is stamped as AppId on published messages.
	Producer string

	PublishPoolSize             int
	ConsumerPrefetch            int
	ConnTimeoutSeconds          int
	PoolRetryDelayMs            int
	ReconnectBackoffBaseSeconds int
	ReconnectBackoffCapSeconds  int
	ReconnectJitterPercent      int
	Dialer                      Dialer
}

func (c Config) dialer() Dialer {
	if c.Dialer != nil {
		return c.Dialer
	}
	return func(_ context.Context, u string) (*amqp.Connection, error) { return amqp.Dial(u) }
}

func (c Config) poolSize() int {
	if c.PublishPoolSize <= 0 {
		return 16
	}
	return c.PublishPoolSize
}
