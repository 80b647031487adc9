package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// MaxDialDelay caps the wait between two dial attempts.
const MaxDialDelay = 60 * time.Second

type RetryOptions struct {
	Attempts int
	Delay    time.Duration
	Logger   *slog.Logger
}

// DialWithRetry returns a Dialer that retries with exponential backoff.
// It respects context cancellation for graceful shutdown.
func DialWithRetry(opts RetryOptions, dial Dialer) Dialer {
	if dial == nil {
		dial = Config{}.dialer()
	}
	if opts.Attempts <= 0 {
		opts.Attempts = 1
	}
	if opts.Delay <= 0 {
		opts.Delay = time.Second
	}
	return func(ctx context.Context, url string) (*amqp.Connection, error) {
		var lastErr error
		sleep := opts.Delay
		for i := 1; i <= opts.Attempts; i++ {
			conn, err := dial(ctx, url)
			if err == nil {
				if i > 1 && opts.Logger != nil {
					opts.Logger.Info("rabbit connected", slog.Int("attempt", i))
				}
				return conn, nil
			}
			lastErr = err
			if i == opts.Attempts {
				break
			}

			if opts.Logger != nil {
				opts.Logger.Warn("rabbit dial failed",
					slog.Int("attempt", i),
					slog.Duration("sleep", sleep),
					slog.Any("error", err),
				)
			}
			timer := time.NewTimer(sleep)
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil, fmt.Errorf("dial cancelled: %w", ctx.Err())
			case <-timer.C:
			}
			sleep *= 2
			if sleep > MaxDialDelay {
				sleep = MaxDialDelay
			}
		}
		return nil, fmt.Errorf("failed to connect to RabbitMQ after %d attempts: %w", opts.Attempts, lastErr)
	}
}
