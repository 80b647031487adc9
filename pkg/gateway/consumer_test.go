package gateway

import (
	"context"
	"errors"
	"fmt"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
)

type settlement struct {
	acks    int
	nacks   int
	requeue bool
}

func (s *settlement) Ack(uint64, bool) error {
	s.acks++
	return nil
}

func (s *settlement) Nack(_ uint64, _ bool, requeue bool) error {
	s.nacks++
	s.requeue = requeue
	return nil
}

func (s *settlement) Reject(_ uint64, requeue bool) error {
	return s.Nack(0, false, requeue)
}

func TestHandleDelivery_Settlement(t *testing.T) {
	retryOn := &RetrySpec{Enabled: true, MaxAttempts: 3}
	failed := errors.New("listener unavailable")

	tests := []struct {
		name  string
		retry *RetrySpec
		err   error
		want  settlement
	}{
		{name: "success is acked", err: nil, want: settlement{acks: 1}},
		{name: "poison is acked", err: fmt.Errorf("%w: bad body", ErrPoison), want: settlement{acks: 1}},
		{name: "poison is acked with retry", retry: retryOn, err: ErrPoison, want: settlement{acks: 1}},
		{name: "failure without retry is requeued", err: failed, want: settlement{nacks: 1, requeue: true}},
		{name: "failure with disabled retry is requeued", retry: &RetrySpec{}, err: failed, want: settlement{nacks: 1, requeue: true}},
		{name: "failure with retry is dead-lettered", retry: retryOn, err: failed, want: settlement{nacks: 1, requeue: false}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ack := &settlement{}
			calls := 0
			spec := ConsumerSpec{
				Name:  "test",
				Queue: "q",
				Retry: tt.retry,
				Consume: func(context.Context, amqp.Delivery) error {
					calls++
					return tt.err
				},
			}

			(&Client{}).handleDelivery(context.Background(), nil, spec, amqp.Delivery{Acknowledger: ack, DeliveryTag: 1})

			assert.Equal(t, 1, calls)
			assert.Equal(t, tt.want, *ack)
		})
	}
}
