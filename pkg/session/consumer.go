package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/roboricindustries/raycon-chatclient/pkg/dispatch"
	"github.com/roboricindustries/raycon-chatclient/pkg/gateway"
	"github.com/roboricindustries/raycon-chatclient/pkg/schemas/common"
	guild "github.com/roboricindustries/raycon-chatclient/pkg/schemas/guild/v1"
)

type ConsumerOptions struct {
	Exchange      string // default guild.Exchange
	Queue         string
	BindingKey    string // default "#"
	Prefetch      int
	Retry         *gateway.RetrySpec
	PoisonToFinal bool
}

// ConsumerSpec binds one queue to the gateway exchange and routes every
// delivery to the matching Handle method. A single queue keeps the events of
// one server in publish order.
func (s *Session) ConsumerSpec(o ConsumerOptions) gateway.ConsumerSpec {
	handlers := map[string]func(context.Context, amqp.Delivery) error{
		guild.RoleCreatedType:    handle(s.HandleRoleCreated),
		guild.RoleUpdatedType:    handle(s.HandleRoleUpdated),
		guild.RoleDeletedType:    handle(s.HandleRoleDeleted),
		guild.ChannelDeletedType: handle(s.HandleChannelDeleted),
	}
	return gateway.ConsumerSpec{
		Name:          "chat-gateway",
		Exchange:      gateway.FirstNonEmpty(o.Exchange, guild.Exchange),
		Queue:         o.Queue,
		BindingKey:    gateway.FirstNonEmpty(o.BindingKey, "#"),
		Prefetch:      o.Prefetch,
		Retry:         o.Retry,
		PoisonToFinal: o.PoisonToFinal,
		Consume: func(ctx context.Context, d amqp.Delivery) error {
			h, ok := handlers[gateway.FirstNonEmpty(d.Type, d.RoutingKey)]
			if !ok {
				s.log.Debug("ignoring gateway event", slog.String("key", d.RoutingKey), slog.String("type", d.Type))
				return nil
			}
			return h(ctx, d)
		},
	}
}

func handle[T any](fn func(context.Context, common.Meta, T) (dispatch.Result, error)) func(context.Context, amqp.Delivery) error {
	return gateway.JSONHandler(func(ctx context.Context, env common.GenericEnvelope[T]) error {
		_, err := fn(ctx, env.Meta, env.Data)
		if errors.Is(err, guild.ErrInvalidPayload) {
			return fmt.Errorf("%w: %w", gateway.ErrPoison, err)
		}
		return err
	})
}
