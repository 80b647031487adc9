package gateway

import (
	"context"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONHandler_DecodesBody(t *testing.T) {
	type payload struct {
		RoleID string `json:"role_id"`
	}
	var got payload
	h := JSONHandler(func(_ context.Context, p payload) error {
		got = p
		return nil
	})

	err := h(context.Background(), amqp.Delivery{Body: []byte(`{"role_id":"42"}`)})

	require.NoError(t, err)
	assert.Equal(t, "42", got.RoleID)
}

func TestJSONHandler_BadJSONIsPoison(t *testing.T) {
	called := false
	h := JSONHandler(func(context.Context, map[string]any) error {
		called = true
		return nil
	})

	err := h(context.Background(), amqp.Delivery{RoutingKey: "roles.deleted.v1", Body: []byte(`{not json`)})

	assert.ErrorIs(t, err, ErrPoison)
	assert.False(t, called)
}

func TestJSONHandler_PassesHandlerError(t *testing.T) {
	boom := errors.New("boom")
	h := JSONHandler(func(context.Context, struct{}) error { return boom })

	err := h(context.Background(), amqp.Delivery{Body: []byte(`{}`)})

	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrPoison)
}

func TestDeathCount(t *testing.T) {
	d := amqp.Delivery{Headers: amqp.Table{
		"x-death": []any{
			amqp.Table{"queue": "other", "count": int64(7)},
			amqp.Table{"queue": "roles", "count": int64(3)},
		},
	}}

	assert.Equal(t, 3, DeathCount(d, "roles"))
	assert.Equal(t, 0, DeathCount(d, "missing"))
	assert.Equal(t, 0, DeathCount(amqp.Delivery{}, "roles"))
	assert.Equal(t, 0, DeathCount(amqp.Delivery{Headers: amqp.Table{"x-death": "garbage"}}, "roles"))
}

func TestJitteredDelay_StaysInBounds(t *testing.T) {
	base := time.Second
	for range 100 {
		d := JitteredDelay(base, 2*time.Second, 20)
		assert.GreaterOrEqual(t, d, 800*time.Millisecond)
		assert.LessOrEqual(t, d, 1200*time.Millisecond)
	}
	assert.Equal(t, time.Second, JitteredDelay(10*time.Second, time.Second, 10))
}

func TestDsecAndFirstNonEmpty(t *testing.T) {
	assert.Equal(t, 5*time.Second, Dsec(0, 5))
	assert.Equal(t, 2*time.Second, Dsec(2, 5))
	assert.Equal(t, "a", FirstNonEmpty("a", "b"))
	assert.Equal(t, "b", FirstNonEmpty("", "b"))
}

func TestTopologyNames(t *testing.T) {
	s := ConsumerSpec{Queue: "raycon.roles"}
	assert.Equal(t, "raycon.roles.final", finalExchange(s))
	assert.Equal(t, "raycon.roles.final", finalQueue(s))
	assert.Equal(t, "raycon.roles.dead", deadExchange(s))
	assert.Equal(t, "raycon.roles.dead", deadQueue(s))

	s.Retry = &RetrySpec{FinalExchange: "parking", DeadQueue: "retry.q"}
	assert.Equal(t, "parking", finalExchange(s))
	assert.Equal(t, "retry.q", deadQueue(s))
}
