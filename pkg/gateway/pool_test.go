package gateway

import (
	"context"
	"sync"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
)

func TestChannelPool_ReturnRacesClose(t *testing.T) {
	for range 100 {
		cp := NewChannelPool(&amqp.Connection{}, 4)
		var wg sync.WaitGroup
		for range 8 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				assert.NotPanics(t, func() { cp.Return(&amqp.Channel{}) })
			}()
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			cp.Close()
		}()
		wg.Wait()

		_, err := cp.Borrow(context.Background(), 0)
		assert.ErrorIs(t, err, errPoolClosed)
	}
}

func TestChannelPool_ReturnAfterCloseDiscards(t *testing.T) {
	cp := NewChannelPool(&amqp.Connection{}, 1)
	cp.Close()
	cp.Close()

	assert.NotPanics(t, func() { cp.Return(&amqp.Channel{}) })
	assert.Empty(t, cp.idle)
}
