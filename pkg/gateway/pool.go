package gateway

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

var (
	errPoolClosed = errors.New("channel pool closed")
	errConnClosed = errors.New("amqp connection closed")
)

// ChannelPool keeps a bounded number of publishing channels alive.
// Invariant: len(permits) == total channels (idle + borrowed) <= capacity.
type ChannelPool struct {
	conn     *amqp.Connection
	idle     chan *amqp.Channel
	capacity int

	closed atomic.Bool
	// newChMu serialises channel creation, and Return against Close so
	// nothing is sent on a closed idle channel.
	newChMu sync.Mutex
	permits chan struct{}
}

func NewChannelPool(conn *amqp.Connection, capacity int) *ChannelPool {
	if capacity <= 0 {
		capacity = 16
	}
	return &ChannelPool{
		conn:     conn,
		idle:     make(chan *amqp.Channel, capacity),
		capacity: capacity,
		permits:  make(chan struct{}, capacity),
	}
}

// Borrow returns an idle channel, opens a new one while under capacity, or
// waits for one to be returned.
func (cp *ChannelPool) Borrow(ctx context.Context, retryDelay time.Duration) (*amqp.Channel, error) {
	if retryDelay <= 0 {
		retryDelay = 50 * time.Millisecond
	}
	for {
		if cp.closed.Load() {
			return nil, errPoolClosed
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()

		case ch, ok := <-cp.idle:
			if !ok {
				return nil, errPoolClosed
			}
			if !ch.IsClosed() {
				return ch, nil
			}
			// stale channel: keep its permit and replace it
			_ = SafeClose(ch)
			nch, err := cp.open()
			if err == nil {
				return nch, nil
			}
			<-cp.permits
			if err := sleepCtx(ctx, retryDelay); err != nil {
				return nil, err
			}

		default:
			if cp.conn.IsClosed() {
				return nil, errConnClosed
			}
			select {
			case cp.permits <- struct{}{}:
				nch, err := cp.open()
				if err == nil {
					return nch, nil
				}
				<-cp.permits
				if err := sleepCtx(ctx, retryDelay); err != nil {
					return nil, err
				}
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(retryDelay):
			}
		}
	}
}

// Return hands a borrowed channel back. Closed channels release their permit.
func (cp *ChannelPool) Return(ch *amqp.Channel) {
	if ch == nil {
		return
	}
	cp.newChMu.Lock()
	defer cp.newChMu.Unlock()
	if cp.closed.Load() || cp.conn.IsClosed() || ch.IsClosed() {
		cp.discard(ch)
		return
	}
	select {
	case cp.idle <- ch:
	default:
		cp.discard(ch)
	}
}

func (cp *ChannelPool) Close() {
	cp.newChMu.Lock()
	defer cp.newChMu.Unlock()
	if cp.closed.Swap(true) {
		return
	}
	close(cp.idle)
	for ch := range cp.idle {
		cp.discard(ch)
	}
}

func (cp *ChannelPool) discard(ch *amqp.Channel) {
	_ = SafeClose(ch)
	select {
	case <-cp.permits:
	default:
	}
}

func (cp *ChannelPool) open() (*amqp.Channel, error) {
	cp.newChMu.Lock()
	defer cp.newChMu.Unlock()
	if cp.conn.IsClosed() {
		return nil, errConnClosed
	}
	return cp.conn.Channel()
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
