// Package dispatch owns listener registration and the fan-out of decoded
// events to registered listeners.
package dispatch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime/debug"
	"sync/atomic"
	"time"

	"github.com/roboricindustries/raycon-chatclient/internal/metrics"
	"github.com/roboricindustries/raycon-chatclient/pkg/listener"
	"golang.org/x/sync/errgroup"
)

// Mode selects how listeners of one event are run.
type Mode int

const (
	// ModeSync runs listeners one after another in registration order.
	ModeSync Mode = iota
	// ModeAsync runs listeners concurrently. Dispatch still waits for all of them.
	ModeAsync
)

// ParseMode accepts "sync" and "async".
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "sync":
		return ModeSync, nil
	case "async":
		return ModeAsync, nil
	}
	return ModeSync, fmt.Errorf("unknown dispatch mode %q", s)
}

func (m Mode) String() string {
	if m == ModeAsync {
		return "async"
	}
	return "sync"
}

type Options struct {
	Mode Mode
	// MaxConcurrency bounds concurrent listeners in ModeAsync. 0 means unbounded.
	MaxConcurrency int
	Logger         *slog.Logger
}

// Result summarises one Dispatch call.
type Result struct {
	Invoked int // listeners that returned normally
	Failed  int // listeners that panicked
	Skipped int // listeners not run because ctx was done before dispatch
}

// Dispatcher invokes the listeners registered for a capability.
// A panicking listener is logged and counted; the remaining listeners still run.
type Dispatcher struct {
	registry *Registry
	opts     Options
	log      *slog.Logger
}

func NewDispatcher(registry *Registry, opts Options) *Dispatcher {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Dispatcher{
		registry: registry,
		opts:     opts,
		log:      logger,
	}
}

func (d *Dispatcher) Registry() *Registry { return d.registry }

func (d *Dispatcher) Mode() Mode { return d.opts.Mode }

// Dispatch calls invoke once for every listener registered for c. invoke
// receives the listener and is expected to type-assert it to the interface
// behind c.
//
// An event is delivered to all of its listeners or to none: ctx is checked
// once before the first listener starts. When it is already done every
// listener is reported as skipped and the caller may deliver the event again.
func (d *Dispatcher) Dispatch(ctx context.Context, c listener.Capability, invoke func(l any)) Result {
	ls := d.registry.Listeners(c)
	if len(ls) == 0 {
		return Result{}
	}
	if err := ctx.Err(); err != nil {
		metrics.ListenerInvocations.WithLabelValues(string(c), metrics.ResultSkipped).Add(float64(len(ls)))
		d.log.Warn("dispatch interrupted",
			slog.String("capability", string(c)),
			slog.Int("skipped", len(ls)),
			slog.Any("error", err),
		)
		return Result{Skipped: len(ls)}
	}

	var invoked, failed atomic.Int64
	run := func(l any) {
		if d.call(c, l, invoke) {
			invoked.Add(1)
		} else {
			failed.Add(1)
		}
	}

	switch d.opts.Mode {
	case ModeAsync:
		var g errgroup.Group
		if d.opts.MaxConcurrency > 0 {
			g.SetLimit(d.opts.MaxConcurrency)
		}
		for _, l := range ls {
			g.Go(func() error {
				run(l)
				return nil
			})
		}
		_ = g.Wait()
	default:
		for _, l := range ls {
			run(l)
		}
	}

	return Result{
		Invoked: int(invoked.Load()),
		Failed:  int(failed.Load()),
	}
}

// Interrupted reports whether the event reached no listener because the
// context was done.
func (r Result) Interrupted() bool { return r.Skipped > 0 }

func (d *Dispatcher) call(c listener.Capability, l any, invoke func(any)) (ok bool) {
	start := time.Now()
	defer func() {
		metrics.ListenerDuration.WithLabelValues(string(c)).Observe(time.Since(start).Seconds())
		if r := recover(); r != nil {
			ok = false
			metrics.ListenerInvocations.WithLabelValues(string(c), metrics.ResultPanic).Inc()
			d.log.Error("listener panicked",
				slog.String("capability", string(c)),
				slog.String("listener", fmt.Sprintf("%T", l)),
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())),
			)
			return
		}
		metrics.ListenerInvocations.WithLabelValues(string(c), metrics.ResultOK).Inc()
	}()
	invoke(l)
	return true
}
