package dispatch

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/roboricindustries/raycon-chatclient/internal/metrics"
	"github.com/roboricindustries/raycon-chatclient/pkg/listener"
)

var (
	ErrNoCapability       = errors.New("listener implements no capability")
	ErrCapabilityMismatch = errors.New("listener does not implement capability")
)

// Registration identifies one Add call. Removing it drops the listener from
// every capability it was registered for.
type Registration struct {
	id   uuid.UUID
	caps []listener.Capability
}

func (r Registration) ID() string { return r.id.String() }

// Capabilities returns the capabilities the registration covers.
func (r Registration) Capabilities() []listener.Capability {
	return append([]listener.Capability(nil), r.caps...)
}

type entry struct {
	id uuid.UUID
	l  any
}

// Registry maps each capability to its listeners in registration order.
// Several registries may share a process; the registered listeners gauge
// sums over all of them.
type Registry struct {
	mu    sync.RWMutex
	byCap map[listener.Capability][]entry
}

func NewRegistry() *Registry {
	return &Registry{byCap: make(map[listener.Capability][]entry)}
}

// Add registers l for every capability it implements.
func (r *Registry) Add(l any) (Registration, error) {
	caps := listener.Capabilities(l)
	if len(caps) == 0 {
		return Registration{}, fmt.Errorf("add %T: %w", l, ErrNoCapability)
	}
	return r.add(l, caps), nil
}

// AddFor registers l for c only, even if it implements other capabilities.
func (r *Registry) AddFor(c listener.Capability, l any) (Registration, error) {
	if !listener.Implements(l, c) {
		return Registration{}, fmt.Errorf("add %T for %s: %w", l, c, ErrCapabilityMismatch)
	}
	return r.add(l, []listener.Capability{c}), nil
}

func (r *Registry) add(l any, caps []listener.Capability) Registration {
	reg := Registration{id: uuid.New(), caps: caps}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range caps {
		r.byCap[c] = append(r.byCap[c], entry{id: reg.id, l: l})
		metrics.RegisteredListeners.WithLabelValues(string(c)).Inc()
	}
	return reg
}

// Remove drops every entry of reg. It reports false if reg was not registered.
func (r *Registry) Remove(reg Registration) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := false
	for _, c := range reg.caps {
		entries := r.byCap[c]
		kept := entries[:0:0]
		for _, e := range entries {
			if e.id == reg.id {
				removed = true
				metrics.RegisteredListeners.WithLabelValues(string(c)).Dec()
				continue
			}
			kept = append(kept, e)
		}
		if len(kept) == 0 {
			delete(r.byCap, c)
		} else {
			r.byCap[c] = kept
		}
	}
	return removed
}

// Listeners returns a copy of the listeners registered for c, oldest first.
func (r *Registry) Listeners(c listener.Capability) []any {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := r.byCap[c]
	out := make([]any, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.l)
	}
	return out
}

// Len returns the number of listeners registered for c.
func (r *Registry) Len(c listener.Capability) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byCap[c])
}
