package dispatch

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/roboricindustries/raycon-chatclient/internal/metrics"
	"github.com/roboricindustries/raycon-chatclient/pkg/chat"
	"github.com/roboricindustries/raycon-chatclient/pkg/listener"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type roleWatcher struct{ name string }

func (roleWatcher) OnRoleCreate(chat.API, chat.Role) {}
func (roleWatcher) OnRoleDelete(chat.API, chat.Role) {}

func TestRegistry_AddRegistersEveryCapability(t *testing.T) {
	r := NewRegistry()

	reg, err := r.Add(roleWatcher{name: "audit"})
	require.NoError(t, err)

	assert.Equal(t, []listener.Capability{listener.RoleCreate, listener.RoleDelete}, reg.Capabilities())
	assert.Equal(t, 1, r.Len(listener.RoleCreate))
	assert.Equal(t, 1, r.Len(listener.RoleDelete))
	assert.Equal(t, 0, r.Len(listener.ChannelDelete))
	assert.NotEmpty(t, reg.ID())
}

func TestRegistry_AddRejectsNonListener(t *testing.T) {
	r := NewRegistry()

	_, err := r.Add(struct{}{})
	assert.ErrorIs(t, err, ErrNoCapability)
}

func TestRegistry_AddForSingleCapability(t *testing.T) {
	r := NewRegistry()

	_, err := r.AddFor(listener.RoleDelete, roleWatcher{})
	require.NoError(t, err)
	assert.Equal(t, 1, r.Len(listener.RoleDelete))
	assert.Equal(t, 0, r.Len(listener.RoleCreate))

	_, err = r.AddFor(listener.ChannelDelete, roleWatcher{})
	assert.ErrorIs(t, err, ErrCapabilityMismatch)
}

func TestRegistry_ListenersKeepRegistrationOrder(t *testing.T) {
	r := NewRegistry()
	for _, name := range []string{"first", "second", "third"} {
		_, err := r.AddFor(listener.RoleDelete, roleWatcher{name: name})
		require.NoError(t, err)
	}

	var names []string
	for _, l := range r.Listeners(listener.RoleDelete) {
		names = append(names, l.(roleWatcher).name)
	}
	assert.Equal(t, []string{"first", "second", "third"}, names)
}

func TestRegistry_Remove(t *testing.T) {
	r := NewRegistry()
	first, err := r.Add(roleWatcher{name: "first"})
	require.NoError(t, err)
	_, err = r.Add(roleWatcher{name: "second"})
	require.NoError(t, err)

	snapshot := r.Listeners(listener.RoleDelete)

	assert.True(t, r.Remove(first))
	assert.False(t, r.Remove(first), "second remove is a no-op")
	assert.False(t, r.Remove(Registration{}))

	ls := r.Listeners(listener.RoleDelete)
	require.Len(t, ls, 1)
	assert.Equal(t, "second", ls[0].(roleWatcher).name)
	assert.Equal(t, 1, r.Len(listener.RoleCreate))
	assert.Len(t, snapshot, 2, "earlier snapshots are not affected")
}

func TestRegistry_GaugeCountsAcrossRegistries(t *testing.T) {
	gauge := metrics.RegisteredListeners.WithLabelValues(string(listener.ChannelDelete))
	before := testutil.ToFloat64(gauge)
	noop := listener.ChannelDeleteFunc(func(chat.API, chat.Channel) {})

	a, b := NewRegistry(), NewRegistry()
	regA, err := a.Add(noop)
	require.NoError(t, err)
	_, err = a.Add(noop)
	require.NoError(t, err)
	regB, err := b.Add(noop)
	require.NoError(t, err)
	assert.Equal(t, before+3, testutil.ToFloat64(gauge))

	require.True(t, b.Remove(regB))
	assert.Equal(t, before+2, testutil.ToFloat64(gauge))
	require.True(t, a.Remove(regA))
	assert.False(t, a.Remove(regA))
	assert.Equal(t, before+1, testutil.ToFloat64(gauge))
}
