// Package listener declares the capabilities application code implements to be
// told about changes on the chat service.
//
// A value may implement any number of the interfaces below; it is registered
// once per capability it implements.
package listener

import "github.com/roboricindustries/raycon-chatclient/pkg/chat"

// Capability names one kind of notification.
type Capability string

const (
	RoleCreate    Capability = "role.create"
	RoleUpdate    Capability = "role.update"
	RoleDelete    Capability = "role.delete"
	ChannelDelete Capability = "channel.delete"
)

// All lists every capability in the order Capabilities reports them.
var All = []Capability{RoleCreate, RoleUpdate, RoleDelete, ChannelDelete}

// RoleCreateListener listens to role creations.
type RoleCreateListener interface {
	OnRoleCreate(api chat.API, role chat.Role)
}

// RoleUpdateListener listens to role changes. old is the cached state before the change.
type RoleUpdateListener interface {
	OnRoleUpdate(api chat.API, old, updated chat.Role)
}

// RoleDeleteListener listens to role deletions.
//
// OnRoleDelete is called once for every deleted role with the last known
// state of that role. The role is already gone from the session cache, so
// api.Role(role.ID) misses. OnRoleDelete may run concurrently with other
// listeners.
type RoleDeleteListener interface {
	OnRoleDelete(api chat.API, role chat.Role)
}

// ChannelDeleteListener listens to channel deletions.
type ChannelDeleteListener interface {
	OnChannelDelete(api chat.API, channel chat.Channel)
}

// Implements reports whether l implements the interface behind c.
func Implements(l any, c Capability) bool {
	switch c {
	case RoleCreate:
		_, ok := l.(RoleCreateListener)
		return ok
	case RoleUpdate:
		_, ok := l.(RoleUpdateListener)
		return ok
	case RoleDelete:
		_, ok := l.(RoleDeleteListener)
		return ok
	case ChannelDelete:
		_, ok := l.(ChannelDeleteListener)
		return ok
	}
	return false
}

// Capabilities returns the capabilities l implements, in the order of All.
func Capabilities(l any) []Capability {
	var caps []Capability
	for _, c := range All {
		if Implements(l, c) {
			caps = append(caps, c)
		}
	}
	return caps
}
