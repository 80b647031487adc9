// Package chat holds the entity values of the remote chat service and the
// read-only handle listeners receive with every event.
package chat

// API is the handle of an authenticated session with the chat service.
// It is shared by every dispatched event and must be treated as read-only.
type API interface {
	// SessionID identifies the session that received the event.
	SessionID() string
	// Role resolves a live role. Deleted roles are never returned.
	Role(id string) (Role, bool)
	// Roles returns the live roles of a server ordered by position.
	Roles(serverID string) []Role
	// Channel resolves a live channel.
	Channel(id string) (Channel, bool)
}
