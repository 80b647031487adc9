package common

// EventMeta describes where an event type travels.
type EventMeta struct {
	EventType  string // e.g. "roles.deleted.v1"
	Exchange   string // e.g. "chat.gateway"
	RoutingKey string // e.g. "roles.deleted.v1"
}
