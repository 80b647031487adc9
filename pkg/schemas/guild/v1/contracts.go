package guild

import "github.com/roboricindustries/raycon-chatclient/pkg/chat"

type ServerRef struct {
	ServerID string `json:"server_id"`
	Name     string `json:"name,omitempty"`
}

// RoleSnapshot is the wire form of a role.
type RoleSnapshot struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Color       int    `json:"color"`
	Position    int    `json:"position"`
	Permissions uint64 `json:"permissions,string"` // bit set, string to survive JS consumers
	Hoist       bool   `json:"hoist"`
	Mentionable bool   `json:"mentionable"`
	Managed     bool   `json:"managed"`
}

func (r RoleSnapshot) ToRole(serverID string) chat.Role {
	return chat.Role{
		ID:          r.ID,
		ServerID:    serverID,
		Name:        r.Name,
		Color:       r.Color,
		Position:    r.Position,
		Permissions: chat.Permissions(r.Permissions),
		Hoist:       r.Hoist,
		Mentionable: r.Mentionable,
		Managed:     r.Managed,
	}
}

func SnapshotOf(r chat.Role) RoleSnapshot {
	return RoleSnapshot{
		ID:          r.ID,
		Name:        r.Name,
		Color:       r.Color,
		Position:    r.Position,
		Permissions: uint64(r.Permissions),
		Hoist:       r.Hoist,
		Mentionable: r.Mentionable,
		Managed:     r.Managed,
	}
}

// ChannelSnapshot is the wire form of a text channel.
type ChannelSnapshot struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Topic    string `json:"topic,omitempty"`
	Position int    `json:"position"`
}

func (c ChannelSnapshot) ToChannel(serverID string) chat.Channel {
	return chat.Channel{
		ID:       c.ID,
		ServerID: serverID,
		Name:     c.Name,
		Topic:    c.Topic,
		Position: c.Position,
	}
}
