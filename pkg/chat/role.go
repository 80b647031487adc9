package chat

import "strings"

// Permissions is the permission bit set carried by a role.
type Permissions uint64

const (
	PermCreateInstantInvite Permissions = 1 << 0
	PermKickMembers         Permissions = 1 << 1
	PermBanMembers          Permissions = 1 << 2
	PermAdministrator       Permissions = 1 << 3
	PermManageChannels      Permissions = 1 << 4
	PermManageServer        Permissions = 1 << 5
	PermReadMessages        Permissions = 1 << 10
	PermSendMessages        Permissions = 1 << 11
	PermManageMessages      Permissions = 1 << 13
	PermMentionEveryone     Permissions = 1 << 17
	PermManageRoles         Permissions = 1 << 28
)

var permissionNames = []struct {
	bit  Permissions
	name string
}{
	{PermCreateInstantInvite, "create_instant_invite"},
	{PermKickMembers, "kick_members"},
	{PermBanMembers, "ban_members"},
	{PermAdministrator, "administrator"},
	{PermManageChannels, "manage_channels"},
	{PermManageServer, "manage_server"},
	{PermReadMessages, "read_messages"},
	{PermSendMessages, "send_messages"},
	{PermManageMessages, "manage_messages"},
	{PermMentionEveryone, "mention_everyone"},
	{PermManageRoles, "manage_roles"},
}

// Has reports whether every bit of p is set.
func (ps Permissions) Has(p Permissions) bool {
	return ps&p == p
}

// String lists the names of the known bits that are set, joined by "|".
func (ps Permissions) String() string {
	if ps == 0 {
		return "none"
	}
	var names []string
	for _, pn := range permissionNames {
		if ps.Has(pn.bit) {
			names = append(names, pn.name)
		}
	}
	if len(names) == 0 {
		return "unknown"
	}
	return strings.Join(names, "|")
}

// Role is a snapshot of a permission group on a server.
// Values are copied on every hand-off; holding one never keeps the cache entry alive.
type Role struct {
	ID          string
	ServerID    string
	Name        string
	Color       int
	Position    int
	Permissions Permissions
	Hoist       bool
	Mentionable bool
	Managed     bool
}

// Mention is the chat markup that pings the role.
func (r Role) Mention() string {
	return "<@&" + r.ID + ">"
}
