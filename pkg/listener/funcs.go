package listener

import "github.com/roboricindustries/raycon-chatclient/pkg/chat"

// RoleCreateFunc adapts a function to RoleCreateListener.
type RoleCreateFunc func(api chat.API, role chat.Role)

func (f RoleCreateFunc) OnRoleCreate(api chat.API, role chat.Role) { f(api, role) }

// RoleUpdateFunc adapts a function to RoleUpdateListener.
type RoleUpdateFunc func(api chat.API, old, updated chat.Role)

func (f RoleUpdateFunc) OnRoleUpdate(api chat.API, old, updated chat.Role) { f(api, old, updated) }

// RoleDeleteFunc adapts a function to RoleDeleteListener.
type RoleDeleteFunc func(api chat.API, role chat.Role)

func (f RoleDeleteFunc) OnRoleDelete(api chat.API, role chat.Role) { f(api, role) }

// ChannelDeleteFunc adapts a function to ChannelDeleteListener.
type ChannelDeleteFunc func(api chat.API, channel chat.Channel)

func (f ChannelDeleteFunc) OnChannelDelete(api chat.API, channel chat.Channel) { f(api, channel) }
