package guild

import "github.com/roboricindustries/raycon-chatclient/pkg/schemas/common"

const Exchange = "chat.gateway"

const (
	RoleCreatedType    = "roles.created.v1"
	RoleUpdatedType    = "roles.updated.v1"
	RoleDeletedType    = "roles.deleted.v1"
	ChannelDeletedType = "channels.deleted.v1"
)

var (
	RoleCreatedMeta = common.EventMeta{
		EventType:  RoleCreatedType,
		Exchange:   Exchange,
		RoutingKey: RoleCreatedType,
	}
	RoleUpdatedMeta = common.EventMeta{
		EventType:  RoleUpdatedType,
		Exchange:   Exchange,
		RoutingKey: RoleUpdatedType,
	}
	RoleDeletedMeta = common.EventMeta{
		EventType:  RoleDeletedType,
		Exchange:   Exchange,
		RoutingKey: RoleDeletedType,
	}
	ChannelDeletedMeta = common.EventMeta{
		EventType:  ChannelDeletedType,
		Exchange:   Exchange,
		RoutingKey: ChannelDeletedType,
	}
)
