package listener

import (
	"testing"

	"github.com/roboricindustries/raycon-chatclient/pkg/chat"
	"github.com/stretchr/testify/assert"
)

type roleAudit struct{ deleted, created int }

func (a *roleAudit) OnRoleCreate(chat.API, chat.Role) { a.created++ }
func (a *roleAudit) OnRoleDelete(chat.API, chat.Role) { a.deleted++ }

func TestCapabilities(t *testing.T) {
	tests := []struct {
		name string
		l    any
		want []Capability
	}{
		{"role delete func", RoleDeleteFunc(func(chat.API, chat.Role) {}), []Capability{RoleDelete}},
		{"channel delete func", ChannelDeleteFunc(func(chat.API, chat.Channel) {}), []Capability{ChannelDelete}},
		{"struct with two", &roleAudit{}, []Capability{RoleCreate, RoleDelete}},
		{"nothing", struct{}{}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Capabilities(tt.l))
		})
	}
}

func TestImplements_UnknownCapability(t *testing.T) {
	assert.False(t, Implements(&roleAudit{}, Capability("member.remove")))
}

func TestRoleDeleteFunc_ForwardsArguments(t *testing.T) {
	var got chat.Role
	var l RoleDeleteListener = RoleDeleteFunc(func(_ chat.API, role chat.Role) { got = role })

	l.OnRoleDelete(nil, chat.Role{ID: "42", Name: "Moderator"})

	assert.Equal(t, "42", got.ID)
	assert.Equal(t, "Moderator", got.Name)
}
