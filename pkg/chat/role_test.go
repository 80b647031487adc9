package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPermissions_Has(t *testing.T) {
	ps := PermKickMembers | PermBanMembers | PermManageRoles

	assert.True(t, ps.Has(PermKickMembers))
	assert.True(t, ps.Has(PermKickMembers|PermBanMembers))
	assert.False(t, ps.Has(PermAdministrator))
	assert.False(t, ps.Has(PermKickMembers|PermAdministrator))
}

func TestPermissions_String(t *testing.T) {
	assert.Equal(t, "none", Permissions(0).String())
	assert.Equal(t, "unknown", Permissions(1<<40).String())
	assert.Equal(t, "kick_members|manage_roles", (PermManageRoles | PermKickMembers).String())
}

func TestRole_Mention(t *testing.T) {
	assert.Equal(t, "<@&42>", Role{ID: "42", Name: "Moderator"}.Mention())
}
