package cache

import (
	"sync"
	"testing"

	"github.com/roboricindustries/raycon-chatclient/pkg/chat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_PutAndRemoveRole(t *testing.T) {
	s := NewStore()
	mod := chat.Role{ID: "42", ServerID: "s1", Name: "Moderator", Permissions: chat.PermKickMembers}

	_, existed := s.PutRole(mod)
	assert.False(t, existed)

	got, ok := s.Role("42")
	require.True(t, ok)
	assert.Equal(t, mod, got)

	removed, ok := s.RemoveRole("42")
	require.True(t, ok)
	assert.Equal(t, mod, removed)

	_, ok = s.Role("42")
	assert.False(t, ok)
	assert.Empty(t, s.RolesByServer("s1"))

	_, ok = s.RemoveRole("42")
	assert.False(t, ok)
}

func TestStore_PutRoleReturnsPrevious(t *testing.T) {
	s := NewStore()
	s.PutRole(chat.Role{ID: "42", ServerID: "s1", Name: "Mod"})

	prev, existed := s.PutRole(chat.Role{ID: "42", ServerID: "s1", Name: "Moderator"})

	assert.True(t, existed)
	assert.Equal(t, "Mod", prev.Name)
	got, _ := s.Role("42")
	assert.Equal(t, "Moderator", got.Name)
}

func TestStore_RolesByServerOrdered(t *testing.T) {
	s := NewStore()
	s.PutRole(chat.Role{ID: "3", ServerID: "s1", Position: 2})
	s.PutRole(chat.Role{ID: "2", ServerID: "s1", Position: 1})
	s.PutRole(chat.Role{ID: "1", ServerID: "s1", Position: 1})
	s.PutRole(chat.Role{ID: "9", ServerID: "s2", Position: 0})

	var ids []string
	for _, r := range s.RolesByServer("s1") {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []string{"1", "2", "3"}, ids)
}

func TestStore_RoleMovedBetweenServers(t *testing.T) {
	s := NewStore()
	s.PutRole(chat.Role{ID: "42", ServerID: "s1"})
	s.PutRole(chat.Role{ID: "42", ServerID: "s2"})

	assert.Empty(t, s.RolesByServer("s1"))
	assert.Len(t, s.RolesByServer("s2"), 1)
}

func TestStore_Channels(t *testing.T) {
	s := NewStore()
	s.PutChannel(chat.Channel{ID: "42", ServerID: "s1", Name: "general"})

	ch, ok := s.Channel("42")
	require.True(t, ok)
	assert.Equal(t, "general", ch.Name)

	_, ok = s.Role("42")
	assert.False(t, ok, "channels and roles share no namespace")

	removed, ok := s.RemoveChannel("42")
	require.True(t, ok)
	assert.Equal(t, "general", removed.Name)

	roles, channels := s.Len()
	assert.Zero(t, roles)
	assert.Zero(t, channels)
}

func TestStore_ConcurrentAccess(t *testing.T) {
	s := NewStore()
	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := string(rune('a' + i%26))
			s.PutRole(chat.Role{ID: id, ServerID: "s1"})
			s.RolesByServer("s1")
			s.RemoveRole(id)
		}()
	}
	wg.Wait()
}
