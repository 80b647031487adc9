// Package cache keeps the session's view of live entities on the chat service.
package cache

import (
	"sort"
	"sync"

	"github.com/roboricindustries/raycon-chatclient/internal/metrics"
	"github.com/roboricindustries/raycon-chatclient/pkg/chat"
)

// Store is an in-memory entity cache safe for concurrent use.
// Entities go in and come out by value.
type Store struct {
	mu sync.RWMutex

	roles       map[string]chat.Role
	serverRoles map[string]map[string]struct{}
	channels    map[string]chat.Channel
}

func NewStore() *Store {
	return &Store{
		roles:       make(map[string]chat.Role),
		serverRoles: make(map[string]map[string]struct{}),
		channels:    make(map[string]chat.Channel),
	}
}

// PutRole inserts or replaces a role and returns the previous value, if any.
func (s *Store) PutRole(role chat.Role) (chat.Role, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.roles[role.ID]
	if ok && prev.ServerID != role.ServerID {
		s.unindexLocked(prev)
	}
	s.roles[role.ID] = role
	ids, found := s.serverRoles[role.ServerID]
	if !found {
		ids = make(map[string]struct{})
		s.serverRoles[role.ServerID] = ids
	}
	ids[role.ID] = struct{}{}

	metrics.CachedEntities.WithLabelValues("role").Set(float64(len(s.roles)))
	return prev, ok
}

func (s *Store) Role(id string) (chat.Role, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.roles[id]
	return r, ok
}

// RolesByServer returns the roles of a server ordered by position, then ID.
func (s *Store) RolesByServer(serverID string) []chat.Role {
	s.mu.RLock()
	out := make([]chat.Role, 0, len(s.serverRoles[serverID]))
	for id := range s.serverRoles[serverID] {
		out = append(out, s.roles[id])
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Position != out[j].Position {
			return out[i].Position < out[j].Position
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// RemoveRole deletes a role and returns its last cached state.
func (s *Store) RemoveRole(id string) (chat.Role, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.roles[id]
	if !ok {
		return chat.Role{}, false
	}
	delete(s.roles, id)
	s.unindexLocked(r)

	metrics.CachedEntities.WithLabelValues("role").Set(float64(len(s.roles)))
	return r, true
}

func (s *Store) unindexLocked(r chat.Role) {
	ids := s.serverRoles[r.ServerID]
	delete(ids, r.ID)
	if len(ids) == 0 {
		delete(s.serverRoles, r.ServerID)
	}
}

func (s *Store) PutChannel(ch chat.Channel) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.channels[ch.ID] = ch
	metrics.CachedEntities.WithLabelValues("channel").Set(float64(len(s.channels)))
}

func (s *Store) Channel(id string) (chat.Channel, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ch, ok := s.channels[id]
	return ch, ok
}

// RemoveChannel deletes a channel and returns its last cached state.
func (s *Store) RemoveChannel(id string) (chat.Channel, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch, ok := s.channels[id]
	if ok {
		delete(s.channels, id)
		metrics.CachedEntities.WithLabelValues("channel").Set(float64(len(s.channels)))
	}
	return ch, ok
}

// Len returns the number of cached roles and channels.
func (s *Store) Len() (roles, channels int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.roles), len(s.channels)
}
