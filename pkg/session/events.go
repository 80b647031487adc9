package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/roboricindustries/raycon-chatclient/internal/metrics"
	"github.com/roboricindustries/raycon-chatclient/pkg/chat"
	"github.com/roboricindustries/raycon-chatclient/pkg/dispatch"
	"github.com/roboricindustries/raycon-chatclient/pkg/listener"
	"github.com/roboricindustries/raycon-chatclient/pkg/schemas/common"
	guild "github.com/roboricindustries/raycon-chatclient/pkg/schemas/guild/v1"
)

// ErrInterrupted is returned when an event reached no listener because the
// context was done. The cache and the dedup record are left as they were
// before the event, so a redelivery is processed in full.
var ErrInterrupted = errors.New("event dispatch interrupted")

// accept validates the payload and drops redelivered events.
func (s *Session) accept(meta common.Meta, eventType string, validate func() error) (bool, error) {
	if err := validate(); err != nil {
		metrics.GatewayEvents.WithLabelValues(eventType, metrics.ResultInvalid).Inc()
		return false, err
	}
	if !s.firstDelivery(meta.ID) {
		metrics.GatewayEvents.WithLabelValues(eventType, metrics.ResultDuplicate).Inc()
		s.log.Debug("duplicate event skipped", slog.String("type", eventType), slog.String("id", meta.ID))
		return false, nil
	}
	return true, nil
}

// interrupted undoes the cache change of an event no listener saw and
// forgets its ID.
func (s *Session) interrupted(eventType string, meta common.Meta, undo func()) error {
	undo()
	if meta.ID != "" {
		s.seen.Remove(meta.ID)
	}
	metrics.GatewayEvents.WithLabelValues(eventType, metrics.ResultInterrupted).Inc()
	return fmt.Errorf("%s %s: %w", eventType, meta.ID, ErrInterrupted)
}

func (s *Session) dispatched(eventType string, meta common.Meta, res dispatch.Result) {
	metrics.GatewayEvents.WithLabelValues(eventType, metrics.ResultDispatched).Inc()
	s.log.Debug("event dispatched",
		slog.String("type", eventType),
		slog.String("id", meta.ID),
		slog.Int("invoked", res.Invoked),
		slog.Int("failed", res.Failed),
	)
}

// HandleRoleCreated caches the new role and notifies RoleCreate listeners.
func (s *Session) HandleRoleCreated(ctx context.Context, meta common.Meta, ev guild.RoleCreatedV1) (dispatch.Result, error) {
	ok, err := s.accept(meta, guild.RoleCreatedType, ev.Validate)
	if !ok {
		return dispatch.Result{}, err
	}
	role := ev.Role.ToRole(ev.Server.ServerID)
	prev, existed := s.cache.PutRole(role)

	res := s.dispatcher.Dispatch(ctx, listener.RoleCreate, func(l any) {
		l.(listener.RoleCreateListener).OnRoleCreate(s, role)
	})
	if res.Interrupted() {
		return res, s.interrupted(guild.RoleCreatedType, meta, func() {
			if existed {
				s.cache.PutRole(prev)
			} else {
				s.cache.RemoveRole(role.ID)
			}
		})
	}
	s.dispatched(guild.RoleCreatedType, meta, res)
	return res, nil
}

// HandleRoleUpdated replaces the cached role and notifies RoleUpdate
// listeners with the previous and the new state. An update that changes
// nothing is not dispatched.
func (s *Session) HandleRoleUpdated(ctx context.Context, meta common.Meta, ev guild.RoleUpdatedV1) (dispatch.Result, error) {
	ok, err := s.accept(meta, guild.RoleUpdatedType, ev.Validate)
	if !ok {
		return dispatch.Result{}, err
	}
	updated := ev.Role.ToRole(ev.Server.ServerID)
	old, existed := s.cache.PutRole(updated)
	if !existed {
		old = updated
	} else if old == updated {
		return dispatch.Result{}, nil
	}

	res := s.dispatcher.Dispatch(ctx, listener.RoleUpdate, func(l any) {
		l.(listener.RoleUpdateListener).OnRoleUpdate(s, old, updated)
	})
	if res.Interrupted() {
		return res, s.interrupted(guild.RoleUpdatedType, meta, func() {
			if existed {
				s.cache.PutRole(old)
			} else {
				s.cache.RemoveRole(updated.ID)
			}
		})
	}
	s.dispatched(guild.RoleUpdatedType, meta, res)
	return res, nil
}

// HandleRoleDeleted drops the role from the cache and notifies RoleDelete
// listeners with its last cached state. A role the session never saw is
// reported from the snapshot in the event; without one there is nothing to
// report and the event is skipped.
func (s *Session) HandleRoleDeleted(ctx context.Context, meta common.Meta, ev guild.RoleDeletedV1) (dispatch.Result, error) {
	ok, err := s.accept(meta, guild.RoleDeletedType, ev.Validate)
	if !ok {
		return dispatch.Result{}, err
	}

	role, cached := s.cache.RemoveRole(ev.RoleID)
	if !cached {
		if ev.Role == nil {
			metrics.GatewayEvents.WithLabelValues(guild.RoleDeletedType, metrics.ResultUnknownEntity).Inc()
			s.log.Warn("deleted role was never cached",
				slog.String("role_id", ev.RoleID),
				slog.String("server_id", ev.Server.ServerID),
			)
			return dispatch.Result{}, nil
		}
		role = ev.Role.ToRole(ev.Server.ServerID)
	}

	res := s.dispatcher.Dispatch(ctx, listener.RoleDelete, func(l any) {
		l.(listener.RoleDeleteListener).OnRoleDelete(s, role)
	})
	if res.Interrupted() {
		return res, s.interrupted(guild.RoleDeletedType, meta, func() {
			if cached {
				s.cache.PutRole(role)
			}
		})
	}
	s.dispatched(guild.RoleDeletedType, meta, res)
	return res, nil
}

// HandleChannelDeleted drops the channel and notifies ChannelDelete listeners.
func (s *Session) HandleChannelDeleted(ctx context.Context, meta common.Meta, ev guild.ChannelDeletedV1) (dispatch.Result, error) {
	ok, err := s.accept(meta, guild.ChannelDeletedType, ev.Validate)
	if !ok {
		return dispatch.Result{}, err
	}

	channel, cached := s.cache.RemoveChannel(ev.ChannelID)
	if !cached {
		if ev.Channel == nil {
			metrics.GatewayEvents.WithLabelValues(guild.ChannelDeletedType, metrics.ResultUnknownEntity).Inc()
			s.log.Warn("deleted channel was never cached", slog.String("channel_id", ev.ChannelID))
			return dispatch.Result{}, nil
		}
		channel = ev.Channel.ToChannel(ev.Server.ServerID)
	}

	res := s.dispatcher.Dispatch(ctx, listener.ChannelDelete, func(l any) {
		l.(listener.ChannelDeleteListener).OnChannelDelete(s, channel)
	})
	if res.Interrupted() {
		return res, s.interrupted(guild.ChannelDeletedType, meta, func() {
			if cached {
				s.cache.PutChannel(channel)
			}
		})
	}
	s.dispatched(guild.ChannelDeletedType, meta, res)
	return res, nil
}

// Seed caches roles without notifying anyone, e.g. from the server state
// received on connect.
func (s *Session) Seed(roles []chat.Role, channels []chat.Channel) {
	for _, r := range roles {
		s.cache.PutRole(r)
	}
	for _, ch := range channels {
		s.cache.PutChannel(ch)
	}
}
