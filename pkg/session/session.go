// Package session is the client runtime: it implements chat.API, keeps the
// entity cache current and turns decoded gateway events into listener calls.
package session

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/roboricindustries/raycon-chatclient/pkg/cache"
	"github.com/roboricindustries/raycon-chatclient/pkg/chat"
	"github.com/roboricindustries/raycon-chatclient/pkg/dispatch"
	"github.com/roboricindustries/raycon-chatclient/pkg/listener"
)

const DefaultDedupSize = 4096

type Options struct {
	// ID names the session in logs; a random one is used when empty.
	ID       string
	Dispatch dispatch.Options
	// DedupSize bounds how many event IDs are remembered for redelivery checks.
	DedupSize int
	Logger    *slog.Logger
}

type Session struct {
	id         string
	cache      *cache.Store
	dispatcher *dispatch.Dispatcher
	seen       *lru.Cache[string, struct{}]
	log        *slog.Logger
}

var _ chat.API = (*Session)(nil)

func New(opts Options) (*Session, error) {
	if opts.ID == "" {
		opts.ID = uuid.NewString()
	}
	if opts.DedupSize <= 0 {
		opts.DedupSize = DefaultDedupSize
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	logger = logger.With(slog.String("session", opts.ID))

	seen, err := lru.New[string, struct{}](opts.DedupSize)
	if err != nil {
		return nil, fmt.Errorf("dedup cache: %w", err)
	}
	dopts := opts.Dispatch
	dopts.Logger = logger
	return &Session{
		id:         opts.ID,
		cache:      cache.NewStore(),
		dispatcher: dispatch.NewDispatcher(dispatch.NewRegistry(), dopts),
		seen:       seen,
		log:        logger,
	}, nil
}

func (s *Session) SessionID() string { return s.id }

func (s *Session) Role(id string) (chat.Role, bool) { return s.cache.Role(id) }

func (s *Session) Roles(serverID string) []chat.Role { return s.cache.RolesByServer(serverID) }

func (s *Session) Channel(id string) (chat.Channel, bool) { return s.cache.Channel(id) }

// Cache exposes the entity cache, e.g. to seed it from a server snapshot.
func (s *Session) Cache() *cache.Store { return s.cache }

// AddListener registers l for every capability it implements.
func (s *Session) AddListener(l any) (dispatch.Registration, error) {
	if l == nil {
		return dispatch.Registration{}, ErrNilListener
	}
	reg, err := s.dispatcher.Registry().Add(l)
	if err != nil {
		return dispatch.Registration{}, err
	}
	s.log.Debug("listener added", slog.String("registration", reg.ID()), slog.Any("capabilities", reg.Capabilities()))
	return reg, nil
}

// ErrNilListener is returned when registering a nil listener.
var ErrNilListener = errors.New("nil listener")

// AddRoleDeleteListener registers l for role deletions only.
func (s *Session) AddRoleDeleteListener(l listener.RoleDeleteListener) (dispatch.Registration, error) {
	if l == nil {
		return dispatch.Registration{}, ErrNilListener
	}
	reg, err := s.dispatcher.Registry().AddFor(listener.RoleDelete, l)
	if err != nil {
		return dispatch.Registration{}, err
	}
	s.log.Debug("listener added", slog.String("registration", reg.ID()), slog.Any("capabilities", reg.Capabilities()))
	return reg, nil
}

// RemoveListener unregisters a listener. Events already being dispatched may
// still reach it.
func (s *Session) RemoveListener(reg dispatch.Registration) bool {
	return s.dispatcher.Registry().Remove(reg)
}

// firstDelivery records id and reports whether it was new. Events without an
// ID cannot be deduplicated and always count as new.
func (s *Session) firstDelivery(id string) bool {
	if id == "" {
		return true
	}
	seen, _ := s.seen.ContainsOrAdd(id, struct{}{})
	return !seen
}
