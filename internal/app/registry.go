package app

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/dkeye/GroupChat/internal/core"
	"github.com/dkeye/GroupChat/internal/domain"
	"github.com/rs/zerolog/log"
)

var (
	ErrUnknownSession       = errors.New("unknown session")
	ErrAlreadyAuthenticated = errors.New("session already authenticated")
)

// ConnState is the lifecycle position of a connection.
type ConnState int

const (
	StateConnecting ConnState = iota
	StateAuthenticated
	StateDisconnected
)

func (s ConnState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "disconnected"
	}
}

type sessionEntry struct {
	State   ConnState
	Signal  core.SignalConnection
	Session core.MemberSession
	Rooms   map[domain.RoomID]struct{}
	Cancel  context.CancelFunc
}

// Registry holds per-connection state for the lifetime of each connection.
type Registry struct {
	mu       sync.RWMutex
	sessions map[core.SessionID]*sessionEntry
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[core.SessionID]*sessionEntry),
	}
}

// BindSignal registers a freshly opened connection in the connecting state.
func (r *Registry) BindSignal(sid core.SessionID, signal core.SignalConnection, cancel context.CancelFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[sid] = &sessionEntry{
		State:  StateConnecting,
		Signal: signal,
		Rooms:  make(map[domain.RoomID]struct{}),
		Cancel: cancel,
	}
	log.Debug().Str("module", "app.registry").Str("sid", string(sid)).Msg("bound signal")
}

// Authenticate attaches p to sid. It succeeds at most once per connection.
func (r *Registry) Authenticate(sid core.SessionID, p domain.Principal) (core.MemberSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[sid]
	if !ok {
		return nil, ErrUnknownSession
	}
	if e.State != StateConnecting {
		return nil, ErrAlreadyAuthenticated
	}
	e.Session = core.NewMemberSession(domain.NewMember(p), e.Signal)
	e.State = StateAuthenticated
	log.Debug().Str("module", "app.registry").Str("sid", string(sid)).Str("user", string(p.ID)).Msg("authenticated")
	return e.Session, nil
}

func (r *Registry) State(sid core.SessionID) ConnState {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.sessions[sid]; ok {
		return e.State
	}
	return StateDisconnected
}

// GetSession returns the session of an authenticated connection.
func (r *Registry) GetSession(sid core.SessionID) (core.MemberSession, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.sessions[sid]; ok && e.State == StateAuthenticated {
		return e.Session, true
	}
	return nil, false
}

func (r *Registry) Principal(sid core.SessionID) (domain.Principal, bool) {
	sess, ok := r.GetSession(sid)
	if !ok {
		return domain.Principal{}, false
	}
	return sess.Meta().Principal, true
}

// AddRoom records that sid joined room. It reports false for unknown sessions.
func (r *Registry) AddRoom(sid core.SessionID, room domain.RoomID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[sid]
	if !ok {
		return false
	}
	e.Rooms[room] = struct{}{}
	return true
}

// RemoveRoom reports whether sid was in room.
func (r *Registry) RemoveRoom(sid core.SessionID, room domain.RoomID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[sid]
	if !ok {
		return false
	}
	if _, in := e.Rooms[room]; !in {
		return false
	}
	delete(e.Rooms, room)
	return true
}

func (r *Registry) InRoom(sid core.SessionID, room domain.RoomID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.sessions[sid]
	if !ok {
		return false
	}
	_, in := e.Rooms[room]
	return in
}

func (r *Registry) RoomsOf(sid core.SessionID) []domain.RoomID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.sessions[sid]
	if !ok {
		return nil
	}
	out := make([]domain.RoomID, 0, len(e.Rooms))
	for room := range e.Rooms {
		out = append(out, room)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Unbind drops sid and returns the rooms it was still joined to.
// It reports false when sid was already gone.
func (r *Registry) Unbind(sid core.SessionID) ([]domain.RoomID, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[sid]
	if !ok {
		return nil, false
	}
	rooms := make([]domain.RoomID, 0, len(e.Rooms))
	for room := range e.Rooms {
		rooms = append(rooms, room)
	}
	e.State = StateDisconnected
	delete(r.sessions, sid)
	log.Debug().Str("module", "app.registry").Str("sid", string(sid)).Int("rooms", len(rooms)).Msg("unbind session")
	return rooms, true
}

// Cancel stops the connection's pumps.
func (r *Registry) Cancel(sid core.SessionID) bool {
	r.mu.RLock()
	e, ok := r.sessions[sid]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	if e.Cancel != nil {
		e.Cancel()
	}
	log.Debug().Str("module", "app.registry").Str("sid", string(sid)).Msg("canceled session")
	return true
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
