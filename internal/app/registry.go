package app

import (
	"sync"

	"github.com/dkeye/Relay/internal/core"
	"github.com/dkeye/Relay/internal/domain"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
)

type sessionEntry struct {
	RoomID  domain.RoomID
	Session core.MemberSession
}

// Registry maps each live connection to at most one session.
type Registry struct {
	mu       sync.RWMutex
	sessions map[core.ConnID]*sessionEntry
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[core.ConnID]*sessionEntry),
	}
}

// Bind records a session for conn. It refuses to overwrite an existing one.
func (r *Registry) Bind(conn core.ConnID, roomID domain.RoomID, sess core.MemberSession) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[conn]; ok {
		return false
	}
	r.sessions[conn] = &sessionEntry{RoomID: roomID, Session: sess}
	log.Info().Str("module", "app.registry").Str("conn", string(conn)).Str("room", string(roomID)).Msg("bound session")
	return true
}

func (r *Registry) RoomOf(conn core.ConnID) (domain.RoomID, core.MemberSession, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.sessions[conn]
	if !ok {
		return "", nil, false
	}
	return entry.RoomID, entry.Session, true
}

// Unbind erases the session of conn. Only the first call for a given
// session reports true.
func (r *Registry) Unbind(conn core.ConnID) (domain.RoomID, core.MemberSession, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.sessions[conn]
	if !ok {
		return "", nil, false
	}
	delete(r.sessions, conn)
	log.Info().Str("module", "app.registry").Str("conn", string(conn)).Msg("unbind session")
	return entry.RoomID, entry.Session, true
}

// MembersOfRoom returns the sessions bound to id, in no particular order.
func (r *Registry) MembersOfRoom(id domain.RoomID) []core.MemberSession {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entries := lo.Filter(lo.Values(r.sessions), func(e *sessionEntry, _ int) bool {
		return e.RoomID == id
	})
	return lo.Map(entries, func(e *sessionEntry, _ int) core.MemberSession { return e.Session })
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
