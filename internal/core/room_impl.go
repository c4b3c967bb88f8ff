package core

import (
	"sync"

	"github.com/dkeye/Relay/internal/domain"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
)

// roomImpl is a threadsafe in-memory room.
// It never closes adapter-owned resources.
type roomImpl struct {
	room *domain.Room

	mu     sync.RWMutex
	byConn map[ConnID]MemberSession
	order  []ConnID

	// fanout serializes broadcasts so every member sees the same order.
	fanout sync.Mutex
}

func NewRoomService(room *domain.Room) RoomService {
	return &roomImpl{
		room:   room,
		byConn: make(map[ConnID]MemberSession),
	}
}

func (r *roomImpl) Room() *domain.Room { return r.room }

func (r *roomImpl) MemberCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byConn)
}

func (r *roomImpl) AddMember(ms MemberSession) bool {
	conn := ms.Conn()
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byConn[conn]; ok {
		return false
	}
	r.byConn[conn] = ms
	r.order = append(r.order, conn)
	log.Info().Str("module", "core.room").Str("room", string(r.room.ID)).Str("conn", string(conn)).Msg("member added")
	return true
}

func (r *roomImpl) RemoveMember(conn ConnID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byConn[conn]; !ok {
		return false
	}
	delete(r.byConn, conn)
	r.order = lo.Without(r.order, conn)
	log.Info().Str("module", "core.room").Str("room", string(r.room.ID)).Str("conn", string(conn)).Msg("member removed")
	return true
}

// members returns members in join order.
func (r *roomImpl) members() []MemberSession {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return lo.Map(r.order, func(conn ConnID, _ int) MemberSession {
		return r.byConn[conn]
	})
}

func (r *roomImpl) Broadcast(except ConnID, data Frame) PublishResult {
	r.fanout.Lock()
	defer r.fanout.Unlock()

	res := PublishResult{}
	for _, m := range r.members() {
		if except != "" && m.Conn() == except {
			continue
		}
		if err := m.Signal().TrySend(data); err != nil {
			res.Dropped = append(res.Dropped, m)
			continue
		}
		res.SendTo++
	}
	log.Debug().Str("module", "core.room").Str("room", string(r.room.ID)).Int("sent_to", res.SendTo).Int("dropped", len(res.Dropped)).Msg("broadcast result")
	return res
}
