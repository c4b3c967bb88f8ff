package orch

import (
	"sort"
	"sync"

	"github.com/dkeye/Relay/internal/app"
	"github.com/dkeye/Relay/internal/core"
	"github.com/dkeye/Relay/internal/domain"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
)

// Encoder turns an outbound chat message into a wire frame.
type Encoder interface {
	Message(msg domain.ChatMessage) (core.Frame, error)
}

// Orchestrator is the session relay. It binds connections to pseudonyms and
// rooms and fans chat messages out to room members.
type Orchestrator struct {
	Identities *app.IdentityRegistry
	Registry   *app.Registry
	Rooms      core.RoomManager
	RoomPolicy app.RoomPolicy
	Policy     app.Policy
	Encoder    Encoder
	// MaxMessageLen caps chat text in bytes so one frame cannot flood a
	// room; zero means unlimited. It must stay below the socket read limit.
	MaxMessageLen int

	// mu serializes membership changes (join, leave, disconnect).
	mu sync.Mutex
}

func (o *Orchestrator) sendTo(sess core.MemberSession, msg domain.ChatMessage) {
	frame, err := o.Encoder.Message(msg)
	if err != nil {
		log.Error().Err(err).Str("module", "orch").Msg("encode message")
		return
	}
	if err := sess.Signal().TrySend(frame); err != nil {
		log.Warn().Err(err).Str("module", "orch").Str("conn", string(sess.Conn())).Msg("direct send dropped")
	}
}

// publish relays msg to every member of room except the given connection.
func (o *Orchestrator) publish(room core.RoomService, except core.ConnID, msg domain.ChatMessage) {
	frame, err := o.Encoder.Message(msg)
	if err != nil {
		log.Error().Err(err).Str("module", "orch").Msg("encode message")
		return
	}
	res := room.Broadcast(except, frame)
	if o.Policy == nil {
		return
	}
	for _, slow := range res.Dropped {
		switch o.Policy.OnBackPressure(room, slow) {
		case app.KickMember:
			log.Warn().Str("module", "orch").Str("conn", string(slow.Conn())).Str("room", string(room.Room().ID)).Msg("kicking slow member")
			// Closing the transport ends its read loop, which reports the disconnect.
			slow.Signal().Close()
		case app.DropFrame, app.NoAction:
			log.Debug().Str("module", "orch").Str("conn", string(slow.Conn())).Msg("frame dropped")
		}
	}
}

// Members lists the sessions bound to a room sorted by pseudonym, or false
// when nobody is in it.
func (o *Orchestrator) Members(id domain.RoomID) ([]core.MemberDTO, bool) {
	sessions := o.Registry.MembersOfRoom(id)
	if len(sessions) == 0 {
		return nil, false
	}
	out := lo.Map(sessions, func(ms core.MemberSession, _ int) core.MemberDTO {
		return core.MemberDTO{Conn: ms.Conn(), Username: ms.Meta().User.Username}
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].Username != out[j].Username {
			return out[i].Username < out[j].Username
		}
		return out[i].Conn < out[j].Conn
	})
	return out, true
}
