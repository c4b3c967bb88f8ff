package orch

import (
	"github.com/dkeye/Relay/internal/core"
	"github.com/dkeye/Relay/internal/domain"
	"github.com/rs/zerolog/log"
)

// Chat relays text from conn to every member of its room, sender included.
// Text is relayed verbatim, empty strings too.
func (o *Orchestrator) Chat(conn core.ConnID, text string) error {
	roomID, sess, ok := o.Registry.RoomOf(conn)
	if !ok {
		return domain.ErrNoActiveSession
	}
	if o.MaxMessageLen > 0 && len(text) > o.MaxMessageLen {
		return domain.ErrMessageTooLong
	}
	room, ok := o.Rooms.Get(roomID)
	if !ok {
		return domain.ErrNoActiveSession
	}

	sender := sess.Meta().User.Username
	log.Debug().Str("module", "orch").Str("conn", string(conn)).Str("username", sender).Str("room", string(roomID)).Msg("chat")
	o.publish(room, "", domain.NewChatMessage(sender, text))
	return nil
}
