package orch

import (
	"github.com/dkeye/Relay/internal/core"
	"github.com/dkeye/Relay/internal/domain"
	"github.com/rs/zerolog/log"
)

// Join binds conn to username and the room derived from it. A connection that
// already has a session leaves it first.
func (o *Orchestrator) Join(conn core.ConnID, sig core.SignalConnection, username string) error {
	user, ok := o.Identities.Lookup(username)
	if !ok {
		log.Info().Str("module", "orch").Str("conn", string(conn)).Str("username", username).Msg("join rejected")
		return domain.ErrNotRegistered
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if prev, _, ok := o.Registry.RoomOf(conn); ok {
		o.leaveLocked(conn)
		log.Info().Str("module", "orch").Str("conn", string(conn)).Str("from_room", string(prev)).Msg("left previous room on rejoin")
	}

	roomID := o.RoomPolicy.RoomFor(user.Username)
	room := o.Rooms.GetOrCreate(roomID)
	sess := core.NewMemberSession(conn, domain.NewMember(user, roomID), sig)
	o.Registry.Bind(conn, roomID, sess)
	room.AddMember(sess)
	log.Info().Str("module", "orch").Str("conn", string(conn)).Str("username", user.Username).Str("room", string(roomID)).Msg("joined")

	o.sendTo(sess, domain.SystemMessage("Welcome %s, you are not alone.", user.Username))
	o.publish(room, conn, domain.SystemMessage("%s joined the room", user.Username))
	return nil
}

// Leave ends the session of conn without closing the connection.
func (o *Orchestrator) Leave(conn core.ConnID) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.leaveLocked(conn) {
		return domain.ErrNoActiveSession
	}
	return nil
}

// OnDisconnect releases whatever conn holds. Calling it again is a no-op.
func (o *Orchestrator) OnDisconnect(conn core.ConnID) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.leaveLocked(conn) {
		log.Info().Str("module", "orch").Str("conn", string(conn)).Msg("session closed on disconnect")
	}
}

func (o *Orchestrator) leaveLocked(conn core.ConnID) bool {
	roomID, sess, ok := o.Registry.Unbind(conn)
	if !ok {
		return false
	}
	room, ok := o.Rooms.Get(roomID)
	if !ok {
		return true
	}
	room.RemoveMember(conn)
	o.publish(room, conn, domain.SystemMessage("%s left the room", sess.Meta().User.Username))
	if room.MemberCount() == 0 {
		o.Rooms.StopRoom(roomID)
	}
	return true
}
