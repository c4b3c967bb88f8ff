package app

import (
	"fmt"

	"github.com/dkeye/Relay/internal/core"
	"github.com/dkeye/Relay/internal/domain"
)

type BackpressureAction int

const (
	NoAction BackpressureAction = iota
	KickMember
	DropFrame
)

// Policy decides what happens to a member whose send queue is full.
type Policy interface {
	OnBackPressure(room core.RoomService, member core.MemberSession) BackpressureAction
}

// DropPolicy loses the frame for the slow member and keeps it connected.
type DropPolicy struct{}

func (DropPolicy) OnBackPressure(core.RoomService, core.MemberSession) BackpressureAction {
	return DropFrame
}

// KickPolicy disconnects slow members.
type KickPolicy struct{}

func (KickPolicy) OnBackPressure(core.RoomService, core.MemberSession) BackpressureAction {
	return KickMember
}

func NewPolicy(name string) (Policy, error) {
	switch name {
	case "", "drop":
		return DropPolicy{}, nil
	case "kick":
		return KickPolicy{}, nil
	}
	return nil, fmt.Errorf("unknown backpressure policy %q", name)
}

// RoomPolicy derives the room a pseudonym joins.
type RoomPolicy interface {
	RoomFor(username string) domain.RoomID
}

// SharedRoomPolicy puts every user in one room.
type SharedRoomPolicy struct {
	Name domain.RoomID
}

func (p SharedRoomPolicy) RoomFor(string) domain.RoomID { return p.Name }

// PerUserRoomPolicy gives each pseudonym its own room.
type PerUserRoomPolicy struct {
	Prefix string
}

func (p PerUserRoomPolicy) RoomFor(username string) domain.RoomID {
	return domain.RoomID(p.Prefix + username)
}

const (
	RoomPolicyShared  = "shared"
	RoomPolicyPerUser = "per_user"
)

func NewRoomPolicy(kind string, shared domain.RoomID) (RoomPolicy, error) {
	switch kind {
	case "", RoomPolicyShared:
		if shared == "" {
			shared = "lobby"
		}
		return SharedRoomPolicy{Name: shared}, nil
	case RoomPolicyPerUser:
		return PerUserRoomPolicy{Prefix: "session-"}, nil
	}
	return nil, fmt.Errorf("unknown room policy %q", kind)
}
