package core

import (
	"github.com/dkeye/Relay/internal/domain"
)

// PublishResult reports delivery stats/backpressure to orchestrator.
type PublishResult struct {
	SendTo  int
	Dropped []MemberSession
}

// MemberDTO is a read-only view for APIs (no transport fields).
type MemberDTO struct {
	Conn     ConnID `json:"conn"`
	Username string `json:"username"`
}

// RoomService is the core-facing API of a room.
// It owns the membership set but never touches transport resources.
type RoomService interface {
	Room() *domain.Room
	MemberCount() int

	AddMember(ms MemberSession) bool
	RemoveMember(conn ConnID) bool
	// Broadcast fans data out to every member except the given connection.
	// Pass an empty ConnID to include everyone.
	Broadcast(except ConnID, data Frame) PublishResult
}

type RoomInfo struct {
	ID          domain.RoomID `json:"name"`
	MemberCount int           `json:"client_count"`
}

type RoomManager interface {
	GetOrCreate(id domain.RoomID) RoomService
	Get(id domain.RoomID) (RoomService, bool)
	List() []RoomInfo
	StopRoom(id domain.RoomID)
}
