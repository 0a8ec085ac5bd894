package core

import "github.com/dkeye/GroupChat/internal/domain"

// Frame is an encoded outbound event.
type Frame []byte

type SessionID string

// SignalConnection abstracts the messaging transport of one connection.
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}

// MemberSession binds domain.Member and its transport endpoint.
// This is what a room stores and fans out to.
type MemberSession interface {
	Meta() *domain.Member
	Signal() SignalConnection
}

// PublishResult reports delivery stats/backpressure to the gateway.
type PublishResult struct {
	SendTo  int
	Dropped []SessionID
}

// MemberDTO is a read-only view of a live room occupant (no transport fields).
type MemberDTO struct {
	SID    SessionID     `json:"sid"`
	UserID domain.UserID `json:"userId"`
	Email  string        `json:"email"`
}

// RoomService is the live side of a room: the connections currently joined.
// It never touches transport resources beyond TrySend.
type RoomService interface {
	Room() *domain.Room
	MemberCount() int
	MembersSnapshot() []MemberDTO
	OnlineUsers() []domain.UserID
	HasMember(sid SessionID) bool

	AddMember(sid SessionID, ms MemberSession)
	RemoveMember(sid SessionID) bool
	// Broadcast delivers to every occupant except from.
	Broadcast(from SessionID, data Frame) PublishResult
	// BroadcastAll delivers to every occupant.
	BroadcastAll(data Frame) PublishResult
}

type RoomInfo struct {
	ID          domain.RoomID `json:"id"`
	MemberCount int           `json:"client_count"`
}

// RoomManager owns the room -> connections table.
type RoomManager interface {
	Get(id domain.RoomID) (RoomService, bool)
	AddMember(id domain.RoomID, sid SessionID, ms MemberSession) RoomService
	RemoveMember(id domain.RoomID, sid SessionID) bool
	List() []RoomInfo
}
