package core

import (
	"context"
	"errors"

	"github.com/dkeye/GroupChat/internal/domain"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrRoomNotFound = errors.New("room not found")
)

// TokenVerifier validates a bearer credential and extracts the principal.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (domain.Principal, error)
}

// MembershipOracle answers whether a user belongs to a room's member set.
type MembershipOracle interface {
	IsMember(ctx context.Context, roomID domain.RoomID, userID domain.UserID) (bool, error)
}

// MessageStore persists chat messages.
type MessageStore interface {
	CreateMessage(ctx context.Context, roomID domain.RoomID, authorID domain.UserID, content string) (domain.ChatMessage, error)
}

// RoomDirectory exposes the persisted side of a room.
type RoomDirectory interface {
	RoomMembers(ctx context.Context, roomID domain.RoomID) ([]domain.UserID, error)
	RoomName(ctx context.Context, roomID domain.RoomID) (string, error)
}

// Notifier hands offline notices to the notification service.
type Notifier interface {
	Publish(ctx context.Context, notice domain.OfflineNotice) error
}
