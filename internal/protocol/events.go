package protocol

import (
	"time"

	"github.com/dkeye/GroupChat/internal/domain"
)

// Reply answers joinGroup, leaveGroup and sendMessage.
type Reply struct {
	Success bool          `json:"success"`
	Message string        `json:"message"`
	RoomID  domain.RoomID `json:"roomId,omitempty"`
	Data    any           `json:"data,omitempty"`
}

func Fail(message string) Reply {
	return Reply{Success: false, Message: message}
}

// MemberEvent is broadcast as memberJoined / memberLeft.
type MemberEvent struct {
	UserID    domain.UserID `json:"userId"`
	Email     string        `json:"email"`
	Message   string        `json:"message"`
	Timestamp time.Time     `json:"timestamp"`
}

// NewMessageEvent is broadcast as newMessage.
type NewMessageEvent struct {
	ID        string        `json:"id"`
	RoomID    domain.RoomID `json:"roomId"`
	Content   string        `json:"content"`
	CreatedAt time.Time     `json:"createdAt"`
	Author    domain.Author `json:"author"`
}

func NewMessageEventFrom(msg domain.ChatMessage) NewMessageEvent {
	return NewMessageEvent{
		ID:        msg.ID,
		RoomID:    msg.RoomID,
		Content:   msg.Content,
		CreatedAt: msg.CreatedAt,
		Author:    msg.Author,
	}
}

// TypingEvent is broadcast as userTyping.
type TypingEvent struct {
	UserID domain.UserID `json:"userId"`
	Email  string        `json:"email"`
}

// StoppedTypingEvent is broadcast as userStoppedTyping.
type StoppedTypingEvent struct {
	UserID domain.UserID `json:"userId"`
}
