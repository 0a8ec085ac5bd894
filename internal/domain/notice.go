package domain

import (
	"time"
	"unicode/utf8"
)

const (
	NoticeTemplateNewMessage = "newMessage"
	// ExcerptLen is the number of runes of message content carried in a notice.
	ExcerptLen = 50
)

// OfflineNotice asks the notification service to reach members that were
// not connected to the room when a message was sent.
type OfflineNotice struct {
	Template        string    `json:"template"`
	RecipientIDs    []UserID  `json:"recipientIds"`
	RoomID          RoomID    `json:"roomId"`
	RoomName        string    `json:"roomName"`
	MessageID       string    `json:"messageId"`
	Excerpt         string    `json:"excerpt"`
	SenderID        UserID    `json:"senderId"`
	SenderName      string    `json:"senderName"`
	SenderAvatarURL string    `json:"senderAvatarUrl,omitempty"`
	SentAt          time.Time `json:"sentAt"`
	Save            bool      `json:"save"`
	SendMail        bool      `json:"sendMail"`
}

// NewOfflineNotice builds a notice for msg addressed to recipients.
func NewOfflineNotice(msg ChatMessage, roomName string, recipients []UserID) OfflineNotice {
	return OfflineNotice{
		Template:        NoticeTemplateNewMessage,
		RecipientIDs:    recipients,
		RoomID:          msg.RoomID,
		RoomName:        roomName,
		MessageID:       msg.ID,
		Excerpt:         Excerpt(msg.Content, ExcerptLen),
		SenderID:        msg.AuthorID,
		SenderName:      msg.Author.DisplayName(),
		SenderAvatarURL: msg.Author.AvatarURL,
		SentAt:          msg.CreatedAt,
		Save:            true,
	}
}

// Excerpt cuts s to at most n runes.
func Excerpt(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}
