// Package protocol defines the chat websocket wire format.
package protocol

import (
	"encoding/json"
	"strings"
)

// Event names are the wire contract.
const (
	EventJoinGroup     = "joinGroup"
	EventLeaveGroup    = "leaveGroup"
	EventSendMessage   = "sendMessage"
	EventTypingStarted = "typingStarted"
	EventTypingStopped = "typingStopped"
	EventPing          = "ping"

	EventAck               = "ack"
	EventPong              = "pong"
	EventMemberJoined      = "memberJoined"
	EventMemberLeft        = "memberLeft"
	EventNewMessage        = "newMessage"
	EventUserTyping        = "userTyping"
	EventUserStoppedTyping = "userStoppedTyping"
)

// Older clients still emit these names.
var legacyEvents = map[string]string{
	"typing":     EventTypingStarted,
	"stopTyping": EventTypingStopped,
}

// CanonicalEvent maps legacy event names onto the current ones.
func CanonicalEvent(name string) string {
	name = strings.TrimSpace(name)
	if canon, ok := legacyEvents[name]; ok {
		return canon
	}
	return name
}

// Inbound is a client -> server frame.
type Inbound struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
	Ack   *int64          `json:"ack,omitempty"`
}

// Outbound is a server -> client frame: a broadcast, or a reply when Ack/Re are set.
type Outbound struct {
	Event string `json:"event"`
	Ack   *int64 `json:"ack,omitempty"`
	Re    string `json:"re,omitempty"`
	Data  any    `json:"data,omitempty"`
}

// DecodeInbound parses one client frame.
func DecodeInbound(b []byte) (Inbound, error) {
	var in Inbound
	if err := json.Unmarshal(b, &in); err != nil {
		return Inbound{}, err
	}
	in.Event = CanonicalEvent(in.Event)
	return in, nil
}

// Encode marshals a broadcast event.
func Encode(event string, data any) ([]byte, error) {
	return json.Marshal(Outbound{Event: event, Data: data})
}

// EncodeReply marshals the reply to a request event.
func EncodeReply(re string, ack *int64, reply Reply) ([]byte, error) {
	return json.Marshal(Outbound{Event: EventAck, Ack: ack, Re: re, Data: reply})
}
