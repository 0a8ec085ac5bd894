package protocol

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/dkeye/GroupChat/internal/domain"
)

// PayloadKind tells how a room-scoped payload arrived.
type PayloadKind int

const (
	PayloadMalformed PayloadKind = iota
	PayloadStructured
	PayloadRawID
)

func (k PayloadKind) String() string {
	switch k {
	case PayloadStructured:
		return "structured"
	case PayloadRawID:
		return "raw_id"
	default:
		return "malformed"
	}
}

// RoomRequest is the parsed payload of joinGroup, leaveGroup and typing events.
type RoomRequest struct {
	Kind   PayloadKind
	RoomID domain.RoomID
}

// HasRoom reports whether a non-blank room id was supplied.
func (r RoomRequest) HasRoom() bool {
	return r.Kind != PayloadMalformed && strings.TrimSpace(string(r.RoomID)) != ""
}

// MessageRequest is the parsed payload of sendMessage.
type MessageRequest struct {
	Kind    PayloadKind
	RoomID  domain.RoomID
	Content string
}

// HasRoom reports whether a non-blank room id was supplied.
func (r MessageRequest) HasRoom() bool {
	return r.Kind != PayloadMalformed && strings.TrimSpace(string(r.RoomID)) != ""
}

// fields accepts the current keys and the legacy grupoId/contenido keys.
type fields struct {
	RoomID    *string `json:"roomId"`
	GrupoID   *string `json:"grupoId"`
	Content   *string `json:"content"`
	Contenido *string `json:"contenido"`
}

func (f fields) roomID() domain.RoomID {
	switch {
	case f.RoomID != nil:
		return domain.RoomID(*f.RoomID)
	case f.GrupoID != nil:
		return domain.RoomID(*f.GrupoID)
	}
	return ""
}

func (f fields) content() string {
	switch {
	case f.Content != nil:
		return *f.Content
	case f.Contenido != nil:
		return *f.Contenido
	}
	return ""
}

// ParseRoom accepts {roomId}, a JSON string holding that object, or a raw
// string used verbatim as the room id.
func ParseRoom(raw json.RawMessage) RoomRequest {
	f, kind, str := decode(raw)
	switch kind {
	case PayloadStructured:
		return RoomRequest{Kind: PayloadStructured, RoomID: f.roomID()}
	case PayloadRawID:
		return RoomRequest{Kind: PayloadRawID, RoomID: domain.RoomID(str)}
	}
	return RoomRequest{Kind: PayloadMalformed}
}

// ParseMessage accepts {roomId, content} or a JSON string holding that
// object. A string that is not a JSON object is malformed.
func ParseMessage(raw json.RawMessage) MessageRequest {
	f, kind, _ := decode(raw)
	if kind != PayloadStructured {
		return MessageRequest{Kind: PayloadMalformed}
	}
	return MessageRequest{Kind: PayloadStructured, RoomID: f.roomID(), Content: f.content()}
}

// decode classifies raw. For PayloadRawID the verbatim string is returned.
func decode(raw json.RawMessage) (fields, PayloadKind, string) {
	var f fields
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return f, PayloadMalformed, ""
	}
	switch trimmed[0] {
	case '{':
		if err := json.Unmarshal(trimmed, &f); err != nil {
			return f, PayloadMalformed, ""
		}
		return f, PayloadStructured, ""
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return f, PayloadMalformed, ""
		}
		inner := strings.TrimSpace(s)
		if strings.HasPrefix(inner, "{") {
			if err := json.Unmarshal([]byte(inner), &f); err == nil {
				return f, PayloadStructured, ""
			}
		}
		return f, PayloadRawID, s
	}
	return f, PayloadMalformed, ""
}
