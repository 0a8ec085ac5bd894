package gateway

import (
	"github.com/dkeye/GroupChat/internal/core"
	"github.com/dkeye/GroupChat/internal/protocol"
)

// TypingStarted relays userTyping to the other occupants. It is a silent
// no-op when sid is not in the room; the result reports delivery.
func (g *Gateway) TypingStarted(sid core.SessionID, req protocol.RoomRequest) bool {
	p, ok := g.Registry.Principal(sid)
	if !ok || !req.HasRoom() || !g.Registry.InRoom(sid, req.RoomID) {
		return false
	}
	g.broadcast(req.RoomID, sid, false, protocol.EventUserTyping, protocol.TypingEvent{
		UserID: p.ID,
		Email:  p.Email,
	})
	return true
}

// TypingStopped relays userStoppedTyping, same rules as TypingStarted.
func (g *Gateway) TypingStopped(sid core.SessionID, req protocol.RoomRequest) bool {
	p, ok := g.Registry.Principal(sid)
	if !ok || !req.HasRoom() || !g.Registry.InRoom(sid, req.RoomID) {
		return false
	}
	g.broadcast(req.RoomID, sid, false, protocol.EventUserStoppedTyping, protocol.StoppedTypingEvent{
		UserID: p.ID,
	})
	return true
}
