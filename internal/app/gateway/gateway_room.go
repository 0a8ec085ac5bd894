package gateway

import (
	"context"
	"time"

	"github.com/dkeye/GroupChat/internal/core"
	"github.com/dkeye/GroupChat/internal/protocol"
	"github.com/rs/zerolog/log"
)

// Join adds sid to the room after the membership oracle approves it.
func (g *Gateway) Join(ctx context.Context, sid core.SessionID, req protocol.RoomRequest) protocol.Reply {
	sess, ok := g.Registry.GetSession(sid)
	if !ok {
		return protocol.Fail(MsgUnauthorized)
	}
	if req.Kind == protocol.PayloadMalformed {
		return protocol.Fail(MsgInvalidPayload)
	}
	if !req.HasRoom() {
		return protocol.Fail(MsgRoomRequired)
	}

	p := sess.Meta().Principal
	member, err := g.Oracle.IsMember(ctx, req.RoomID, p.ID)
	if err != nil {
		log.Error().Err(err).Str("module", "app.gateway").Str("sid", string(sid)).Str("room", string(req.RoomID)).Msg("membership lookup")
		return protocol.Fail(err.Error())
	}
	if !member {
		log.Info().Str("module", "app.gateway").Str("user", string(p.ID)).Str("room", string(req.RoomID)).Msg("join refused, not a member")
		return protocol.Fail(MsgNotMember)
	}

	g.Rooms.AddMember(req.RoomID, sid, sess)
	g.Registry.AddRoom(sid, req.RoomID)
	log.Info().Str("module", "app.gateway").Str("user", string(p.ID)).Str("room", string(req.RoomID)).
		Str("payload", req.Kind.String()).Msg("joined group")

	g.broadcast(req.RoomID, sid, false, protocol.EventMemberJoined, protocol.MemberEvent{
		UserID:    p.ID,
		Email:     p.Email,
		Message:   p.Email + " joined the chat",
		Timestamp: time.Now(),
	})

	return protocol.Reply{Success: true, Message: MsgJoined, RoomID: req.RoomID}
}

// Leave removes sid from the room. Leaving is always permitted and idempotent.
func (g *Gateway) Leave(ctx context.Context, sid core.SessionID, req protocol.RoomRequest) protocol.Reply {
	p, ok := g.Registry.Principal(sid)
	if !ok {
		return protocol.Fail(MsgUnauthorized)
	}
	if req.Kind == protocol.PayloadMalformed {
		return protocol.Fail(MsgInvalidPayload)
	}
	if !req.HasRoom() {
		return protocol.Fail(MsgRoomRequired)
	}

	wasIn := g.Registry.RemoveRoom(sid, req.RoomID)
	g.Rooms.RemoveMember(req.RoomID, sid)

	if wasIn {
		log.Info().Str("module", "app.gateway").Str("user", string(p.ID)).Str("room", string(req.RoomID)).Msg("left group")
		g.broadcast(req.RoomID, sid, false, protocol.EventMemberLeft, protocol.MemberEvent{
			UserID:    p.ID,
			Email:     p.Email,
			Message:   p.Email + " left the chat",
			Timestamp: time.Now(),
		})
	}

	return protocol.Reply{Success: true, Message: MsgLeft, RoomID: req.RoomID}
}
