package gateway

import (
	"context"
	"strings"

	"github.com/dkeye/GroupChat/internal/core"
	"github.com/dkeye/GroupChat/internal/protocol"
	"github.com/rs/zerolog/log"
)

// Send persists a message and broadcasts it to every connection in the
// room, the sender included. Membership is trusted from the join unless
// Options.RevalidateOnSend is set.
func (g *Gateway) Send(ctx context.Context, sid core.SessionID, req protocol.MessageRequest) protocol.Reply {
	p, ok := g.Registry.Principal(sid)
	if !ok {
		return protocol.Fail(MsgUnauthorized)
	}
	if req.Kind == protocol.PayloadMalformed {
		log.Warn().Str("module", "app.gateway").Str("sid", string(sid)).Msg("sendMessage with malformed payload")
		return protocol.Fail(MsgInvalidPayload)
	}
	if !req.HasRoom() {
		return protocol.Fail(MsgRoomRequired)
	}
	if !g.Registry.InRoom(sid, req.RoomID) {
		log.Warn().Str("module", "app.gateway").Str("user", string(p.ID)).Str("room", string(req.RoomID)).Msg("send without join")
		return protocol.Fail(MsgJoinFirst)
	}
	if strings.TrimSpace(req.Content) == "" {
		return protocol.Fail(MsgContentRequired)
	}
	if !g.Limiter.Allow(p.ID) {
		return protocol.Fail(MsgRateLimited)
	}

	if g.Options.RevalidateOnSend {
		member, err := g.Oracle.IsMember(ctx, req.RoomID, p.ID)
		if err != nil {
			return protocol.Fail(err.Error())
		}
		if !member {
			return protocol.Fail(MsgNotMember)
		}
	}

	msg, err := g.Store.CreateMessage(ctx, req.RoomID, p.ID, req.Content)
	if err != nil {
		log.Error().Err(err).Str("module", "app.gateway").Str("user", string(p.ID)).Str("room", string(req.RoomID)).Msg("store message")
		return protocol.Fail(err.Error())
	}
	g.Metrics.MessageStored()

	g.broadcast(req.RoomID, sid, true, protocol.EventNewMessage, protocol.NewMessageEventFrom(msg))
	log.Info().Str("module", "app.gateway").Str("id", msg.ID).Str("room", string(msg.RoomID)).
		Str("email", p.Email).Int("len", len(msg.Content)).Msg("message sent")

	g.dispatchReconcile(msg)

	return protocol.Reply{Success: true, Message: MsgSent, Data: msg}
}
