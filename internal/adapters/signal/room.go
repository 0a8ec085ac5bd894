package signal

import (
	"context"

	"github.com/dkeye/GroupChat/internal/core"
	"github.com/dkeye/GroupChat/internal/protocol"
	"github.com/rs/zerolog/log"
)

func (ctl *SignalWSController) handleJoin(
	ctx context.Context,
	sid core.SessionID,
	conn *WsSignalConn,
	in protocol.Inbound,
) string {
	req := protocol.ParseRoom(in.Data)
	log.Debug().Str("module", "signal").Str("sid", string(sid)).Str("room_id", string(req.RoomID)).
		Str("payload", req.Kind.String()).Msg("join")
	return ctl.reply(conn, in, ctl.Gateway.Join(ctx, sid, req))
}

// handleLeave leaves one room; the connection itself stays open.
func (ctl *SignalWSController) handleLeave(
	ctx context.Context,
	sid core.SessionID,
	conn *WsSignalConn,
	in protocol.Inbound,
) string {
	req := protocol.ParseRoom(in.Data)
	log.Debug().Str("module", "signal").Str("sid", string(sid)).Str("room_id", string(req.RoomID)).Msg("leave")
	return ctl.reply(conn, in, ctl.Gateway.Leave(ctx, sid, req))
}
