package signal

import (
	"context"

	"github.com/dkeye/GroupChat/internal/core"
	"github.com/dkeye/GroupChat/internal/protocol"
)

func (ctl *SignalWSController) handleSend(
	ctx context.Context,
	sid core.SessionID,
	conn *WsSignalConn,
	in protocol.Inbound,
) string {
	return ctl.reply(conn, in, ctl.Gateway.Send(ctx, sid, protocol.ParseMessage(in.Data)))
}

// Typing events never get a reply.
func (ctl *SignalWSController) handleTypingStarted(sid core.SessionID, in protocol.Inbound) {
	ctl.Gateway.TypingStarted(sid, protocol.ParseRoom(in.Data))
}

func (ctl *SignalWSController) handleTypingStopped(sid core.SessionID, in protocol.Inbound) {
	ctl.Gateway.TypingStopped(sid, protocol.ParseRoom(in.Data))
}
