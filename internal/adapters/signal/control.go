package signal

import "github.com/dkeye/GroupChat/internal/protocol"

func (ctl *SignalWSController) handlePing(
	conn *WsSignalConn,
) {
	ctl.sendJSON(conn, protocol.EventPong, nil)
}
