package signal

import (
	"context"
	"time"

	"github.com/dkeye/GroupChat/internal/core"
	"github.com/dkeye/GroupChat/internal/protocol"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

func (ctl *SignalWSController) writePump(ctx context.Context, sid core.SessionID, c *WsSignalConn) {
	ticker := time.NewTicker(ctl.PingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			log.Debug().Str("module", "signal").Str("sid", string(sid)).Msg("writePump ctx done")
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
			return
		case data, ok := <-c.send:
			if !ok {
				log.Debug().Str("module", "signal").Str("sid", string(sid)).Msg("writePump channel closed")
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("writePump write error")
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				log.Warn().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("writePump ping")
				return
			}
		}
	}
}

// readPump handles one connection's frames strictly in arrival order.
func (ctl *SignalWSController) readPump(ctx context.Context, sid core.SessionID, c *WsSignalConn) {
	defer func() {
		log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("readPump closing")
		ctl.Gateway.Disconnect(sid)
		c.Close()
	}()

	_ = c.conn.SetReadDeadline(time.Now().Add(ctl.pongWait()))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(ctl.pongWait()))
	})

	for {
		select {
		case <-ctx.Done():
			log.Debug().Str("module", "signal").Str("sid", string(sid)).Msg("readPump ctx done")
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) {
					log.Warn().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("readPump read error")
				}
				return
			}
			_ = c.conn.SetReadDeadline(time.Now().Add(ctl.pongWait()))
			ctl.handleSignal(ctx, sid, c, data)
		}
	}
}

func (ctl *SignalWSController) handleSignal(ctx context.Context, sid core.SessionID, c *WsSignalConn, data []byte) {
	in, err := protocol.DecodeInbound(data)
	if err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("bad json")
		return
	}

	started := time.Now()
	outcome := "ok"
	label := in.Event
	defer func() {
		if r := recover(); r != nil {
			outcome = "panic"
			log.Error().Str("module", "signal").Str("sid", string(sid)).Str("event", in.Event).
				Interface("panic", r).Msg("handler panicked")
		}
		ctl.Gateway.Metrics.Event(label, outcome, started)
	}()

	switch in.Event {
	case protocol.EventJoinGroup:
		outcome = ctl.handleJoin(ctx, sid, c, in)
	case protocol.EventLeaveGroup:
		outcome = ctl.handleLeave(ctx, sid, c, in)
	case protocol.EventSendMessage:
		outcome = ctl.handleSend(ctx, sid, c, in)
	case protocol.EventTypingStarted:
		ctl.handleTypingStarted(sid, in)
	case protocol.EventTypingStopped:
		ctl.handleTypingStopped(sid, in)
	case protocol.EventPing:
		ctl.handlePing(c)
	default:
		label, outcome = "unknown", "unknown"
		log.Warn().Str("module", "signal").Str("sid", string(sid)).Str("event", in.Event).Msg("unknown event")
		if in.Ack != nil {
			ctl.reply(c, in, protocol.Fail("unknown event"))
		}
	}
}

func (ctl *SignalWSController) reply(c *WsSignalConn, in protocol.Inbound, r protocol.Reply) string {
	b, err := protocol.EncodeReply(in.Event, in.Ack, r)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Str("event", in.Event).Msg("reply marshal")
		return "error"
	}
	if err := c.TrySend(b); err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("event", in.Event).Msg("reply dropped")
	}
	if !r.Success {
		return "rejected"
	}
	return "ok"
}

func (ctl *SignalWSController) sendJSON(c *WsSignalConn, event string, v any) {
	b, err := protocol.Encode(event, v)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("sendJSON marshal")
		return
	}
	_ = c.TrySend(core.Frame(b))
}
