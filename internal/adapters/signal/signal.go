package signal

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/dkeye/GroupChat/internal/app/gateway"
	"github.com/dkeye/GroupChat/internal/config"
	"github.com/dkeye/GroupChat/internal/core"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// ConnIDKey is the gin context key holding the connection id.
const ConnIDKey = "conn_id"

var (
	ErrBackpressure = errors.New("backpressure")
	ErrClosed       = errors.New("connection closed")
)

const (
	writeWait         = 5 * time.Second
	defaultPingPeriod = 54 * time.Second
	defaultSendBuffer = 64
)

type SignalWSController struct {
	Gateway    *gateway.Gateway
	ReadLimit  int64
	PingPeriod time.Duration
	SendBuffer int
}

func NewSignalWSController(gw *gateway.Gateway, cfg *config.Config) *SignalWSController {
	ctl := &SignalWSController{Gateway: gw}
	if cfg != nil {
		ctl.ReadLimit = cfg.ReadLimit
		ctl.PingPeriod = cfg.PingPeriod
		ctl.SendBuffer = cfg.SendBuffer
	}
	if ctl.PingPeriod <= 0 {
		ctl.PingPeriod = defaultPingPeriod
	}
	if ctl.SendBuffer <= 0 {
		ctl.SendBuffer = defaultSendBuffer
	}
	return ctl
}

// pongWait must exceed the ping period so one lost pong is tolerated.
func (ctl *SignalWSController) pongWait() time.Duration {
	return ctl.PingPeriod * 10 / 9
}

type WsSignalConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func (c *WsSignalConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return ErrClosed
	}
	select {
	case c.send <- f:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *WsSignalConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandshakeFrom collects the credential locations of an upgrade request:
// the Authorization header or the auth query value first, then ?token=.
func HandshakeFrom(r *http.Request) gateway.Handshake {
	q := r.URL.Query()
	auth := r.Header.Get("Authorization")
	for _, key := range []string{"auth", "auth[token]", "auth.token"} {
		if strings.TrimSpace(auth) != "" {
			break
		}
		auth = q.Get(key)
	}
	return gateway.Handshake{AuthToken: auth, QueryToken: q.Get("token")}
}

func (ctl *SignalWSController) HandleSignal(ctx context.Context, c *gin.Context) {
	sid := core.SessionID(c.GetString(ConnIDKey))
	if sid == "" {
		sid = core.SessionID(uuid.NewString())
	}
	hs := HandshakeFrom(c.Request)

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}
	if ctl.ReadLimit > 0 {
		ws.SetReadLimit(ctl.ReadLimit)
	}

	conn := &WsSignalConn{
		conn: ws,
		send: make(chan core.Frame, ctl.SendBuffer),
	}

	ctx, cancel := context.WithCancel(ctx)
	ctl.Gateway.Open(sid, conn, cancel)

	if _, err := ctl.Gateway.Connect(ctx, sid, hs); err != nil {
		msg := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, gateway.MsgUnauthorized)
		_ = ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
		conn.Close()
		cancel()
		return
	}

	go ctl.writePump(ctx, sid, conn)
	go ctl.readPump(ctx, sid, conn)
}
