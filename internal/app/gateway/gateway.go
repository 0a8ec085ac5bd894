// Package gateway implements the chat room protocol on top of the live
// room table: authentication, join/leave, message fan-out, typing
// indicators and offline member reconciliation.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dkeye/GroupChat/internal/app"
	"github.com/dkeye/GroupChat/internal/core"
	"github.com/dkeye/GroupChat/internal/domain"
	"github.com/dkeye/GroupChat/internal/metrics"
	"github.com/dkeye/GroupChat/internal/protocol"
	"github.com/rs/zerolog/log"
)

const defaultReconcileTimeout = 10 * time.Second

var ErrMissingToken = errors.New("missing token")

// Reply messages.
const (
	MsgUnauthorized    = "unauthorized"
	MsgInvalidPayload  = "invalid payload format"
	MsgRoomRequired    = "roomId is required"
	MsgNotMember       = "you are not a member of this group"
	MsgJoined          = "joined group"
	MsgLeft            = "left group"
	MsgJoinFirst       = "you must join the group before sending messages (use joinGroup)"
	MsgContentRequired = "content is required"
	MsgRateLimited     = "too many messages, slow down"
	MsgSent            = "message sent"
)

type Options struct {
	ReconcileTimeout time.Duration
	// RevalidateOnSend re-asks the membership oracle on every send instead
	// of trusting the join.
	RevalidateOnSend bool
}

type Gateway struct {
	Registry  *app.Registry
	Rooms     core.RoomManager
	Policy    app.Policy
	Limiter   *app.RateLimiter
	Verifier  core.TokenVerifier
	Oracle    core.MembershipOracle
	Store     core.MessageStore
	Directory core.RoomDirectory
	Notifier  core.Notifier
	Metrics   *metrics.Gateway
	Options   Options

	pending sync.WaitGroup
}

// Handshake carries the credential locations of a connection request.
type Handshake struct {
	AuthToken  string
	QueryToken string
}

// Token prefers the auth location over the query parameter.
func (h Handshake) Token() string {
	if t := stripBearer(h.AuthToken); t != "" {
		return t
	}
	return stripBearer(h.QueryToken)
}

func stripBearer(v string) string {
	v = strings.TrimSpace(v)
	if len(v) > 7 && strings.EqualFold(v[:7], "bearer ") {
		v = strings.TrimSpace(v[7:])
	}
	return v
}

// Open registers a transport connection before authentication.
func (g *Gateway) Open(sid core.SessionID, signal core.SignalConnection, cancel context.CancelFunc) {
	g.Registry.BindSignal(sid, signal, cancel)
	g.Metrics.ConnectionOpened()
	log.Info().Str("module", "app.gateway").Str("sid", string(sid)).Msg("connection opened")
}

// Connect authenticates sid. On error the connection has already been
// terminated and released; the caller only closes the transport.
func (g *Gateway) Connect(ctx context.Context, sid core.SessionID, hs Handshake) (domain.Principal, error) {
	token := hs.Token()
	if token == "" {
		g.reject(sid, "missing_token", ErrMissingToken)
		return domain.Principal{}, ErrMissingToken
	}

	p, err := g.Verifier.Verify(ctx, token)
	if err != nil {
		g.reject(sid, "invalid_token", err)
		return domain.Principal{}, fmt.Errorf("verify token: %w", err)
	}

	if _, err := g.Registry.Authenticate(sid, p); err != nil {
		g.reject(sid, "session", err)
		return domain.Principal{}, err
	}

	log.Info().Str("module", "app.gateway").Str("sid", string(sid)).Str("user", string(p.ID)).
		Str("email", p.Email).Str("rol", string(p.Role)).Msg("user authenticated")
	return p, nil
}

func (g *Gateway) reject(sid core.SessionID, reason string, err error) {
	g.Metrics.AuthFailed(reason)
	log.Warn().Err(err).Str("module", "app.gateway").Str("sid", string(sid)).Str("reason", reason).Msg("connection rejected")
	g.Registry.Cancel(sid)
	g.Disconnect(sid)
}

// Disconnect releases every piece of per-connection state. Safe to call twice.
func (g *Gateway) Disconnect(sid core.SessionID) {
	p, authed := g.Registry.Principal(sid)
	rooms, ok := g.Registry.Unbind(sid)
	if !ok {
		return
	}
	for _, room := range rooms {
		g.Rooms.RemoveMember(room, sid)
	}
	g.Metrics.ConnectionClosed()

	ev := log.Info().Str("module", "app.gateway").Str("sid", string(sid)).Int("rooms", len(rooms))
	if authed {
		ev = ev.Str("user", string(p.ID)).Str("email", p.Email)
	}
	ev.Msg("connection closed")
}

// Wait blocks until dispatched reconciliation passes have finished.
func (g *Gateway) Wait() {
	g.pending.Wait()
}

// broadcast fans an event out to roomID, skipping from unless inclusive.
func (g *Gateway) broadcast(roomID domain.RoomID, from core.SessionID, inclusive bool, event string, data any) {
	room, ok := g.Rooms.Get(roomID)
	if !ok {
		return
	}
	frame, err := protocol.Encode(event, data)
	if err != nil {
		log.Error().Err(err).Str("module", "app.gateway").Str("event", event).Msg("encode broadcast")
		return
	}

	var res core.PublishResult
	if inclusive {
		res = room.BroadcastAll(core.Frame(frame))
	} else {
		res = room.Broadcast(from, core.Frame(frame))
	}
	g.onDropped(room, res)
}

func (g *Gateway) onDropped(room core.RoomService, res core.PublishResult) {
	if len(res.Dropped) == 0 {
		return
	}
	g.Metrics.FramesDropped(len(res.Dropped))
	if g.Policy == nil {
		return
	}
	for _, slow := range res.Dropped {
		switch g.Policy.OnBackPressure(room, slow) {
		case app.KickMember:
			if g.Registry.Cancel(slow) {
				g.Metrics.Kicked()
				log.Warn().Str("module", "app.gateway").Str("sid", string(slow)).
					Str("room", string(room.Room().ID)).Msg("kicked slow connection")
			}
		case app.MarkSlow, app.DropFrame, app.NoAction:
		}
	}
}
