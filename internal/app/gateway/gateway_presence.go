package gateway

import (
	"context"
	"fmt"

	"github.com/dkeye/GroupChat/internal/domain"
	"github.com/rs/zerolog/log"
)

// dispatchReconcile runs the offline pass on its own goroutine, detached
// from the sender's connection. Its errors never reach the send reply.
func (g *Gateway) dispatchReconcile(msg domain.ChatMessage) {
	if g.Directory == nil || g.Notifier == nil {
		return
	}
	g.pending.Add(1)
	go func() {
		defer g.pending.Done()
		defer func() {
			if r := recover(); r != nil {
				g.Metrics.Notice("failed", 0)
				log.Error().Str("module", "app.gateway").Str("room", string(msg.RoomID)).
					Interface("panic", r).Msg("offline reconciliation panicked")
			}
		}()

		timeout := g.Options.ReconcileTimeout
		if timeout <= 0 {
			timeout = defaultReconcileTimeout
		}
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		if err := g.ReconcileOffline(ctx, msg); err != nil {
			g.Metrics.Notice("failed", 0)
			log.Error().Err(err).Str("module", "app.gateway").Str("room", string(msg.RoomID)).
				Str("message", msg.ID).Msg("offline reconciliation")
		}
	}()
}

// ReconcileOffline publishes a notice for every room member that has no
// live connection in the room, excluding the author.
func (g *Gateway) ReconcileOffline(ctx context.Context, msg domain.ChatMessage) error {
	all, err := g.Directory.RoomMembers(ctx, msg.RoomID)
	if err != nil {
		return fmt.Errorf("room members: %w", err)
	}

	var online []domain.UserID
	if room, ok := g.Rooms.Get(msg.RoomID); ok {
		online = room.OnlineUsers()
	}

	offline := OfflineMembers(all, online, msg.AuthorID)
	if len(offline) == 0 {
		g.Metrics.Notice("none", 0)
		return nil
	}

	name, err := g.Directory.RoomName(ctx, msg.RoomID)
	if err != nil {
		return fmt.Errorf("room name: %w", err)
	}

	notice := domain.NewOfflineNotice(msg, name, offline)
	if err := g.Notifier.Publish(ctx, notice); err != nil {
		return fmt.Errorf("publish notice: %w", err)
	}
	g.Metrics.Notice("published", len(offline))
	log.Info().Str("module", "app.gateway").Str("room", string(msg.RoomID)).Str("room_name", name).
		Int("offline", len(offline)).Msg("offline members notified")
	return nil
}

// OfflineMembers returns all − online − sender, keeping the order of all
// and dropping duplicates.
func OfflineMembers(all, online []domain.UserID, sender domain.UserID) []domain.UserID {
	skip := make(map[domain.UserID]struct{}, len(online)+1)
	for _, id := range online {
		skip[id] = struct{}{}
	}
	skip[sender] = struct{}{}

	out := make([]domain.UserID, 0, len(all))
	for _, id := range all {
		if _, ok := skip[id]; ok {
			continue
		}
		skip[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
