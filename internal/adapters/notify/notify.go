// Package notify publishes offline notices for the notification service.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/dkeye/GroupChat/internal/config"
	"github.com/dkeye/GroupChat/internal/core"
	"github.com/dkeye/GroupChat/internal/domain"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// New builds the configured notifier. The returned closer releases the
// underlying connection, if any.
func New(cfg config.NotifyConfig) (core.Notifier, io.Closer, error) {
	switch cfg.Driver {
	case "log", "":
		return LogNotifier{}, nopCloser{}, nil
	case "nats":
		nc, err := nats.Connect(cfg.URL,
			nats.Name("groupchat-gateway"),
			nats.MaxReconnects(-1),
			nats.ReconnectWait(2*time.Second),
			nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
				log.Warn().Err(err).Str("module", "notify.nats").Msg("disconnected")
			}),
			nats.ReconnectHandler(func(_ *nats.Conn) {
				log.Info().Str("module", "notify.nats").Msg("reconnected")
			}),
		)
		if err != nil {
			return nil, nil, fmt.Errorf("nats connect: %w", err)
		}
		return NewNATSNotifier(nc, cfg.Subject), closerFunc(func() error { nc.Close(); return nil }), nil
	case "redis":
		opts, err := redis.ParseURL(cfg.URL)
		if err != nil {
			return nil, nil, fmt.Errorf("redis url: %w", err)
		}
		rdb := redis.NewClient(opts)
		return NewRedisNotifier(rdb, cfg.Subject), rdb, nil
	}
	return nil, nil, fmt.Errorf("%w: %q", config.ErrUnknownNotifier, cfg.Driver)
}

// LogNotifier only logs notices; used in development.
type LogNotifier struct{}

func (LogNotifier) Publish(_ context.Context, n domain.OfflineNotice) error {
	log.Info().Str("module", "notify.log").Str("room", string(n.RoomID)).Str("message", n.MessageID).
		Int("recipients", len(n.RecipientIDs)).Str("excerpt", n.Excerpt).Msg("offline notice")
	return nil
}

// Publisher is the part of *nats.Conn the notifier needs.
type Publisher interface {
	Publish(subj string, data []byte) error
}

type NATSNotifier struct {
	pub     Publisher
	subject string
}

func NewNATSNotifier(pub Publisher, subject string) *NATSNotifier {
	return &NATSNotifier{pub: pub, subject: subject}
}

func (n *NATSNotifier) Publish(ctx context.Context, notice domain.OfflineNotice) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(notice)
	if err != nil {
		return err
	}
	if err := n.pub.Publish(n.subject, data); err != nil {
		return fmt.Errorf("nats publish %s: %w", n.subject, err)
	}
	return nil
}

// RedisPublisher is the part of *redis.Client the notifier needs.
type RedisPublisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

type RedisNotifier struct {
	rdb     RedisPublisher
	channel string
}

func NewRedisNotifier(rdb RedisPublisher, channel string) *RedisNotifier {
	return &RedisNotifier{rdb: rdb, channel: channel}
}

func (n *RedisNotifier) Publish(ctx context.Context, notice domain.OfflineNotice) error {
	data, err := json.Marshal(notice)
	if err != nil {
		return err
	}
	if err := n.rdb.Publish(ctx, n.channel, data).Err(); err != nil {
		return fmt.Errorf("redis publish %s: %w", n.channel, err)
	}
	return nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

type closerFunc func() error

func (f closerFunc) Close() error { return f() }
