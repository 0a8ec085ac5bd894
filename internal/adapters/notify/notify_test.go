package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/dkeye/GroupChat/internal/config"
	"github.com/dkeye/GroupChat/internal/domain"
	"github.com/redis/go-redis/v9"
)

func sampleNotice() domain.OfflineNotice {
	msg := domain.ChatMessage{
		ID:        "m1",
		RoomID:    "g1",
		AuthorID:  "u1",
		Content:   "hello there",
		CreatedAt: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
		Author:    domain.Author{ID: "u1", FirstName: "Ana", LastName: "Diaz"},
	}
	return domain.NewOfflineNotice(msg, "Calculus", []domain.UserID{"u3"})
}

type fakeNATS struct {
	subject string
	data    []byte
	err     error
}

func (f *fakeNATS) Publish(subj string, data []byte) error {
	f.subject, f.data = subj, data
	return f.err
}

func TestNATSNotifierPublishesJSON(t *testing.T) {
	pub := &fakeNATS{}
	n := NewNATSNotifier(pub, "chat.notifications.offline")

	if err := n.Publish(context.Background(), sampleNotice()); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if pub.subject != "chat.notifications.offline" {
		t.Fatalf("subject = %q", pub.subject)
	}
	var got map[string]any
	if err := json.Unmarshal(pub.data, &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got["template"] != "newMessage" || got["roomName"] != "Calculus" || got["senderName"] != "Ana Diaz" {
		t.Fatalf("payload = %v", got)
	}
}

func TestNATSNotifierErrors(t *testing.T) {
	boom := errors.New("no responders")
	n := NewNATSNotifier(&fakeNATS{err: boom}, "s")
	if err := n.Publish(context.Background(), sampleNotice()); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped error, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := NewNATSNotifier(&fakeNATS{}, "s").Publish(ctx, sampleNotice()); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

type fakeRedis struct {
	channel string
	message interface{}
	err     error
}

func (f *fakeRedis) Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd {
	f.channel, f.message = channel, message
	cmd := redis.NewIntCmd(ctx, "publish", channel, message)
	if f.err != nil {
		cmd.SetErr(f.err)
	} else {
		cmd.SetVal(1)
	}
	return cmd
}

func TestRedisNotifierPublishes(t *testing.T) {
	rdb := &fakeRedis{}
	n := NewRedisNotifier(rdb, "offline")
	if err := n.Publish(context.Background(), sampleNotice()); err != nil {
		t.Fatalf("publish: %v", err)
	}
	data, ok := rdb.message.([]byte)
	if rdb.channel != "offline" || !ok {
		t.Fatalf("channel = %q, message = %T", rdb.channel, rdb.message)
	}
	var got domain.OfflineNotice
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.MessageID != "m1" || len(got.RecipientIDs) != 1 || got.RecipientIDs[0] != "u3" {
		t.Fatalf("notice = %+v", got)
	}

	rdb.err = errors.New("READONLY")
	if err := n.Publish(context.Background(), sampleNotice()); err == nil {
		t.Fatal("expected error")
	}
}

func TestNewSelectsDriver(t *testing.T) {
	n, closer, err := New(config.NotifyConfig{Driver: "log"})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if _, ok := n.(LogNotifier); !ok {
		t.Fatalf("notifier = %T", n)
	}
	if err := n.Publish(context.Background(), sampleNotice()); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if err := closer.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	if _, _, err := New(config.NotifyConfig{Driver: "kafka"}); !errors.Is(err, config.ErrUnknownNotifier) {
		t.Fatalf("expected ErrUnknownNotifier, got %v", err)
	}

	n, closer, err = New(config.NotifyConfig{Driver: "redis", URL: "redis://localhost:6379/0", Subject: "offline"})
	if err != nil {
		t.Fatalf("redis: %v", err)
	}
	if _, ok := n.(*RedisNotifier); !ok {
		t.Fatalf("notifier = %T", n)
	}
	_ = closer.Close()
}
