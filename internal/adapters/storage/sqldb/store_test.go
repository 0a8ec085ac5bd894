package sqldb

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/dkeye/GroupChat/internal/config"
	"github.com/dkeye/GroupChat/internal/core"
	"github.com/dkeye/GroupChat/internal/domain"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "chat.db")
	s, err := Open(config.DatabaseConfig{Driver: "sqlite", DSN: dsn})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	ctx := context.Background()
	if err := s.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	users := []domain.Author{
		{ID: "u1", FirstName: "Ana", LastName: "Diaz", Email: "a@x.com", AvatarURL: "https://cdn/a.png"},
		{ID: "u2", FirstName: "Bo", LastName: "Lee", Email: "b@x.com"},
		{ID: "u3", FirstName: "Cy", LastName: "Ng", Email: "c@x.com"},
	}
	for _, u := range users {
		if err := s.UpsertUser(ctx, u); err != nil {
			t.Fatalf("user: %v", err)
		}
	}
	if err := s.UpsertRoom(ctx, domain.Room{ID: "g1", Name: "Calculus"}); err != nil {
		t.Fatalf("room: %v", err)
	}
	if err := s.UpsertRoom(ctx, domain.Room{ID: "g2", Name: "Physics"}); err != nil {
		t.Fatalf("room: %v", err)
	}
	for _, id := range []domain.UserID{"u1", "u2", "u3"} {
		if err := s.AddMember(ctx, "g1", id); err != nil {
			t.Fatalf("member: %v", err)
		}
	}
	if err := s.AddMember(ctx, "g2", "u2"); err != nil {
		t.Fatalf("member: %v", err)
	}
	return s
}

func TestOpenUnknownDriver(t *testing.T) {
	if _, err := Open(config.DatabaseConfig{Driver: "oracle"}); !errors.Is(err, config.ErrUnknownDBDriver) {
		t.Fatalf("expected ErrUnknownDBDriver, got %v", err)
	}
}

func TestIsMember(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	ok, err := s.IsMember(ctx, "g1", "u1")
	if err != nil || !ok {
		t.Fatalf("u1 in g1: %v %v", ok, err)
	}
	ok, err = s.IsMember(ctx, "g2", "u1")
	if err != nil || ok {
		t.Fatalf("u1 in g2: %v %v", ok, err)
	}
	ok, err = s.IsMember(ctx, "missing", "u1")
	if err != nil || ok {
		t.Fatalf("unknown room: %v %v", ok, err)
	}

	if err := s.RemoveMember(ctx, "g1", "u1"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if ok, _ := s.IsMember(ctx, "g1", "u1"); ok {
		t.Fatal("u1 should no longer be a member")
	}
}

func TestCreateMessageProjectsAuthor(t *testing.T) {
	s := newStore(t)

	msg, err := s.CreateMessage(context.Background(), "g1", "u1", "hi")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if msg.ID == "" || msg.RoomID != "g1" || msg.AuthorID != "u1" || msg.Content != "hi" || msg.CreatedAt.IsZero() {
		t.Fatalf("message = %+v", msg)
	}
	want := domain.Author{ID: "u1", FirstName: "Ana", LastName: "Diaz", Email: "a@x.com", AvatarURL: "https://cdn/a.png"}
	if msg.Author != want {
		t.Fatalf("author = %+v, want %+v", msg.Author, want)
	}

	other, err := s.CreateMessage(context.Background(), "g1", "u1", "again")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if other.ID == msg.ID {
		t.Fatal("message ids must be unique")
	}
}

func TestCreateMessageErrors(t *testing.T) {
	s := newStore(t)
	if _, err := s.CreateMessage(context.Background(), "nope", "u1", "hi"); !errors.Is(err, core.ErrRoomNotFound) {
		t.Fatalf("expected ErrRoomNotFound, got %v", err)
	}
	if _, err := s.CreateMessage(context.Background(), "g1", "u1", "  "); !errors.Is(err, ErrEmptyContent) {
		t.Fatalf("expected ErrEmptyContent, got %v", err)
	}
}

func TestRoomDirectory(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	members, err := s.RoomMembers(ctx, "g1")
	if err != nil {
		t.Fatalf("members: %v", err)
	}
	if len(members) != 3 {
		t.Fatalf("members = %v", members)
	}

	name, err := s.RoomName(ctx, "g2")
	if err != nil || name != "Physics" {
		t.Fatalf("name = %q, %v", name, err)
	}
	if _, err := s.RoomName(ctx, "missing"); !errors.Is(err, core.ErrRoomNotFound) {
		t.Fatalf("expected ErrRoomNotFound, got %v", err)
	}
}

func TestUpsertIsIdempotent(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	if err := s.UpsertRoom(ctx, domain.Room{ID: "g1", Name: "Calculus II"}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if name, _ := s.RoomName(ctx, "g1"); name != "Calculus II" {
		t.Fatalf("name = %q", name)
	}
	if err := s.AddMember(ctx, "g1", "u1"); err != nil {
		t.Fatalf("re-add: %v", err)
	}
	if members, _ := s.RoomMembers(ctx, "g1"); len(members) != 3 {
		t.Fatalf("members = %v", members)
	}
}
