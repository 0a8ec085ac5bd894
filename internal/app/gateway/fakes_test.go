package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/dkeye/GroupChat/internal/app"
	"github.com/dkeye/GroupChat/internal/core"
	"github.com/dkeye/GroupChat/internal/domain"
)

type frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type fakeConn struct {
	mu     sync.Mutex
	frames []frame
	full   bool
	closed bool
}

func (c *fakeConn) TrySend(f core.Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.full {
		return errors.New("backpressure")
	}
	var fr frame
	if err := json.Unmarshal(f, &fr); err != nil {
		return err
	}
	c.frames = append(c.frames, fr)
	return nil
}

func (c *fakeConn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

func (c *fakeConn) events(name string) []frame {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []frame
	for _, f := range c.frames {
		if f.Event == name {
			out = append(out, f)
		}
	}
	return out
}

func (c *fakeConn) total() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.frames)
}

type fakeVerifier map[string]domain.Principal

func (v fakeVerifier) Verify(_ context.Context, token string) (domain.Principal, error) {
	p, ok := v[token]
	if !ok {
		return domain.Principal{}, core.ErrInvalidToken
	}
	return p, nil
}

type fakeData struct {
	mu        sync.Mutex
	members   map[domain.RoomID][]domain.UserID
	names     map[domain.RoomID]string
	stored    []domain.ChatMessage
	storeErr  error
	oracleErr error
	dirErr    error
}

func (d *fakeData) IsMember(_ context.Context, room domain.RoomID, user domain.UserID) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.oracleErr != nil {
		return false, d.oracleErr
	}
	for _, id := range d.members[room] {
		if id == user {
			return true, nil
		}
	}
	return false, nil
}

func (d *fakeData) CreateMessage(_ context.Context, room domain.RoomID, author domain.UserID, content string) (domain.ChatMessage, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.storeErr != nil {
		return domain.ChatMessage{}, d.storeErr
	}
	msg := domain.ChatMessage{
		ID:       "m" + string(rune('0'+len(d.stored)+1)),
		RoomID:   room,
		AuthorID: author,
		Content:  content,
		Author:   domain.Author{ID: author, FirstName: "Ana", LastName: "Diaz", Email: string(author) + "@x.com"},
	}
	d.stored = append(d.stored, msg)
	return msg, nil
}

func (d *fakeData) RoomMembers(_ context.Context, room domain.RoomID) ([]domain.UserID, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.dirErr != nil {
		return nil, d.dirErr
	}
	return append([]domain.UserID(nil), d.members[room]...), nil
}

func (d *fakeData) RoomName(_ context.Context, room domain.RoomID) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	name, ok := d.names[room]
	if !ok {
		return "", core.ErrRoomNotFound
	}
	return name, nil
}

func (d *fakeData) storedCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.stored)
}

func (d *fakeData) setMembers(room domain.RoomID, ids ...domain.UserID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.members[room] = ids
}

type fakeNotifier struct {
	mu      sync.Mutex
	notices []domain.OfflineNotice
	err     error
}

func (n *fakeNotifier) Publish(_ context.Context, notice domain.OfflineNotice) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.notices = append(n.notices, notice)
	return nil
}

func (n *fakeNotifier) published() []domain.OfflineNotice {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]domain.OfflineNotice(nil), n.notices...)
}

type fixture struct {
	gw       *Gateway
	data     *fakeData
	notifier *fakeNotifier
	canceled map[core.SessionID]bool
	mu       sync.Mutex
}

var (
	userA = domain.Principal{ID: "u1", Email: "a@x.com", Role: "student"}
	userB = domain.Principal{ID: "u2", Email: "b@x.com", Role: "student"}
	userC = domain.Principal{ID: "u3", Email: "c@x.com", Role: "tutor"}
)

func newFixture(t *testing.T) *fixture {
	t.Helper()
	data := &fakeData{
		members: map[domain.RoomID][]domain.UserID{
			"g1": {"u1", "u2", "u3"},
			"g2": {"u2"},
		},
		names: map[domain.RoomID]string{"g1": "Calculus", "g2": "Physics"},
	}
	notifier := &fakeNotifier{}
	f := &fixture{data: data, notifier: notifier, canceled: make(map[core.SessionID]bool)}
	f.gw = &Gateway{
		Registry:  app.NewRegistry(),
		Rooms:     app.NewRoomManager(),
		Policy:    app.SimplePolicy{},
		Verifier:  fakeVerifier{"tok-a": userA, "tok-b": userB, "tok-c": userC},
		Oracle:    data,
		Store:     data,
		Directory: data,
		Notifier:  notifier,
	}
	t.Cleanup(f.gw.Wait)
	return f
}

func (f *fixture) open(sid core.SessionID) *fakeConn {
	conn := &fakeConn{}
	f.gw.Open(sid, conn, func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.canceled[sid] = true
	})
	return conn
}

func (f *fixture) connect(t *testing.T, sid core.SessionID, token string) *fakeConn {
	t.Helper()
	conn := f.open(sid)
	if _, err := f.gw.Connect(context.Background(), sid, Handshake{AuthToken: token}); err != nil {
		t.Fatalf("connect %s: %v", sid, err)
	}
	return conn
}

func (f *fixture) wasCanceled(sid core.SessionID) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.canceled[sid]
}
