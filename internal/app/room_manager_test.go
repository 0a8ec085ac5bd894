package app

import (
	"testing"

	"github.com/dkeye/GroupChat/internal/core"
	"github.com/dkeye/GroupChat/internal/domain"
)

func member(id string) core.MemberSession {
	return core.NewMemberSession(domain.NewMember(domain.Principal{ID: domain.UserID(id)}), nopConn{})
}

func TestRoomManagerDropsEmptyRooms(t *testing.T) {
	m := NewRoomManager()
	m.AddMember("g1", "s1", member("u1"))
	m.AddMember("g1", "s2", member("u2"))
	m.AddMember("g2", "s1", member("u1"))

	list := m.List()
	if len(list) != 2 || list[0].ID != "g1" || list[0].MemberCount != 2 {
		t.Fatalf("list = %+v", list)
	}

	if !m.RemoveMember("g1", "s1") {
		t.Fatal("expected s1 removed from g1")
	}
	if _, ok := m.Get("g1"); !ok {
		t.Fatal("g1 still has s2")
	}
	m.RemoveMember("g1", "s2")
	if _, ok := m.Get("g1"); ok {
		t.Fatal("empty room should be dropped")
	}
	if m.RemoveMember("g1", "s2") {
		t.Fatal("removing from a missing room should report false")
	}
}

func TestPolicyFor(t *testing.T) {
	if PolicyFor("drop").OnBackPressure(nil, "s") != DropFrame {
		t.Fatal("drop policy should drop frames")
	}
	if PolicyFor("kick").OnBackPressure(nil, "s") != KickMember {
		t.Fatal("kick policy should kick")
	}
}
