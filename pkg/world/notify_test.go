package world

import (
	"errors"
	"testing"

	"github.com/emberhall/lurkd/pkg/protocol"
)

// fakeSender records sent packets; optionally fails every send.
type fakeSender struct {
	id   string
	sent []protocol.Packet
	fail bool
}

func (f *fakeSender) ID() string { return f.id }

func (f *fakeSender) Send(p protocol.Packet) error {
	if f.fail {
		return errors.New("kernel buffer full")
	}
	f.sent = append(f.sent, p)
	return nil
}

func (f *fakeSender) Close() error { return nil }

func testWorld() (*World, *fakeSender, *fakeSender) {
	w := New()
	w.Rooms[0] = &Room{RoomNumber: 0, Title: "Square", Players: []string{"alice", "bob", "ghost"}}

	a := &fakeSender{id: "a"}
	b := &fakeSender{id: "b"}
	w.AddPlayer(&Player{Name: "alice", CurrentRoom: 0, Session: a})
	w.AddPlayer(&Player{Name: "bob", CurrentRoom: 0, Session: b})
	w.AddPlayer(&Player{Name: "ghost", CurrentRoom: 0}) // detached
	return w, a, b
}

func TestBroadcast(t *testing.T) {
	w, a, b := testWorld()

	w.Broadcast("alice has started the game!")

	for _, s := range []*fakeSender{a, b} {
		if len(s.sent) != 1 {
			t.Fatalf("sender %s got %d packets, want 1", s.id, len(s.sent))
		}
		msg := s.sent[0].(*protocol.Message)
		if msg.Sender != ServerSender {
			t.Errorf("Sender = %q, want %q", msg.Sender, ServerSender)
		}
		if msg.Narration {
			t.Error("broadcast marked as narration")
		}
	}

	am := a.sent[0].(*protocol.Message)
	if am.Recipient != "alice" {
		t.Errorf("Recipient = %q, want %q", am.Recipient, "alice")
	}
}

func TestBroadcastSkipsFailingPeer(t *testing.T) {
	w, a, b := testWorld()
	a.fail = true

	w.Broadcast("news")

	if len(b.sent) != 1 {
		t.Errorf("healthy peer got %d packets, want 1", len(b.sent))
	}
}

func TestMessageRoomNarration(t *testing.T) {
	w, a, _ := testWorld()
	room, _ := w.Room(0)

	w.MessageRoom(room, "The ground shakes.", true)

	if len(a.sent) != 1 {
		t.Fatalf("got %d packets, want 1", len(a.sent))
	}
	msg := a.sent[0].(*protocol.Message)
	if !msg.Narration {
		t.Error("Narration = false, want true")
	}
}

func TestAlertRoom(t *testing.T) {
	w, a, b := testWorld()
	snap := &protocol.Character{Name: "alice", Flags: protocol.ActiveFlags}

	w.AlertRoom(0, snap)

	for _, s := range []*fakeSender{a, b} {
		if len(s.sent) != 1 {
			t.Fatalf("sender %s got %d packets, want 1", s.id, len(s.sent))
		}
		if ch := s.sent[0].(*protocol.Character); ch.Name != "alice" {
			t.Errorf("alert character = %q", ch.Name)
		}
	}

	// Unknown room is a quiet no-op.
	w.AlertRoom(99, snap)
}
