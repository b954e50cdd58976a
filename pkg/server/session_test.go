package server

import (
	"bytes"
	"net"
	"testing"
	"time"

	"github.com/emberhall/lurkd/pkg/protocol"
)

func nextEvent(t *testing.T, events chan Event) Event {
	t.Helper()
	select {
	case ev := <-events:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out awaiting event")
		return Event{}
	}
}

func TestSessionHandshakeAndRead(t *testing.T) {
	events := make(chan Event, 16)
	srvConn, cliConn := net.Pipe()
	defer cliConn.Close()

	sess := newSession(srvConn, events)
	go sess.run(
		&protocol.Version{Major: 2, Minor: 3},
		&protocol.Game{InitialPoints: 100, StatLimit: 65535, Description: "Hi"},
	)

	// The first two server writes are VERSION then GAME, byte-exact.
	wantHandshake := []byte{
		0x0e, 0x02, 0x03, 0x00, 0x00,
		0x0b, 0x64, 0x00, 0xff, 0xff, 0x02, 0x00, 0x48, 0x69,
	}
	got := make([]byte, len(wantHandshake))
	cliConn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for n := 0; n < len(got); {
		m, err := cliConn.Read(got[n:])
		if err != nil {
			t.Fatalf("reading handshake: %v", err)
		}
		n += m
	}
	if !bytes.Equal(got, wantHandshake) {
		t.Fatalf("handshake = % x, want % x", got, wantHandshake)
	}

	// A client packet becomes an event carrying this session.
	if err := (&protocol.Start{}).Encode(cliConn); err != nil {
		t.Fatalf("writing start: %v", err)
	}
	ev := nextEvent(t, events)
	if ev.Session != sess {
		t.Error("event carries the wrong session")
	}
	if _, ok := ev.Packet.(*protocol.Start); !ok {
		t.Errorf("event packet = %#v, want START", ev.Packet)
	}

	// Closing the peer yields a synthetic LEAVE.
	cliConn.Close()
	ev = nextEvent(t, events)
	if _, ok := ev.Packet.(*protocol.Leave); !ok {
		t.Errorf("terminal event = %#v, want LEAVE", ev.Packet)
	}
}

func TestSessionDropsServerOnlyKinds(t *testing.T) {
	events := make(chan Event, 16)
	srvConn, cliConn := net.Pipe()
	defer cliConn.Close()

	sess := newSession(srvConn, events)
	go sess.run(&protocol.Version{Major: 2, Minor: 3}, &protocol.Game{Description: ""})

	go func() {
		// Drain the handshake so writes do not block the pipe.
		buf := make([]byte, 64)
		for {
			if _, err := cliConn.Read(buf); err != nil {
				return
			}
		}
	}()

	// Server-only kinds are consumed to preserve framing, then dropped;
	// the CHANGEROOM behind them still decodes at the right boundary.
	(&protocol.Accept{AcceptType: protocol.TypeCharacter}).Encode(cliConn)
	(&protocol.Room{RoomNumber: 1, Name: "Hall", Description: "big"}).Encode(cliConn)
	(&protocol.ChangeRoom{RoomNumber: 5}).Encode(cliConn)

	ev := nextEvent(t, events)
	cr, ok := ev.Packet.(*protocol.ChangeRoom)
	if !ok {
		t.Fatalf("event packet = %#v, want CHANGEROOM", ev.Packet)
	}
	if cr.RoomNumber != 5 {
		t.Errorf("room = %d, want 5", cr.RoomNumber)
	}
	if sess != ev.Session {
		t.Error("event carries the wrong session")
	}
}

func TestSessionUnknownTagTerminates(t *testing.T) {
	events := make(chan Event, 16)
	srvConn, cliConn := net.Pipe()
	defer cliConn.Close()

	sess := newSession(srvConn, events)
	go sess.run(&protocol.Version{}, &protocol.Game{})

	go func() {
		buf := make([]byte, 64)
		for {
			if _, err := cliConn.Read(buf); err != nil {
				return
			}
		}
	}()

	if _, err := cliConn.Write([]byte{0xAB}); err != nil {
		t.Fatalf("writing bad tag: %v", err)
	}

	ev := nextEvent(t, events)
	if ev.Session != sess {
		t.Error("terminal event carries the wrong session")
	}
	if _, ok := ev.Packet.(*protocol.Leave); !ok {
		t.Errorf("terminal event = %#v, want synthetic LEAVE", ev.Packet)
	}
}

func TestSessionIDsAreUnique(t *testing.T) {
	events := make(chan Event)
	a, b := net.Pipe()
	defer a.Close()
	defer b.Close()

	s1 := newSession(a, events)
	s2 := newSession(b, events)
	if s1.ID() == s2.ID() {
		t.Error("two sessions share an id")
	}
	if s1.ID() == "" {
		t.Error("empty session id")
	}
}
