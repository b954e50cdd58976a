package server

import (
	"errors"
	"io"
	"net"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/emberhall/lurkd/pkg/logger"
	"github.com/emberhall/lurkd/pkg/protocol"
)

// Event is one unit of work for the game actor: a decoded packet from a
// session, or a synthetic console command.
type Event struct {
	Session *Session
	Packet  protocol.Packet
	Command *Command
}

// Session is the server side of one TCP connection. It owns the socket;
// the reader goroutine produces events, and the actor writes replies back
// through Send.
type Session struct {
	id     string
	conn   net.Conn
	events chan<- Event

	wmu sync.Mutex
}

func newSession(conn net.Conn, events chan<- Event) *Session {
	return &Session{
		id:     uuid.NewString(),
		conn:   conn,
		events: events,
	}
}

// ID returns the session's unique identity. Player records reference
// sessions by this id, never by value.
func (s *Session) ID() string { return s.id }

// RemoteAddr returns the peer address for logging.
func (s *Session) RemoteAddr() string {
	return s.conn.RemoteAddr().String()
}

// Send serialises a packet and writes it to the socket in one call.
// The actor is single-threaded, so writes are already ordered relative to
// state changes; the mutex only guards against the handshake racing an
// early actor reply.
func (s *Session) Send(p protocol.Packet) error {
	s.wmu.Lock()
	defer s.wmu.Unlock()
	return p.Encode(s.conn)
}

// Close shuts the connection down in both directions.
func (s *Session) Close() error {
	return s.conn.Close()
}

// run sends the connection handshake, then reads frames until a terminal
// error, forwarding decoded client packets to the actor. On any terminal
// condition it enqueues a synthetic LEAVE so the actor can detach the
// player, then closes the socket.
func (s *Session) run(version *protocol.Version, game *protocol.Game) {
	defer s.conn.Close()

	if err := s.Send(version); err != nil {
		logger.Error("failed to send version packet",
			zap.String("session", s.id), zap.Error(err))
		return
	}
	if err := s.Send(game); err != nil {
		logger.Error("failed to send game packet",
			zap.String("session", s.id), zap.Error(err))
		return
	}

	for {
		pkt, err := protocol.ReadFrame(s.conn)
		if err != nil {
			if transient(err) {
				continue
			}
			if errors.Is(err, io.EOF) {
				logger.Info("client disconnected",
					zap.String("session", s.id), zap.String("peer", s.RemoteAddr()))
			} else {
				logger.Warn("terminal read error",
					zap.String("session", s.id), zap.Error(err))
			}
			s.events <- Event{Session: s, Packet: &protocol.Leave{}}
			return
		}

		if !clientKind(pkt.Type()) {
			// Fully consumed to preserve framing, then dropped.
			logger.Debug("ignoring server-only packet from client",
				zap.String("session", s.id), zap.Stringer("type", pkt.Type()))
			continue
		}

		s.events <- Event{Session: s, Packet: pkt}
	}
}

// clientKind reports whether the packet kind is meaningful inbound.
func clientKind(t protocol.PktType) bool {
	switch t {
	case protocol.TypeMessage, protocol.TypeChangeRoom, protocol.TypeFight,
		protocol.TypePVPFight, protocol.TypeLoot, protocol.TypeStart,
		protocol.TypeCharacter, protocol.TypeLeave:
		return true
	default:
		return false
	}
}

// transient reports whether a read error is worth retrying. Timeouts are
// retried; everything else loses framing and terminates the session.
func transient(err error) bool {
	var nerr net.Error
	return errors.As(err, &nerr) && nerr.Timeout()
}
