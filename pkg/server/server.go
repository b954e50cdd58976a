// Package server accepts LURK protocol connections and runs the game
// actor that owns the world. One reader goroutine per connection feeds a
// single consumer; only that consumer touches game state.
package server

import (
	"fmt"
	"net"

	"go.uber.org/zap"

	"github.com/emberhall/lurkd/pkg/logger"
	"github.com/emberhall/lurkd/pkg/protocol"
	"github.com/emberhall/lurkd/pkg/world"
)

// eventQueueSize bounds the inbound event queue. Sessions block here when
// the actor falls behind, which in turn applies TCP backpressure.
const eventQueueSize = 256

// Config holds server configuration.
type Config struct {
	Address       string
	InitialPoints uint16
	StatLimit     uint16
	MajorRev      uint8
	MinorRev      uint8
	Description   string
}

// Server owns the listener, the event queue, and the world.
type Server struct {
	cfg      Config
	world    *world.World
	listener net.Listener
	events   chan Event
	stopCh   chan struct{}
}

// New creates a server around an already loaded world.
func New(cfg Config, w *world.World) *Server {
	return &Server{
		cfg:    cfg,
		world:  w,
		events: make(chan Event, eventQueueSize),
		stopCh: make(chan struct{}),
	}
}

// Start binds the listener and launches the accept loop and the actor.
func (s *Server) Start() error {
	var err error
	s.listener, err = net.Listen("tcp", s.cfg.Address)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.Address, err)
	}
	logger.Info("server listening", zap.String("address", s.cfg.Address))

	go s.acceptLoop()
	go s.runActor()
	return nil
}

// Stop closes the listener and halts the actor. Open sessions are neither
// closed nor drained here.
func (s *Server) Stop() {
	close(s.stopCh)
	if s.listener != nil {
		s.listener.Close()
	}
}

// Inject queues a synthetic console command for the actor.
func (s *Server) Inject(cmd Command) {
	s.events <- Event{Command: &cmd}
}

func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.stopCh:
				return
			default:
				logger.Error("accept error", zap.Error(err))
				continue
			}
		}

		logger.Info("new connection", zap.String("peer", conn.RemoteAddr().String()))
		sess := newSession(conn, s.events)
		go sess.run(s.versionPacket(), s.gamePacket())
	}
}

func (s *Server) versionPacket() *protocol.Version {
	return &protocol.Version{Major: s.cfg.MajorRev, Minor: s.cfg.MinorRev}
}

func (s *Server) gamePacket() *protocol.Game {
	return &protocol.Game{
		InitialPoints: s.cfg.InitialPoints,
		StatLimit:     s.cfg.StatLimit,
		Description:   s.cfg.Description,
	}
}
