package server

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/emberhall/lurkd/pkg/logger"
	"github.com/emberhall/lurkd/pkg/protocol"
	"github.com/emberhall/lurkd/pkg/world"
)

// runActor is the single consumer of the event queue. It owns every world
// mutation; sessions never touch game state themselves.
func (s *Server) runActor() {
	for {
		select {
		case <-s.stopCh:
			return
		case ev := <-s.events:
			s.dispatch(ev)
		}
	}
}

func (s *Server) dispatch(ev Event) {
	if ev.Command != nil {
		s.handleCommand(*ev.Command)
		return
	}

	switch pkt := ev.Packet.(type) {
	case *protocol.Character:
		s.handleCharacter(ev.Session, pkt)
	case *protocol.Start:
		s.handleStart(ev.Session)
	case *protocol.ChangeRoom:
		s.handleChangeRoom(ev.Session, pkt)
	case *protocol.Leave:
		s.handleLeave(ev.Session)
	case *protocol.Message:
		s.handleMessage(ev.Session, pkt)
	case *protocol.Fight:
		logger.Info("fight requested, combat not implemented",
			zap.String("session", ev.Session.ID()))
	case *protocol.Loot:
		s.handleLoot(ev.Session, pkt)
	case *protocol.PVPFight:
		s.handlePVPFight(ev.Session, pkt)
	default:
		logger.Debug("dropping packet", zap.Stringer("type", ev.Packet.Type()))
	}
}

// sendErr replies with a typed ERROR; the session stays valid.
func (s *Server) sendErr(sess *Session, code protocol.ErrorCode, text string) {
	logger.Warn("protocol rejection",
		zap.String("session", sess.ID()),
		zap.Stringer("code", code),
		zap.String("text", text))

	if err := sess.Send(&protocol.Error{Code: code, Text: text}); err != nil {
		logger.Error("failed to send error packet",
			zap.String("session", sess.ID()), zap.Error(err))
	}
}

func (s *Server) send(sess *Session, p protocol.Packet) {
	if err := sess.Send(p); err != nil {
		logger.Error("send failed",
			zap.String("session", sess.ID()),
			zap.Stringer("type", p.Type()),
			zap.Error(err))
	}
}

// handleCharacter validates an incoming character sheet, creates or
// rebinds the player record, and replies ACCEPT plus the authoritative
// snapshot.
func (s *Server) handleCharacter(sess *Session, c *protocol.Character) {
	total, overflow := statTotal(c.Attack, c.Defense, c.Regen)
	if overflow || total > s.cfg.InitialPoints {
		s.sendErr(sess, protocol.ErrStatError, "Invalid stats")
		return
	}

	attack, defense, regen := c.Attack, c.Defense, c.Regen
	if total < s.cfg.InitialPoints && (attack == 0 || defense == 0 || regen == 0) {
		// Equal redistribution; integer division discards up to two points.
		share := (s.cfg.InitialPoints - total) / 3
		attack += share
		defense += share
		regen += share
		logger.Info("distributed remaining stat points",
			zap.String("name", c.Name), zap.Uint16("share", share))
	}

	if attack > s.cfg.StatLimit || defense > s.cfg.StatLimit || regen > s.cfg.StatLimit {
		s.sendErr(sess, protocol.ErrStatError, "Invalid stats")
		return
	}

	player, known := s.world.PlayerByName(c.Name)
	if known && player.Started() {
		s.sendErr(sess, protocol.ErrPlayerExists, "Player is already in the game.")
		return
	}

	var prevRoom uint16
	if known {
		logger.Info("reactivating character",
			zap.String("name", c.Name), zap.Uint16("left_off_in", player.CurrentRoom))
		prevRoom = player.CurrentRoom
	} else {
		logger.Info("creating character", zap.String("name", c.Name))
		player = &world.Player{
			Name:        c.Name,
			Attack:      attack,
			Defense:     defense,
			Regen:       regen,
			Description: c.Description,
		}
		s.world.AddPlayer(player)
	}

	// Client flags, health, gold, and room are never trusted.
	player.Flags = protocol.ActiveFlags
	player.Session = sess
	player.CurrentRoom = 0
	player.Health = 100
	player.Gold = 0

	s.send(sess, &protocol.Accept{AcceptType: protocol.TypeCharacter})
	s.send(sess, player.Packet())

	if prevRoom != 0 {
		if room, ok := s.world.Room(prevRoom); ok {
			room.RemovePlayer(player.Name)
		} else {
			logger.Warn("previous room missing from map",
				zap.String("name", player.Name), zap.Uint16("room", prevRoom))
		}
	}
}

// handleStart activates the character and walks it into room 0.
func (s *Server) handleStart(sess *Session) {
	player, ok := s.world.PlayerBySession(sess.ID())
	if !ok {
		logger.Warn("start from session with no character",
			zap.String("session", sess.ID()))
		return
	}

	player.Flags |= protocol.FlagStarted
	snapshot := player.Packet()

	s.send(sess, snapshot)
	s.world.AlertRoom(0, snapshot)
	s.world.Broadcast(fmt.Sprintf("%s has started the game!", player.Name))

	start, ok := s.world.Room(0)
	if !ok {
		logger.Error("starting room missing from map")
		return
	}
	start.AddPlayer(player.Name)

	s.send(sess, start.Packet())
	s.sendExits(sess, start)
	s.sendOccupants(sess, player.Name, start)
}

// handleChangeRoom moves the player through one of the current room's
// connections.
func (s *Server) handleChangeRoom(sess *Session, cr *protocol.ChangeRoom) {
	player, ok := s.world.PlayerBySession(sess.ID())
	if !ok {
		logger.Warn("changeroom from session with no character",
			zap.String("session", sess.ID()))
		return
	}

	if cr.RoomNumber == player.CurrentRoom {
		s.sendErr(sess, protocol.ErrBadRoom, "Player is already in the room")
		return
	}

	current, ok := s.world.Room(player.CurrentRoom)
	if !ok {
		s.sendErr(sess, protocol.ErrBadRoom, "Room not found!")
		return
	}
	if _, ok := current.Connections[cr.RoomNumber]; !ok {
		s.sendErr(sess, protocol.ErrBadRoom, "Invalid connection!")
		return
	}
	next, ok := s.world.Room(cr.RoomNumber)
	if !ok {
		s.sendErr(sess, protocol.ErrBadRoom, "Room not found!")
		return
	}

	oldRoom := player.CurrentRoom
	current.RemovePlayer(player.Name)
	next.AddPlayer(player.Name)
	player.CurrentRoom = cr.RoomNumber
	snapshot := player.Packet()

	s.send(sess, next.Packet())
	s.sendExits(sess, next)
	s.send(sess, snapshot)

	s.world.AlertRoom(oldRoom, snapshot)
	s.world.AlertRoom(cr.RoomNumber, snapshot)

	s.sendOccupants(sess, player.Name, next)
}

// handleLeave detaches the character. Real LEAVE packets and synthetic
// ones from dead connections arrive the same way; the record persists for
// a later rejoin by name.
func (s *Server) handleLeave(sess *Session) {
	player, ok := s.world.PlayerBySession(sess.ID())
	if !ok {
		// Session never bound a character, or already detached.
		sess.Close()
		return
	}

	player.Flags = protocol.InactiveFlags
	player.Session = nil
	snapshot := player.Packet()

	s.world.Broadcast(fmt.Sprintf("%s has left the game.", player.Name))
	s.world.AlertRoom(player.CurrentRoom, snapshot)

	if err := sess.Close(); err != nil {
		logger.Debug("closing connection", zap.Error(err))
	} else {
		logger.Info("connection shut down", zap.String("player", player.Name))
	}
}

// handleMessage forwards a direct message to the recipient unchanged,
// sender and narration marker included.
func (s *Server) handleMessage(sess *Session, m *protocol.Message) {
	recipient, ok := s.world.PlayerByName(m.Recipient)
	if !ok {
		s.sendErr(sess, protocol.ErrOther, "Player not found")
		return
	}
	if recipient.Session == nil {
		s.sendErr(sess, protocol.ErrOther, "Character does not have an active connection")
		return
	}

	if err := recipient.Session.Send(m); err != nil {
		logger.Error("failed to forward message",
			zap.String("recipient", m.Recipient), zap.Error(err))
	}
}

func (s *Server) handlePVPFight(sess *Session, p *protocol.PVPFight) {
	logger.Info("pvp fight requested",
		zap.String("session", sess.ID()), zap.String("target", p.Target))
	s.sendErr(sess, protocol.ErrNoPlayerCombat, "No player combat allowed")
}

func (s *Server) handleLoot(sess *Session, l *protocol.Loot) {
	logger.Info("loot requested, looting not implemented",
		zap.String("session", sess.ID()), zap.String("target", l.Target))
}

// sendExits sends one CONNECTION per edge of the room, in room-number
// order so output is reproducible.
func (s *Server) sendExits(sess *Session, room *world.Room) {
	keys := make([]uint16, 0, len(room.Connections))
	for k := range room.Connections {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	for _, k := range keys {
		edge := room.Connections[k]
		s.send(sess, edge.Packet())
	}
}

// sendOccupants sends a CHARACTER for every other player listed in the
// room, whatever their session status, then one per monster.
func (s *Server) sendOccupants(sess *Session, self string, room *world.Room) {
	for _, name := range room.Players {
		if name == self {
			continue
		}
		occupant, ok := s.world.PlayerByName(name)
		if !ok {
			logger.Debug("room lists unknown occupant",
				zap.Uint16("room", room.RoomNumber), zap.String("name", name))
			continue
		}
		s.send(sess, occupant.Packet())
	}

	for i := range room.Monsters {
		s.send(sess, room.Monsters[i].Packet())
	}
}

// statTotal sums the three build stats, reporting uint16 overflow instead
// of wrapping.
func statTotal(attack, defense, regen uint16) (uint16, bool) {
	sum := uint32(attack) + uint32(defense) + uint32(regen)
	if sum > 0xFFFF {
		return 0xFFFF, true
	}
	return uint16(sum), false
}
