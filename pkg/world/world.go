// Package world holds the authoritative game state: rooms, their
// connections and monsters, and the registry of player characters. Only
// the game actor mutates it; everything handed to sockets is a snapshot.
package world

import (
	"slices"

	"github.com/emberhall/lurkd/pkg/protocol"
)

// Sender is the non-owning handle a player keeps to its session. The
// session owns the socket; the world only addresses it. Handles compare by
// ID, never by value.
type Sender interface {
	ID() string
	Send(p protocol.Packet) error
	Close() error
}

// Connection is a map edge to another room.
type Connection struct {
	RoomNumber uint16 `json:"room_number"`
	Title      string `json:"title"`
	DescShort  string `json:"desc_short"`
}

// Packet builds the CONNECTION packet describing this edge.
func (c *Connection) Packet() *protocol.Connection {
	return &protocol.Connection{
		RoomNumber:  c.RoomNumber,
		Name:        c.Title,
		Description: c.DescShort,
	}
}

// Monster is a map-defined creature. Health at or below zero means dead.
type Monster struct {
	Name        string `json:"name"`
	CurrentRoom uint16 `json:"current_room"`
	Health      int16  `json:"health"`
	Attack      uint16 `json:"attack"`
	Defense     uint16 `json:"defense"`
	Gold        uint16 `json:"gold"`
	Desc        string `json:"desc"`
}

// Packet builds a synthetic CHARACTER for the monster. Monsters always
// carry the MONSTER and JOIN_BATTLE flags; ALIVE follows health.
func (m *Monster) Packet() *protocol.Character {
	flags := protocol.FlagMonster | protocol.FlagJoinBattle
	if m.Health > 0 {
		flags |= protocol.FlagAlive
	}
	return &protocol.Character{
		Name:        m.Name,
		Flags:       flags,
		Attack:      m.Attack,
		Defense:     m.Defense,
		Health:      m.Health,
		Gold:        m.Gold,
		CurrentRoom: m.CurrentRoom,
		Description: m.Desc,
	}
}

// Room is one tile of the static map. Rooms are created at startup and
// never destroyed; only the player membership list changes.
type Room struct {
	RoomNumber  uint16                `json:"room_number"`
	Title       string                `json:"title"`
	Desc        string                `json:"desc"`
	Connections map[uint16]Connection `json:"connections"`
	Players     []string              `json:"players"`
	Monsters    []Monster             `json:"monsters"`
}

// Packet builds the ROOM packet describing this room.
func (r *Room) Packet() *protocol.Room {
	return &protocol.Room{
		RoomNumber:  r.RoomNumber,
		Name:        r.Title,
		Description: r.Desc,
	}
}

// AddPlayer appends a name to the member list. Idempotent.
func (r *Room) AddPlayer(name string) {
	if !slices.Contains(r.Players, name) {
		r.Players = append(r.Players, name)
	}
}

// RemovePlayer drops a name from the member list.
func (r *Room) RemovePlayer(name string) {
	r.Players = slices.DeleteFunc(r.Players, func(n string) bool { return n == name })
}

// Player is a character record. Name is the primary key; the record
// survives disconnects and is rebound to a new session on rejoin.
type Player struct {
	Name        string
	Flags       protocol.CharacterFlags
	Attack      uint16
	Defense     uint16
	Regen       uint16
	Health      int16
	Gold        uint16
	CurrentRoom uint16
	Description string

	// Session is present while the player has a live connection; nil when
	// detached. Cleared by the actor before the session goes away.
	Session Sender
}

// Started reports whether the character has entered the game world.
func (p *Player) Started() bool {
	return p.Flags.Has(protocol.FlagStarted)
}

// Packet builds a CHARACTER snapshot safe to hand to any socket.
func (p *Player) Packet() *protocol.Character {
	return &protocol.Character{
		Name:        p.Name,
		Flags:       p.Flags,
		Attack:      p.Attack,
		Defense:     p.Defense,
		Regen:       p.Regen,
		Health:      p.Health,
		Gold:        p.Gold,
		CurrentRoom: p.CurrentRoom,
		Description: p.Description,
	}
}

// World is the mutable game state owned exclusively by the game actor.
type World struct {
	Rooms   map[uint16]*Room
	Players map[string]*Player
}

// New returns an empty world.
func New() *World {
	return &World{
		Rooms:   make(map[uint16]*Room),
		Players: make(map[string]*Player),
	}
}

// Room looks up a room by number.
func (w *World) Room(id uint16) (*Room, bool) {
	r, ok := w.Rooms[id]
	return r, ok
}

// Exits returns a snapshot of a room's connection map, or nil when the
// room does not exist.
func (w *World) Exits(id uint16) map[uint16]Connection {
	r, ok := w.Rooms[id]
	if !ok {
		return nil
	}
	exits := make(map[uint16]Connection, len(r.Connections))
	for k, v := range r.Connections {
		exits[k] = v
	}
	return exits
}

// PlayerByName looks up a player record by its primary key.
func (w *World) PlayerByName(name string) (*Player, bool) {
	p, ok := w.Players[name]
	return p, ok
}

// PlayerBySession finds the player bound to the session with the given id.
func (w *World) PlayerBySession(id string) (*Player, bool) {
	for _, p := range w.Players {
		if p.Session != nil && p.Session.ID() == id {
			return p, true
		}
	}
	return nil, false
}

// AddPlayer registers a new player record.
func (w *World) AddPlayer(p *Player) {
	w.Players[p.Name] = p
}
