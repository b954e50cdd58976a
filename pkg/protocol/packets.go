package protocol

import (
	"bytes"
	"encoding/binary"
	"io"
)

// Packet is one complete protocol message. Encode must produce the exact
// wire bytes, tag included, in a single Write call.
type Packet interface {
	Type() PktType
	Encode(w io.Writer) error
}

// nameWidth is the fixed width of name fields on the wire.
const nameWidth = 32

// putName appends a name right-padded with NULs to the given width.
func putName(buf []byte, name string, width int) []byte {
	b := []byte(name)
	if len(b) > width {
		b = b[:width]
	}
	buf = append(buf, b...)
	for i := len(b); i < width; i++ {
		buf = append(buf, 0x00)
	}
	return buf
}

// trimName decodes a fixed-width name field. A name containing an embedded
// NUL is truncated at the first NUL.
func trimName(b []byte) string {
	if i := bytes.IndexByte(b, 0x00); i >= 0 {
		return string(b[:i])
	}
	return string(b)
}

func putU16(buf []byte, v uint16) []byte {
	return binary.LittleEndian.AppendUint16(buf, v)
}

func putI16(buf []byte, v int16) []byte {
	return binary.LittleEndian.AppendUint16(buf, uint16(v))
}

func writeAll(w io.Writer, buf []byte) error {
	_, err := w.Write(buf)
	return err
}

// Message carries chat between players. Server-emitted messages flag
// narration by padding the sender to 30 bytes and appending 0x00 0x01;
// the pair occupies the last two bytes of the sender field.
type Message struct {
	Recipient string
	Sender    string
	Narration bool
	Text      string
}

func (*Message) Type() PktType { return TypeMessage }

func (p *Message) Encode(w io.Writer) error {
	buf := make([]byte, 0, 1+2+2*nameWidth+len(p.Text))
	buf = append(buf, byte(TypeMessage))
	buf = putU16(buf, uint16(len(p.Text)))
	buf = putName(buf, p.Recipient, nameWidth)
	if p.Narration {
		buf = putName(buf, p.Sender, nameWidth-2)
		buf = append(buf, 0x00, 0x01)
	} else {
		buf = putName(buf, p.Sender, nameWidth)
	}
	buf = append(buf, p.Text...)
	return writeAll(w, buf)
}

// ChangeRoom asks the server to move the player through a connection.
type ChangeRoom struct {
	RoomNumber uint16
}

func (*ChangeRoom) Type() PktType { return TypeChangeRoom }

func (p *ChangeRoom) Encode(w io.Writer) error {
	buf := make([]byte, 0, 3)
	buf = append(buf, byte(TypeChangeRoom))
	buf = putU16(buf, p.RoomNumber)
	return writeAll(w, buf)
}

// Fight challenges the monsters in the player's room.
type Fight struct{}

func (*Fight) Type() PktType { return TypeFight }

func (*Fight) Encode(w io.Writer) error {
	return writeAll(w, []byte{byte(TypeFight)})
}

// PVPFight challenges another player by name.
type PVPFight struct {
	Target string
}

func (*PVPFight) Type() PktType { return TypePVPFight }

func (p *PVPFight) Encode(w io.Writer) error {
	buf := make([]byte, 0, 1+nameWidth)
	buf = append(buf, byte(TypePVPFight))
	buf = putName(buf, p.Target, nameWidth)
	return writeAll(w, buf)
}

// Loot takes the gold of a dead target.
type Loot struct {
	Target string
}

func (*Loot) Type() PktType { return TypeLoot }

func (p *Loot) Encode(w io.Writer) error {
	buf := make([]byte, 0, 1+nameWidth)
	buf = append(buf, byte(TypeLoot))
	buf = putName(buf, p.Target, nameWidth)
	return writeAll(w, buf)
}

// Start activates the player's character and drops it into room 0.
type Start struct{}

func (*Start) Type() PktType { return TypeStart }

func (*Start) Encode(w io.Writer) error {
	return writeAll(w, []byte{byte(TypeStart)})
}

// Error is the server's typed rejection reply.
type Error struct {
	Code ErrorCode
	Text string
}

func (*Error) Type() PktType { return TypeError }

func (p *Error) Encode(w io.Writer) error {
	buf := make([]byte, 0, 4+len(p.Text))
	buf = append(buf, byte(TypeError), byte(p.Code))
	buf = putU16(buf, uint16(len(p.Text)))
	buf = append(buf, p.Text...)
	return writeAll(w, buf)
}

// Accept acknowledges a client action; AcceptType names the accepted tag.
type Accept struct {
	AcceptType PktType
}

func (*Accept) Type() PktType { return TypeAccept }

func (p *Accept) Encode(w io.Writer) error {
	return writeAll(w, []byte{byte(TypeAccept), byte(p.AcceptType)})
}

// Room describes the room a player is in.
type Room struct {
	RoomNumber  uint16
	Name        string
	Description string
}

func (*Room) Type() PktType { return TypeRoom }

func (p *Room) Encode(w io.Writer) error {
	buf := make([]byte, 0, 1+2+nameWidth+2+len(p.Description))
	buf = append(buf, byte(TypeRoom))
	buf = putU16(buf, p.RoomNumber)
	buf = putName(buf, p.Name, nameWidth)
	buf = putU16(buf, uint16(len(p.Description)))
	buf = append(buf, p.Description...)
	return writeAll(w, buf)
}

// Character carries a player or monster sheet in either direction.
type Character struct {
	Name        string
	Flags       CharacterFlags
	Attack      uint16
	Defense     uint16
	Regen       uint16
	Health      int16
	Gold        uint16
	CurrentRoom uint16
	Description string
}

func (*Character) Type() PktType { return TypeCharacter }

func (p *Character) Encode(w io.Writer) error {
	buf := make([]byte, 0, 1+nameWidth+15+len(p.Description))
	buf = append(buf, byte(TypeCharacter))
	buf = putName(buf, p.Name, nameWidth)
	buf = append(buf, byte(p.Flags.Normalize()))
	buf = putU16(buf, p.Attack)
	buf = putU16(buf, p.Defense)
	buf = putU16(buf, p.Regen)
	buf = putI16(buf, p.Health)
	buf = putU16(buf, p.Gold)
	buf = putU16(buf, p.CurrentRoom)
	buf = putU16(buf, uint16(len(p.Description)))
	buf = append(buf, p.Description...)
	return writeAll(w, buf)
}

// Game announces the server's character budget and world description.
type Game struct {
	InitialPoints uint16
	StatLimit     uint16
	Description   string
}

func (*Game) Type() PktType { return TypeGame }

func (p *Game) Encode(w io.Writer) error {
	buf := make([]byte, 0, 7+len(p.Description))
	buf = append(buf, byte(TypeGame))
	buf = putU16(buf, p.InitialPoints)
	buf = putU16(buf, p.StatLimit)
	buf = putU16(buf, uint16(len(p.Description)))
	buf = append(buf, p.Description...)
	return writeAll(w, buf)
}

// Leave ends a player's participation; also synthesised on disconnect.
type Leave struct{}

func (*Leave) Type() PktType { return TypeLeave }

func (*Leave) Encode(w io.Writer) error {
	return writeAll(w, []byte{byte(TypeLeave)})
}

// Connection describes one exit of a room.
type Connection struct {
	RoomNumber  uint16
	Name        string
	Description string
}

func (*Connection) Type() PktType { return TypeConnection }

func (p *Connection) Encode(w io.Writer) error {
	buf := make([]byte, 0, 1+2+nameWidth+2+len(p.Description))
	buf = append(buf, byte(TypeConnection))
	buf = putU16(buf, p.RoomNumber)
	buf = putName(buf, p.Name, nameWidth)
	buf = putU16(buf, uint16(len(p.Description)))
	buf = append(buf, p.Description...)
	return writeAll(w, buf)
}

// Version is the first packet the server writes on every connection.
type Version struct {
	Major      uint8
	Minor      uint8
	Extensions []byte
}

func (*Version) Type() PktType { return TypeVersion }

func (p *Version) Encode(w io.Writer) error {
	buf := make([]byte, 0, 5+len(p.Extensions))
	buf = append(buf, byte(TypeVersion), p.Major, p.Minor)
	buf = putU16(buf, uint16(len(p.Extensions)))
	buf = append(buf, p.Extensions...)
	return writeAll(w, buf)
}
