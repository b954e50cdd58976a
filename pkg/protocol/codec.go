package protocol

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrUnknownType reports a tag byte outside the protocol table. Framing is
// lost at that point; the session must terminate.
var ErrUnknownType = errors.New("unknown packet type")

// BadPacketError reports a structurally invalid body for a known tag.
type BadPacketError struct {
	Pkt   PktType
	Field string
}

func (e *BadPacketError) Error() string {
	return fmt.Sprintf("bad %s packet: field %s", e.Pkt, e.Field)
}

func badPacket(t PktType, field string) error {
	return &BadPacketError{Pkt: t, Field: field}
}

func u16at(b []byte, off int) uint16 {
	return binary.LittleEndian.Uint16(b[off:])
}

// Decode parses the body of a packet (everything after the tag byte, fixed
// header and variable tail concatenated) into its typed form. It returns
// either a fully populated packet or a *BadPacketError naming the
// offending field; unknown tags return ErrUnknownType.
func Decode(tag PktType, body []byte) (Packet, error) {
	switch tag {
	case TypeMessage:
		return decodeMessage(body)
	case TypeChangeRoom:
		if len(body) < 2 {
			return nil, badPacket(tag, "room_number")
		}
		return &ChangeRoom{RoomNumber: u16at(body, 0)}, nil
	case TypeFight:
		return &Fight{}, nil
	case TypePVPFight:
		if len(body) < nameWidth {
			return nil, badPacket(tag, "target")
		}
		return &PVPFight{Target: trimName(body[:nameWidth])}, nil
	case TypeLoot:
		if len(body) < nameWidth {
			return nil, badPacket(tag, "target")
		}
		return &Loot{Target: trimName(body[:nameWidth])}, nil
	case TypeStart:
		return &Start{}, nil
	case TypeError:
		return decodeError(body)
	case TypeAccept:
		if len(body) < 1 {
			return nil, badPacket(tag, "accept_type")
		}
		return &Accept{AcceptType: PktType(body[0])}, nil
	case TypeRoom:
		return decodeRoom(body)
	case TypeCharacter:
		return decodeCharacter(body)
	case TypeGame:
		return decodeGame(body)
	case TypeLeave:
		return &Leave{}, nil
	case TypeConnection:
		return decodeConnection(body)
	case TypeVersion:
		return decodeVersion(body)
	default:
		return nil, ErrUnknownType
	}
}

func decodeMessage(body []byte) (Packet, error) {
	if len(body) < 66 {
		return nil, badPacket(TypeMessage, "header")
	}
	msgLen := int(u16at(body, 0))
	if len(body) < 66+msgLen {
		return nil, badPacket(TypeMessage, "message")
	}
	sender := body[34:66]
	narration := sender[30] == 0x00 && sender[31] == 0x01
	senderName := trimName(sender)
	if narration {
		senderName = trimName(sender[:30])
	}
	return &Message{
		Recipient: trimName(body[2:34]),
		Sender:    senderName,
		Narration: narration,
		Text:      string(body[66 : 66+msgLen]),
	}, nil
}

func decodeError(body []byte) (Packet, error) {
	if len(body) < 3 {
		return nil, badPacket(TypeError, "header")
	}
	msgLen := int(u16at(body, 1))
	if len(body) < 3+msgLen {
		return nil, badPacket(TypeError, "message")
	}
	return &Error{
		Code: ParseErrorCode(body[0]),
		Text: string(body[3 : 3+msgLen]),
	}, nil
}

func decodeRoom(body []byte) (Packet, error) {
	if len(body) < 36 {
		return nil, badPacket(TypeRoom, "header")
	}
	descLen := int(u16at(body, 34))
	if len(body) < 36+descLen {
		return nil, badPacket(TypeRoom, "description")
	}
	return &Room{
		RoomNumber:  u16at(body, 0),
		Name:        trimName(body[2:34]),
		Description: string(body[36 : 36+descLen]),
	}, nil
}

func decodeCharacter(body []byte) (Packet, error) {
	if len(body) < 47 {
		return nil, badPacket(TypeCharacter, "header")
	}
	descLen := int(u16at(body, 45))
	if len(body) < 47+descLen {
		return nil, badPacket(TypeCharacter, "description")
	}
	return &Character{
		Name:        trimName(body[0:32]),
		Flags:       CharacterFlags(body[32]).Normalize(),
		Attack:      u16at(body, 33),
		Defense:     u16at(body, 35),
		Regen:       u16at(body, 37),
		Health:      int16(u16at(body, 39)),
		Gold:        u16at(body, 41),
		CurrentRoom: u16at(body, 43),
		Description: string(body[47 : 47+descLen]),
	}, nil
}

func decodeGame(body []byte) (Packet, error) {
	if len(body) < 6 {
		return nil, badPacket(TypeGame, "header")
	}
	descLen := int(u16at(body, 4))
	if len(body) < 6+descLen {
		return nil, badPacket(TypeGame, "description")
	}
	return &Game{
		InitialPoints: u16at(body, 0),
		StatLimit:     u16at(body, 2),
		Description:   string(body[6 : 6+descLen]),
	}, nil
}

func decodeConnection(body []byte) (Packet, error) {
	if len(body) < 36 {
		return nil, badPacket(TypeConnection, "header")
	}
	descLen := int(u16at(body, 34))
	if len(body) < 36+descLen {
		return nil, badPacket(TypeConnection, "description")
	}
	return &Connection{
		RoomNumber:  u16at(body, 0),
		Name:        trimName(body[2:34]),
		Description: string(body[36 : 36+descLen]),
	}, nil
}

func decodeVersion(body []byte) (Packet, error) {
	if len(body) < 4 {
		return nil, badPacket(TypeVersion, "header")
	}
	extLen := int(u16at(body, 2))
	if len(body) < 4+extLen {
		return nil, badPacket(TypeVersion, "extensions")
	}
	var ext []byte
	if extLen > 0 {
		ext = append(ext, body[4:4+extLen]...)
	}
	return &Version{Major: body[0], Minor: body[1], Extensions: ext}, nil
}
