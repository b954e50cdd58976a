package protocol

import (
	"fmt"
	"io"
)

// frameShape describes how to frame one packet kind: the size of the fixed
// body after the tag byte, and where inside it the trailing variable
// region's length lives (-1 when the packet has no tail).
type frameShape struct {
	fixed     int
	lenOffset int
}

var frameShapes = map[PktType]frameShape{
	TypeMessage:    {fixed: 66, lenOffset: 0},
	TypeChangeRoom: {fixed: 2, lenOffset: -1},
	TypeFight:      {fixed: 0, lenOffset: -1},
	TypePVPFight:   {fixed: 32, lenOffset: -1},
	TypeLoot:       {fixed: 32, lenOffset: -1},
	TypeStart:      {fixed: 0, lenOffset: -1},
	TypeError:      {fixed: 3, lenOffset: 1},
	TypeAccept:     {fixed: 1, lenOffset: -1},
	TypeRoom:       {fixed: 36, lenOffset: 34},
	TypeCharacter:  {fixed: 47, lenOffset: 45},
	TypeGame:       {fixed: 6, lenOffset: 4},
	TypeLeave:      {fixed: 0, lenOffset: -1},
	TypeConnection: {fixed: 36, lenOffset: 34},
	TypeVersion:    {fixed: 4, lenOffset: 2},
}

// ReadFrame reads exactly one packet from a blocking byte stream: one tag
// byte, the tag's fixed body, then the variable tail whose length is
// embedded in the body. Partial reads loop until the full count arrives;
// EOF mid-frame surfaces as io.ErrUnexpectedEOF. An unknown tag returns
// ErrUnknownType with framing lost.
func ReadFrame(r io.Reader) (Packet, error) {
	var tagBuf [1]byte
	if _, err := io.ReadFull(r, tagBuf[:]); err != nil {
		return nil, err
	}

	tag := PktType(tagBuf[0])
	shape, ok := frameShapes[tag]
	if !ok {
		return nil, fmt.Errorf("tag %d: %w", tagBuf[0], ErrUnknownType)
	}

	body := make([]byte, shape.fixed)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, framingErr(err)
	}

	if shape.lenOffset >= 0 {
		tail := make([]byte, u16at(body, shape.lenOffset))
		if _, err := io.ReadFull(r, tail); err != nil {
			return nil, framingErr(err)
		}
		body = append(body, tail...)
	}

	return Decode(tag, body)
}

// framingErr promotes a clean EOF inside a frame to ErrUnexpectedEOF; a
// stream that ends between frames is a normal close, inside one it is not.
func framingErr(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}
