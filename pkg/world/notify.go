package world

import (
	"go.uber.org/zap"

	"github.com/emberhall/lurkd/pkg/logger"
	"github.com/emberhall/lurkd/pkg/protocol"
)

// ServerSender is the sender name stamped on server-originated messages.
const ServerSender = "Server"

// Broadcast sends a server MESSAGE to every player with a live session.
// Per-player send failures are logged and skipped; a slow or dead peer
// never stalls the actor.
func (w *World) Broadcast(text string) {
	logger.Info("broadcasting", zap.String("text", text))

	for name, p := range w.Players {
		if p.Session == nil {
			continue
		}
		msg := &protocol.Message{
			Recipient: name,
			Sender:    ServerSender,
			Text:      text,
		}
		if err := p.Session.Send(msg); err != nil {
			logger.Warn("broadcast send failed",
				zap.String("player", name), zap.Error(err))
		}
	}
}

// MessageRoom sends a MESSAGE to every connected member of a room. When
// narration is set the sender carries the in-world narration marker.
func (w *World) MessageRoom(room *Room, text string, narration bool) {
	logger.Info("messaging room",
		zap.Uint16("room", room.RoomNumber), zap.String("text", text))

	for _, name := range room.Players {
		p, ok := w.Players[name]
		if !ok || p.Session == nil {
			continue
		}
		msg := &protocol.Message{
			Recipient: name,
			Sender:    ServerSender,
			Narration: narration,
			Text:      text,
		}
		if err := p.Session.Send(msg); err != nil {
			logger.Warn("room message send failed",
				zap.String("player", name), zap.Error(err))
		}
	}
}

// AlertRoom sends a CHARACTER snapshot to every connected member of a
// room, typically because the pictured character just changed.
func (w *World) AlertRoom(roomID uint16, snapshot *protocol.Character) {
	room, ok := w.Rooms[roomID]
	if !ok {
		return
	}

	logger.Debug("alerting room",
		zap.Uint16("room", roomID), zap.String("about", snapshot.Name))

	for _, name := range room.Players {
		p, ok := w.Players[name]
		if !ok || p.Session == nil {
			continue
		}
		if err := p.Session.Send(snapshot); err != nil {
			logger.Warn("room alert send failed",
				zap.String("player", name), zap.Error(err))
		}
	}
}
