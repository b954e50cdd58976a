package world

import (
	"encoding/json"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/emberhall/lurkd/pkg/logger"
)

// Load builds the world from a JSON map file: an array of room objects
// with their connections, initial occupants, and monsters. A malformed
// map is a fatal startup error.
func Load(path string) (*World, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading map file %s: %w", path, err)
	}

	var rooms []*Room
	if err := json.Unmarshal(data, &rooms); err != nil {
		return nil, fmt.Errorf("parsing map file %s: %w", path, err)
	}

	w := New()
	for _, r := range rooms {
		if _, dup := w.Rooms[r.RoomNumber]; dup {
			return nil, fmt.Errorf("map file %s: duplicate room %d", path, r.RoomNumber)
		}
		if r.Connections == nil {
			r.Connections = make(map[uint16]Connection)
		}
		w.Rooms[r.RoomNumber] = r
	}

	if _, ok := w.Rooms[0]; !ok {
		return nil, fmt.Errorf("map file %s: no starting room 0", path)
	}

	logger.Info("game map built",
		zap.Int("rooms", len(w.Rooms)),
		zap.String("path", path))

	return w, nil
}
