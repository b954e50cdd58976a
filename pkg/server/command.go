package server

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/emberhall/lurkd/pkg/logger"
	"github.com/emberhall/lurkd/pkg/protocol"
)

// Command is a synthetic actor event injected by the admin console.
type Command struct {
	Kind string
	Args []string
}

// HelpText describes the console commands for the given prefix.
func HelpText(prefix string) string {
	return strings.ReplaceAll(`Lurk Server CLI:
Usage:
    ${P}help                           - Display this help message
    ${P}broadcast <content>            - Send a message to all players
    ${P}message <recipient> <content>  - Send a private message to a player
    ${P}nuke                           - Remove all disconnected players on the map`,
		"${P}", prefix)
}

// RunConsole reads administrator commands from in (normally stdin) and
// injects them into the actor queue. Lines without the prefix are ignored.
// Returns when in is exhausted.
func (s *Server) RunConsole(in io.Reader, out io.Writer, prefix string) {
	logger.Info("console listening", zap.String("prefix", prefix))

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, prefix) {
			continue
		}

		fields := strings.Fields(line[len(prefix):])
		if len(fields) == 0 {
			continue
		}

		kind := strings.ToLower(fields[0])
		if kind == "help" {
			fmt.Fprintln(out, HelpText(prefix))
			continue
		}

		s.Inject(Command{Kind: kind, Args: fields[1:]})
	}
}

// handleCommand executes a console command inside the actor, where the
// world may be touched safely.
func (s *Server) handleCommand(cmd Command) {
	logger.Info("console command",
		zap.String("kind", cmd.Kind), zap.Strings("args", cmd.Args))

	switch cmd.Kind {
	case "broadcast":
		if len(cmd.Args) == 0 {
			logger.Warn("broadcast requires a message")
			return
		}
		s.world.Broadcast(strings.Join(cmd.Args, " "))

	case "message":
		if len(cmd.Args) < 2 {
			logger.Warn("message requires a recipient and content")
			return
		}
		recipient, ok := s.world.PlayerByName(cmd.Args[0])
		if !ok || recipient.Session == nil {
			logger.Warn("recipient unavailable", zap.String("name", cmd.Args[0]))
			return
		}
		msg := &protocol.Message{
			Recipient: recipient.Name,
			Sender:    "Server",
			Text:      strings.Join(cmd.Args[1:], " "),
		}
		if err := recipient.Session.Send(msg); err != nil {
			logger.Error("failed to send console message",
				zap.String("recipient", recipient.Name), zap.Error(err))
		}

	case "nuke":
		s.nukeDetached()

	default:
		logger.Warn("unknown console command", zap.String("kind", cmd.Kind))
	}
}

// nukeDetached clears every detached player out of all room member lists
// so rejoined worlds do not accumulate ghosts.
func (s *Server) nukeDetached() {
	removed := 0
	for _, room := range s.world.Rooms {
		kept := room.Players[:0]
		for _, name := range room.Players {
			player, ok := s.world.PlayerByName(name)
			if ok && player.Session != nil {
				kept = append(kept, name)
			} else {
				removed++
			}
		}
		room.Players = kept
	}
	logger.Info("nuked detached players", zap.Int("removed", removed))
}
