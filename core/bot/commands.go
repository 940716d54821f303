package bot

import (
	"context"
	"strings"

	"log/slog"

	"github.com/memomate/memomate/core/logger"
	"github.com/memomate/memomate/core/session"
)

// commandPrefix marks an inbound message as a command. The prefix match is
// case-sensitive; the command token itself is not.
const commandPrefix = "!"

// runCommand executes one bot command. It returns true when the session
// changed state and the message should be re-routed through the state
// machine within the same dispatch step.
func (d *Dispatcher) runCommand(ctx context.Context, s *session.Session, cmd string, reply ReplyFunc) (bool, error) {
	cmd = strings.ToLower(strings.TrimSpace(cmd))
	logger.Info(ctx, "bot", "command",
		slog.String("command", cmd),
		slog.String("session_status", s.Status.String()),
	)

	switch cmd {
	case "start":
		switch {
		case s.Playing():
			return false, reply(ctx, msgAlreadyActive)
		case s.Onboarding():
			return false, reply(ctx, msgFinishSetup)
		default:
			s.Transition(session.StatusUnauthenticated)
			return true, nil
		}

	case "stop":
		if !s.Playing() {
			return false, reply(ctx, msgNoActiveSession)
		}
		s.Transition(session.StatusInactive)
		return false, reply(ctx, msgStop)

	case "lang":
		// TODO: wire an actual language change through the persistence
		// API; for now the command only re-shows the language menu.
		return false, reply(ctx, msgLanguagePrompt)

	case "help":
		return false, reply(ctx, msgHelp)
	}

	return false, reply(ctx, msgUnknown)
}
