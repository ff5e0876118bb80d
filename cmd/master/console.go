package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"mix-lab/domain"
	"mix-lab/services"
)

// consoleGateway drives the service layer from stdin, for local
// operation and demos. The chat gateway process speaks to the very
// same interfaces, only over a wire.
type consoleGateway struct {
	log      *slog.Logger
	sessions services.ISessionService
	profiles services.IProfileService
	location domain.Location
}

func newConsoleGateway(
	log *slog.Logger,
	sessions services.ISessionService,
	profiles services.IProfileService,
	location domain.Location,
) *consoleGateway {
	return &consoleGateway{log: log, sessions: sessions, profiles: profiles, location: location}
}

// Run reads commands until stdin closes, quit is typed, or the context
// ends. Session views are repainted by the manager itself, the gateway
// only answers with confirmations and errors.
func (g *consoleGateway) Run(ctx context.Context) {
	fmt.Println("mix-lab console. Type help for the command list.")
	scanner := bufio.NewScanner(os.Stdin)

	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		fields := strings.Fields(line)
		command, args := fields[0], fields[1:]
		if command == "quit" || command == "exit" {
			return
		}

		if err := g.dispatch(ctx, command, args); err != nil {
			fmt.Printf("! %v\n", err)
		}
	}

	if err := scanner.Err(); err != nil {
		g.log.Warn("Console input closed", "error", err)
	}
}

func (g *consoleGateway) dispatch(ctx context.Context, command string, args []string) error {
	switch command {
	case "help":
		g.printHelp()
		return nil

	case "open":
		_, err := g.sessions.Create(ctx, g.location)
		return err

	case "join":
		if len(args) < 2 {
			return fmt.Errorf("usage: join <user_id> <display_name>")
		}
		sessionID, err := g.currentSessionID()
		if err != nil {
			return err
		}
		_, err = g.sessions.Join(ctx, sessionID, args[0], strings.Join(args[1:], " "))
		return err

	case "leave":
		if len(args) != 1 {
			return fmt.Errorf("usage: leave <user_id>")
		}
		sessionID, err := g.currentSessionID()
		if err != nil {
			return err
		}
		_, err = g.sessions.Leave(ctx, sessionID, args[0])
		return err

	case "start":
		sessionID, err := g.currentSessionID()
		if err != nil {
			return err
		}
		_, err = g.sessions.Start(ctx, sessionID)
		return err

	case "swap":
		if len(args) != 2 {
			return fmt.Errorf("usage: swap <user_id_team_a> <user_id_team_b>")
		}
		sessionID, err := g.currentSessionID()
		if err != nil {
			return err
		}
		_, err = g.sessions.Swap(ctx, sessionID, args[0], args[1])
		return err

	case "rebalance":
		sessionID, err := g.currentSessionID()
		if err != nil {
			return err
		}
		_, err = g.sessions.Rebalance(ctx, sessionID)
		return err

	case "finalize":
		sessionID, err := g.currentSessionID()
		if err != nil {
			return err
		}
		_, err = g.sessions.Finalize(ctx, sessionID)
		return err

	case "cancel":
		sessionID, err := g.currentSessionID()
		if err != nil {
			return err
		}
		return g.sessions.Cancel(ctx, sessionID)

	case "view":
		sessionID, err := g.currentSessionID()
		if err != nil {
			return err
		}
		view, err := g.sessions.View(sessionID)
		if err != nil {
			return err
		}
		fmt.Printf("session %s state=%s players=%d/%d gap=%d expires=%s\n",
			view.SessionID, view.State, len(view.Roster), view.Capacity,
			view.RatingGap, view.ExpiresAt.Format("15:04:05"))
		return nil

	case "link":
		if len(args) != 2 {
			return fmt.Errorf("usage: link <user_id> <nickname_or_url>")
		}
		profile, err := g.profiles.Link(ctx, args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Printf("linked %s (elo %d, level %d)\n", profile.Nickname, profile.Elo, profile.Level)
		return nil

	case "unlink":
		if len(args) != 1 {
			return fmt.Errorf("usage: unlink <user_id>")
		}
		removed, err := g.profiles.Unlink(args[0])
		if err != nil {
			return err
		}
		if !removed {
			fmt.Println("nothing to unlink")
			return nil
		}
		fmt.Println("unlinked")
		return nil

	case "stats":
		if len(args) != 1 {
			return fmt.Errorf("usage: stats <user_id>")
		}
		profile, err := g.profiles.Stats(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Printf("%s : elo %d, level %d\n", profile.Nickname, profile.Elo, profile.Level)
		return nil

	default:
		return fmt.Errorf("unknown command %q, type help", command)
	}
}

// currentSessionID targets the newest live session of the console
// surface, the same way a channel command targets its channel session.
func (g *consoleGateway) currentSessionID() (string, error) {
	view, err := g.sessions.Latest(g.location.GuildID, g.location.ChannelID)
	if err != nil {
		return "", fmt.Errorf("no live session here, try open: %w", err)
	}
	return view.SessionID, nil
}

func (g *consoleGateway) printHelp() {
	fmt.Print(`commands:
  open                          open a session on this console
  join <user_id> <name>         join the live session (link first)
  leave <user_id>               leave while the session is open
  start                         resolve ratings and form teams
  swap <id_team_a> <id_team_b>  swap one player of each team
  rebalance                     rerun balancing on the current teams
  finalize                      lock the teams and close the session
  cancel                        cancel the live session
  view                          print a one-line summary
  link <user_id> <nick_or_url>  link a FACEIT account
  unlink <user_id>              remove the link
  stats <user_id>               show the linked account's elo
  quit                          leave the console
`)
}
