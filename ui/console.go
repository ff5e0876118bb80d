package ui

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"sync"

	"mix-lab/domain"

	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"
)

// ConsoleRenderer draws session views on a terminal. It stands in for
// the chat gateway during local runs : same contract, humbler pixels.
// Every call repaints the whole view from scratch, which makes the
// redraw idempotent by construction.
type ConsoleRenderer struct {
	mu      sync.Mutex
	out     io.Writer
	colours bool
}

func NewConsoleRenderer(out io.Writer, colours bool) *ConsoleRenderer {
	return &ConsoleRenderer{out: out, colours: colours}
}

func (r *ConsoleRenderer) RenderSession(_ context.Context, location domain.Location, view domain.SessionView) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	header := fmt.Sprintf("  ====== session %s | %s | %s ======",
		shortID(view.SessionID), view.State, location.ChannelKey())
	if r.colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	fmt.Fprintln(r.out, header)

	switch view.State {
	case domain.CANCELLED, domain.EXPIRED:
		fmt.Fprintf(r.out, "  session closed (%s)\n\n", view.State)
		return nil
	case domain.BALANCED, domain.FINALIZED:
		r.renderTeams(view)
	default:
		r.renderRoster(view)
	}

	if len(view.Failed) > 0 {
		line := fmt.Sprintf("  could not resolve ratings for: %v", view.Failed)
		if r.colours {
			line = color.New(color.FgRed).Render(line)
		}
		fmt.Fprintln(r.out, line)
	}
	fmt.Fprintln(r.out)
	return nil
}

// ResolveLocation always succeeds : a terminal cannot go stale the way
// a deleted chat message does.
func (r *ConsoleRenderer) ResolveLocation(_ context.Context, location domain.Location) (domain.Location, error) {
	return location, nil
}

func (r *ConsoleRenderer) renderRoster(view domain.SessionView) {
	fmt.Fprintf(r.out, "  players %d/%d, expires %s\n",
		len(view.Roster), view.Capacity, view.ExpiresAt.Format("15:04:05"))

	if len(view.Roster) == 0 {
		fmt.Fprintln(r.out, "  nobody joined yet")
		return
	}

	table := newTable(r.out, []string{"#", "Player", "Faceit"})
	for i, row := range view.Roster {
		table.Append([]string{strconv.Itoa(i + 1), row.Name, row.Nickname})
	}
	table.Render()
}

func (r *ConsoleRenderer) renderTeams(view domain.SessionView) {
	r.renderTeam("TEAM A", view.TeamA)
	r.renderTeam("TEAM B", view.TeamB)
	fmt.Fprintf(r.out, "  rating gap: %d\n", view.RatingGap)
}

func (r *ConsoleRenderer) renderTeam(name string, team domain.TeamView) {
	title := fmt.Sprintf("  %s   total %d   avg %.1f",
		name, team.Stats.Total, team.Stats.Average)
	if r.colours {
		title = color.New(color.FgCyan).Render(title)
	}
	fmt.Fprintln(r.out, title)

	table := newTable(r.out, []string{"Player", "Faceit", "Elo"})
	for _, row := range team.Players {
		table.Append([]string{row.Name, row.Nickname, strconv.Itoa(row.Rating)})
	}
	table.Render()
}

func newTable(out io.Writer, headers []string) *tablewriter.Table {
	table := tablewriter.NewWriter(out)
	table.SetHeader(headers)
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	return table
}

func shortID(sessionID string) string {
	if len(sessionID) > 8 {
		return sessionID[:8]
	}
	return sessionID
}
