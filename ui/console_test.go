package ui

import (
	"bytes"
	"context"
	"testing"
	"time"

	"mix-lab/domain"

	"github.com/stretchr/testify/require"
)

func balancedView() domain.SessionView {
	return domain.SessionView{
		SessionID: "5f2b1c3d-0000-0000-0000-000000000000",
		State:     domain.BALANCED,
		Capacity:  4,
		TeamA: domain.TeamView{
			Players: []domain.PlayerRow{
				{ID: "u1", Name: "alice", Nickname: "ali_cs", Rating: 100},
				{ID: "u4", Name: "dave", Nickname: "d4ve", Rating: 70},
			},
			Stats: domain.TeamStats{Total: 170, Average: 85, Size: 2},
		},
		TeamB: domain.TeamView{
			Players: []domain.PlayerRow{
				{ID: "u2", Name: "bob", Nickname: "bobby", Rating: 90},
				{ID: "u3", Name: "carol", Nickname: "carolina", Rating: 80},
			},
			Stats: domain.TeamStats{Total: 170, Average: 85, Size: 2},
		},
		RatingGap: 0,
		CreatedAt: time.Date(2025, 6, 1, 20, 0, 0, 0, time.UTC),
		ExpiresAt: time.Date(2025, 6, 1, 20, 30, 0, 0, time.UTC),
	}
}

func TestConsoleRenderer_RenderSession(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	location := domain.Location{GuildID: "g1", ChannelID: "c1", MessageID: "m1"}

	t.Run("Open session lists the roster", func(t *testing.T) {
		var buf bytes.Buffer
		r := NewConsoleRenderer(&buf, false)

		view := domain.SessionView{
			SessionID: "abcd1234-0000",
			State:     domain.OPEN,
			Capacity:  4,
			Roster: []domain.PlayerRow{
				{ID: "u1", Name: "alice", Nickname: "ali_cs", Rating: 0},
			},
			ExpiresAt: time.Date(2025, 6, 1, 20, 30, 0, 0, time.UTC),
		}
		req.NoError(r.RenderSession(ctx, location, view))

		out := buf.String()
		req.Contains(out, "abcd1234")
		req.Contains(out, "players 1/4")
		req.Contains(out, "alice")
	})

	t.Run("Balanced session shows both teams and the gap", func(t *testing.T) {
		var buf bytes.Buffer
		r := NewConsoleRenderer(&buf, false)

		req.NoError(r.RenderSession(ctx, location, balancedView()))

		out := buf.String()
		req.Contains(out, "TEAM A")
		req.Contains(out, "TEAM B")
		req.Contains(out, "total 170")
		req.Contains(out, "rating gap: 0")
		req.Contains(out, "d4ve")
		req.Contains(out, "carolina")
	})

	t.Run("Terminal session renders a closed line", func(t *testing.T) {
		var buf bytes.Buffer
		r := NewConsoleRenderer(&buf, false)

		view := domain.SessionView{SessionID: "abcd1234", State: domain.EXPIRED, Capacity: 4}
		req.NoError(r.RenderSession(ctx, location, view))
		req.Contains(buf.String(), "session closed (EXPIRED)")
	})

	t.Run("Failed lookups are reported under the view", func(t *testing.T) {
		var buf bytes.Buffer
		r := NewConsoleRenderer(&buf, false)

		view := domain.SessionView{
			SessionID: "abcd1234",
			State:     domain.BALANCING,
			Capacity:  4,
			Failed:    []string{"u2", "u3"},
		}
		req.NoError(r.RenderSession(ctx, location, view))
		req.Contains(buf.String(), "could not resolve ratings for: [u2 u3]")
	})

	t.Run("Rendering the same view twice paints the same thing", func(t *testing.T) {
		var buf bytes.Buffer
		r := NewConsoleRenderer(&buf, false)

		req.NoError(r.RenderSession(ctx, location, balancedView()))
		first := buf.String()
		buf.Reset()
		req.NoError(r.RenderSession(ctx, location, balancedView()))
		req.Equal(first, buf.String())
	})
}

func TestConsoleRenderer_ResolveLocation(t *testing.T) {
	req := require.New(t)
	r := NewConsoleRenderer(&bytes.Buffer{}, false)

	location := domain.Location{GuildID: "g1", ChannelID: "c1", MessageID: "m1"}
	resolved, err := r.ResolveLocation(context.Background(), location)
	req.NoError(err)
	req.Equal(location, resolved)
}
