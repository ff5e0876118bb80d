package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewSession_OpensWithDerivedID(t *testing.T) {
	req := require.New(t)
	location := Location{GuildID: "g1", ChannelID: "c1", MessageID: "m1"}
	at := time.Date(2026, 3, 1, 21, 0, 0, 0, time.UTC)

	session := NewSession(location, 10, at)

	req.Equal(OPEN, session.State)
	req.Equal(10, session.Capacity)
	req.Empty(session.Roster)
	req.NotEmpty(session.ID)

	// Same place, same instant : same id. Any later instant : a new one.
	req.Equal(session.ID, NewSessionID(location, at))
	req.NotEqual(session.ID, NewSessionID(location, at.Add(time.Nanosecond)))
}

func TestSessionState_Terminal(t *testing.T) {
	for _, state := range []SessionState{OPEN, BALANCING, BALANCED} {
		require.False(t, state.Terminal(), string(state))
	}
	for _, state := range []SessionState{FINALIZED, CANCELLED, EXPIRED} {
		require.True(t, state.Terminal(), string(state))
	}
	require.False(t, SessionState("GARBAGE").Valid())
}

func TestSession_ExpiryIsFixedFromCreation(t *testing.T) {
	req := require.New(t)
	at := time.Date(2026, 3, 1, 21, 0, 0, 0, time.UTC)
	session := NewSession(Location{GuildID: "g1", ChannelID: "c1"}, 10, at)
	ttl := 30 * time.Minute

	req.False(session.Expired(at, ttl))
	req.False(session.Expired(at.Add(ttl-time.Second), ttl))
	// The deadline itself already counts as expired.
	req.True(session.Expired(at.Add(ttl), ttl))
	req.True(session.Expired(at.Add(ttl+time.Hour), ttl))
}

func TestLocation_ChannelKeyIgnoresMessage(t *testing.T) {
	first := Location{GuildID: "g1", ChannelID: "c1", MessageID: "m1"}
	second := Location{GuildID: "g1", ChannelID: "c1", MessageID: "m2"}

	require.Equal(t, first.ChannelKey(), second.ChannelKey())
	require.Equal(t, "g1:c1", first.ChannelKey())
}

func TestNewSessionView_ProjectsTeamsAndGap(t *testing.T) {
	req := require.New(t)
	at := time.Date(2026, 3, 1, 21, 0, 0, 0, time.UTC)
	session := NewSession(Location{GuildID: "g1", ChannelID: "c1"}, 4, at)
	session.State = BALANCED
	session.Roster = Roster{player("u1", 100), player("u2", 90), player("u3", 80), player("u4", 70)}
	session.TeamA = Team{player("u1", 100), player("u4", 70)}
	session.TeamB = Team{player("u2", 90), player("u3", 80)}

	view := NewSessionView(session, 30*time.Minute)

	req.Equal(session.ID, view.SessionID)
	req.Equal(BALANCED, view.State)
	req.Len(view.Roster, 4)
	req.Equal(170, view.TeamA.Stats.Total)
	req.Equal(85.0, view.TeamA.Stats.Average)
	req.Equal(0, view.RatingGap)
	req.Equal(at.Add(30*time.Minute), view.ExpiresAt)
	req.Equal("u1", view.TeamA.Players[0].ID)
	req.Equal("nick-u1", view.TeamA.Players[0].Nickname)
}
