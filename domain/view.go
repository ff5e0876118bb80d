package domain

import (
	"time"

	"github.com/samber/lo"
)

// SessionView is the immutable projection handed to renderers.
// It carries everything a surface needs to redraw itself, so that
// renderers stay stateless reducers over the session.
type SessionView struct {
	SessionID string
	State     SessionState
	Capacity  int
	Roster    []PlayerRow
	TeamA     TeamView
	TeamB     TeamView
	RatingGap int
	Failed    []string
	CreatedAt time.Time
	ExpiresAt time.Time
}

type PlayerRow struct {
	ID       string
	Name     string
	Nickname string
	Rating   int
}

type TeamView struct {
	Players []PlayerRow
	Stats   TeamStats
}

func NewSessionView(s Session, ttl time.Duration) SessionView {
	return SessionView{
		SessionID: s.ID,
		State:     s.State,
		Capacity:  s.Capacity,
		Roster:    toRows(s.Roster),
		TeamA:     TeamView{Players: toRows(Roster(s.TeamA)), Stats: s.TeamA.Stats()},
		TeamB:     TeamView{Players: toRows(Roster(s.TeamB)), Stats: s.TeamB.Stats()},
		RatingGap: RatingGap(s.TeamA, s.TeamB),
		Failed:    append([]string(nil), s.Failed...),
		CreatedAt: s.CreatedAt,
		ExpiresAt: s.ExpiresAt(ttl),
	}
}

func toRows(roster Roster) []PlayerRow {
	return lo.Map(roster, func(p Participant, _ int) PlayerRow {
		return PlayerRow{ID: p.ID, Name: p.Name, Nickname: p.Nickname, Rating: p.Rating}
	})
}
