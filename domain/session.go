// This file defines the session aggregate and its lifecycle states.
// Transitions are validated and applied by the runtime manager; the
// domain only knows which shapes are legal.
package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type SessionState string

const (
	OPEN      SessionState = "OPEN"
	BALANCING SessionState = "BALANCING"
	BALANCED  SessionState = "BALANCED"
	FINALIZED SessionState = "FINALIZED"
	CANCELLED SessionState = "CANCELLED"
	EXPIRED   SessionState = "EXPIRED"
)

// Terminal states accept no further mutation, ever.
func (s SessionState) Terminal() bool {
	switch s {
	case FINALIZED, CANCELLED, EXPIRED:
		return true
	default:
		return false
	}
}

func (s SessionState) Valid() bool {
	switch s {
	case OPEN, BALANCING, BALANCED, FINALIZED, CANCELLED, EXPIRED:
		return true
	default:
		return false
	}
}

// Location points at the rendering surface of a session: a message
// inside a channel inside a guild. It is treated as an opaque handle
// everywhere except in the renderer, which knows how to resolve it.
type Location struct {
	GuildID   string
	ChannelID string
	MessageID string
}

// ChannelKey scopes a location to its channel, ignoring the message.
// Recovery groups snapshots with it: one live session per channel.
func (l Location) ChannelKey() string {
	return fmt.Sprintf("%s:%s", l.GuildID, l.ChannelID)
}

// Session is the aggregate the whole system revolves around.
// The runtime serializes all access to a session, so the struct
// itself carries no locking.
type Session struct {
	ID        string
	State     SessionState
	Location  Location
	Capacity  int
	Roster    Roster
	TeamA     Team
	TeamB     Team
	Failed    []string // ids whose rating lookup failed on the last run
	CreatedAt time.Time
}

func NewSession(location Location, capacity int, at time.Time) Session {
	return Session{
		ID:        NewSessionID(location, at),
		State:     OPEN,
		Location:  location,
		Capacity:  capacity,
		CreatedAt: at.UTC(),
	}
}

// NewSessionID derives an opaque, stable id from where and when a
// session attaches. Reattaching the same snapshot later yields a new
// id, because the attach instant differs.
func NewSessionID(location Location, at time.Time) string {
	seed := fmt.Sprintf("%s:%s:%d", location.GuildID, location.ChannelID, at.UnixNano())
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(seed)).String()
}

func (s Session) Terminal() bool {
	return s.State.Terminal()
}

// ExpiresAt is fixed at creation. Recovery never extends it: a
// reattached session keeps the original deadline.
func (s Session) ExpiresAt(ttl time.Duration) time.Time {
	return s.CreatedAt.Add(ttl)
}

func (s Session) Expired(now time.Time, ttl time.Duration) bool {
	return !now.Before(s.ExpiresAt(ttl))
}
