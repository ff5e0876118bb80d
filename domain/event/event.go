package event

import (
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	SessionOpenedType     Type = "SESSION_OPENED"
	ParticipantJoinedType Type = "PARTICIPANT_JOINED"
	ParticipantLeftType   Type = "PARTICIPANT_LEFT"
	TeamsFormedType       Type = "TEAMS_FORMED"
	TeamsRebalancedType   Type = "TEAMS_REBALANCED"
	BalanceFailedType     Type = "BALANCE_FAILED"
	PlayersSwappedType    Type = "PLAYERS_SWAPPED"
	SessionFinalizedType  Type = "SESSION_FINALIZED"
	SessionCancelledType  Type = "SESSION_CANCELLED"
	SessionExpiredType    Type = "SESSION_EXPIRED"
	SessionRecoveredType  Type = "SESSION_RECOVERED"
	SnapshotDiscardedType Type = "SNAPSHOT_DISCARDED"
)

// Event is the envelope broadcast to in-process observability
// consumers. Events never drive session logic: losing one changes
// nothing for players.
type Event struct {
	ID        uuid.UUID
	Type      Type
	SessionID string
	CreatedAt time.Time
	Payload   any
}

func New(eventType Type, sessionID string, payload any) Event {
	return Event{
		ID:        uuid.New(),
		Type:      eventType,
		SessionID: sessionID,
		CreatedAt: time.Now().UTC(),
		Payload:   payload,
	}
}

type RosterChanged struct {
	UserID   string
	Count    int
	Capacity int
}

type TeamsFormed struct {
	TotalA int
	TotalB int
	Gap    int
}

type BalanceFailed struct {
	Failed []string
}

type PlayersSwapped struct {
	FromTeamA string
	FromTeamB string
}

type SessionClosed struct {
	Reason string
}

type SessionRecovered struct {
	PreviousID string
}

type SnapshotDiscarded struct {
	Reason string
}
