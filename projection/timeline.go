// Package projection builds readable timelines from recorded events.
// Handles ordering and payload folding.
// Does not write to the store or emit events itself.
package projection

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"mix-lab/domain/event"
	"mix-lab/repositories"
)

// Moment is one line of a session's story.
type Moment struct {
	At     time.Time
	Label  string
	Detail string
}

// Timeline holds the folded history of one session
type Timeline struct {
	SessionID string
	Moments   []Moment
}

func NewTimeline(sessionID string) *Timeline {
	return &Timeline{SessionID: sessionID}
}

// Consume folds one journal row into the timeline. Rows arrive oldest
// first from the journal scan, so appending keeps chronological order.
func (t *Timeline) Consume(entry repositories.JournalEntry) {
	t.Moments = append(t.Moments, fromEntry(entry))
}

func fromEntry(entry repositories.JournalEntry) Moment {
	moment := Moment{
		At:    time.Unix(0, entry.CreatedAt),
		Label: label(entry.Type),
	}

	// A payload that fails to decode leaves the detail empty.
	switch event.Type(entry.Type) {
	case event.ParticipantJoinedType, event.ParticipantLeftType:
		var p event.RosterChanged
		if decode(entry.Payload, &p) {
			moment.Detail = fmt.Sprintf("%s (%d/%d)", p.UserID, p.Count, p.Capacity)
		}
	case event.TeamsFormedType, event.TeamsRebalancedType:
		var p event.TeamsFormed
		if decode(entry.Payload, &p) {
			moment.Detail = fmt.Sprintf("A %d vs B %d, gap %d", p.TotalA, p.TotalB, p.Gap)
		}
	case event.BalanceFailedType:
		var p event.BalanceFailed
		if decode(entry.Payload, &p) {
			moment.Detail = "unresolved: " + strings.Join(p.Failed, ", ")
		}
	case event.PlayersSwappedType:
		var p event.PlayersSwapped
		if decode(entry.Payload, &p) {
			moment.Detail = p.FromTeamA + " <-> " + p.FromTeamB
		}
	case event.SessionFinalizedType, event.SessionCancelledType, event.SessionExpiredType:
		var p event.SessionClosed
		if decode(entry.Payload, &p) {
			moment.Detail = p.Reason
		}
	case event.SessionRecoveredType:
		var p event.SessionRecovered
		if decode(entry.Payload, &p) {
			moment.Detail = "was " + p.PreviousID
		}
	case event.SnapshotDiscardedType:
		var p event.SnapshotDiscarded
		if decode(entry.Payload, &p) {
			moment.Detail = p.Reason
		}
	}
	return moment
}

// label turns "TEAMS_FORMED" into "teams formed".
func label(eventType string) string {
	return strings.ToLower(strings.ReplaceAll(eventType, "_", " "))
}

func decode(raw json.RawMessage, into any) bool {
	if len(raw) == 0 {
		return false
	}
	return json.Unmarshal(raw, into) == nil
}
