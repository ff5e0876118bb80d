package projection

import (
	"encoding/json"
	"testing"
	"time"

	"mix-lab/domain/event"
	"mix-lab/repositories"

	"github.com/stretchr/testify/require"
)

func entry(t *testing.T, eventType event.Type, at time.Time, payload any) repositories.JournalEntry {
	t.Helper()
	row := repositories.JournalEntry{
		Type:      string(eventType),
		SessionID: "sess-1",
		CreatedAt: at.UnixNano(),
	}
	if payload != nil {
		data, err := json.Marshal(payload)
		require.NoError(t, err)
		row.Payload = data
	}
	return row
}

func TestTimeline_Consume_FoldsPayloads(t *testing.T) {
	req := require.New(t)
	timeline := NewTimeline("sess-1")
	now := time.Now()

	timeline.Consume(entry(t, event.SessionOpenedType, now, nil))
	timeline.Consume(entry(t, event.ParticipantJoinedType, now.Add(time.Second), event.RosterChanged{
		UserID: "u1", Count: 1, Capacity: 4,
	}))
	timeline.Consume(entry(t, event.TeamsFormedType, now.Add(2*time.Second), event.TeamsFormed{
		TotalA: 3400, TotalB: 3400, Gap: 0,
	}))
	timeline.Consume(entry(t, event.SessionFinalizedType, now.Add(3*time.Second), event.SessionClosed{
		Reason: "mix complete",
	}))

	req.Len(timeline.Moments, 4)
	req.Equal("session opened", timeline.Moments[0].Label)
	req.Empty(timeline.Moments[0].Detail)
	req.Equal("participant joined", timeline.Moments[1].Label)
	req.Equal("u1 (1/4)", timeline.Moments[1].Detail)
	req.Equal("teams formed", timeline.Moments[2].Label)
	req.Equal("A 3400 vs B 3400, gap 0", timeline.Moments[2].Detail)
	req.Equal("mix complete", timeline.Moments[3].Detail)
}

func TestTimeline_Consume_KeepsJournalOrder(t *testing.T) {
	req := require.New(t)
	timeline := NewTimeline("sess-1")
	now := time.Now()

	timeline.Consume(entry(t, event.ParticipantJoinedType, now, event.RosterChanged{UserID: "alice", Count: 1, Capacity: 2}))
	timeline.Consume(entry(t, event.ParticipantJoinedType, now.Add(time.Second), event.RosterChanged{UserID: "clara", Count: 2, Capacity: 2}))

	req.Len(timeline.Moments, 2)
	req.Contains(timeline.Moments[0].Detail, "alice")
	req.Contains(timeline.Moments[1].Detail, "clara")
	req.True(timeline.Moments[0].At.Before(timeline.Moments[1].At))
}

func TestTimeline_Consume_ToleratesBrokenPayloads(t *testing.T) {
	req := require.New(t)
	timeline := NewTimeline("sess-1")

	row := repositories.JournalEntry{
		Type:      string(event.PlayersSwappedType),
		SessionID: "sess-1",
		CreatedAt: time.Now().UnixNano(),
		Payload:   json.RawMessage(`{truncated`),
	}
	timeline.Consume(row)

	req.Len(timeline.Moments, 1)
	req.Equal("players swapped", timeline.Moments[0].Label)
	req.Empty(timeline.Moments[0].Detail)
}
