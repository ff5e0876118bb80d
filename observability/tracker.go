package observability

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"mix-lab/domain/event"
)

// Events older than the last maxRecentEvents fall off the dashboard.
const maxRecentEvents = 20

// RecentEventInfo is one row of the inspector's activity feed.
type RecentEventInfo struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	SessionID string `json:"session_id"`
	Timestamp string `json:"timestamp"`
}

// Tracker aggregates live telemetry for the inspection page : event
// tallies from the handler chain, the latest process sample, and a
// short feed of recent session activity.
//
// It sits on the observability side only. Session logic never reads it.
type Tracker struct {
	log     *slog.Logger
	started time.Time
	counter *event.Counter

	mu      sync.RWMutex
	process event.ProcessStats
	recent  []RecentEventInfo
}

func NewTracker(log *slog.Logger, counter *event.Counter) *Tracker {
	return &Tracker{
		log:     log,
		started: time.Now(),
		counter: counter,
		recent:  make([]RecentEventInfo, 0, maxRecentEvents),
	}
}

// SetProcessStats stores the latest sample from the process worker.
func (t *Tracker) SetProcessStats(stats event.ProcessStats) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.process = stats
}

// Consume implements the EventSink interface.
// Each session event is prepended to the activity feed, newest first,
// capped at maxRecentEvents.
func (t *Tracker) Consume(_ context.Context, e event.Event) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	info := RecentEventInfo{
		ID:        e.ID.String(),
		Type:      string(e.Type),
		SessionID: e.SessionID,
		Timestamp: e.CreatedAt.Format("15:04:05"),
	}

	t.recent = append([]RecentEventInfo{info}, t.recent...)
	if len(t.recent) > maxRecentEvents {
		t.recent = t.recent[:maxRecentEvents]
	}
	return nil
}

// Stats feeds the inspector dashboard. The signature matches the
// debug server's StatsProvider so it can be passed as-is.
func (t *Tracker) Stats() map[string]any {
	t.mu.RLock()
	process := t.process
	recent := make([]RecentEventInfo, len(t.recent))
	copy(recent, t.recent)
	t.mu.RUnlock()

	counts := make(map[string]uint64)
	for eventType, count := range t.counter.Snapshot() {
		counts[string(eventType)] = count
	}

	return map[string]any{
		"uptime":      time.Since(t.started).Round(time.Second).String(),
		"cpu_percent": fmt.Sprintf("%.1f", process.Cpu),
		"rss_mb":      process.RssBytes / 1024 / 1024,
		"heap_mb":     process.HeapBytes / 1024 / 1024,
		"goroutines":  process.Goroutines,
		"events":      counts,
		"recent":      recent,
	}
}
