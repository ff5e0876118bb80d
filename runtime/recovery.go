package runtime

import (
	"context"
	"sort"
	"time"

	"mix-lab/domain"
	"mix-lab/domain/event"
)

// RecoveryReport sums up one recovery pass.
type RecoveryReport struct {
	Reattached int
	Discarded  int
}

// Recover replays the snapshot store, typically right after a restart.
//
// At most one session per channel comes back : the newest resolvable
// snapshot is reattached under a fresh id, every other snapshot of the
// channel is discarded, resolvable or not. Expired snapshots never get
// a second life, their deadline ran while the process was down.
//
// The pass is idempotent : reattached snapshots are re-keyed and the
// replaced rows deleted, so running it again finds nothing to do.
func (m *Manager) Recover(ctx context.Context) (RecoveryReport, error) {
	var report RecoveryReport
	snapshots, err := m.store.List()
	if err != nil {
		return report, err
	}

	now := time.Now()
	byChannel := make(map[string][]domain.Session)
	for _, snapshot := range snapshots {
		if snapshot.Terminal() || snapshot.Expired(now, m.settings.SessionTTL) {
			m.discardSnapshot(snapshot, "expired while offline")
			report.Discarded++
			continue
		}
		key := snapshot.Location.ChannelKey()
		byChannel[key] = append(byChannel[key], snapshot)
	}

	for _, group := range byChannel {
		sort.Slice(group, func(i, j int) bool {
			return group[i].CreatedAt.After(group[j].CreatedAt)
		})

		attached := false
		for _, snapshot := range group {
			if m.isLive(snapshot.ID) {
				// Already attached, nothing to redo.
				attached = true
				continue
			}
			if attached || m.channelBusy(snapshot.Location) {
				m.discardSnapshot(snapshot, "superseded by a newer session")
				report.Discarded++
				continue
			}
			if err := m.reattach(ctx, snapshot); err != nil {
				m.discardSnapshot(snapshot, "unreachable rendering surface")
				report.Discarded++
				continue
			}
			attached = true
			report.Reattached++
		}
	}

	if report.Reattached > 0 || report.Discarded > 0 {
		m.log.Info("Recovery pass done", "reattached", report.Reattached, "discarded", report.Discarded)
	}
	return report, nil
}

// reattach revives one snapshot : resolve its surface, re-key the
// session under the attach instant, persist the new snapshot, delete
// the replaced one, then redraw. The original creation time survives,
// the expiry deadline never moves.
func (m *Manager) reattach(ctx context.Context, snapshot domain.Session) error {
	resolveCtx, cancel := context.WithTimeout(ctx, m.settings.RenderTimeout)
	defer cancel()
	location, err := m.renderer.ResolveLocation(resolveCtx, snapshot.Location)
	if err != nil {
		return err
	}

	session := snapshot
	session.ID = domain.NewSessionID(location, time.Now())
	session.Location = location

	m.persist(session)
	if err = m.store.Delete(snapshot); err != nil {
		m.log.Error("Could not delete the replaced snapshot", "session_id", snapshot.ID, "error", err)
	}

	live := m.register(session)
	live.mu.Lock()
	defer live.mu.Unlock()

	m.emit(event.SessionRecoveredType, session.ID, event.SessionRecovered{PreviousID: snapshot.ID})
	m.render(ctx, live)
	m.log.Info("Session reattached",
		"session_id", session.ID, "previous_id", snapshot.ID, "channel", location.ChannelKey())
	return nil
}

func (m *Manager) discardSnapshot(snapshot domain.Session, reason string) {
	if err := m.store.Delete(snapshot); err != nil {
		m.log.Error("Could not discard a snapshot", "session_id", snapshot.ID, "error", err)
	}
	m.emit(event.SnapshotDiscardedType, snapshot.ID, event.SnapshotDiscarded{Reason: reason})
	m.log.Info("Snapshot discarded", "session_id", snapshot.ID, "reason", reason)
}

func (m *Manager) isLive(sessionID string) bool {
	_, err := m.lookup(sessionID)
	return err == nil
}

// channelBusy reports whether a non-terminal session already occupies
// the channel, which happens when recovery runs opportunistically
// while the process is serving.
func (m *Manager) channelBusy(location domain.Location) bool {
	for _, live := range m.snapshotLives() {
		live.mu.Lock()
		busy := !live.session.Terminal() && live.session.Location.ChannelKey() == location.ChannelKey()
		live.mu.Unlock()
		if busy {
			return true
		}
	}
	return false
}
