package sink

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"mix-lab/domain/event"
	"mix-lab/repositories"
)

// JournalSink buffers session events and writes them to the journal in
// batches. The flush is triggered either by reaching a size threshold
// (maxBatch) or a time-based deadline (flushInterval), so a quiet
// evening still gets its events on disk.
type JournalSink struct {
	mu            sync.Mutex
	timer         *time.Timer
	journal       repositories.IEventJournal
	log           *slog.Logger
	buffer        []event.Event
	maxBatch      int
	flushInterval time.Duration
}

func NewJournalSink(
	journal repositories.IEventJournal,
	log *slog.Logger,
	maxBatch int,
	flushInterval time.Duration,
) *JournalSink {
	return &JournalSink{
		journal:       journal,
		log:           log,
		maxBatch:      maxBatch,
		flushInterval: flushInterval,
	}
}

// Consume implements the EventSink interface.
// It appends the event to the current batch. The first event of a new
// batch arms a background timer, so data is not stuck when the
// throughput is low.
func (s *JournalSink) Consume(_ context.Context, e event.Event) error {
	s.mu.Lock()
	s.buffer = append(s.buffer, e)

	if len(s.buffer) == 1 && s.timer == nil {
		s.timer = time.AfterFunc(s.flushInterval, func() {
			if err := s.flush(); err != nil {
				s.log.Error("Journal: timed flush failed", "error", err)
			}
		})
	}

	isFull := len(s.buffer) >= s.maxBatch
	s.mu.Unlock()

	if isFull {
		return s.flush()
	}
	return nil
}

// flush swaps the buffer out under the lock and writes the batch
// outside of it, so event producers never wait on BadgerDB.
func (s *JournalSink) flush() error {
	s.mu.Lock()

	// Stop and clear the timer to prevent redundant flushes.
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}

	// Double-check for an empty buffer in case of concurrent flush calls.
	if len(s.buffer) == 0 {
		s.mu.Unlock()
		return nil
	}

	batch := s.buffer
	s.buffer = make([]event.Event, 0, s.maxBatch)

	s.mu.Unlock()

	return s.journal.Append(batch)
}
