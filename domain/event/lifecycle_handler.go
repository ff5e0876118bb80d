package event

import (
	"fmt"
	"log/slog"
	"sync"
)

// LifecycleHandler handles session open, close, swap, and recovery events.
// Useful for following how many sessions live and die, and why.
type LifecycleHandler struct {
	log     *slog.Logger
	mu      sync.Mutex
	counter *Counter
}

func NewLifecycleHandler(log *slog.Logger, counter *Counter) *LifecycleHandler {
	return &LifecycleHandler{log: log, counter: counter}
}

func (h *LifecycleHandler) Handle(event Event) {
	switch event.Type {
	case SessionOpenedType, PlayersSwappedType, SessionFinalizedType,
		SessionCancelledType, SessionExpiredType, SessionRecoveredType,
		SnapshotDiscardedType:
		h.mu.Lock()
		defer h.mu.Unlock()
		h.counter.Increment(event.Type)
		h.log.Debug(fmt.Sprintf("%s : session %s, total %d", event.Type, event.SessionID, h.counter.Get(event.Type)))
	}
}
