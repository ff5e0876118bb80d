package event

import (
	"fmt"
	"log/slog"
	"sync"

	"mix-lab/errors"
)

// BalanceOutcomeHandler handles events produced by balancing runs.
// It is triggered when teams are formed, reshuffled, or when a run fails.
// Useful for watching rating gaps and lookup failure rates over time.
type BalanceOutcomeHandler struct {
	log     *slog.Logger
	mu      sync.Mutex
	counter *Counter
}

func NewBalanceOutcomeHandler(log *slog.Logger, counter *Counter) *BalanceOutcomeHandler {
	return &BalanceOutcomeHandler{log: log, counter: counter}
}

func (h *BalanceOutcomeHandler) Handle(event Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	switch event.Type {
	case TeamsFormedType, TeamsRebalancedType:
		payload, ok := event.Payload.(TeamsFormed)
		if !ok {
			h.log.Error(errors.ErrInvalidPayload.Error())
			return
		}
		h.counter.Increment(event.Type)
		h.log.Debug(fmt.Sprintf("Teams formed for session %s, totals %d vs %d, gap %d",
			event.SessionID, payload.TotalA, payload.TotalB, payload.Gap))
	case BalanceFailedType:
		payload, ok := event.Payload.(BalanceFailed)
		if !ok {
			h.log.Error(errors.ErrInvalidPayload.Error())
			return
		}
		h.counter.Increment(event.Type)
		h.log.Warn(fmt.Sprintf("Balancing failed for session %s, %d lookup(s) in error", event.SessionID, len(payload.Failed)))
	}
}
