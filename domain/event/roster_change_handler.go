package event

import (
	"fmt"
	"log/slog"
	"sync"

	"mix-lab/errors"
)

// RosterChangeHandler handles events when a player joins or leaves a session.
// It is triggered each time the roster of an open session changes.
// Useful for updating observability metrics, logging, or telemetry.
type RosterChangeHandler struct {
	log     *slog.Logger
	mu      sync.Mutex
	counter *Counter
}

func NewRosterChangeHandler(log *slog.Logger, counter *Counter) *RosterChangeHandler {
	return &RosterChangeHandler{log: log, counter: counter}
}

func (h *RosterChangeHandler) Handle(event Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	switch event.Type {
	case ParticipantJoinedType, ParticipantLeftType:
		payload, ok := event.Payload.(RosterChanged)
		if !ok {
			h.log.Error(errors.ErrInvalidPayload.Error())
			return
		}
		h.counter.Increment(event.Type)
		h.log.Debug(fmt.Sprintf("Roster of session %s now %d / %d", event.SessionID, payload.Count, payload.Capacity))
	}
}
