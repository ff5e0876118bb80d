package sink

import (
	"context"
	"log/slog"

	"mix-lab/domain/event"
)

// LogSink mirrors every session event to the structured log, at debug
// level so production output stays quiet.
type LogSink struct {
	log *slog.Logger
}

func NewLogSink(log *slog.Logger) LogSink {
	return LogSink{log: log}
}

func (s LogSink) Consume(_ context.Context, e event.Event) error {
	s.log.Debug("Session event",
		"type", e.Type,
		"session_id", e.SessionID,
		"event_id", e.ID,
	)
	return nil
}
