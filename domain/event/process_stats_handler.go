package event

import (
	"fmt"
	"log/slog"

	"mix-lab/errors"
)

type ProcessStatsHandler struct {
	log *slog.Logger
}

func NewProcessStatsHandler(log *slog.Logger) *ProcessStatsHandler {
	return &ProcessStatsHandler{log: log}
}

func (h ProcessStatsHandler) Handle(event Event) {
	switch event.Type {
	case ProcessStatsType:
		payload, ok := event.Payload.(ProcessStats)
		if !ok {
			h.log.Error(errors.ErrInvalidPayload.Error())
			return
		}
		h.log.Debug(fmt.Sprintf(" [PROCESS] CPU %.2f%% | RSS %d MiB | HEAP %d MiB | GOROUTINES %d",
			payload.Cpu, payload.RssBytes/1024/1024, payload.HeapBytes/1024/1024, payload.Goroutines))
	}
}
