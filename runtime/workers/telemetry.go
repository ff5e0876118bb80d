package workers

import (
	"context"
	"log/slog"
	"time"

	"mix-lab/domain/event"
)

// TelemetryWorker drains the telemetry channel at its own pace and
// feeds the handler chain. Sampling twice a second is plenty :
// telemetry is allowed to lag, sessions are not.
type TelemetryWorker struct {
	log            *slog.Logger
	metricInterval time.Duration
	telemetryChan  chan event.Event
	handlers       []event.Handler
}

func NewTelemetryWorker(log *slog.Logger,
	metricInterval time.Duration,
	telemetryChan chan event.Event,
	handlers []event.Handler) *TelemetryWorker {
	return &TelemetryWorker{
		log:            log,
		metricInterval: metricInterval,
		telemetryChan:  telemetryChan,
		handlers:       handlers,
	}
}

func (w TelemetryWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.metricInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			w.drain(ctx)
		}
	}
}

// drain empties whatever accumulated since the last tick.
func (w TelemetryWorker) drain(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case evt := <-w.telemetryChan:
			w.handle(evt)
		default:
			return
		}
	}
}

func (w TelemetryWorker) handle(event event.Event) {
	for _, h := range w.handlers {
		h.Handle(event)
	}
}
