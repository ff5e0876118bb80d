package workers

import (
	"context"
	"log/slog"
	"os"
	"runtime"
	"time"

	"mix-lab/domain/event"
	"mix-lab/observability"

	"github.com/shirou/gopsutil/process"
)

// ProcessStatsWorker samples the process itself (CPU, RSS, heap,
// goroutines), feeds the tracker for the inspection page, and drops a
// telemetry event for the handler chain.
type ProcessStatsWorker struct {
	log            *slog.Logger
	tracker        *observability.Tracker
	telemetryChan  chan event.Event
	metricInterval time.Duration
}

func NewProcessStatsWorker(log *slog.Logger,
	tracker *observability.Tracker,
	telemetryChan chan event.Event,
	metricInterval time.Duration) *ProcessStatsWorker {
	return &ProcessStatsWorker{
		log:            log,
		tracker:        tracker,
		telemetryChan:  telemetryChan,
		metricInterval: metricInterval,
	}
}

func (w *ProcessStatsWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.metricInterval)
	defer ticker.Stop()

	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			rss, cpu, err := getSelfStats(p)
			if err != nil {
				w.log.Error("Failed to collect self stats", "err", err)
				continue
			}

			var memStats runtime.MemStats
			runtime.ReadMemStats(&memStats)

			stats := event.ProcessStats{
				Cpu:        cpu,
				RssBytes:   rss,
				HeapBytes:  memStats.HeapAlloc,
				Goroutines: runtime.NumGoroutine(),
			}
			w.tracker.SetProcessStats(stats)

			select {
			case w.telemetryChan <- event.New(event.ProcessStatsType, "", stats):
			default:
				w.log.Debug("Observability telemetry event lost")
			}
		}
	}
}

// getSelfStats retrieves technical metrics (Memory and CPU) for the given process.
func getSelfStats(p *process.Process) (uint64, float64, error) {
	memInfo, err := p.MemoryInfo()
	if err != nil {
		return 0, 0, err
	}

	cpuPercent, err := p.CPUPercent()
	if err != nil {
		return 0, 0, err
	}
	return memInfo.RSS, cpuPercent, nil
}
