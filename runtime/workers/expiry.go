package workers

import (
	"context"
	"log/slog"
	"time"
)

// Expirer is the slice of the session machine the sweeper needs.
type Expirer interface {
	ExpireStale(ctx context.Context) int
}

// ExpiryWorker walks the live sessions on a fixed interval and closes
// the ones past their deadline. Expiry is lazy on purpose : a session
// may linger up to one interval past its deadline before the sweep
// closes it.
type ExpiryWorker struct {
	log           *slog.Logger
	expirer       Expirer
	sweepInterval time.Duration
}

func NewExpiryWorker(log *slog.Logger, expirer Expirer, sweepInterval time.Duration) *ExpiryWorker {
	return &ExpiryWorker{log: log, expirer: expirer, sweepInterval: sweepInterval}
}

func (w *ExpiryWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if expired := w.expirer.ExpireStale(ctx); expired > 0 {
				w.log.Info("Expiry sweep closed sessions", "count", expired)
			}
		}
	}
}
