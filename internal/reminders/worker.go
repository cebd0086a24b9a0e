package reminders

import (
	"context"
	"sync"
	"time"

	"github.com/Bezzin/HerHealth-Hub-sub000/pkg/logging"
)

// Worker runs the reminder scanner on a fixed cadence.
type Worker struct {
	scanner  *Scanner
	logger   *logging.Logger
	interval time.Duration
	now      func() time.Time

	running sync.Mutex
}

// NewWorker creates a reminder worker with the default hourly cadence.
func NewWorker(scanner *Scanner, logger *logging.Logger) *Worker {
	if logger == nil {
		logger = logging.Default()
	}
	return &Worker{
		scanner:  scanner,
		logger:   logger,
		interval: time.Hour,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// WithInterval sets the scan cadence.
func (w *Worker) WithInterval(interval time.Duration) *Worker {
	if interval > 0 {
		w.interval = interval
	}
	return w
}

// WithClock overrides the worker clock (for tests).
func (w *Worker) WithClock(now func() time.Time) *Worker {
	if now != nil {
		w.now = now
	}
	return w
}

// Start runs the worker. Blocks until the context is cancelled.
func (w *Worker) Start(ctx context.Context) {
	w.logger.Info("starting reminder worker", "interval", w.interval.String())

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	// Run once immediately on startup
	w.runOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("reminder worker shutting down")
			return
		case <-ticker.C:
			w.runOnce(ctx)
		}
	}
}

// runOnce executes a single scan. If a previous scan is still in flight the
// tick is skipped rather than queued.
func (w *Worker) runOnce(ctx context.Context) {
	if !w.running.TryLock() {
		w.logger.Warn("reminder scan still running, skipping tick")
		return
	}
	defer w.running.Unlock()

	sent, err := w.scanner.Scan(ctx, w.now())
	if err != nil {
		w.logger.Error("reminder scan failed", "error", err)
		return
	}
	if sent > 0 {
		w.logger.Info("reminder scan complete", "sent", sent)
	}
}
