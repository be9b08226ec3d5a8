package reconcile

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"neuro-sync/models"
	"neuro-sync/services"
)

// Reconciler applies overdue streak breaks
type Reconciler interface {
	Reconcile(ctx context.Context, now time.Time) (*services.ReconcileResult, error)
}

// Worker runs streak reconciliation in the background. A pass that fails is
// retried at the shorter retry interval until one succeeds.
type Worker struct {
	reconciler      Reconciler
	logger          *slog.Logger
	baseInterval    time.Duration
	retryInterval   time.Duration
	currentInterval time.Duration
	now             func() time.Time
	running         bool
	mu              sync.Mutex
	stopChan        chan struct{}
	done            chan struct{}
	cancel          context.CancelFunc
}

// NewWorker creates a reconciliation worker that runs every interval
func NewWorker(reconciler Reconciler, interval time.Duration, logger *slog.Logger) *Worker {
	retry := min(interval, 5*time.Minute)
	return &Worker{
		reconciler:      reconciler,
		logger:          logger,
		baseInterval:    interval,
		retryInterval:   retry,
		currentInterval: interval,
		now:             models.Now,
	}
}

// Start begins the background worker
func (w *Worker) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return
	}
	w.running = true
	w.stopChan = make(chan struct{})
	w.done = make(chan struct{})

	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel

	w.logger.Info("starting streak reconciliation worker", "interval", w.baseInterval)
	go w.run(ctx, w.stopChan, w.done)
}

// Stop halts the worker and waits for an in-flight pass to finish
func (w *Worker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.logger.Info("stopping streak reconciliation worker")
	close(w.stopChan)
	w.cancel()
	w.running = false
	done := w.done
	w.mu.Unlock()

	<-done
}

// RunOnce performs a single pass and reports whether it fully succeeded.
func (w *Worker) RunOnce(ctx context.Context) bool {
	start := time.Now()
	result, err := w.reconciler.Reconcile(ctx, w.now())
	if err != nil {
		w.logger.Error("streak reconciliation failed", "error", err)
		return false
	}
	w.logger.Info("streak reconciliation finished",
		"checked", result.Checked,
		"reset", result.Reset,
		"failed", result.Failed,
		"duration", time.Since(start),
	)
	return result.Failed == 0
}

// run is the main worker loop
func (w *Worker) run(ctx context.Context, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(w.currentInterval)
	defer ticker.Stop()

	// Run immediately on start
	w.adjust(ticker, w.RunOnce(ctx))

	for {
		select {
		case <-ticker.C:
			w.adjust(ticker, w.RunOnce(ctx))
		case <-stop:
			return
		}
	}
}

// adjust switches to the retry interval after a failed pass and back after a clean one
func (w *Worker) adjust(ticker *time.Ticker, ok bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	next := w.baseInterval
	if !ok {
		next = w.retryInterval
	}
	if next != w.currentInterval {
		w.currentInterval = next
		ticker.Reset(next)
		w.logger.Debug("reconciliation interval changed", "interval", next)
	}
}
