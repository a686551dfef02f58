// Package worker consumes welcome-notification jobs from the queue and
// delivers them. Each job is processed on its own goroutine, bounded by a
// concurrency semaphore; idempotency comes from the deliveries store, not
// from the queue.
package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/avelasq/authgate/internal/jobs"
	"github.com/avelasq/authgate/internal/notifications"
	"github.com/avelasq/authgate/internal/observability"
)

type Queue interface {
	Dequeue(ctx context.Context, timeout time.Duration) (jobs.Job, bool, error)
	Enqueue(ctx context.Context, j jobs.Job) error
}

type DeliveryStore interface {
	TryStartWelcome(ctx context.Context, jobID, userID, recipient string) error
	MarkWelcomeSent(ctx context.Context, userID string) error
	MarkWelcomeFailed(ctx context.Context, userID string, errMsg string) error
}

type Config struct {
	WorkerID       string
	Concurrency    int
	DequeueTimeout time.Duration
	ShutdownGrace  time.Duration
}

type Worker struct {
	cfg        Config
	queue      Queue
	deliveries DeliveryStore
	notifier   notifications.Notifier
	prom       *observability.Prom
	metrics    *observability.JobMetrics
	log        *slog.Logger

	readyMu sync.RWMutex
	ready   bool

	wg  sync.WaitGroup
	sem chan struct{}
}

func New(cfg Config, queue Queue, deliveries DeliveryStore, notifier notifications.Notifier, prom *observability.Prom, log *slog.Logger) *Worker {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}

	if cfg.DequeueTimeout <= 0 {
		cfg.DequeueTimeout = 2 * time.Second
	}

	if cfg.ShutdownGrace <= 0 {
		cfg.ShutdownGrace = 10 * time.Second
	}

	return &Worker{
		cfg:        cfg,
		queue:      queue,
		deliveries: deliveries,
		notifier:   notifier,
		prom:       prom,
		metrics:    observability.NewJobMetrics(),
		log:        log,
		sem:        make(chan struct{}, cfg.Concurrency),
	}
}

// Run consumes until ctx is cancelled, then drains in-flight jobs within the
// shutdown grace period.
func (w *Worker) Run(ctx context.Context) error {
	w.setReady(true)
	defer w.setReady(false)

	for {
		select {
		case <-ctx.Done():
			return w.drain()
		default:
		}

		j, ok, err := w.queue.Dequeue(ctx, w.cfg.DequeueTimeout)

		if err != nil {
			if ctx.Err() != nil {
				return w.drain()
			}

			w.log.Error("dequeue failed", "err", err, "worker_id", w.cfg.WorkerID)

			// brief pause so a dead redis doesn't spin the loop
			select {
			case <-time.After(time.Second):
			case <-ctx.Done():
				return w.drain()
			}
			continue
		}

		if !ok {
			continue
		}

		w.sem <- struct{}{}
		w.wg.Add(1)

		go func(j jobs.Job) {
			defer func() {
				<-w.sem
				w.wg.Done()
			}()

			w.process(ctx, j)
		}(j)
	}
}

func (w *Worker) drain() error {
	done := make(chan struct{})

	go func() {
		defer close(done)
		w.wg.Wait()
	}()

	select {
	case <-done:
		w.log.Info("worker drained")
		return nil
	case <-time.After(w.cfg.ShutdownGrace):
		w.log.Error("worker shutdown grace exceeded")
		return context.DeadlineExceeded
	}
}

func (w *Worker) setReady(v bool) {
	w.readyMu.Lock()
	w.ready = v
	w.readyMu.Unlock()
}

// Metrics exposes the in-process counters for the health endpoint.
func (w *Worker) Metrics() observability.JobMetricsSnapShot {
	return w.metrics.Snapshot()
}
