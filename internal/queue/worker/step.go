package worker

import (
	"context"
	"errors"
	"time"

	"github.com/avelasq/authgate/internal/domain/delivery"
	"github.com/avelasq/authgate/internal/jobs"
	"github.com/avelasq/authgate/internal/notifications"
)

func (w *Worker) process(ctx context.Context, j jobs.Job) {
	w.metrics.IncClaimed()

	if w.prom != nil {
		w.prom.JobsInFlight.Inc()
		defer w.prom.JobsInFlight.Dec()
	}

	start := time.Now()
	result := w.execute(ctx, j)
	elapsed := time.Since(start)

	w.metrics.ObserveDuration(elapsed)

	if w.prom != nil {
		w.prom.JobDuration.WithLabelValues(string(j.Type), result).Observe(elapsed.Seconds())
		w.prom.JobResults.WithLabelValues(string(j.Type), result).Inc()
	}
}

// execute returns the job result label: done, retry, or failed.
func (w *Worker) execute(ctx context.Context, j jobs.Job) string {
	decoded, err := jobs.DecodePayload(j)

	if err != nil {
		// malformed payloads can never succeed; drop instead of retrying
		w.log.Error("job payload rejected", "job_id", j.ID, "type", j.Type, "err", err)
		w.metrics.IncFailed()
		return "failed"
	}

	if err := jobs.ValidatePayload(j.Type, decoded); err != nil {
		w.log.Error("job payload invalid", "job_id", j.ID, "type", j.Type, "err", err)
		w.metrics.IncFailed()
		return "failed"
	}

	switch p := decoded.(type) {
	case jobs.UserWelcomePayload:
		return w.handleWelcome(ctx, j, p)
	default:
		w.metrics.IncFailed()
		return "failed"
	}
}

func (w *Worker) handleWelcome(ctx context.Context, j jobs.Job, p jobs.UserWelcomePayload) string {
	err := w.deliveries.TryStartWelcome(ctx, j.ID, p.UserID, p.Email)

	if err != nil {
		if errors.Is(err, delivery.ErrAlreadySent) {
			w.log.Info("welcome already sent", "job_id", j.ID, "user_id", p.UserID)
			w.metrics.IncDone()
			return "done"
		}

		if errors.Is(err, delivery.ErrInProgress) {
			// another worker holds it; nothing to do here
			w.log.Info("welcome delivery in progress elsewhere", "job_id", j.ID, "user_id", p.UserID)
			w.metrics.IncDone()
			return "done"
		}

		return w.retry(ctx, j, err)
	}

	err = w.notifier.SendWelcome(ctx, notifications.SendWelcomeInput{
		UserID: p.UserID,
		Email:  p.Email,
	})

	if err != nil {
		if mErr := w.deliveries.MarkWelcomeFailed(ctx, p.UserID, err.Error()); mErr != nil {
			w.log.Error("mark welcome failed errored", "job_id", j.ID, "err", mErr)
		}

		return w.retry(ctx, j, err)
	}

	if err := w.deliveries.MarkWelcomeSent(ctx, p.UserID); err != nil {
		// notification went out; surface the bookkeeping failure but do not retry
		w.log.Error("mark welcome sent errored", "job_id", j.ID, "err", err)
	}

	w.metrics.IncDone()
	return "done"
}

func (w *Worker) retry(ctx context.Context, j jobs.Job, cause error) string {
	j.Attempts++

	if j.Attempts >= j.MaxTries {
		w.log.Error("job exhausted retries", "job_id", j.ID, "attempts", j.Attempts, "err", cause)
		w.metrics.IncDeadLettered()
		return "failed"
	}

	delay := ExponentialBackoff(j.Attempts)

	w.log.Info("job retrying", "job_id", j.ID, "attempt", j.Attempts, "delay", delay, "err", cause)

	select {
	case <-time.After(delay):
	case <-ctx.Done():
		// requeue immediately so the job is not lost on shutdown
	}

	if err := w.queue.Enqueue(context.WithoutCancel(ctx), j); err != nil {
		w.log.Error("requeue failed, job lost", "job_id", j.ID, "err", err)
		w.metrics.IncFailed()
		return "failed"
	}

	w.metrics.IncRetried()
	return "retry"
}
