package worker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/avelasq/authgate/internal/domain/delivery"
	"github.com/avelasq/authgate/internal/jobs"
	"github.com/avelasq/authgate/internal/notifications"
)

type fakeQueue struct {
	mu       sync.Mutex
	enqueued []jobs.Job
}

func (q *fakeQueue) Dequeue(ctx context.Context, timeout time.Duration) (jobs.Job, bool, error) {
	return jobs.Job{}, false, nil
}

func (q *fakeQueue) Enqueue(ctx context.Context, j jobs.Job) error {
	q.mu.Lock()
	q.enqueued = append(q.enqueued, j)
	q.mu.Unlock()
	return nil
}

type fakeDeliveries struct {
	startErr error
	sent     []string
	failed   []string
}

func (d *fakeDeliveries) TryStartWelcome(ctx context.Context, jobID, userID, recipient string) error {
	return d.startErr
}

func (d *fakeDeliveries) MarkWelcomeSent(ctx context.Context, userID string) error {
	d.sent = append(d.sent, userID)
	return nil
}

func (d *fakeDeliveries) MarkWelcomeFailed(ctx context.Context, userID string, errMsg string) error {
	d.failed = append(d.failed, userID)
	return nil
}

type fakeNotifier struct {
	err  error
	sent []notifications.SendWelcomeInput
}

func (n *fakeNotifier) SendWelcome(ctx context.Context, in notifications.SendWelcomeInput) error {
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, in)
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func welcomeJob(t *testing.T) jobs.Job {
	t.Helper()

	b, err := jobs.EncodePayload(jobs.JobUserWelcome, jobs.UserWelcomePayload{
		UserID: "user-1",
		Email:  "a@x.com",
	})
	if err != nil {
		t.Fatalf("EncodePayload error: %v", err)
	}

	j, err := jobs.NewJob(jobs.JobUserWelcome, b)
	if err != nil {
		t.Fatalf("NewJob error: %v", err)
	}

	return j
}

func newTestWorker(q Queue, d DeliveryStore, n notifications.Notifier) *Worker {
	return New(Config{WorkerID: "test-1"}, q, d, n, nil, testLogger())
}

func TestExecute_DeliversAndMarksSent(t *testing.T) {
	q := &fakeQueue{}
	d := &fakeDeliveries{}
	n := &fakeNotifier{}

	w := newTestWorker(q, d, n)

	result := w.execute(context.Background(), welcomeJob(t))

	if result != "done" {
		t.Fatalf("expected done, got %s", result)
	}
	if len(n.sent) != 1 || n.sent[0].Email != "a@x.com" {
		t.Fatalf("expected one welcome sent, got %+v", n.sent)
	}
	if len(d.sent) != 1 || d.sent[0] != "user-1" {
		t.Fatalf("expected delivery marked sent, got %+v", d.sent)
	}
}

func TestExecute_SkipsAlreadySent(t *testing.T) {
	q := &fakeQueue{}
	d := &fakeDeliveries{startErr: delivery.ErrAlreadySent}
	n := &fakeNotifier{}

	w := newTestWorker(q, d, n)

	result := w.execute(context.Background(), welcomeJob(t))

	if result != "done" {
		t.Fatalf("expected done, got %s", result)
	}
	if len(n.sent) != 0 {
		t.Fatalf("expected no notification, got %+v", n.sent)
	}
}

func TestExecute_RetriesOnProviderFailure(t *testing.T) {
	q := &fakeQueue{}
	d := &fakeDeliveries{}
	n := &fakeNotifier{err: errors.New("provider down")}

	w := newTestWorker(q, d, n)

	// cancelled context skips the backoff sleep and requeues immediately
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := w.execute(ctx, welcomeJob(t))

	if result != "retry" {
		t.Fatalf("expected retry, got %s", result)
	}
	if len(q.enqueued) != 1 {
		t.Fatalf("expected one requeued job, got %d", len(q.enqueued))
	}
	if q.enqueued[0].Attempts != 1 {
		t.Fatalf("expected attempts=1, got %d", q.enqueued[0].Attempts)
	}
	if len(d.failed) != 1 {
		t.Fatalf("expected delivery marked failed, got %+v", d.failed)
	}
}

func TestExecute_DropsAfterMaxTries(t *testing.T) {
	q := &fakeQueue{}
	d := &fakeDeliveries{}
	n := &fakeNotifier{err: errors.New("provider down")}

	w := newTestWorker(q, d, n)

	j := welcomeJob(t)
	j.Attempts = j.MaxTries - 1

	result := w.execute(context.Background(), j)

	if result != "failed" {
		t.Fatalf("expected failed, got %s", result)
	}
	if len(q.enqueued) != 0 {
		t.Fatalf("expected no requeue, got %d", len(q.enqueued))
	}
}

func TestExecute_RejectsMalformedPayload(t *testing.T) {
	q := &fakeQueue{}
	d := &fakeDeliveries{}
	n := &fakeNotifier{}

	w := newTestWorker(q, d, n)

	j := jobs.Job{ID: "j1", Type: jobs.JobUserWelcome, Payload: []byte("{broken"), MaxTries: 5}

	if result := w.execute(context.Background(), j); result != "failed" {
		t.Fatalf("expected failed, got %s", result)
	}
}

func TestBackoff_GrowsAndCaps(t *testing.T) {
	if ExponentialBackoff(0) < 2*time.Second {
		t.Fatalf("attempt 0 below base")
	}
	if ExponentialBackoff(1) < 4*time.Second {
		t.Fatalf("attempt 1 below 4s")
	}
	if ExponentialBackoff(30) > 5*time.Minute+time.Second {
		t.Fatalf("backoff not capped")
	}
}
