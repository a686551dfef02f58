package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/avelasq/authgate/internal/domain/delivery"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const welcomeKind = "user.welcome"

// NotificationDeliveriesRepo makes welcome notifications idempotent: at most
// one delivery per user, no matter how many times the job is retried or
// duplicated in the queue.
type NotificationDeliveriesRepo struct {
	pool *pgxpool.Pool
}

func NewNotificationDeliveriesRepo(pool *pgxpool.Pool) *NotificationDeliveriesRepo {
	return &NotificationDeliveriesRepo{pool: pool}
}

func (r *NotificationDeliveriesRepo) TryStartWelcome(
	ctx context.Context,
	jobID string,
	userID string,
	recipient string,
) error {
	// 1) Insert if missing
	_, err := r.pool.Exec(ctx, `
		INSERT INTO notification_deliveries (kind, user_id, job_id, recipient, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, 'sending', NOW(), NOW())
	`, welcomeKind, userID, jobID, recipient)

	if err == nil {
		return nil
	}
	if !IsUniqueViolation(err) {
		return err
	}

	// 2) Row exists. If it was failed, claim it for retry by flipping it back
	// to sending. Atomic: only one worker can win the flip.
	tag, uErr := r.pool.Exec(ctx, `
		UPDATE notification_deliveries
		SET status = 'sending',
		    job_id = $3,
		    recipient = $4,
		    last_error = NULL,
		    updated_at = NOW()
		WHERE kind = $1 AND user_id = $2 AND status = 'failed'
	`, welcomeKind, userID, jobID, recipient)

	if uErr != nil {
		return uErr
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	// 3) Not failed. Determine whether it's already sent or in flight.
	var status string
	var sentAt *time.Time

	qErr := r.pool.QueryRow(ctx, `
		SELECT status, sent_at
		FROM notification_deliveries
		WHERE kind = $1 AND user_id = $2
	`, welcomeKind, userID).Scan(&status, &sentAt)

	if qErr != nil {
		if errors.Is(qErr, pgx.ErrNoRows) {
			// row disappeared; let caller retry
			return nil
		}
		return qErr
	}

	if sentAt != nil || status == "sent" {
		return delivery.ErrAlreadySent
	}

	// status == "sending"
	return delivery.ErrInProgress
}

func (r *NotificationDeliveriesRepo) MarkWelcomeSent(ctx context.Context, userID string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE notification_deliveries
		SET status = 'sent',
		    sent_at = NOW(),
		    last_error = NULL,
		    updated_at = NOW()
		WHERE kind = $1 AND user_id = $2
	`, welcomeKind, userID)

	return err
}

func (r *NotificationDeliveriesRepo) MarkWelcomeFailed(ctx context.Context, userID string, errMsg string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE notification_deliveries
		SET status = 'failed',
		    last_error = $3,
		    updated_at = NOW()
		WHERE kind = $1 AND user_id = $2
	`, welcomeKind, userID, errMsg)

	return err
}
