package postgres

import (
	"context"
	"errors"

	"github.com/avelasq/authgate/internal/domain/media"
	"github.com/avelasq/authgate/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserMediaRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewUserMediaRepo(pool *pgxpool.Pool, prom *observability.Prom) *UserMediaRepo {
	return &UserMediaRepo{
		pool: pool,
		prom: prom,
	}
}

func (r *UserMediaRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

// Upsert stores the storage key for a user's media slot. One row per
// (user, kind); re-uploads replace the key.
func (r *UserMediaRepo) Upsert(ctx context.Context, userID string, kind media.Kind, storageKey string) error {
	return r.observe("user_media.upsert", func() error {
		_, err := r.pool.Exec(ctx, `
			INSERT INTO user_media (user_id, kind, storage_key, created_at, updated_at)
			VALUES ($1, $2, $3, NOW(), NOW())
			ON CONFLICT (user_id, kind)
			DO UPDATE SET storage_key = EXCLUDED.storage_key, updated_at = NOW()
		`, userID, string(kind), storageKey)

		return err
	})
}

func (r *UserMediaRepo) Get(ctx context.Context, userID string, kind media.Kind) (media.Object, error) {
	var obj media.Object

	err := r.observe("user_media.get", func() error {
		return r.pool.QueryRow(ctx, `
			SELECT user_id, kind, storage_key, created_at, updated_at
			FROM user_media
			WHERE user_id = $1 AND kind = $2
		`, userID, string(kind)).Scan(
			&obj.UserID,
			&obj.Kind,
			&obj.StorageKey,
			&obj.CreatedAt,
			&obj.UpdatedAt,
		)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return media.Object{}, media.ErrNotFound
		}

		return media.Object{}, err
	}

	return obj, nil
}
