package postgres

import (
	"context"
	"errors"
	"strconv"

	"github.com/avelasq/authgate/internal/domain/user"
	"github.com/avelasq/authgate/internal/observability"
	"github.com/avelasq/authgate/internal/utils"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UsersRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewUsersRepo(pool *pgxpool.Pool, prom *observability.Prom) *UsersRepo {
	return &UsersRepo{
		pool: pool,
		prom: prom,
	}
}

func (r *UsersRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError

	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	return false
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	var u user.User

	err := r.observe("users.get_by_email", func() error {
		return r.pool.QueryRow(
			ctx,
			`SELECT id, email, password_hash, created_at, updated_at
			 FROM users
			 WHERE email = $1`,
			email,
		).Scan(
			&u.ID,
			&u.Email,
			&u.PasswordHash,
			&u.CreatedAt,
			&u.UpdatedAt,
		)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}

		return user.User{}, err
	}

	return u, nil
}

// Create inserts the new account. The users_email_key index is what makes
// concurrent duplicate registrations safe; a violation surfaces as
// user.ErrEmailTaken.
func (r *UsersRepo) Create(ctx context.Context, req user.CreateRequest) (u user.User, err error) {
	u = user.User{
		ID:           uuid.NewString(),
		Email:        req.Email,
		PasswordHash: req.PasswordHash,
	}

	err = r.observe("users.create", func() error {
		return r.pool.QueryRow(ctx, `
			INSERT INTO users (id, email, password_hash, created_at, updated_at)
			VALUES ($1, $2, $3, NOW(), NOW())
			RETURNING created_at, updated_at
		`, u.ID, u.Email, u.PasswordHash).Scan(&u.CreatedAt, &u.UpdatedAt)
	})

	if err != nil {
		if IsUniqueViolation(err) {
			return user.User{}, user.ErrEmailTaken
		}

		return user.User{}, err
	}

	return u, nil
}

// ListCursor returns a page of users ordered by (created_at, id), optionally
// filtered to one email. The returned cursor points past the last row.
func (r *UsersRepo) ListCursor(ctx context.Context, emailFilter string, limit int, cursor string) ([]user.User, *string, bool, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	args := []any{}
	where := ""
	idx := 1

	if emailFilter != "" {
		where = `WHERE email = $1`
		args = append(args, emailFilter)
		idx++
	}

	if cursor != "" {
		c, err := utils.DecodeUserCursor(cursor)

		if err != nil {
			return nil, nil, false, err
		}

		if where == "" {
			where = `WHERE `
		} else {
			where += ` AND `
		}

		where += `(created_at, id) > ($` + strconv.Itoa(idx) + `, $` + strconv.Itoa(idx+1) + `)`
		args = append(args, c.CreatedAt, c.ID)
		idx += 2
	}

	// fetch one extra row to learn whether more pages exist
	args = append(args, limit+1)

	query := `SELECT id, email, password_hash, created_at, updated_at
		FROM users ` + where + `
		ORDER BY created_at, id
		LIMIT $` + strconv.Itoa(idx)

	var users []user.User

	err := r.observe("users.list_cursor", func() error {
		rows, qErr := r.pool.Query(ctx, query, args...)

		if qErr != nil {
			return qErr
		}

		defer rows.Close()

		for rows.Next() {
			var u user.User

			if sErr := rows.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt); sErr != nil {
				return sErr
			}

			users = append(users, u)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, nil, false, err
	}

	hasMore := len(users) > limit

	if hasMore {
		users = users[:limit]
	}

	var next *string

	if hasMore && len(users) > 0 {
		last := users[len(users)-1]
		encoded, encErr := utils.EncodeUserCursor(last.CreatedAt, last.ID)

		if encErr != nil {
			return nil, nil, false, encErr
		}

		next = &encoded
	}

	return users, next, hasMore, nil
}

