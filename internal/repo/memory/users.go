package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/avelasq/authgate/internal/domain/user"
	"github.com/google/uuid"
)

// UsersRepo is an in-memory user store used by tests and local runs. It
// mirrors the postgres repo's contract, including the uniqueness guarantee
// on Create.
type UsersRepo struct {
	mu    sync.RWMutex
	users map[string]user.User // keyed by email
}

func NewUsersRepo() *UsersRepo {
	return &UsersRepo{
		users: make(map[string]user.User),
	}
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	r.mu.RLock()
	u, ok := r.users[email]
	r.mu.RUnlock()

	if !ok {
		return user.User{}, user.ErrNotFound
	}

	return u, nil
}

func (r *UsersRepo) Create(ctx context.Context, req user.CreateRequest) (user.User, error) {
	now := time.Now().UTC()

	u := user.User{
		ID:           uuid.NewString(),
		Email:        req.Email,
		PasswordHash: req.PasswordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// check-and-insert under one lock: duplicates cannot race here
	if _, exists := r.users[u.Email]; exists {
		return user.User{}, user.ErrEmailTaken
	}

	r.users[u.Email] = u

	return u, nil
}

func (r *UsersRepo) List(ctx context.Context, emailFilter string) ([]user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if emailFilter != "" {
		if u, ok := r.users[emailFilter]; ok {
			return []user.User{u}, nil
		}
		return []user.User{}, nil
	}

	out := make([]user.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, u)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })

	return out, nil
}
