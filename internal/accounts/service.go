// Package accounts orchestrates registration and login against a user store.
// The service holds no state between calls; the store is the only shared
// resource, and concurrent duplicate registrations are resolved by its
// uniqueness guarantee, not by locking here.
package accounts

import (
	"context"
	"errors"
	"fmt"

	"github.com/avelasq/authgate/internal/domain/user"
	"github.com/avelasq/authgate/internal/policy"
	"github.com/avelasq/authgate/internal/security"
)

// UserStore is the repository boundary. GetByEmail returns user.ErrNotFound
// for an unknown email; Create returns user.ErrEmailTaken when the email is
// already taken (the store must enforce this atomically, e.g. via a unique
// index, because the service's lookup-then-insert is not atomic).
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (user.User, error)
	Create(ctx context.Context, req user.CreateRequest) (user.User, error)
}

type Service struct {
	store  UserStore
	hasher *security.Hasher
}

func NewService(store UserStore, hasher *security.Hasher) *Service {
	return &Service{
		store:  store,
		hasher: hasher,
	}
}

// Register validates the password against policy, hashes it with a fresh
// salt, and persists the new account. Either the record is fully persisted
// or nothing is retained.
func (s *Service) Register(ctx context.Context, email, password string) (user.User, error) {
	if err := requireFields(email, password); err != nil {
		return user.User{}, err
	}

	if err := policy.Validate(password); err != nil {
		return user.User{}, err
	}

	_, err := s.store.GetByEmail(ctx, email)

	if err == nil {
		return user.User{}, ErrDuplicateUser
	}

	if !errors.Is(err, user.ErrNotFound) {
		return user.User{}, fmt.Errorf("lookup user: %w", err)
	}

	hash, err := s.hasher.Hash(password)

	if err != nil {
		return user.User{}, err
	}

	u, err := s.store.Create(ctx, user.CreateRequest{
		Email:        email,
		PasswordHash: hash,
	})

	if err != nil {
		// a concurrent registration may win the race after our lookup
		if errors.Is(err, user.ErrEmailTaken) {
			return user.User{}, ErrDuplicateUser
		}

		return user.User{}, fmt.Errorf("persist user: %w", err)
	}

	return u, nil
}

// Login verifies the password against the stored hash. The unknown-email and
// wrong-password outcomes are deliberately distinct errors.
func (s *Service) Login(ctx context.Context, email, password string) (user.User, error) {
	if err := requireFields(email, password); err != nil {
		return user.User{}, err
	}

	u, err := s.store.GetByEmail(ctx, email)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return user.User{}, ErrUserNotFound
		}

		return user.User{}, fmt.Errorf("lookup user: %w", err)
	}

	err = s.hasher.Check(u.PasswordHash, password)

	if err != nil {
		if errors.Is(err, security.ErrMismatch) {
			return user.User{}, ErrInvalidCredentials
		}

		return user.User{}, err
	}

	return u, nil
}

func requireFields(email, password string) error {
	if email == "" {
		return ErrMissingEmail
	}

	if password == "" {
		return ErrMissingPassword
	}

	return nil
}
