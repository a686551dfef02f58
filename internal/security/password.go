// Package security wraps the password hashing primitive. bcrypt generates a
// fresh random salt per call and encodes salt, cost, and digest into the
// returned string, so verification is self-contained. Comparison is
// constant-time with respect to content.
package security

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost is the work factor used when none is configured. Fixed per
// deployment so hashing latency stays bounded and predictable.
const DefaultCost = 12

// ErrMismatch is returned by Check when the password does not match the hash.
var ErrMismatch = errors.New("password does not match hash")

type Hasher struct {
	cost int
}

// NewHasher clamps the cost into bcrypt's supported range.
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}

	return &Hasher{cost: cost}
}

// Hash hashes a plain text password with bcrypt.
func (h *Hasher) Hash(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)

	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	return string(hash), nil
}

// Check compares a bcrypt hash with a plaintext password. Returns ErrMismatch
// on a clean mismatch; any other error means the stored hash is malformed.
func (h *Hasher) Check(hash, plain string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))

	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrMismatch
		}

		return err
	}

	return nil
}

// Cost reports the configured work factor.
func (h *Hasher) Cost() int {
	return h.cost
}
