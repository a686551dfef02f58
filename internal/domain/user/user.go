package user

import (
	"errors"
	"time"
)

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // never expose hash in JSON
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// CreateRequest carries the fields a store needs to persist a new account.
// PasswordHash is the encoded output of the hashing primitive, never the
// raw password.
type CreateRequest struct {
	Email        string
	PasswordHash string
}

// Store sentinels. Repositories map their backend's failures onto these.
var (
	ErrNotFound   = errors.New("user not found")
	ErrEmailTaken = errors.New("email is already in use")
)
