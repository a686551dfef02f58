package utils

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrBadCursor marks a cursor the client sent that cannot be decoded.
var ErrBadCursor = errors.New("malformed cursor")

// UserCursor is an opaque keyset-pagination cursor over (created_at, id).
type UserCursor struct {
	CreatedAt time.Time `json:"createdAt"`
	ID        string    `json:"id"`
}

func EncodeUserCursor(createdAt time.Time, id string) (string, error) {
	b, err := json.Marshal(UserCursor{CreatedAt: createdAt, ID: id})
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func DecodeUserCursor(cursor string) (UserCursor, error) {
	if cursor == "" {
		return UserCursor{}, ErrBadCursor
	}

	raw, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return UserCursor{}, fmt.Errorf("%w: %v", ErrBadCursor, err)
	}

	var c UserCursor
	if err := json.Unmarshal(raw, &c); err != nil {
		return UserCursor{}, fmt.Errorf("%w: %v", ErrBadCursor, err)
	}
	if c.ID == "" || c.CreatedAt.IsZero() {
		return UserCursor{}, ErrBadCursor
	}
	return c, nil
}
