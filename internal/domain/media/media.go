package media

import (
	"errors"
	"time"
)

// Kind names the media slots an account may attach.
type Kind string

const (
	KindProfileImage Kind = "profile_image"
	KindAudio        Kind = "audio"
	KindVideo        Kind = "video"
)

func (k Kind) IsValid() bool {
	switch k {
	case KindProfileImage, KindAudio, KindVideo:
		return true
	default:
		return false
	}
}

// Object records where a user's media of a given kind lives in blob storage.
type Object struct {
	UserID     string    `json:"userId"`
	Kind       Kind      `json:"kind"`
	StorageKey string    `json:"-"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

var ErrNotFound = errors.New("media object not found")
