package jobs

import "time"

// UserWelcomePayload identifies the account to greet. Keep payload minimal
// and ID-based; the worker loads anything else from the DB.
type UserWelcomePayload struct {
	UserID      string    `json:"userId"`
	Email       string    `json:"email"`
	RequestID   string    `json:"requestId,omitempty"` // optional: correlation
	RequestedAt time.Time `json:"requestedAt"`
}
