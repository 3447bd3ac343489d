package models

import "time"

// RefreshToken is the durable record backing a long-lived refresh token.
// At most one row exists per user: login deletes all prior rows before
// inserting a new one.
type RefreshToken struct {
	ID        string
	UserID    string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Expired reports whether the stored expiry has passed at the given time.
func (t *RefreshToken) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}
