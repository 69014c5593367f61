package models

import "time"

// PasswordResetToken is a single-use reset credential. Only the hash of the
// token handed to the user is stored.
type PasswordResetToken struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	TokenHash string    `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
	Used      bool      `json:"used"`
	CreatedAt time.Time `json:"created_at"`
}

// IsExpired compares in UTC; a token is still valid at exactly ExpiresAt.
func (t *PasswordResetToken) IsExpired(now time.Time) bool {
	return now.UTC().After(t.ExpiresAt.UTC())
}
