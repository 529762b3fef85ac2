package domain

import (
	"time"

	"github.com/google/uuid"
)

// Identity is a user's authentication-relevant record. It is owned and
// mutated by the surrounding platform; this subsystem reads it, except for
// marking the email verified when a verification token is consumed.
type Identity struct {
	ID               uuid.UUID
	Email            string
	PasswordHash     *string // nil for OAuth-only accounts
	EmailVerifiedAt  *time.Time
	TwoFactorEnabled bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// CanPasswordLogin reports whether the identity holds a password credential.
// OAuth-only accounts have no hash and cannot authenticate with a password.
func (i *Identity) CanPasswordLogin() bool {
	return i.PasswordHash != nil && *i.PasswordHash != ""
}

// EmailVerified reports whether the identity's email address has been confirmed.
func (i *Identity) EmailVerified() bool {
	return i.EmailVerifiedAt != nil
}
