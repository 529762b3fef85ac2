package domain

import (
	"time"

	"github.com/google/uuid"
)

// VerificationToken is a single-use proof that the holder received mail sent
// to a claimed address. At most one active token exists per email: issuing a
// new one replaces any prior token for that address.
type VerificationToken struct {
	Token     string
	Email     string
	ExpiresAt time.Time
}

// Expired reports whether the token is past its expiry at the given instant.
func (t *VerificationToken) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

// TwoFactorCode is a short-lived numeric second-factor credential delivered
// out-of-band. Same single-active-per-email rule as VerificationToken, but
// deleted immediately on successful verification.
type TwoFactorCode struct {
	Code      string
	Email     string
	ExpiresAt time.Time
}

// Expired reports whether the code is past its expiry at the given instant.
func (c *TwoFactorCode) Expired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}

// TwoFactorOutcome is the result of checking a submitted code against the
// active one for an email.
type TwoFactorOutcome int

const (
	// TwoFactorValid means the code matched and was consumed.
	TwoFactorValid TwoFactorOutcome = iota
	// TwoFactorNotFound means no active code exists for the email.
	TwoFactorNotFound
	// TwoFactorMismatch means an active code exists but the submitted one differs.
	TwoFactorMismatch
	// TwoFactorExpired means the submitted code matched but is past expiry.
	TwoFactorExpired
)

func (o TwoFactorOutcome) String() string {
	switch o {
	case TwoFactorValid:
		return "valid"
	case TwoFactorNotFound:
		return "not_found"
	case TwoFactorMismatch:
		return "mismatch"
	case TwoFactorExpired:
		return "expired"
	default:
		return "unknown"
	}
}

// TwoFactorConfirmation records that a user has just cleared the two-factor
// challenge. At most one row exists per user; it is consumed by session
// establishment.
type TwoFactorConfirmation struct {
	ID     uuid.UUID
	UserID uuid.UUID
}

// AuthenticatorSecret is an enrolled TOTP secret for an identity that uses an
// authenticator app instead of emailed codes as its second factor. The secret
// is stored encrypted (AES-256-GCM).
type AuthenticatorSecret struct {
	ID              uuid.UUID
	UserID          uuid.UUID
	SecretEncrypted string
	CreatedAt       time.Time
	LastUsedAt      *time.Time
}
