package domain

import "errors"

// Authentication errors
var (
	ErrIdentityNotFound   = errors.New("identity not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTwoFactorRequired  = errors.New("two-factor confirmation required")
)

// Verification token errors
var (
	ErrVerificationTokenInvalid = errors.New("invalid verification token")
	ErrVerificationTokenExpired = errors.New("verification token expired")
)

// Two-factor errors
var (
	ErrConfirmationNotFound     = errors.New("two-factor confirmation not found")
	ErrAuthenticatorNotEnrolled = errors.New("no authenticator secret enrolled")
)
