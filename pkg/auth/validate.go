package auth

import (
	"net/mail"
	"regexp"
	"strings"

	"github.com/courseloop/courseloop-auth/pkg/domain"
)

// Email validation regex (stricter than RFC 5322 for practical use)
var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9.!#$%&'*+/=?^_` + "`" + `{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$`)

var codeRegex = regexp.MustCompile(`^[0-9]+$`)

const maxEmailLength = 254 // RFC 5321

// ValidateLogin structurally validates a raw login submission before any
// store lookup. It returns the normalized request and false when any field
// is malformed; the caller must not touch the store on failure.
func ValidateLogin(email, password, code string) (domain.LoginRequest, bool) {
	email = NormalizeEmail(email)
	if email == "" || len(email) > maxEmailLength {
		return domain.LoginRequest{}, false
	}

	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return domain.LoginRequest{}, false
	}
	if !emailRegex.MatchString(email) {
		return domain.LoginRequest{}, false
	}

	if password == "" {
		return domain.LoginRequest{}, false
	}

	// An optional code must look like a code; anything else is a malformed
	// request, not a wrong code.
	code = strings.TrimSpace(code)
	if code != "" {
		if len(code) != TwoFactorCodeDigits || !codeRegex.MatchString(code) {
			return domain.LoginRequest{}, false
		}
	}

	return domain.LoginRequest{
		Email:    email,
		Password: password,
		Code:     code,
	}, true
}

// NormalizeEmail lowercases and trims an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
