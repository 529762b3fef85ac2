// Package session is the concrete session-issuer collaborator the login
// orchestrator hands off to. It re-checks credentials, consumes the
// two-factor confirmation when one is required, and mints the access token.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/courseloop/courseloop-auth/pkg/auth"
	"github.com/courseloop/courseloop-auth/pkg/domain"
)

// DefaultAccessTokenTTL is the default access token lifetime.
const DefaultAccessTokenTTL = 15 * time.Minute

// IdentityReader looks up authentication records.
type IdentityReader interface {
	FindByEmail(ctx context.Context, email string) (*domain.Identity, error)
}

// ConfirmationLedger reads and consumes two-factor confirmations.
type ConfirmationLedger interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.TwoFactorConfirmation, error)
	DeleteByUserID(ctx context.Context, userID uuid.UUID) error
}

// Config holds session issuance settings.
type Config struct {
	JWTSecret      []byte
	Issuer         string
	AccessTokenTTL time.Duration
}

// Service establishes authenticated sessions.
type Service struct {
	config        Config
	identities    IdentityReader
	confirmations ConfirmationLedger
	now           func() time.Time
}

// NewService creates a new session issuer.
func NewService(config Config, identities IdentityReader, confirmations ConfirmationLedger) *Service {
	if config.AccessTokenTTL == 0 {
		config.AccessTokenTTL = DefaultAccessTokenTTL
	}
	return &Service{
		config:        config,
		identities:    identities,
		confirmations: confirmations,
		now:           time.Now,
	}
}

// AccessTokenClaims are the claims carried by an access token.
type AccessTokenClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email,omitempty"`
}

// Establish verifies the credentials and returns a session. Unknown email,
// missing password capability and wrong password all surface as
// ErrInvalidCredentials; store failures propagate wrapped. Identities with
// two-factor enabled must hold a confirmation row, which is deleted as part
// of establishment.
func (s *Service) Establish(ctx context.Context, email, password, redirectTo string) (*domain.SessionData, error) {
	identity, err := s.identities.FindByEmail(ctx, email)
	if errors.Is(err, domain.ErrIdentityNotFound) {
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("identity lookup: %w", err)
	}
	if !identity.CanPasswordLogin() {
		return nil, domain.ErrInvalidCredentials
	}
	if !auth.VerifyPassword(password, *identity.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}

	if identity.TwoFactorEnabled {
		confirmation, err := s.confirmations.GetByUserID(ctx, identity.ID)
		if errors.Is(err, domain.ErrConfirmationNotFound) {
			return nil, domain.ErrTwoFactorRequired
		}
		if err != nil {
			return nil, fmt.Errorf("confirmation lookup: %w", err)
		}
		if err := s.confirmations.DeleteByUserID(ctx, confirmation.UserID); err != nil {
			return nil, fmt.Errorf("failed to consume two-factor confirmation: %w", err)
		}
	}

	now := s.now()
	claims := AccessTokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.ID.String(),
			Issuer:    s.config.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.config.AccessTokenTTL)),
			ID:        uuid.NewString(),
		},
		Email: identity.Email,
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.config.JWTSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}

	return &domain.SessionData{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int(s.config.AccessTokenTTL.Seconds()),
		RedirectTo:  redirectTo,
	}, nil
}
