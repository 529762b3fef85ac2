package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/courseloop/courseloop-auth/pkg/domain"
)

const (
	verificationTokenBytes = 32

	// DefaultVerificationTokenTTL is the validity horizon for email
	// verification tokens.
	DefaultVerificationTokenTTL = time.Hour
)

// VerificationTokenStore persists verification tokens with atomic per-email
// replacement and atomic conditional consumption.
type VerificationTokenStore interface {
	// Upsert replaces any existing token for the email in one statement.
	Upsert(ctx context.Context, token *domain.VerificationToken) error
	// Consume deletes the token and returns its email if it exists and is
	// unexpired at now. Missing tokens yield ErrVerificationTokenInvalid,
	// expired-but-present ones ErrVerificationTokenExpired (left in place).
	Consume(ctx context.Context, token string, now time.Time) (string, error)
}

// VerificationConfig holds verification token settings.
type VerificationConfig struct {
	TokenTTL time.Duration
}

// VerificationService issues and consumes single-use email verification
// tokens. At most one active token exists per email.
type VerificationService struct {
	config VerificationConfig
	tokens VerificationTokenStore
	now    func() time.Time
}

// NewVerificationService creates a new verification token service.
func NewVerificationService(config VerificationConfig, tokens VerificationTokenStore) *VerificationService {
	if config.TokenTTL == 0 {
		config.TokenTTL = DefaultVerificationTokenTTL
	}
	return &VerificationService{
		config: config,
		tokens: tokens,
		now:    time.Now,
	}
}

// Issue generates a fresh verification token for the email, replacing any
// existing one. It does not send mail.
func (s *VerificationService) Issue(ctx context.Context, email string) (*domain.VerificationToken, error) {
	raw, err := GenerateToken(verificationTokenBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to generate verification token: %w", err)
	}

	token := &domain.VerificationToken{
		Token:     raw,
		Email:     email,
		ExpiresAt: s.now().Add(s.config.TokenTTL),
	}
	if err := s.tokens.Upsert(ctx, token); err != nil {
		return nil, fmt.Errorf("failed to store verification token: %w", err)
	}
	return token, nil
}

// Consume exercises a verification token: on success the token is deleted
// and the subject email returned. Expiry is evaluated against the service
// clock at consumption time.
func (s *VerificationService) Consume(ctx context.Context, rawToken string) (string, error) {
	return s.tokens.Consume(ctx, rawToken, s.now())
}
