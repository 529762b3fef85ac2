package auth

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"

	"github.com/courseloop/courseloop-auth/pkg/domain"
)

const (
	// TwoFactorCodeDigits is the width of emailed second-factor codes.
	// Authenticator apps produce the same width.
	TwoFactorCodeDigits = 6

	// DefaultTwoFactorCodeTTL is the validity horizon for emailed codes.
	// Strictly shorter than the verification token TTL.
	DefaultTwoFactorCodeTTL = 5 * time.Minute

	// TOTP parameters
	totpPeriod = 30
	totpWindow = 1 // Allow ±30 seconds clock drift
)

// TwoFactorMethod identifies the channel a second factor is checked against.
type TwoFactorMethod int

const (
	// MethodEmail delivers a random code to the identity's address.
	MethodEmail TwoFactorMethod = iota
	// MethodAuthenticator verifies against an enrolled TOTP secret; nothing
	// is delivered.
	MethodAuthenticator
)

// CodeStore holds the active emailed code per email address. Both operations
// are atomic so concurrent attempts for one address never observe two valid
// codes or consume the same code twice.
type CodeStore interface {
	Replace(ctx context.Context, code *domain.TwoFactorCode) error
	Consume(ctx context.Context, email, code string, now time.Time) (domain.TwoFactorOutcome, error)
}

// AuthenticatorSecretStore reads enrolled TOTP secrets. Enrollment itself is
// owned by the surrounding platform.
type AuthenticatorSecretStore interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.AuthenticatorSecret, error)
	UpdateLastUsed(ctx context.Context, id uuid.UUID) error
}

// TwoFactorConfig holds two-factor service settings.
type TwoFactorConfig struct {
	CodeTTL time.Duration
	// EncryptionKey decrypts stored authenticator secrets (32 bytes,
	// AES-256-GCM). Empty disables the authenticator path.
	EncryptionKey []byte
}

// TwoFactorService issues and verifies single-use second-factor codes. State
// lives entirely in the code store keyed by email, which is what lets the
// challenge and the code submission arrive as independent stateless requests.
type TwoFactorService struct {
	config  TwoFactorConfig
	codes   CodeStore
	secrets AuthenticatorSecretStore
	now     func() time.Time
}

// NewTwoFactorService creates a new two-factor service. secrets may be nil
// when no authenticator enrollment exists in the deployment.
func NewTwoFactorService(config TwoFactorConfig, codes CodeStore, secrets AuthenticatorSecretStore) *TwoFactorService {
	if config.CodeTTL == 0 {
		config.CodeTTL = DefaultTwoFactorCodeTTL
	}
	return &TwoFactorService{
		config:  config,
		codes:   codes,
		secrets: secrets,
		now:     time.Now,
	}
}

// Method reports which second-factor channel applies to the identity.
func (s *TwoFactorService) Method(ctx context.Context, identity *domain.Identity) (TwoFactorMethod, error) {
	if s.secrets == nil || len(s.config.EncryptionKey) == 0 {
		return MethodEmail, nil
	}
	_, err := s.secrets.GetByUserID(ctx, identity.ID)
	if errors.Is(err, domain.ErrAuthenticatorNotEnrolled) {
		return MethodEmail, nil
	}
	if err != nil {
		return MethodEmail, err
	}
	return MethodAuthenticator, nil
}

// Issue generates a fresh emailed code for the address, replacing any
// existing one. It does not send mail.
func (s *TwoFactorService) Issue(ctx context.Context, email string) (*domain.TwoFactorCode, error) {
	raw, err := GenerateNumericCode(TwoFactorCodeDigits)
	if err != nil {
		return nil, fmt.Errorf("failed to generate two-factor code: %w", err)
	}

	code := &domain.TwoFactorCode{
		Code:      raw,
		Email:     email,
		ExpiresAt: s.now().Add(s.config.CodeTTL),
	}
	if err := s.codes.Replace(ctx, code); err != nil {
		return nil, fmt.Errorf("failed to store two-factor code: %w", err)
	}
	return code, nil
}

// Verify checks a submitted code. For emailed codes the check-and-delete is
// atomic: only the correct, unexpired code is consumed; mismatch and expiry
// leave the stored code in place so the user can retry until expiry.
func (s *TwoFactorService) Verify(ctx context.Context, identity *domain.Identity, submitted string) (domain.TwoFactorOutcome, error) {
	method, err := s.Method(ctx, identity)
	if err != nil {
		return domain.TwoFactorNotFound, err
	}
	if method == MethodAuthenticator {
		return s.verifyAuthenticator(ctx, identity.ID, submitted)
	}
	return s.codes.Consume(ctx, identity.Email, submitted, s.now())
}

func (s *TwoFactorService) verifyAuthenticator(ctx context.Context, userID uuid.UUID, submitted string) (domain.TwoFactorOutcome, error) {
	secret, err := s.secrets.GetByUserID(ctx, userID)
	if err != nil {
		return domain.TwoFactorNotFound, err
	}

	decrypted, err := decryptSecret(secret.SecretEncrypted, s.config.EncryptionKey)
	if err != nil {
		return domain.TwoFactorNotFound, fmt.Errorf("failed to decrypt authenticator secret: %w", err)
	}

	valid, err := totp.ValidateCustom(submitted, decrypted, s.now(), totp.ValidateOpts{
		Period:    totpPeriod,
		Skew:      totpWindow,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	if err != nil {
		return domain.TwoFactorNotFound, fmt.Errorf("failed to validate authenticator code: %w", err)
	}
	if !valid {
		return domain.TwoFactorMismatch, nil
	}

	if err := s.secrets.UpdateLastUsed(ctx, secret.ID); err != nil {
		return domain.TwoFactorNotFound, fmt.Errorf("failed to update last used: %w", err)
	}
	return domain.TwoFactorValid, nil
}

func decryptSecret(encrypted string, key []byte) (string, error) {
	ciphertext, err := base64.StdEncoding.DecodeString(encrypted)
	if err != nil {
		return "", fmt.Errorf("failed to decode ciphertext: %w", err)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", fmt.Errorf("failed to create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("failed to create GCM: %w", err)
	}

	if len(ciphertext) < gcm.NonceSize() {
		return "", errors.New("ciphertext too short")
	}

	nonce, ciphertext := ciphertext[:gcm.NonceSize()], ciphertext[gcm.NonceSize():]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt: %w", err)
	}

	return string(plaintext), nil
}
