package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/courseloop/courseloop-auth/pkg/domain"
)

// AuthenticatorSecretsRepository reads enrolled TOTP secrets. Enrollment is
// owned by the surrounding platform; this subsystem only verifies against
// the stored secret.
type AuthenticatorSecretsRepository struct {
	db *sql.DB
}

// NewAuthenticatorSecretsRepository creates a new authenticator secrets repository.
func NewAuthenticatorSecretsRepository(db *sql.DB) *AuthenticatorSecretsRepository {
	return &AuthenticatorSecretsRepository{db: db}
}

// GetByUserID retrieves the enrolled secret for a user.
func (r *AuthenticatorSecretsRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.AuthenticatorSecret, error) {
	query := `
		SELECT id, user_id, secret_encrypted, created_at, last_used_at
		FROM authenticator_secrets
		WHERE user_id = $1
	`
	secret := &domain.AuthenticatorSecret{}
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&secret.ID, &secret.UserID, &secret.SecretEncrypted,
		&secret.CreatedAt, &secret.LastUsedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrAuthenticatorNotEnrolled
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get authenticator secret: %w", err)
	}
	return secret, nil
}

// UpdateLastUsed stamps the secret after a successful verification.
func (r *AuthenticatorSecretsRepository) UpdateLastUsed(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE authenticator_secrets
		SET last_used_at = NOW()
		WHERE id = $1
	`
	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to update authenticator secret last used: %w", err)
	}
	return nil
}
