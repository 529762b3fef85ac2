package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/courseloop/courseloop-auth/pkg/domain"
)

// VerificationTokensRepository persists email verification tokens, one
// active row per email.
type VerificationTokensRepository struct {
	db *sql.DB
}

// NewVerificationTokensRepository creates a new verification tokens repository.
func NewVerificationTokensRepository(db *sql.DB) *VerificationTokensRepository {
	return &VerificationTokensRepository{db: db}
}

// Upsert replaces any existing token for the email in a single statement,
// so two concurrent re-issues never leave two simultaneously valid tokens.
func (r *VerificationTokensRepository) Upsert(ctx context.Context, token *domain.VerificationToken) error {
	query := `
		INSERT INTO verification_tokens (email, token, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (email) DO UPDATE
		SET token = EXCLUDED.token, expires_at = EXCLUDED.expires_at
	`
	_, err := r.db.ExecContext(ctx, query, token.Email, token.Token, token.ExpiresAt)
	return err
}

// Consume deletes the token and returns its email if it is unexpired at now.
// The delete is conditional on expiry, so two concurrent submissions of the
// same token cannot both succeed. Expired rows are left for the sweep.
func (r *VerificationTokensRepository) Consume(ctx context.Context, token string, now time.Time) (string, error) {
	query := `
		DELETE FROM verification_tokens
		WHERE token = $1 AND expires_at > $2
		RETURNING email
	`
	var email string
	err := r.db.QueryRowContext(ctx, query, token, now).Scan(&email)
	if errors.Is(err, sql.ErrNoRows) {
		return "", r.classifyMiss(ctx, token)
	}
	if err != nil {
		return "", err
	}
	return email, nil
}

// classifyMiss distinguishes a token that never existed (or was already
// consumed) from one that is present but expired.
func (r *VerificationTokensRepository) classifyMiss(ctx context.Context, token string) error {
	query := `SELECT 1 FROM verification_tokens WHERE token = $1`
	var one int
	err := r.db.QueryRowContext(ctx, query, token).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrVerificationTokenInvalid
	}
	if err != nil {
		return err
	}
	return domain.ErrVerificationTokenExpired
}

// GetByEmail retrieves the active token for an email, if any.
func (r *VerificationTokensRepository) GetByEmail(ctx context.Context, email string) (*domain.VerificationToken, error) {
	query := `
		SELECT email, token, expires_at
		FROM verification_tokens
		WHERE email = $1
	`
	token := &domain.VerificationToken{}
	err := r.db.QueryRowContext(ctx, query, email).Scan(&token.Email, &token.Token, &token.ExpiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrVerificationTokenInvalid
	}
	if err != nil {
		return nil, err
	}
	return token, nil
}

// DeleteExpired removes tokens past expiry. Meant for an out-of-band sweep;
// consumption never treats them as valid either way.
func (r *VerificationTokensRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	query := `DELETE FROM verification_tokens WHERE expires_at <= $1`
	result, err := r.db.ExecContext(ctx, query, now)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
