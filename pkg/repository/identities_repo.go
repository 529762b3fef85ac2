package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/courseloop/courseloop-auth/pkg/domain"
)

// IdentitiesRepository reads authentication records owned by the surrounding
// platform. The only write this subsystem performs is marking an email
// verified when its verification token is consumed.
type IdentitiesRepository struct {
	db *sql.DB
}

// NewIdentitiesRepository creates a new identities repository.
func NewIdentitiesRepository(db *sql.DB) *IdentitiesRepository {
	return &IdentitiesRepository{db: db}
}

// FindByEmail retrieves an identity by email.
func (r *IdentitiesRepository) FindByEmail(ctx context.Context, email string) (*domain.Identity, error) {
	query := `
		SELECT id, email, password_hash, email_verified_at, two_factor_enabled, created_at, updated_at
		FROM identities
		WHERE email = $1
	`
	identity := &domain.Identity{}
	err := r.db.QueryRowContext(ctx, query, email).Scan(
		&identity.ID, &identity.Email, &identity.PasswordHash,
		&identity.EmailVerifiedAt, &identity.TwoFactorEnabled,
		&identity.CreatedAt, &identity.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrIdentityNotFound
	}
	if err != nil {
		return nil, err
	}
	return identity, nil
}

// MarkEmailVerified stamps the identity's email as confirmed. The email may
// differ from the login email when the user changed addresses; verification
// tokens carry the address they were issued for.
func (r *IdentitiesRepository) MarkEmailVerified(ctx context.Context, email string) error {
	query := `
		UPDATE identities
		SET email_verified_at = NOW(), updated_at = NOW()
		WHERE email = $1
	`
	result, err := r.db.ExecContext(ctx, query, email)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrIdentityNotFound
	}
	return nil
}
