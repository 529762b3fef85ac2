package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/courseloop/courseloop-auth/pkg/domain"
)

// ConfirmationsRepository records passed two-factor challenges, at most one
// row per user. The session layer consumes the row after establishment.
type ConfirmationsRepository struct {
	db *sql.DB
}

// NewConfirmationsRepository creates a new confirmations repository.
func NewConfirmationsRepository(db *sql.DB) *ConfirmationsRepository {
	return &ConfirmationsRepository{db: db}
}

// GetByUserID retrieves the confirmation for a user, if any.
func (r *ConfirmationsRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.TwoFactorConfirmation, error) {
	query := `
		SELECT id, user_id
		FROM two_factor_confirmations
		WHERE user_id = $1
	`
	confirmation := &domain.TwoFactorConfirmation{}
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&confirmation.ID, &confirmation.UserID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrConfirmationNotFound
	}
	if err != nil {
		return nil, err
	}
	return confirmation, nil
}

// Replace deletes any existing confirmation for the user and creates a new
// one, in a transaction. Called only immediately after a valid two-factor
// verification.
func (r *ConfirmationsRepository) Replace(ctx context.Context, userID uuid.UUID) (*domain.TwoFactorConfirmation, error) {
	confirmation := &domain.TwoFactorConfirmation{
		ID:     uuid.New(),
		UserID: userID,
	}

	err := Tx(ctx, r.db, func(q Querier) error {
		if _, err := q.ExecContext(ctx,
			`DELETE FROM two_factor_confirmations WHERE user_id = $1`, userID); err != nil {
			return fmt.Errorf("failed to delete existing confirmation: %w", err)
		}
		if _, err := q.ExecContext(ctx,
			`INSERT INTO two_factor_confirmations (id, user_id) VALUES ($1, $2)`,
			confirmation.ID, confirmation.UserID); err != nil {
			return fmt.Errorf("failed to create confirmation: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return confirmation, nil
}

// DeleteByUserID removes the confirmation for a user. The session issuer
// calls this once the session has been established.
func (r *ConfirmationsRepository) DeleteByUserID(ctx context.Context, userID uuid.UUID) error {
	query := `DELETE FROM two_factor_confirmations WHERE user_id = $1`
	result, err := r.db.ExecContext(ctx, query, userID)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrConfirmationNotFound
	}
	return nil
}
