package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/chronicare/monitor-api/internal/repository"
	apperrors "github.com/chronicare/monitor-api/pkg/errors"
)

type tokenRepository struct {
	db *sqlx.DB
}

func NewTokenRepository(db *sqlx.DB) repository.TokenRepository {
	return &tokenRepository{db: db}
}

func (r *tokenRepository) CreateResetToken(ctx context.Context, userID uuid.UUID, token string, expiresAt time.Time) error {
	query := `
		INSERT INTO password_reset_tokens (token, user_id, expires_at, created_at)
		VALUES ($1, $2, $3, $4)
	`
	if _, err := r.db.ExecContext(ctx, query, token, userID, expiresAt, time.Now()); err != nil {
		return fmt.Errorf("failed to create reset token: %w", err)
	}
	return nil
}

func (r *tokenRepository) GetResetToken(ctx context.Context, token string) (uuid.UUID, error) {
	query := `SELECT user_id FROM password_reset_tokens WHERE token = $1 AND expires_at > $2`
	var userID uuid.UUID
	if err := r.db.GetContext(ctx, &userID, query, token, time.Now()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return uuid.Nil, apperrors.NotFound("reset token", err)
		}
		return uuid.Nil, fmt.Errorf("failed to get reset token: %w", err)
	}
	return userID, nil
}

func (r *tokenRepository) DeleteResetToken(ctx context.Context, token string) error {
	query := `DELETE FROM password_reset_tokens WHERE token = $1`
	if _, err := r.db.ExecContext(ctx, query, token); err != nil {
		return fmt.Errorf("failed to delete reset token: %w", err)
	}
	return nil
}
