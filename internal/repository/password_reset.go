package repository

import (
	"context"
	"ecommerce/internal/logger"
	"ecommerce/internal/models"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type PasswordResetRepository struct {
	db *pgxpool.Pool
}

func NewPasswordResetRepository(db *pgxpool.Pool) *PasswordResetRepository {
	return &PasswordResetRepository{db: db}
}

// RedeemCheck inspects a locked token row and returns a non-nil error to abort
// the redemption.
type RedeemCheck func(t *models.PasswordResetToken) error

func (r *PasswordResetRepository) Create(ctx context.Context, t *models.PasswordResetToken) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO password_reset_tokens (user_id, token_hash, expires_at, used)
		 VALUES ($1, $2, $3, false)
		 RETURNING id, created_at`,
		t.UserID, t.TokenHash, t.ExpiresAt.UTC(),
	).Scan(&t.ID, &t.CreatedAt)
	if err != nil {
		logger.Log.Error("Create reset token failed", zap.Error(err), zap.Int64("user_id", t.UserID))
	}
	return err
}

// Redeem locks the token row, runs check, then marks the token used and sets
// the owner's password hash. All of it commits together or not at all.
func (r *PasswordResetRepository) Redeem(ctx context.Context, tokenHash string, check RedeemCheck, passwordHash string) (err error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				logger.Log.Error("Rollback of reset redemption failed", zap.Error(rbErr))
			}
		}
	}()

	var t models.PasswordResetToken
	err = tx.QueryRow(ctx, `
		SELECT id, user_id, token_hash, expires_at, used, created_at
		FROM password_reset_tokens
		WHERE token_hash = $1
		FOR UPDATE
	`, tokenHash).Scan(&t.ID, &t.UserID, &t.TokenHash, &t.ExpiresAt, &t.Used, &t.CreatedAt)
	if err != nil {
		err = notFound(err)
		return err
	}

	if err = check(&t); err != nil {
		return err
	}

	if _, err = tx.Exec(ctx, `UPDATE password_reset_tokens SET used = true WHERE id = $1`, t.ID); err != nil {
		return fmt.Errorf("mark token used: %w", err)
	}

	tag, err := tx.Exec(ctx, `UPDATE users SET password_hash = $1, updated_at = now() WHERE id = $2`, passwordHash, t.UserID)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if tag.RowsAffected() != 1 {
		err = ErrNotFound
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
