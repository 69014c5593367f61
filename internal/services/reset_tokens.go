package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"ecommerce/internal/apperr"
	"ecommerce/internal/logger"
	"ecommerce/internal/models"
	"ecommerce/internal/repository"
	"encoding/base64"
	"errors"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultResetTokenTTL = 5 * time.Minute
	resetTokenBytes      = 32
)

type PasswordResetRepo interface {
	Create(ctx context.Context, t *models.PasswordResetToken) error
	Redeem(ctx context.Context, tokenHash string, check repository.RedeemCheck, passwordHash string) error
}

// ResetTokenStore issues and redeems single-use password reset tokens.
//
// A token is either issued, redeemed or expired. Expiry is not a stored state:
// it is evaluated against the clock when the token is redeemed.
type ResetTokenStore struct {
	repo PasswordResetRepo
	ttl  time.Duration
	now  func() time.Time
}

func NewResetTokenStore(repo PasswordResetRepo, ttl time.Duration) *ResetTokenStore {
	if ttl <= 0 {
		ttl = DefaultResetTokenTTL
	}
	return &ResetTokenStore{repo: repo, ttl: ttl, now: time.Now}
}

func (s *ResetTokenStore) WithClock(now func() time.Time) *ResetTokenStore {
	if now != nil {
		s.now = now
	}
	return s
}

func (s *ResetTokenStore) TTL() time.Duration { return s.ttl }

// Issue creates a new token for user and returns the raw value. Only its hash
// is persisted. Earlier tokens of the same user stay valid.
func (s *ResetTokenStore) Issue(ctx context.Context, user *models.User) (string, error) {
	raw := make([]byte, resetTokenBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	token := base64.RawURLEncoding.EncodeToString(raw)

	rec := &models.PasswordResetToken{
		UserID:    user.ID,
		TokenHash: hashResetToken(token),
		ExpiresAt: s.now().UTC().Add(s.ttl),
	}
	if err := s.repo.Create(ctx, rec); err != nil {
		return "", err
	}

	logger.WithCtx(ctx).Info("Password reset token issued",
		zap.Int64("user_id", user.ID),
		zap.Time("expires_at", rec.ExpiresAt),
	)
	return token, nil
}

// Redeem consumes token and sets the owner's password hash in one transaction.
// A value that Issue could not have produced is InvalidToken; a well-formed
// token with no record is NotFound.
func (s *ResetTokenStore) Redeem(ctx context.Context, token, newPasswordHash string) error {
	if !wellFormedResetToken(token) {
		return apperr.ErrInvalidToken
	}

	err := s.repo.Redeem(ctx, hashResetToken(token), func(t *models.PasswordResetToken) error {
		if t.Used {
			return apperr.ErrAlreadyUsed
		}
		if t.IsExpired(s.now()) {
			return apperr.ErrExpired
		}
		return nil
	}, newPasswordHash)

	var appErr *apperr.Error
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return apperr.New(apperr.KindNotFound, "invalid reset token")
	case errors.As(err, &appErr):
		return appErr
	default:
		return apperr.Internal(err)
	}
}

func wellFormedResetToken(token string) bool {
	if len(token) != base64.RawURLEncoding.EncodedLen(resetTokenBytes) {
		return false
	}
	_, err := base64.RawURLEncoding.Strict().DecodeString(token)
	return err == nil
}

func hashResetToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
