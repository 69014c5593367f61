package services

import (
	"context"
	"ecommerce/internal/apperr"
	"ecommerce/internal/logger"
	"ecommerce/internal/models"
	"ecommerce/internal/repository"
	"ecommerce/internal/utils"
	"errors"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type UserRepo interface {
	IsEmailTaken(ctx context.Context, email string) (bool, error)
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
}

// PasswordResetSender delivers a reset token to its owner out of band.
type PasswordResetSender interface {
	SendPasswordReset(ctx context.Context, to, token string) error
}

type AuthOptions struct {
	// RevealUnknownEmail makes ForgotPassword fail with NotFound for unknown
	// addresses instead of answering the same way for every input.
	RevealUnknownEmail bool
}

type AuthService struct {
	repo   UserRepo
	tokens *utils.TokenCodec
	resets *ResetTokenStore
	mailer PasswordResetSender
	opts   AuthOptions
}

func NewAuthService(repo UserRepo, tokens *utils.TokenCodec, resets *ResetTokenStore, mailer PasswordResetSender, opts AuthOptions) *AuthService {
	return &AuthService{
		repo:   repo,
		tokens: tokens,
		resets: resets,
		mailer: mailer,
		opts:   opts,
	}
}

type SignupInput struct {
	Name     string
	Email    string
	Password string
	Role     string
}

// NormalizeEmail is applied to every email before it reaches the store.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*models.User, error) {
	log := logger.WithCtx(ctx)
	email := NormalizeEmail(in.Email)
	log.Info("Signup (service)", zap.String("email", email))

	role := in.Role
	if role == "" {
		role = models.RoleUser
	}
	if !models.IsValidRole(role) {
		return nil, apperr.New(apperr.KindValidation, "unknown role")
	}

	taken, err := s.repo.IsEmailTaken(ctx, email)
	if err != nil {
		log.Error("Failed to check email (service)", zap.Error(err))
		return nil, apperr.Internal(err)
	}
	if taken {
		log.Warn("Email already registered (service)", zap.String("email", email))
		return nil, apperr.ErrConflict
	}

	hashed, err := hashPassword(in.Password)
	if err != nil {
		log.Warn("Failed to hash password", zap.Error(err))
		return nil, err
	}

	user := &models.User{
		Name:         strings.TrimSpace(in.Name),
		Email:        email,
		PasswordHash: hashed,
		Role:         role,
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return nil, apperr.ErrConflict
		}
		log.Error("Failed to create user (service)", zap.Error(err))
		return nil, apperr.Internal(err)
	}

	log.Info("User created (service)", zap.Int64("user_id", user.ID), zap.String("role", user.Role))
	return user, nil
}

// Signin answers Unauthorized for both an unknown email and a wrong password.
func (s *AuthService) Signin(ctx context.Context, email, password string) (*models.TokenPair, error) {
	log := logger.WithCtx(ctx)
	email = NormalizeEmail(email)

	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			log.Warn("Failed login attempt (service)", zap.String("email", email))
			return nil, apperr.ErrUnauthorized
		}
		log.Error("Failed to fetch user (service)", zap.Error(err))
		return nil, apperr.Internal(err)
	}

	if !utils.CheckPasswordHash(password, user.PasswordHash) {
		log.Warn("Failed login attempt (service)", zap.String("email", email))
		return nil, apperr.ErrUnauthorized
	}

	pair, err := s.issuePair(user.Email, user.Role)
	if err != nil {
		log.Error("Failed to mint tokens", zap.Error(err))
		return nil, apperr.Internal(err)
	}

	log.Info("Login successful (service)", zap.Int64("user_id", user.ID))
	return pair, nil
}

// ForgotPassword issues a reset token and hands it to the mailer. A delivery
// failure is logged and does not fail the call.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	log := logger.WithCtx(ctx)
	email = NormalizeEmail(email)

	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			log.Warn("Password reset requested for unknown email", zap.String("email", email))
			if s.opts.RevealUnknownEmail {
				return apperr.New(apperr.KindNotFound, "email not found")
			}
			return nil
		}
		log.Error("Failed to fetch user (service)", zap.Error(err))
		return apperr.Internal(err)
	}

	token, err := s.resets.Issue(ctx, user)
	if err != nil {
		log.Error("Failed to issue reset token", zap.Int64("user_id", user.ID), zap.Error(err))
		return apperr.Internal(err)
	}

	if err := s.mailer.SendPasswordReset(ctx, user.Email, token); err != nil {
		log.Error("Failed to dispatch reset email", zap.Int64("user_id", user.ID), zap.Error(err))
		return nil
	}

	log.Info("Reset email dispatched", zap.Int64("user_id", user.ID))
	return nil
}

func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	log := logger.WithCtx(ctx)

	hashed, err := hashPassword(newPassword)
	if err != nil {
		log.Warn("Failed to hash password", zap.Error(err))
		return err
	}

	if err := s.resets.Redeem(ctx, token, hashed); err != nil {
		log.Warn("Password reset rejected", zap.String("kind", string(apperr.KindOf(err))), zap.Error(err))
		return err
	}

	log.Info("Password reset successfully")
	return nil
}

// Refresh mints a new pair from a refresh token. The subject must still exist
// and the new tokens carry its current role, not the one in the old token.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*models.TokenPair, error) {
	log := logger.WithCtx(ctx)

	claims, err := s.tokens.DecodeAs(refreshToken, utils.TokenTypeRefresh)
	if err != nil {
		log.Warn("Invalid refresh token")
		return nil, apperr.New(apperr.KindUnauthorized, "invalid refresh token")
	}

	user, err := s.repo.GetUserByEmail(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			log.Warn("Refresh for missing user", zap.String("email", claims.Subject))
			return nil, apperr.New(apperr.KindUnauthorized, "invalid refresh token")
		}
		return nil, apperr.Internal(err)
	}
	if user.Role != claims.Role {
		log.Info("Role changed since token was issued", zap.Int64("user_id", user.ID),
			zap.String("token_role", claims.Role), zap.String("role", user.Role))
	}

	pair, err := s.issuePair(user.Email, user.Role)
	if err != nil {
		log.Error("Failed to mint tokens", zap.Error(err))
		return nil, apperr.Internal(err)
	}
	return pair, nil
}

// ResolveCurrentUser maps an access token to the user it was issued for.
func (s *AuthService) ResolveCurrentUser(ctx context.Context, bearer string) (*models.User, error) {
	claims, err := s.tokens.DecodeAs(bearer, utils.TokenTypeAccess)
	if err != nil {
		return nil, apperr.New(apperr.KindUnauthorized, "invalid or expired token")
	}

	user, err := s.repo.GetUserByEmail(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.New(apperr.KindUnauthorized, "invalid or expired token")
		}
		logger.WithCtx(ctx).Error("Failed to fetch user (service)", zap.Error(err))
		return nil, apperr.Internal(err)
	}
	return user, nil
}

func (s *AuthService) RequireRole(user *models.User, role string) (*models.User, error) {
	if user == nil {
		return nil, apperr.ErrUnauthorized
	}
	if user.Role != role {
		return nil, apperr.ErrForbidden
	}
	return user, nil
}

func (s *AuthService) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	logger.WithCtx(ctx).Info("Fetching user by ID (service)", zap.Int64("target_id", id))
	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.New(apperr.KindNotFound, "user not found")
		}
		return nil, apperr.Internal(err)
	}
	return user, nil
}

func hashPassword(password string) (string, error) {
	hashed, err := utils.HashPassword(password)
	switch {
	case err == nil:
		return hashed, nil
	case errors.Is(err, utils.ErrEmptyPassword), errors.Is(err, bcrypt.ErrPasswordTooLong):
		return "", apperr.New(apperr.KindValidation, "password must be 1 to 72 bytes long")
	default:
		return "", apperr.Internal(err)
	}
}

func (s *AuthService) issuePair(subject, role string) (*models.TokenPair, error) {
	access, err := s.tokens.MintAccess(subject, role)
	if err != nil {
		return nil, err
	}
	refresh, err := s.tokens.MintRefresh(subject, role)
	if err != nil {
		return nil, err
	}
	return &models.TokenPair{AccessToken: access, RefreshToken: refresh, TokenType: "bearer"}, nil
}
