package handlers

import (
	"context"
	"net/http"

	"ecommerce/internal/apperr"
	"ecommerce/internal/logger"
	"ecommerce/internal/middleware"
	"ecommerce/internal/models"
	"ecommerce/internal/services"
	"ecommerce/internal/utils/helpers"

	"go.uber.org/zap"
)

type AuthUseCase interface {
	Signup(ctx context.Context, in services.SignupInput) (*models.User, error)
	Signin(ctx context.Context, email, password string) (*models.TokenPair, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
	Refresh(ctx context.Context, refreshToken string) (*models.TokenPair, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
}

type AuthHandler struct {
	auth AuthUseCase
}

func NewAuthHandler(auth AuthUseCase) *AuthHandler {
	return &AuthHandler{auth: auth}
}

type messageResponse struct {
	Message string `json:"message"`
}

const forgotPasswordMessage = "If the email is registered, a password reset link has been sent."

// Signup godoc
// @Summary Register a new user
// @Tags auth
// @Accept json
// @Produce json
// @Param input body signupRequest true "Signup payload"
// @Success 201 {object} models.UserProfileResponse
// @Failure 409 {object} helpers.ErrorResponse "email already registered"
// @Failure 422 {object} helpers.ErrorResponse "validation error"
// @Router /api/auth/signup [post]
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	log := logger.WithCtx(r.Context())

	var req signupRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		log.Warn("Invalid signup payload", zap.Error(err))
		helpers.AppError(w, err)
		return
	}

	user, err := h.auth.Signup(r.Context(), services.SignupInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		helpers.AppError(w, err)
		return
	}

	helpers.JSON(w, http.StatusCreated, user.Profile())
}

// Signin godoc
// @Summary Sign in with email and password
// @Tags auth
// @Accept json
// @Produce json
// @Param input body signinRequest true "Credentials"
// @Success 200 {object} models.TokenPair
// @Failure 401 {object} helpers.ErrorResponse "invalid credentials"
// @Router /api/auth/signin [post]
func (h *AuthHandler) Signin(w http.ResponseWriter, r *http.Request) {
	var req signinRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		helpers.AppError(w, err)
		return
	}

	pair, err := h.auth.Signin(r.Context(), req.Email, req.Password)
	if err != nil {
		helpers.AppError(w, err)
		return
	}

	helpers.JSON(w, http.StatusOK, pair)
}

// ForgotPassword godoc
// @Summary Request a password reset link
// @Description The answer is the same whether or not the email is registered.
// @Tags auth
// @Accept json
// @Produce json
// @Param input body forgotPasswordRequest true "Account email"
// @Success 202 {object} messageResponse
// @Failure 422 {object} helpers.ErrorResponse "validation error"
// @Router /api/auth/forgot-password [post]
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		helpers.AppError(w, err)
		return
	}

	if err := h.auth.ForgotPassword(r.Context(), req.Email); err != nil {
		helpers.AppError(w, err)
		return
	}

	helpers.JSON(w, http.StatusAccepted, messageResponse{Message: forgotPasswordMessage})
}

// ResetPassword godoc
// @Summary Set a new password using a reset token
// @Tags auth
// @Accept json
// @Produce json
// @Param input body resetPasswordRequest true "Reset token and new password"
// @Success 200 {object} messageResponse
// @Failure 400 {object} helpers.ErrorResponse "token malformed, already used or expired"
// @Failure 404 {object} helpers.ErrorResponse "unknown token"
// @Router /api/auth/reset-password [post]
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		helpers.AppError(w, err)
		return
	}

	if err := h.auth.ResetPassword(r.Context(), req.Token, req.NewPassword); err != nil {
		helpers.AppError(w, err)
		return
	}

	helpers.JSON(w, http.StatusOK, messageResponse{Message: "Password reset successful"})
}

// RefreshToken godoc
// @Summary Exchange a refresh token for a new token pair
// @Tags auth
// @Accept json
// @Produce json
// @Param input body refreshTokenRequest true "Refresh token"
// @Success 200 {object} models.TokenPair
// @Failure 401 {object} helpers.ErrorResponse "invalid refresh token"
// @Router /api/auth/refresh-token [post]
func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req refreshTokenRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		helpers.AppError(w, err)
		return
	}

	pair, err := h.auth.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		helpers.AppError(w, err)
		return
	}

	helpers.JSON(w, http.StatusOK, pair)
}

// Me godoc
// @Summary Current user profile
// @Tags auth
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {object} models.UserProfileResponse
// @Failure 401 {object} helpers.ErrorResponse
// @Router /api/auth/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		helpers.AppError(w, apperr.ErrUnauthorized)
		return
	}
	helpers.JSON(w, http.StatusOK, user.Profile())
}
