package middleware

import (
	"context"
	"ecommerce/internal/apperr"
	"ecommerce/internal/logger"
	"ecommerce/internal/models"
	"ecommerce/internal/reqctx"
	"ecommerce/internal/utils/helpers"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

type CurrentUserResolver interface {
	ResolveCurrentUser(ctx context.Context, bearer string) (*models.User, error)
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
func BearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(authHeader, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// JWTAuth resolves the bearer token to a user and stores it in the request
// context for handlers and OnlyRole.
func JWTAuth(auth CurrentUserResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			token, ok := BearerToken(r)
			if !ok {
				logger.WithCtx(r.Context()).Warn("JWTAuth: missing access token")
				helpers.Error(w, http.StatusUnauthorized, apperr.KindUnauthorized, "missing access token")
				return
			}

			user, err := auth.ResolveCurrentUser(r.Context(), token)
			if err != nil {
				logger.WithCtx(r.Context()).Warn("JWTAuth: token rejected", zap.Error(err))
				helpers.AppError(w, err)
				return
			}

			ctx := WithUser(r.Context(), user)
			ctx = reqctx.WithUserID(ctx, user.ID)

			logger.WithCtx(ctx).Debug("JWTAuth: token valid", zap.String("role", user.Role))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
