package middleware

import (
	"ecommerce/internal/models"
	"ecommerce/internal/utils/helpers"
	"net/http"
)

type RoleGuard interface {
	RequireRole(user *models.User, role string) (*models.User, error)
}

// OnlyRole must be mounted after JWTAuth.
func OnlyRole(guard RoleGuard, role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, _ := UserFromContext(r.Context())
			if _, err := guard.RequireRole(user, role); err != nil {
				helpers.AppError(w, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
