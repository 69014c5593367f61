package middleware

import (
	"context"
	"ecommerce/internal/models"
)

type ctxKey string

const ContextUser ctxKey = "user"

func WithUser(ctx context.Context, u *models.User) context.Context {
	return context.WithValue(ctx, ContextUser, u)
}

// UserFromContext returns the user put there by JWTAuth.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	u, ok := ctx.Value(ContextUser).(*models.User)
	return u, ok && u != nil
}
