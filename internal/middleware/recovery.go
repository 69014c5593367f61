package middleware

import (
	"net/http"
	"runtime/debug"

	"ecommerce/internal/apperr"
	"ecommerce/internal/logger"
	"ecommerce/internal/utils/helpers"

	"go.uber.org/zap"
)

// Recoverer turns a handler panic into an INTERNAL error response.
// http.ErrAbortHandler is re-raised so net/http can abort the connection.
func Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}

			logger.WithCtx(r.Context()).Error("Panic recovered",
				zap.Any("panic", rec),
				zap.ByteString("stack", debug.Stack()),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
			)
			helpers.AppError(w, apperr.Internal(nil))
		}()
		next.ServeHTTP(w, r)
	})
}
