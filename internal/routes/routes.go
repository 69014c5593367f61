package routes

import (
	"net/http"

	"ecommerce/internal/apperr"
	"ecommerce/internal/handlers"
	"ecommerce/internal/middleware"
	"ecommerce/internal/models"
	"ecommerce/internal/utils/helpers"

	"github.com/gorilla/mux"
)

// Guard is what the protected routes need from the auth service.
type Guard interface {
	middleware.CurrentUserResolver
	middleware.RoleGuard
}

// InitRoutes registers every route on the root router. mux only reports 405
// for method mismatches among the root's own routes, so subrouters are not used;
// guards are applied per route instead.
func InitRoutes(
	router *mux.Router,
	guard Guard,
	authHandler *handlers.AuthHandler,
	logsHandler *handlers.AdminLogsHandler,
) {
	router.Use(middleware.RequestID, middleware.Recoverer, middleware.Logging)

	// router.Use does not run when nothing matches.
	router.NotFoundHandler = middleware.RequestID(middleware.Logging(http.HandlerFunc(notFound)))
	router.MethodNotAllowedHandler = middleware.RequestID(middleware.Logging(http.HandlerFunc(methodNotAllowed)))

	authed := func(h http.HandlerFunc) http.Handler {
		return middleware.JWTAuth(guard)(h)
	}
	adminOnly := func(h http.HandlerFunc) http.Handler {
		return middleware.JWTAuth(guard)(middleware.OnlyRole(guard, models.RoleAdmin)(h))
	}

	router.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		helpers.JSON(w, http.StatusOK, map[string]string{"message": "E-commerce auth API is running"})
	}).Methods(http.MethodGet)

	// --- Public ---
	router.HandleFunc("/api/auth/signup", authHandler.Signup).Methods(http.MethodPost)
	router.HandleFunc("/api/auth/signin", authHandler.Signin).Methods(http.MethodPost)
	router.HandleFunc("/api/auth/forgot-password", authHandler.ForgotPassword).Methods(http.MethodPost)
	router.HandleFunc("/api/auth/reset-password", authHandler.ResetPassword).Methods(http.MethodPost)
	router.HandleFunc("/api/auth/refresh-token", authHandler.RefreshToken).Methods(http.MethodPost)

	// --- JWT ---
	router.Handle("/api/auth/me", authed(authHandler.Me)).Methods(http.MethodGet)

	// --- Admin ---
	router.Handle("/api/admin/users/{id:[0-9]+}", adminOnly(authHandler.GetUserByID)).Methods(http.MethodGet)
	router.Handle("/api/admin/logs", adminOnly(logsHandler.GetLogs)).Methods(http.MethodGet)
}

func notFound(w http.ResponseWriter, r *http.Request) {
	helpers.Error(w, http.StatusNotFound, apperr.KindNotFound, "route not found")
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	helpers.Error(w, http.StatusMethodNotAllowed, apperr.KindMethodNotAllowed, "method not allowed")
}
