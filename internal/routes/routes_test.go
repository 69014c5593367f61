package routes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"ecommerce/internal/apperr"
	"ecommerce/internal/handlers"
	"ecommerce/internal/models"
	"ecommerce/internal/services"
	"ecommerce/internal/utils/helpers"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubService struct{}

var users = map[string]*models.User{
	"user-token":  {ID: 1, Email: "user@example.com", Role: models.RoleUser},
	"admin-token": {ID: 2, Email: "admin@example.com", Role: models.RoleAdmin},
}

func (stubService) ResolveCurrentUser(_ context.Context, bearer string) (*models.User, error) {
	if u, ok := users[bearer]; ok {
		return u, nil
	}
	return nil, apperr.New(apperr.KindUnauthorized, "invalid or expired token")
}

func (stubService) RequireRole(user *models.User, role string) (*models.User, error) {
	if user == nil {
		return nil, apperr.ErrUnauthorized
	}
	if user.Role != role {
		return nil, apperr.ErrForbidden
	}
	return user, nil
}

func (stubService) Signup(context.Context, services.SignupInput) (*models.User, error) {
	return &models.User{ID: 3, Role: models.RoleUser}, nil
}

func (stubService) Signin(context.Context, string, string) (*models.TokenPair, error) {
	return &models.TokenPair{AccessToken: "a", RefreshToken: "r", TokenType: "bearer"}, nil
}

func (stubService) ForgotPassword(context.Context, string) error { return nil }

func (stubService) ResetPassword(context.Context, string, string) error { return nil }

func (stubService) Refresh(context.Context, string) (*models.TokenPair, error) {
	return &models.TokenPair{AccessToken: "a", RefreshToken: "r", TokenType: "bearer"}, nil
}

func (stubService) GetUserByID(_ context.Context, id int64) (*models.User, error) {
	for _, u := range users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, apperr.New(apperr.KindNotFound, "user not found")
}

func newRouter(t *testing.T) *mux.Router {
	r := mux.NewRouter()
	svc := stubService{}
	InitRoutes(r, svc, handlers.NewAuthHandler(svc), handlers.NewAdminLogsHandler(t.TempDir()))
	return r
}

func serve(r *mux.Router, method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestRoutes(t *testing.T) {
	r := newRouter(t)

	cases := []struct {
		name   string
		method string
		path   string
		token  string
		body   string
		status int
	}{
		{"banner", http.MethodGet, "/", "", "", http.StatusOK},
		{"signup", http.MethodPost, "/api/auth/signup", "", `{"name":"Bob","email":"bob@example.com","password":"Str0ng!pass"}`, http.StatusCreated},
		{"signin", http.MethodPost, "/api/auth/signin", "", `{"email":"bob@example.com","password":"x"}`, http.StatusOK},
		{"forgot", http.MethodPost, "/api/auth/forgot-password", "", `{"email":"bob@example.com"}`, http.StatusAccepted},
		{"reset", http.MethodPost, "/api/auth/reset-password", "", `{"token":"t","new_password":"Str0ng!pass"}`, http.StatusOK},
		{"refresh", http.MethodPost, "/api/auth/refresh-token", "", `{"refresh_token":"r"}`, http.StatusOK},
		{"me anonymous", http.MethodGet, "/api/auth/me", "", "", http.StatusUnauthorized},
		{"me", http.MethodGet, "/api/auth/me", "user-token", "", http.StatusOK},
		{"admin anonymous", http.MethodGet, "/api/admin/users/1", "", "", http.StatusUnauthorized},
		{"admin as user", http.MethodGet, "/api/admin/users/1", "user-token", "", http.StatusForbidden},
		{"admin user lookup", http.MethodGet, "/api/admin/users/1", "admin-token", "", http.StatusOK},
		{"admin missing user", http.MethodGet, "/api/admin/users/99", "admin-token", "", http.StatusNotFound},
		{"admin logs as user", http.MethodGet, "/api/admin/logs", "user-token", "", http.StatusForbidden},
		{"admin logs without file", http.MethodGet, "/api/admin/logs", "admin-token", "", http.StatusNotFound},
		{"wrong method", http.MethodGet, "/api/auth/signin", "", "", http.StatusMethodNotAllowed},
		{"wrong method on admin route", http.MethodDelete, "/api/admin/logs", "admin-token", "", http.StatusMethodNotAllowed},
		{"unknown path", http.MethodGet, "/api/nope", "", "", http.StatusNotFound},
		{"non-numeric user id", http.MethodGet, "/api/admin/users/abc", "admin-token", "", http.StatusNotFound},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			rec := serve(r, c.method, c.path, c.token, c.body)
			assert.Equal(t, c.status, rec.Code)
			assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			if rec.Code >= 400 {
				var body helpers.ErrorResponse
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
				assert.True(t, body.Error)
				assert.NotEmpty(t, body.Code)
				assert.NotEmpty(t, body.Message)
			}
		})
	}
}

func TestRoutes_MissesUseErrorEnvelope(t *testing.T) {
	r := newRouter(t)

	rec := serve(r, http.MethodGet, "/api/auth/signin", "", "")
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	var body helpers.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, string(apperr.KindMethodNotAllowed), body.Code)

	rec = serve(r, http.MethodGet, "/api/nope", "", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	body = helpers.ErrorResponse{}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, string(apperr.KindNotFound), body.Code)
}
