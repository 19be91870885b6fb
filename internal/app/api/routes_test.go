package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/magabrotheeeer/zecko/internal/config"
	"github.com/magabrotheeeer/zecko/internal/grpc/authpb"
	"github.com/magabrotheeeer/zecko/internal/models"
)

// fakeAuth хранит одного пользователя и выданные токены в памяти.
type fakeAuth struct {
	tokens map[string]*models.Profile
}

func newFakeAuth() *fakeAuth {
	return &fakeAuth{tokens: map[string]*models.Profile{
		"admin-token": {ID: "a1", UserType: models.RoleAdmin},
	}}
}

func (f *fakeAuth) Login(_ context.Context, identifier, password string) (*authpb.AuthResponse, error) {
	if identifier != "a@b.com" || password != "password123" {
		return nil, status.Error(codes.Unauthenticated, "invalid credentials")
	}
	p := &models.Profile{ID: "1", Email: "a@b.com", UserType: models.RoleVendor}
	f.tokens["tok-1"] = p
	return &authpb.AuthResponse{Token: "tok-1", ExpiresAt: time.Now().Add(time.Hour).Unix(), User: p}, nil
}

func (f *fakeAuth) Register(context.Context, *authpb.RegisterRequest) (*authpb.AuthResponse, error) {
	return nil, status.Error(codes.AlreadyExists, "user with this email or username already exists")
}

func (f *fakeAuth) Logout(_ context.Context, token string) error {
	delete(f.tokens, token)
	return nil
}

func (f *fakeAuth) ListUsers(context.Context, int, int) ([]*models.Profile, error) {
	return []*models.Profile{{ID: "1"}}, nil
}

func (f *fakeAuth) ValidateToken(_ context.Context, token string) (*models.Profile, error) {
	p, ok := f.tokens[token]
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "invalid token")
	}
	return p, nil
}

func newRouter(t *testing.T, transport string) http.Handler {
	t.Helper()
	cfg := &config.Config{
		Auth:      config.Auth{Transport: transport, CookieName: "zecko_session"},
		RateLimit: config.RateLimit{RPS: 100, Burst: 100},
	}
	r := chi.NewRouter()
	RegisterRoutes(r, slog.New(slog.NewTextHandler(io.Discard, nil)), cfg, newFakeAuth(), nil, prometheus.NewRegistry())
	return r
}

func do(t *testing.T, h http.Handler, method, path, body string, prepare func(*http.Request)) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if prepare != nil {
		prepare(req)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRoutes_TokenFlow(t *testing.T) {
	h := newRouter(t, config.TransportToken)

	rec := do(t, h, http.MethodPost, "/api/login", `{"email":"a@b.com","password":"wrongpass"}`, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"status":"Error","message":"Invalid credentials"}`, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/api/user", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/login", `{"email":"a@b.com","password":"password123"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var login struct {
		Token string          `json:"token"`
		User  *models.Profile `json:"user"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&login))
	require.Equal(t, "tok-1", login.Token)
	bearer := func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+login.Token) }

	rec = do(t, h, http.MethodGet, "/api/user", "", bearer)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"userType":"vendor"`)

	rec = do(t, h, http.MethodGet, "/api/auth/verify", "", bearer)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"authenticated":true`)

	rec = do(t, h, http.MethodGet, "/api/admin/users", "", bearer)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/logout", "", bearer)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/auth/verify", "", bearer)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"authenticated":false}`, rec.Body.String())
}

func TestRoutes_CookieFlow(t *testing.T) {
	h := newRouter(t, config.TransportCookie)

	rec := do(t, h, http.MethodPost, "/api/login", `{"email":"a@b.com","password":"password123"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "token")
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	session := cookies[0]

	// bearer игнорируется в режиме cookie
	rec = do(t, h, http.MethodGet, "/api/user", "", func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer tok-1")
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/user", "", func(r *http.Request) { r.AddCookie(session) })
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/logout", "", func(r *http.Request) { r.AddCookie(session) })
	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, rec.Result().Cookies(), 1)
	assert.Equal(t, -1, rec.Result().Cookies()[0].MaxAge)
}

func TestRoutes_AdminAndMisc(t *testing.T) {
	h := newRouter(t, config.TransportToken)

	rec := do(t, h, http.MethodGet, "/api/admin/users", "", func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer admin-token")
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/register", `{"email":"a@b.com","username":"alice","password":"password123"}`, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, h, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "zecko_http_requests_total")
}
