package middlewarectx_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/magabrotheeeer/zecko/internal/config"
	"github.com/magabrotheeeer/zecko/internal/http/middlewarectx"
	"github.com/magabrotheeeer/zecko/internal/models"
)

// Mock for AuthClient
type AuthClientMock struct {
	mock.Mock
}

func (m *AuthClientMock) ValidateToken(ctx context.Context, token string) (*models.Profile, error) {
	args := m.Called(ctx, token)
	resp, _ := args.Get(0).(*models.Profile)
	return resp, args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestAuthenticate(t *testing.T) {
	tokenTransport := middlewarectx.NewTransport(config.Auth{Transport: config.TransportToken})
	cookieTransport := middlewarectx.NewTransport(config.Auth{Transport: config.TransportCookie, CookieName: "zecko_session"})
	profile := &models.Profile{ID: "u1", UserType: "vendor"}

	tests := []struct {
		name           string
		transport      *middlewarectx.Transport
		prepare        func(r *http.Request)
		mockToken      string
		mockResp       *models.Profile
		mockErr        error
		wantStatusCode int
		wantUser       bool
	}{
		{
			name:           "no credentials passes anonymously",
			transport:      tokenTransport,
			prepare:        func(*http.Request) {},
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "basic auth is ignored",
			transport:      tokenTransport,
			prepare:        func(r *http.Request) { r.Header.Set("Authorization", "Basic abc") },
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "valid bearer token",
			transport:      tokenTransport,
			prepare:        func(r *http.Request) { r.Header.Set("Authorization", "Bearer good") },
			mockToken:      "good",
			mockResp:       profile,
			wantStatusCode: http.StatusOK,
			wantUser:       true,
		},
		{
			name:           "rejected token passes anonymously",
			transport:      tokenTransport,
			prepare:        func(r *http.Request) { r.Header.Set("Authorization", "Bearer bad") },
			mockToken:      "bad",
			mockErr:        status.Error(codes.Unauthenticated, "invalid token"),
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "auth service down",
			transport:      tokenTransport,
			prepare:        func(r *http.Request) { r.Header.Set("Authorization", "Bearer good") },
			mockToken:      "good",
			mockErr:        errors.New("connection refused"),
			wantStatusCode: http.StatusServiceUnavailable,
		},
		{
			name:      "cookie mode reads only the cookie",
			transport: cookieTransport,
			prepare: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer header-token")
				r.AddCookie(&http.Cookie{Name: "zecko_session", Value: "cookie-token"})
			},
			mockToken:      "cookie-token",
			mockResp:       profile,
			wantStatusCode: http.StatusOK,
			wantUser:       true,
		},
		{
			name:           "cookie mode ignores bearer header",
			transport:      cookieTransport,
			prepare:        func(r *http.Request) { r.Header.Set("Authorization", "Bearer header-token") },
			wantStatusCode: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			authMock := new(AuthClientMock)
			if tt.mockToken != "" {
				authMock.On("ValidateToken", mock.Anything, tt.mockToken).Return(tt.mockResp, tt.mockErr).Once()
			}

			var gotUser bool
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				u, ok := middlewarectx.UserFromContext(r.Context())
				gotUser = ok
				if ok {
					assert.Equal(t, "u1", u.ID)
					assert.Equal(t, tt.mockToken, middlewarectx.TokenFromContext(r.Context()))
				}
				w.WriteHeader(http.StatusOK)
			})
			h := middlewarectx.Authenticate(authMock, tt.transport, newNoopLogger())(next)

			req := httptest.NewRequest(http.MethodGet, "/api/user", nil)
			tt.prepare(req)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)
			assert.Equal(t, tt.wantUser, gotUser)
			authMock.AssertExpectations(t)
		})
	}
}

func TestRequireAuthAndRole(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	log := newNoopLogger()

	withUser := func(p *models.Profile) *http.Request {
		req := httptest.NewRequest(http.MethodGet, "/api/admin/users", nil)
		if p != nil {
			req = req.WithContext(context.WithValue(req.Context(), middlewarectx.User, p))
		}
		return req
	}

	tests := []struct {
		name    string
		handler http.Handler
		user    *models.Profile
		want    int
	}{
		{"auth without user", middlewarectx.RequireAuth(log)(ok), nil, http.StatusUnauthorized},
		{"auth with user", middlewarectx.RequireAuth(log)(ok), &models.Profile{ID: "u1"}, http.StatusOK},
		{"role without user", middlewarectx.RequireRole(log, models.RoleAdmin)(ok), nil, http.StatusUnauthorized},
		{"wrong role", middlewarectx.RequireRole(log, models.RoleAdmin)(ok), &models.Profile{UserType: "vendor"}, http.StatusForbidden},
		{"admin role", middlewarectx.RequireRole(log, models.RoleAdmin)(ok), &models.Profile{UserType: "admin"}, http.StatusOK},
		{"not super admin", middlewarectx.RequireSuperAdmin(log)(ok), &models.Profile{UserType: "admin"}, http.StatusForbidden},
		{"super admin", middlewarectx.RequireSuperAdmin(log)(ok), &models.Profile{UserType: "admin", SuperAdmin: true}, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tt.handler.ServeHTTP(rec, withUser(tt.user))
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestTransport_IssueAndExpire(t *testing.T) {
	expires := time.Now().Add(time.Hour)

	tokenMode := middlewarectx.NewTransport(config.Auth{Transport: config.TransportToken})
	rec := httptest.NewRecorder()
	assert.Equal(t, "tok", tokenMode.Issue(rec, "tok", expires))
	assert.Empty(t, rec.Result().Cookies())
	tokenMode.Expire(rec)
	assert.Empty(t, rec.Result().Cookies())

	cookieMode := middlewarectx.NewTransport(config.Auth{Transport: config.TransportCookie, CookieName: "sid", CookieSecure: true})
	rec = httptest.NewRecorder()
	assert.Empty(t, cookieMode.Issue(rec, "tok", expires))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "sid", cookies[0].Name)
	assert.Equal(t, "tok", cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
	assert.True(t, cookies[0].Secure)

	rec = httptest.NewRecorder()
	cookieMode.Expire(rec)
	cookies = rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, -1, cookies[0].MaxAge)
}
