package logout

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/magabrotheeeer/zecko/internal/config"
	"github.com/magabrotheeeer/zecko/internal/http/middlewarectx"
)

type AuthClientMock struct {
	mock.Mock
}

func (m *AuthClientMock) Logout(ctx context.Context, token string) error {
	return m.Called(ctx, token).Error(0)
}

func TestLogoutHandler(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	cookieMode := middlewarectx.NewTransport(config.Auth{Transport: config.TransportCookie, CookieName: "zecko_session"})
	tokenMode := middlewarectx.NewTransport(config.Auth{Transport: config.TransportToken})

	tests := []struct {
		name       string
		transport  *middlewarectx.Transport
		prepare    func(r *http.Request)
		mockErr    error
		callsMock  bool
		wantCode   int
		wantCookie bool
	}{
		{
			name:       "cookie mode revokes and expires cookie",
			transport:  cookieMode,
			prepare:    func(r *http.Request) { r.AddCookie(&http.Cookie{Name: "zecko_session", Value: "tok"}) },
			callsMock:  true,
			wantCode:   http.StatusOK,
			wantCookie: true,
		},
		{
			name:      "token mode revokes bearer",
			transport: tokenMode,
			prepare:   func(r *http.Request) { r.Header.Set("Authorization", "Bearer tok") },
			callsMock: true,
			wantCode:  http.StatusOK,
		},
		{
			name:      "already revoked token is fine",
			transport: tokenMode,
			prepare:   func(r *http.Request) { r.Header.Set("Authorization", "Bearer tok") },
			mockErr:   status.Error(codes.Unauthenticated, "invalid token"),
			callsMock: true,
			wantCode:  http.StatusOK,
		},
		{
			name:      "no credentials is fine",
			transport: tokenMode,
			prepare:   func(*http.Request) {},
			wantCode:  http.StatusOK,
		},
		{
			name:       "auth service down still expires cookie",
			transport:  cookieMode,
			prepare:    func(r *http.Request) { r.AddCookie(&http.Cookie{Name: "zecko_session", Value: "tok"}) },
			mockErr:    errors.New("connection refused"),
			callsMock:  true,
			wantCode:   http.StatusInternalServerError,
			wantCookie: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := new(AuthClientMock)
			if tt.callsMock {
				m.On("Logout", mock.Anything, "tok").Return(tt.mockErr).Once()
			}
			req := httptest.NewRequest(http.MethodPost, "/api/logout", nil)
			tt.prepare(req)
			rec := httptest.NewRecorder()

			New(log, m, tt.transport).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
			cookies := rec.Result().Cookies()
			if tt.wantCookie {
				require.Len(t, cookies, 1)
				assert.Equal(t, -1, cookies[0].MaxAge)
			} else {
				assert.Empty(t, cookies)
			}
			m.AssertExpectations(t)
		})
	}
}
