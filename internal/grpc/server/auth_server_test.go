package server

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/magabrotheeeer/zecko/internal/grpc/authpb"
	"github.com/magabrotheeeer/zecko/internal/lib/sl"
	"github.com/magabrotheeeer/zecko/internal/models"
	services "github.com/magabrotheeeer/zecko/internal/services/auth"
)

// MockAuthService - мок для AuthService
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, in services.RegisterInput) (*services.Session, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.Session), args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, identifier, password string) (*services.Session, error) {
	args := m.Called(ctx, identifier, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.Session), args.Error(1)
}

func (m *MockAuthService) ValidateToken(ctx context.Context, token string) (*models.User, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockAuthService) Logout(ctx context.Context, token string) error {
	return m.Called(ctx, token).Error(0)
}

func (m *MockAuthService) ListUsers(ctx context.Context, limit, offset int) ([]*models.User, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}

var _ AuthServiceInterface = (*MockAuthService)(nil)

// startServer поднимает сервер на bufconn и возвращает клиента с JSON-кодеком.
func startServer(t *testing.T, svc AuthServiceInterface) authpb.AuthServiceClient {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer()
	authpb.RegisterAuthServiceServer(srv, NewAuthServer(svc, sl.Discard()))
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return authpb.NewAuthServiceClient(conn)
}

func TestAuthServer_Login(t *testing.T) {
	expires := time.Now().Add(time.Hour).Truncate(time.Second)
	tests := []struct {
		name     string
		setup    func(m *MockAuthService)
		wantCode codes.Code
		wantMsg  string
	}{
		{
			name: "success",
			setup: func(m *MockAuthService) {
				m.On("Login", mock.Anything, "alice", "password123").Return(&services.Session{
					Token: "tok", ExpiresAt: expires,
					User: &models.User{UUID: "u1", Username: "alice", Role: models.RoleBusiness},
				}, nil)
			},
			wantCode: codes.OK,
		},
		{
			name: "invalid credentials",
			setup: func(m *MockAuthService) {
				m.On("Login", mock.Anything, "alice", "password123").
					Return(nil, errors.Join(errors.New("services.Login"), services.ErrInvalidCredentials))
			},
			wantCode: codes.Unauthenticated,
			wantMsg:  "invalid credentials",
		},
		{
			name: "internal error is not leaked",
			setup: func(m *MockAuthService) {
				m.On("Login", mock.Anything, "alice", "password123").Return(nil, errors.New("pq: connection refused"))
			},
			wantCode: codes.Internal,
			wantMsg:  "internal error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := new(MockAuthService)
			tt.setup(m)
			client := startServer(t, m)

			resp, err := client.Login(context.Background(), &authpb.LoginRequest{Identifier: "alice", Password: "password123"})
			if tt.wantCode != codes.OK {
				st, ok := status.FromError(err)
				require.True(t, ok)
				assert.Equal(t, tt.wantCode, st.Code())
				assert.Equal(t, tt.wantMsg, st.Message())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "tok", resp.Token)
			assert.Equal(t, expires.Unix(), resp.ExpiresAt)
			assert.Equal(t, "u1", resp.User.ID)
			assert.Equal(t, models.RoleBusiness, resp.User.UserType)
		})
	}
}

func TestAuthServer_Register(t *testing.T) {
	m := new(MockAuthService)
	m.On("Register", mock.Anything, mock.MatchedBy(func(in services.RegisterInput) bool {
		return in.UserType == models.RoleVendor && in.BusinessName == ""
	})).Return(nil, &services.RegistrationError{Reason: "business name is required"})
	m.On("Register", mock.Anything, mock.MatchedBy(func(in services.RegisterInput) bool {
		return in.Username == "taken"
	})).Return(nil, services.ErrUserExists)
	client := startServer(t, m)

	_, err := client.Register(context.Background(), &authpb.RegisterRequest{Username: "vic", UserType: "vendor"})
	st, _ := status.FromError(err)
	assert.Equal(t, codes.InvalidArgument, st.Code())
	assert.Equal(t, "business name is required", st.Message())

	_, err = client.Register(context.Background(), &authpb.RegisterRequest{Username: "taken"})
	st, _ = status.FromError(err)
	assert.Equal(t, codes.AlreadyExists, st.Code())
}

func TestAuthServer_ValidateToken(t *testing.T) {
	m := new(MockAuthService)
	m.On("ValidateToken", mock.Anything, "good").Return(&models.User{UUID: "u1", Role: models.RoleAdmin, SuperAdmin: true}, nil)
	m.On("ValidateToken", mock.Anything, "bad").Return(nil, services.ErrUnauthenticated)
	client := startServer(t, m)

	resp, err := client.ValidateToken(context.Background(), &authpb.ValidateTokenRequest{Token: "good"})
	require.NoError(t, err)
	assert.True(t, resp.Valid)
	assert.True(t, resp.User.SuperAdmin)

	_, err = client.ValidateToken(context.Background(), &authpb.ValidateTokenRequest{Token: "bad"})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
}

func TestAuthServer_LogoutAndList(t *testing.T) {
	m := new(MockAuthService)
	m.On("Logout", mock.Anything, "tok").Return(nil)
	m.On("ListUsers", mock.Anything, 10, 20).Return([]*models.User{{UUID: "u1"}, {UUID: "u2"}}, nil)
	client := startServer(t, m)

	_, err := client.Logout(context.Background(), &authpb.LogoutRequest{Token: "tok"})
	require.NoError(t, err)

	resp, err := client.ListUsers(context.Background(), &authpb.ListUsersRequest{Limit: 10, Offset: 20})
	require.NoError(t, err)
	require.Len(t, resp.Users, 2)
	assert.Equal(t, "u2", resp.Users[1].ID)
	m.AssertExpectations(t)
}
