// Package client содержит gRPC-клиента auth-service, которым пользуется HTTP-шлюз.
package client

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"

	"github.com/magabrotheeeer/zecko/internal/grpc/authpb"
	"github.com/magabrotheeeer/zecko/internal/models"
)

// AuthClient обёртка над authpb.AuthServiceClient. Ошибки возвращаются
// как есть, с gRPC-статусом, чтобы вызывающий мог сопоставить код.
type AuthClient struct {
	conn   *grpc.ClientConn
	client authpb.AuthServiceClient
}

// NewAuthClient создаёт клиента к addr. Соединение устанавливается лениво.
func NewAuthClient(addr string, opts ...grpc.DialOption) (*AuthClient, error) {
	const op = "client.NewAuthClient"

	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &AuthClient{conn: conn, client: authpb.NewAuthServiceClient(conn)}, nil
}

// Close закрывает соединение.
func (a *AuthClient) Close() error {
	return a.conn.Close()
}

// Login выполняет вход по email или username.
func (a *AuthClient) Login(ctx context.Context, identifier, password string) (*authpb.AuthResponse, error) {
	return a.client.Login(ctx, &authpb.LoginRequest{
		Identifier: identifier,
		Password:   password,
	})
}

// Register регистрирует пользователя.
func (a *AuthClient) Register(ctx context.Context, req *authpb.RegisterRequest) (*authpb.AuthResponse, error) {
	return a.client.Register(ctx, req)
}

// ValidateToken возвращает профиль владельца действующего токена.
func (a *AuthClient) ValidateToken(ctx context.Context, token string) (*models.Profile, error) {
	resp, err := a.client.ValidateToken(ctx, &authpb.ValidateTokenRequest{
		Token: token,
	})
	if err != nil {
		return nil, err
	}
	return resp.User, nil
}

// Logout отзывает токен.
func (a *AuthClient) Logout(ctx context.Context, token string) error {
	_, err := a.client.Logout(ctx, &authpb.LogoutRequest{Token: token})
	return err
}

// ListUsers возвращает страницу пользователей.
func (a *AuthClient) ListUsers(ctx context.Context, limit, offset int) ([]*models.Profile, error) {
	resp, err := a.client.ListUsers(ctx, &authpb.ListUsersRequest{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	return resp.Users, nil
}

// Ping проверяет, что auth-service отвечает. Отказ в проверке пустого токена
// означает, что сервис жив.
func (a *AuthClient) Ping(ctx context.Context) error {
	_, err := a.client.ValidateToken(ctx, &authpb.ValidateTokenRequest{})
	if status.Code(err) == codes.Unauthenticated {
		return nil
	}
	return err
}
