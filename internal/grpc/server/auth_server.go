// Package server реализует gRPC-сервер для авторизационного сервиса.
//
// AuthServer переводит gRPC-запросы в вызовы AuthService, а доменные ошибки
// в коды статуса. Внутренние детали ошибок клиенту не передаются.
package server

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/magabrotheeeer/zecko/internal/grpc/authpb"
	"github.com/magabrotheeeer/zecko/internal/lib/sl"
	"github.com/magabrotheeeer/zecko/internal/models"
	services "github.com/magabrotheeeer/zecko/internal/services/auth"
)

// AuthServiceInterface бизнес-логика, которую обслуживает сервер.
type AuthServiceInterface interface {
	Register(ctx context.Context, in services.RegisterInput) (*services.Session, error)
	Login(ctx context.Context, identifier, password string) (*services.Session, error)
	ValidateToken(ctx context.Context, token string) (*models.User, error)
	Logout(ctx context.Context, token string) error
	ListUsers(ctx context.Context, limit, offset int) ([]*models.User, error)
}

// AuthServer реализует gRPC-сервис авторизации
type AuthServer struct {
	authpb.UnimplementedAuthServiceServer
	authService AuthServiceInterface
	log         *slog.Logger
}

// NewAuthServer создает новый экземпляр AuthServer с указанным сервисом аутентификации и логгером.
func NewAuthServer(authService AuthServiceInterface, logger *slog.Logger) *AuthServer {
	return &AuthServer{
		authService: authService,
		log:         logger,
	}
}

// Register создает нового пользователя и сразу выдаёт токен.
func (s *AuthServer) Register(ctx context.Context, req *authpb.RegisterRequest) (*authpb.AuthResponse, error) {
	s.log.Info("Register request", slog.String("username", req.Username), slog.String("user_type", req.UserType))

	sess, err := s.authService.Register(ctx, services.RegisterInput{
		Email:        req.Email,
		Username:     req.Username,
		Password:     req.Password,
		UserType:     models.Role(req.UserType),
		Phone:        req.Phone,
		Country:      req.Country,
		BusinessName: req.BusinessName,
	})
	if err != nil {
		s.log.Error("Register failed", slog.String("username", req.Username), sl.Err(err))
		return nil, toStatus(err)
	}
	return sessionResponse(sess), nil
}

// Login проверяет пользователя и генерирует JWT
func (s *AuthServer) Login(ctx context.Context, req *authpb.LoginRequest) (*authpb.AuthResponse, error) {
	s.log.Info("Login request", slog.String("identifier", req.Identifier))

	sess, err := s.authService.Login(ctx, req.Identifier, req.Password)
	if err != nil {
		s.log.Warn("Login failed", slog.String("identifier", req.Identifier), sl.Err(err))
		return nil, toStatus(err)
	}
	return sessionResponse(sess), nil
}

// ValidateToken проверяет валидность JWT и возвращает данные пользователя
func (s *AuthServer) ValidateToken(ctx context.Context, req *authpb.ValidateTokenRequest) (*authpb.ValidateTokenResponse, error) {
	user, err := s.authService.ValidateToken(ctx, req.Token)
	if err != nil {
		if errors.Is(err, services.ErrUnauthenticated) {
			return nil, status.Error(codes.Unauthenticated, "invalid token")
		}
		s.log.Error("ValidateToken failed", sl.Err(err))
		return nil, toStatus(err)
	}
	return &authpb.ValidateTokenResponse{
		Valid: true,
		User:  user.Profile(time.Now()),
	}, nil
}

// Logout отзывает токен. Повторный вызов не ошибка.
func (s *AuthServer) Logout(ctx context.Context, req *authpb.LogoutRequest) (*authpb.LogoutResponse, error) {
	if err := s.authService.Logout(ctx, req.Token); err != nil {
		s.log.Error("Logout failed", sl.Err(err))
		return nil, toStatus(err)
	}
	return &authpb.LogoutResponse{}, nil
}

// ListUsers возвращает страницу пользователей.
func (s *AuthServer) ListUsers(ctx context.Context, req *authpb.ListUsersRequest) (*authpb.ListUsersResponse, error) {
	users, err := s.authService.ListUsers(ctx, req.Limit, req.Offset)
	if err != nil {
		s.log.Error("ListUsers failed", sl.Err(err))
		return nil, toStatus(err)
	}
	now := time.Now()
	resp := &authpb.ListUsersResponse{Users: make([]*models.Profile, 0, len(users))}
	for _, u := range users {
		resp.Users = append(resp.Users, u.Profile(now))
	}
	return resp, nil
}

func sessionResponse(sess *services.Session) *authpb.AuthResponse {
	return &authpb.AuthResponse{
		Token:     sess.Token,
		ExpiresAt: sess.ExpiresAt.Unix(),
		User:      sess.User.Profile(time.Now()),
	}
}

func toStatus(err error) error {
	var regErr *services.RegistrationError
	switch {
	case errors.As(err, &regErr):
		return status.Error(codes.InvalidArgument, regErr.Reason)
	case errors.Is(err, services.ErrInvalidCredentials):
		return status.Error(codes.Unauthenticated, "invalid credentials")
	case errors.Is(err, services.ErrUnauthenticated):
		return status.Error(codes.Unauthenticated, "unauthenticated")
	case errors.Is(err, services.ErrUserExists):
		return status.Error(codes.AlreadyExists, "user with this email or username already exists")
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, "request canceled")
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, "deadline exceeded")
	default:
		return status.Error(codes.Internal, "internal error")
	}
}
