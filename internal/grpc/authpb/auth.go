// Package authpb описывает контракт gRPC-сервиса аутентификации zecko.auth.AuthService:
// сообщения, интерфейсы клиента и сервера и дескриптор сервиса.
//
// Сообщения сериализуются JSON-кодеком (см. CodecName), поэтому клиент обязан
// вызывать методы с grpc.CallContentSubtype(CodecName).
package authpb

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/magabrotheeeer/zecko/internal/models"
)

// ServiceName полное имя сервиса.
const ServiceName = "zecko.auth.AuthService"

const (
	methodRegister      = "/" + ServiceName + "/Register"
	methodLogin         = "/" + ServiceName + "/Login"
	methodValidateToken = "/" + ServiceName + "/ValidateToken"
	methodLogout        = "/" + ServiceName + "/Logout"
	methodListUsers     = "/" + ServiceName + "/ListUsers"
)

// RegisterRequest данные регистрации; набор обязательных полей зависит от UserType.
type RegisterRequest struct {
	Email        string `json:"email"`
	Username     string `json:"username"`
	Password     string `json:"password"`
	UserType     string `json:"user_type"`
	Phone        string `json:"phone,omitempty"`
	Country      string `json:"country,omitempty"`
	BusinessName string `json:"business_name,omitempty"`
}

// LoginRequest вход по email или username.
type LoginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

// AuthResponse результат успешной регистрации или входа.
type AuthResponse struct {
	Token     string          `json:"token"`
	ExpiresAt int64           `json:"expires_at"`
	User      *models.Profile `json:"user"`
}

// ValidateTokenRequest запрос проверки токена.
type ValidateTokenRequest struct {
	Token string `json:"token"`
}

// ValidateTokenResponse пользователь, которому принадлежит действующий токен.
type ValidateTokenResponse struct {
	Valid bool            `json:"valid"`
	User  *models.Profile `json:"user,omitempty"`
}

// LogoutRequest запрос отзыва токена.
type LogoutRequest struct {
	Token string `json:"token"`
}

// LogoutResponse пустой ответ на отзыв токена.
type LogoutResponse struct{}

// ListUsersRequest постраничный запрос списка пользователей.
type ListUsersRequest struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// ListUsersResponse страница пользователей.
type ListUsersResponse struct {
	Users []*models.Profile `json:"users"`
}

// AuthServiceServer серверная часть сервиса.
type AuthServiceServer interface {
	Register(context.Context, *RegisterRequest) (*AuthResponse, error)
	Login(context.Context, *LoginRequest) (*AuthResponse, error)
	ValidateToken(context.Context, *ValidateTokenRequest) (*ValidateTokenResponse, error)
	Logout(context.Context, *LogoutRequest) (*LogoutResponse, error)
	ListUsers(context.Context, *ListUsersRequest) (*ListUsersResponse, error)
}

// UnimplementedAuthServiceServer возвращает codes.Unimplemented на все методы.
type UnimplementedAuthServiceServer struct{}

func (UnimplementedAuthServiceServer) Register(context.Context, *RegisterRequest) (*AuthResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Register not implemented")
}

func (UnimplementedAuthServiceServer) Login(context.Context, *LoginRequest) (*AuthResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Login not implemented")
}

func (UnimplementedAuthServiceServer) ValidateToken(context.Context, *ValidateTokenRequest) (*ValidateTokenResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ValidateToken not implemented")
}

func (UnimplementedAuthServiceServer) Logout(context.Context, *LogoutRequest) (*LogoutResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Logout not implemented")
}

func (UnimplementedAuthServiceServer) ListUsers(context.Context, *ListUsersRequest) (*ListUsersResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListUsers not implemented")
}

// AuthServiceClient клиентская часть сервиса.
type AuthServiceClient interface {
	Register(ctx context.Context, in *RegisterRequest, opts ...grpc.CallOption) (*AuthResponse, error)
	Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*AuthResponse, error)
	ValidateToken(ctx context.Context, in *ValidateTokenRequest, opts ...grpc.CallOption) (*ValidateTokenResponse, error)
	Logout(ctx context.Context, in *LogoutRequest, opts ...grpc.CallOption) (*LogoutResponse, error)
	ListUsers(ctx context.Context, in *ListUsersRequest, opts ...grpc.CallOption) (*ListUsersResponse, error)
}

type authServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewAuthServiceClient создаёт клиента поверх соединения cc.
func NewAuthServiceClient(cc grpc.ClientConnInterface) AuthServiceClient {
	return &authServiceClient{cc: cc}
}

func invoke[Req, Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in *Req, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *authServiceClient) Register(ctx context.Context, in *RegisterRequest, opts ...grpc.CallOption) (*AuthResponse, error) {
	return invoke[RegisterRequest, AuthResponse](ctx, c.cc, methodRegister, in, opts)
}

func (c *authServiceClient) Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*AuthResponse, error) {
	return invoke[LoginRequest, AuthResponse](ctx, c.cc, methodLogin, in, opts)
}

func (c *authServiceClient) ValidateToken(ctx context.Context, in *ValidateTokenRequest, opts ...grpc.CallOption) (*ValidateTokenResponse, error) {
	return invoke[ValidateTokenRequest, ValidateTokenResponse](ctx, c.cc, methodValidateToken, in, opts)
}

func (c *authServiceClient) Logout(ctx context.Context, in *LogoutRequest, opts ...grpc.CallOption) (*LogoutResponse, error) {
	return invoke[LogoutRequest, LogoutResponse](ctx, c.cc, methodLogout, in, opts)
}

func (c *authServiceClient) ListUsers(ctx context.Context, in *ListUsersRequest, opts ...grpc.CallOption) (*ListUsersResponse, error) {
	return invoke[ListUsersRequest, ListUsersResponse](ctx, c.cc, methodListUsers, in, opts)
}

// unaryHandler строит grpc.MethodDesc.Handler для метода call.
func unaryHandler[Req, Resp any](fullMethod string, call func(AuthServiceServer, context.Context, *Req) (*Resp, error)) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(AuthServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(AuthServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// ServiceDesc дескриптор zecko.auth.AuthService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AuthServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Register", Handler: unaryHandler(methodRegister, AuthServiceServer.Register)},
		{MethodName: "Login", Handler: unaryHandler(methodLogin, AuthServiceServer.Login)},
		{MethodName: "ValidateToken", Handler: unaryHandler(methodValidateToken, AuthServiceServer.ValidateToken)},
		{MethodName: "Logout", Handler: unaryHandler(methodLogout, AuthServiceServer.Logout)},
		{MethodName: "ListUsers", Handler: unaryHandler(methodListUsers, AuthServiceServer.ListUsers)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "zecko/auth.json",
}

// RegisterAuthServiceServer регистрирует реализацию srv на сервере s.
func RegisterAuthServiceServer(s grpc.ServiceRegistrar, srv AuthServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}
