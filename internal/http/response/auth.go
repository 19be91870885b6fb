package response

import (
	"net/http"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/magabrotheeeer/zecko/internal/models"
)

// AuthResponse ответ на вход и регистрацию. Token присутствует только в режиме token.
type AuthResponse struct {
	Status string          `json:"status" example:"OK"`
	User   *models.Profile `json:"user"`
	Token  string          `json:"token,omitempty"`
}

// Auth возвращает успешный AuthResponse.
func Auth(user *models.Profile, token string) AuthResponse {
	return AuthResponse{Status: StatusOK, User: user, Token: token}
}

// VerifyResponse ответ на проверку сессии.
type VerifyResponse struct {
	Authenticated bool            `json:"authenticated"`
	User          *models.Profile `json:"user,omitempty"`
}

// FromGRPC переводит ошибку вызова auth-service в HTTP-статус и тело ответа.
// Сообщения для InvalidArgument и AlreadyExists берутся из статуса, остальные
// заменяются общими, чтобы не раскрывать детали.
func FromGRPC(err error) (int, ErrorResponse) {
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.Unauthenticated:
		return http.StatusUnauthorized, Error("Invalid credentials")
	case codes.AlreadyExists:
		return http.StatusConflict, Error(st.Message())
	case codes.InvalidArgument:
		return http.StatusUnprocessableEntity, Error(st.Message())
	case codes.PermissionDenied:
		return http.StatusForbidden, Error("Forbidden")
	case codes.Unavailable, codes.DeadlineExceeded:
		return http.StatusServiceUnavailable, Error("service temporarily unavailable, please try again")
	default:
		return http.StatusInternalServerError, Error("internal error")
	}
}
