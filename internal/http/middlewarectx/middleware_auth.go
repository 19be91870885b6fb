// Package middlewarectx содержит HTTP middleware шлюза: извлечение и проверку
// сессионного токена, проверку роли, ограничение частоты запросов и метрики.
//
// Authenticate проверяет токен через auth-service и кладёт профиль пользователя
// в контекст запроса. Запрос без действующего токена проходит дальше анонимно;
// отказ в доступе делают RequireAuth и RequireRole.
package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/magabrotheeeer/zecko/internal/http/response"
	"github.com/magabrotheeeer/zecko/internal/lib/sl"
	"github.com/magabrotheeeer/zecko/internal/models"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

const (
	// User ключ для профиля пользователя в контексте
	User Key = "user"
	// Token ключ для сессионного токена в контексте
	Token Key = "token"
)

// Service описывает интерфейс сервиса для валидации JWT токена.
type Service interface {
	ValidateToken(ctx context.Context, token string) (*models.Profile, error)
}

// UserFromContext возвращает профиль аутентифицированного пользователя.
func UserFromContext(ctx context.Context) (*models.Profile, bool) {
	u, ok := ctx.Value(User).(*models.Profile)
	return u, ok && u != nil
}

// TokenFromContext возвращает токен текущего запроса, если он был передан.
func TokenFromContext(ctx context.Context) string {
	t, _ := ctx.Value(Token).(string)
	return t
}

// Authenticate возвращает middleware, который проверяет токен текущего запроса.
//
// Недействительный токен не является ошибкой: запрос продолжается без пользователя.
// Недоступность auth-service даёт 503.
func Authenticate(authClient Service, transport *Transport, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.Authenticate"

			tokenStr := transport.Token(r)
			if tokenStr == "" {
				next.ServeHTTP(w, r)
				return
			}
			ctx := context.WithValue(r.Context(), Token, tokenStr)

			profile, err := authClient.ValidateToken(ctx, tokenStr)
			if err != nil {
				if status.Code(err) == codes.Unauthenticated {
					next.ServeHTTP(w, r.WithContext(ctx))
					return
				}
				log.Error("token validation failed",
					slog.String("op", op),
					slog.String("request_id", middleware.GetReqID(r.Context())),
					sl.Err(err),
				)
				render.Status(r, http.StatusServiceUnavailable)
				render.JSON(w, r, response.Error("authentication service unavailable"))
				return
			}
			ctx = context.WithValue(ctx, User, profile)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth отвечает 401, если в контексте нет пользователя.
func RequireAuth(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := UserFromContext(r.Context()); !ok {
				log.Debug("unauthenticated request", slog.String("path", r.URL.Path),
					slog.String("request_id", middleware.GetReqID(r.Context())))
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("Unauthorized"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
