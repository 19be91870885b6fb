// Package logout реализует HTTP-обработчик выхода.
package logout

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/magabrotheeeer/zecko/internal/http/middlewarectx"
	"github.com/magabrotheeeer/zecko/internal/http/response"
	"github.com/magabrotheeeer/zecko/internal/lib/sl"
)

// Service отзывает токены.
type Service interface {
	Logout(ctx context.Context, token string) error
}

// Handler обрабатывает выход пользователя.
type Handler struct {
	log        *slog.Logger
	authClient Service
	transport  *middlewarectx.Transport
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, authClient Service, transport *middlewarectx.Transport) *Handler {
	return &Handler{
		log:        log,
		authClient: authClient,
		transport:  transport,
	}
}

// ServeHTTP godoc
// @Summary Выход
// @Description Отзывает текущий токен. В режиме cookie удаляет сессионную cookie. Повторный выход не ошибка.
// @Tags Auth
// @Produce  json
// @Success 200 {object} response.Response
// @Failure 503 {object} response.ErrorResponse "auth-service недоступен"
// @Router /logout [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.logout"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	// cookie удаляется в любом случае: клиент перестаёт считать себя вошедшим
	h.transport.Expire(w)

	token := middlewarectx.TokenFromContext(r.Context())
	if token == "" {
		token = h.transport.Token(r)
	}
	if token == "" {
		render.JSON(w, r, response.OK())
		return
	}

	if err := h.authClient.Logout(r.Context(), token); err != nil && status.Code(err) != codes.Unauthenticated {
		log.Error("failed to revoke token", sl.Err(err))
		code, body := response.FromGRPC(err)
		render.Status(r, code)
		render.JSON(w, r, body)
		return
	}

	log.Info("user logged out")
	render.JSON(w, r, response.OK())
}
