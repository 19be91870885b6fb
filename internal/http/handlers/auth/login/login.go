// Package login реализует HTTP-обработчик входа пользователя.
//
// Принимает email или username вместе с паролем, делегирует проверку auth-service
// по gRPC и отдаёт профиль пользователя. Токен передаётся клиенту согласно режиму
// транспорта: в теле ответа или в HTTP-only cookie.
package login

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/zecko/internal/grpc/authpb"
	"github.com/magabrotheeeer/zecko/internal/http/middlewarectx"
	"github.com/magabrotheeeer/zecko/internal/http/response"
	"github.com/magabrotheeeer/zecko/internal/lib/sl"
	"github.com/magabrotheeeer/zecko/internal/metrics"
	"github.com/magabrotheeeer/zecko/internal/validation"
)

// Request структура входных данных для авторизации.
// Нужно указать email или username.
type Request struct {
	Email    string `json:"email,omitempty" validate:"omitempty,email"`
	Username string `json:"username,omitempty" validate:"omitempty,min=3,max=50"`
	Password string `json:"password" validate:"required"`
}

// Service описывает интерфейс бизнес-логики аутентификации.
type Service interface {
	Login(ctx context.Context, identifier, password string) (*authpb.AuthResponse, error)
}

// Handler обрабатывает HTTP-запросы для авторизации.
type Handler struct {
	log        *slog.Logger             // Логгер для записи операций и ошибок
	authClient Service                  // Клиент для вызова gRPC-сервиса аутентификации
	transport  *middlewarectx.Transport // Способ передачи токена клиенту
	metrics    *metrics.Metrics
	validate   *validator.Validate // Валидатор для проверки входных данных
}

// New создает новый экземпляр Handler. m может быть nil.
func New(log *slog.Logger, authClient Service, transport *middlewarectx.Transport, m *metrics.Metrics) *Handler {
	return &Handler{
		log:        log,
		authClient: authClient,
		transport:  transport,
		metrics:    m,
		validate:   validation.New(),
	}
}

// ServeHTTP godoc
// @Summary Вход пользователя
// @Description Аутентифицирует пользователя по email или username и паролю.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body Request true "Учетные данные пользователя"
// @Success 200 {object} response.AuthResponse "Успешный вход"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Неверные учетные данные"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /login [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.login"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Warn("validation failed", sl.Err(err))
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}
	identifier := strings.TrimSpace(req.Email)
	if identifier == "" {
		identifier = strings.TrimSpace(req.Username)
	}
	if identifier == "" {
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.Error("field Email or Username is required"))
		return
	}

	grpcResp, err := h.authClient.Login(r.Context(), identifier, req.Password)
	if err != nil {
		code, body := response.FromGRPC(err)
		if code == http.StatusUnauthorized {
			h.metrics.AuthAttempt("login", "rejected")
			log.Info("login rejected", slog.String("identifier", identifier))
		} else {
			h.metrics.AuthAttempt("login", "error")
			log.Error("login failed", sl.Err(err))
		}
		render.Status(r, code)
		render.JSON(w, r, body)
		return
	}

	h.metrics.AuthAttempt("login", "success")
	log.Info("login success", slog.String("user_id", grpcResp.User.ID))
	token := h.transport.Issue(w, grpcResp.Token, time.Unix(grpcResp.ExpiresAt, 0))
	render.JSON(w, r, response.Auth(grpcResp.User, token))
}
