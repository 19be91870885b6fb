// Package register реализует HTTP-обработчик публичной регистрации.
//
// Набор обязательных полей зависит от типа учётной записи: business и vendor
// указывают название компании, телефон проверяется по правилам страны.
package register

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/zecko/internal/grpc/authpb"
	"github.com/magabrotheeeer/zecko/internal/http/middlewarectx"
	"github.com/magabrotheeeer/zecko/internal/http/response"
	"github.com/magabrotheeeer/zecko/internal/lib/sl"
	"github.com/magabrotheeeer/zecko/internal/metrics"
	"github.com/magabrotheeeer/zecko/internal/models"
	"github.com/magabrotheeeer/zecko/internal/validation"
)

// Request входные данные для регистрации
type Request struct {
	Email        string `json:"email" validate:"required,email"`
	Username     string `json:"username" validate:"required,min=3,max=50"`
	Password     string `json:"password" validate:"required,min=8"`
	UserType     string `json:"userType,omitempty" validate:"omitempty,signup_role"`
	Country      string `json:"country,omitempty" validate:"omitempty,len=2"`
	Phone        string `json:"phone,omitempty" validate:"omitempty,phone=Country"`
	BusinessName string `json:"businessName,omitempty" validate:"omitempty,max=200"`
}

// Service описывает регистрацию в auth-service.
type Service interface {
	Register(ctx context.Context, req *authpb.RegisterRequest) (*authpb.AuthResponse, error)
}

// Handler обрабатывает регистрацию.
type Handler struct {
	log        *slog.Logger
	authClient Service
	transport  *middlewarectx.Transport
	metrics    *metrics.Metrics
	validate   *validator.Validate
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
// @Summary Регистрация пользователя
// @Description Создаёт учётную запись free, business или vendor и сразу открывает сессию.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body Request true "Данные регистрации"
// @Success 201 {object} response.AuthResponse "Пользователь создан"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 409 {object} response.ErrorResponse "Email или username заняты"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /register [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.register"

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
	if models.Role(req.UserType).Paid() && req.BusinessName == "" {
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.Error("field BusinessName is a required field"))
		return
	}
	if req.Phone != "" && req.Country == "" {
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.Error("field Country is required when Phone is set"))
		return
	}
	log.Info("all fields are validated", slog.String("username", req.Username), slog.String("user_type", req.UserType))

	grpcResp, err := h.authClient.Register(r.Context(), &authpb.RegisterRequest{
		Email:        req.Email,
		Username:     req.Username,
		Password:     req.Password,
		UserType:     req.UserType,
		Phone:        req.Phone,
		Country:      req.Country,
		BusinessName: req.BusinessName,
	})
	if err != nil {
		code, body := response.FromGRPC(err)
		if code >= http.StatusInternalServerError {
			h.metrics.AuthAttempt("register", "error")
			log.Error("registration failed", sl.Err(err))
		} else {
			h.metrics.AuthAttempt("register", "rejected")
			log.Info("registration rejected", slog.String("reason", body.Message))
		}
		render.Status(r, code)
		render.JSON(w, r, body)
		return
	}

	h.metrics.AuthAttempt("register", "success")
	log.Info("user registered", slog.String("user_id", grpcResp.User.ID))
	token := h.transport.Issue(w, grpcResp.Token, time.Unix(grpcResp.ExpiresAt, 0))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.Auth(grpcResp.User, token))
}
