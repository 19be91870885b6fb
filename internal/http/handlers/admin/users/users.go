// Package users отдаёт администраторам список пользователей.
package users

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/zecko/internal/http/response"
	"github.com/magabrotheeeer/zecko/internal/lib/sl"
	"github.com/magabrotheeeer/zecko/internal/models"
)

// Service постраничный список пользователей.
type Service interface {
	ListUsers(ctx context.Context, limit, offset int) ([]*models.Profile, error)
}

// Response страница пользователей.
type Response struct {
	Status string            `json:"status" example:"OK"`
	Users  []*models.Profile `json:"users"`
	Limit  int               `json:"limit"`
	Offset int               `json:"offset"`
}

// Handler обрабатывает GET /api/admin/users.
type Handler struct {
	log        *slog.Logger
	authClient Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, authClient Service) *Handler {
	return &Handler{log: log, authClient: authClient}
}

// ServeHTTP godoc
// @Summary Список пользователей
// @Description Доступно только роли admin.
// @Tags Admin
// @Produce  json
// @Param limit query int false "Размер страницы, по умолчанию 50, не больше 100"
// @Param offset query int false "Смещение"
// @Success 200 {object} Response
// @Failure 401 {object} response.ErrorResponse
// @Failure 403 {object} response.ErrorResponse
// @Security BearerAuth
// @Router /admin/users [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.users"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	limit, err := queryInt(r, "limit", 50)
	if err != nil || limit <= 0 || limit > 100 {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("limit must be between 1 and 100"))
		return
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil || offset < 0 {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("offset must be a non-negative integer"))
		return
	}

	users, err := h.authClient.ListUsers(r.Context(), limit, offset)
	if err != nil {
		log.Error("failed to list users", sl.Err(err))
		code, body := response.FromGRPC(err)
		render.Status(r, code)
		render.JSON(w, r, body)
		return
	}
	if users == nil {
		users = []*models.Profile{}
	}

	render.JSON(w, r, Response{Status: response.StatusOK, Users: users, Limit: limit, Offset: offset})
}

func queryInt(r *http.Request, key string, def int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}
