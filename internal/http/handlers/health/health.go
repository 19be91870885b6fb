// Package health отдаёт состояние шлюза.
package health

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/zecko/internal/http/response"
	"github.com/magabrotheeeer/zecko/internal/lib/sl"
)

// Checker проверяет зависимость. Может быть nil.
type Checker func(ctx context.Context) error

// Handler отвечает 200, пока зависимость доступна.
type Handler struct {
	log   *slog.Logger
	check Checker
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, check Checker) *Handler {
	return &Handler{
		log:   log,
		check: check,
	}
}

// ServeHTTP godoc
// @Summary Проверка состояния
// @Tags Health
// @Produce  json
// @Success 200 {object} response.Response
// @Failure 503 {object} response.ErrorResponse
// @Router /healthz [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.health"
	if h.check != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.check(ctx); err != nil {
			h.log.Warn("health check failed", slog.String("op", op), sl.Err(err))
			render.Status(r, http.StatusServiceUnavailable)
			render.JSON(w, r, response.Error("dependency unavailable"))
			return
		}
	}
	render.JSON(w, r, response.OK())
}
