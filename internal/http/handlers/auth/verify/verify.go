// Package verify реализует проверку сессии, которую клиент вызывает периодически.
package verify

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/zecko/internal/http/middlewarectx"
	"github.com/magabrotheeeer/zecko/internal/http/response"
)

// Handler отвечает {authenticated, user?}.
type Handler struct {
	log *slog.Logger
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger) *Handler {
	return &Handler{log: log}
}

// ServeHTTP godoc
// @Summary Проверка сессии
// @Tags Auth
// @Produce  json
// @Success 200 {object} response.VerifyResponse
// @Failure 401 {object} response.VerifyResponse
// @Router /auth/verify [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	u, ok := middlewarectx.UserFromContext(r.Context())
	if !ok {
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.VerifyResponse{Authenticated: false})
		return
	}
	render.JSON(w, r, response.VerifyResponse{Authenticated: true, User: u})
}
