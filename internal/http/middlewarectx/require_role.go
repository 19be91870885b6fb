package middlewarectx

import (
	"log/slog"
	"net/http"
	"slices"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/zecko/internal/http/response"
	"github.com/magabrotheeeer/zecko/internal/models"
)

// RequireRole пропускает только пользователей с одной из ролей roles.
// Ставится после Authenticate; без пользователя в контексте отвечает 401.
func RequireRole(log *slog.Logger, roles ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok {
				log.Error("user identification missing")
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("Unauthorized"))
				return
			}

			if !slices.Contains(roles, models.Role(user.UserType)) {
				log.Warn("role not permitted, access denied",
					slog.String("user_id", user.ID),
					slog.String("user_type", string(user.UserType)),
				)
				render.Status(r, http.StatusForbidden)
				render.JSON(w, r, response.Error("Forbidden"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireSuperAdmin пропускает только пользователей с флагом superAdmin.
func RequireSuperAdmin(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok || !user.SuperAdmin {
				log.Warn("super admin required, access denied")
				render.Status(r, http.StatusForbidden)
				render.JSON(w, r, response.Error("Forbidden"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
