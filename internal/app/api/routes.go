// Package api собирает HTTP-шлюз zecko-api: маршруты, middleware и сервер.
package api

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	// Регистрация OpenAPI-описания для /docs.
	_ "github.com/magabrotheeeer/zecko/docs"
	"github.com/magabrotheeeer/zecko/internal/config"
	"github.com/magabrotheeeer/zecko/internal/http/handlers/admin/users"
	"github.com/magabrotheeeer/zecko/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/zecko/internal/http/handlers/auth/logout"
	"github.com/magabrotheeeer/zecko/internal/http/handlers/auth/register"
	"github.com/magabrotheeeer/zecko/internal/http/handlers/auth/user"
	"github.com/magabrotheeeer/zecko/internal/http/handlers/auth/verify"
	"github.com/magabrotheeeer/zecko/internal/http/handlers/health"
	"github.com/magabrotheeeer/zecko/internal/http/middlewarectx"
	"github.com/magabrotheeeer/zecko/internal/metrics"
	"github.com/magabrotheeeer/zecko/internal/models"
)

// AuthClient всё, что шлюзу нужно от auth-service.
type AuthClient interface {
	login.Service
	register.Service
	logout.Service
	users.Service
	middlewarectx.Service
}

// RegisterRoutes регистрирует все маршруты приложения.
// reg используется и для регистрации метрик, и для /metrics.
func RegisterRoutes(r chi.Router, logger *slog.Logger, cfg *config.Config, authClient AuthClient,
	check health.Checker, reg *prometheus.Registry) {
	m := metrics.New(reg)
	transport := middlewarectx.NewTransport(cfg.Auth)
	limiter := middlewarectx.NewRateLimiter(cfg.RPS, cfg.Burst)

	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
		middlewarectx.MetricsMiddleware(m),
	)

	r.Route("/api", func(r chi.Router) {
		// Попытки входа и регистрации ограничены по IP
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.RateLimitMiddleware(logger, limiter, m))
			r.Post("/login", login.New(logger, authClient, transport, m).ServeHTTP)
			r.Post("/register", register.New(logger, authClient, transport, m).ServeHTTP)
		})

		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.Authenticate(authClient, transport, logger))

			r.Post("/logout", logout.New(logger, authClient, transport).ServeHTTP)
			r.Get("/auth/verify", verify.New(logger).ServeHTTP)

			r.With(middlewarectx.RequireAuth(logger)).Get("/user", user.New(logger).ServeHTTP)

			r.Route("/admin", func(r chi.Router) {
				r.Use(middlewarectx.RequireRole(logger, models.RoleAdmin))
				r.Get("/users", users.New(logger, authClient).ServeHTTP)
			})
		})
	})

	r.Get("/healthz", health.New(logger, check).ServeHTTP)
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
