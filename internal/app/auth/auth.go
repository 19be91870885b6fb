// Package auth собирает auth-service: gRPC-сервер, хранилище пользователей,
// кэш и список отзыва в Redis, публикацию событий и планировщик подписок.
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"sync"

	"github.com/streadway/amqp"
	"google.golang.org/grpc"

	"github.com/magabrotheeeer/zecko/internal/cache"
	"github.com/magabrotheeeer/zecko/internal/config"
	"github.com/magabrotheeeer/zecko/internal/grpc/authpb"
	"github.com/magabrotheeeer/zecko/internal/grpc/server"
	"github.com/magabrotheeeer/zecko/internal/lib/jwt"
	"github.com/magabrotheeeer/zecko/internal/lib/sl"
	"github.com/magabrotheeeer/zecko/internal/migrations"
	"github.com/magabrotheeeer/zecko/internal/rabbitmq"
	authservices "github.com/magabrotheeeer/zecko/internal/services/auth"
	schedulerservices "github.com/magabrotheeeer/zecko/internal/services/scheduler"
	"github.com/magabrotheeeer/zecko/internal/storage"
)

// App auth-service со всеми зависимостями.
type App struct {
	grpcServer *grpc.Server
	listener   net.Listener
	logger     *slog.Logger
	db         *storage.Storage
	cache      *cache.Cache
	amqpConn   *amqp.Connection
	publisher  *rabbitmq.Publisher
	scheduler  *schedulerservices.SchedulerService
}

// New поднимает зависимости и готовит сервер к запуску.
// Пустой rabbitmq.url отключает публикацию событий.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "app.auth.New"

	db, err := storage.New(ctx, cfg.StorageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	app := &App{logger: logger, db: db, cache: cacheRedis}

	var publisher authservices.EventPublisher
	if cfg.RabbitMQ.URL != "" {
		conn, err := rabbitmq.Connect(ctx, cfg.RabbitMQ.URL, cfg.Retries, cfg.RetryDelay)
		if err != nil {
			app.close()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		app.amqpConn = conn
		app.publisher, err = rabbitmq.NewPublisher(conn, cfg.Exchange)
		if err != nil {
			app.close()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		publisher = app.publisher
	} else {
		logger.Warn("rabbitmq url is empty, auth events are not published")
	}

	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)
	authService := authservices.NewAuthService(db, jwtMaker, cacheRedis, publisher, logger, cfg.UserCacheTTL)
	app.scheduler = schedulerservices.NewSchedulerService(db, authService, publisher, logger, cfg.ExpiryInterval)

	lis, err := net.Listen("tcp", cfg.GRPCAuthAddress)
	if err != nil {
		app.close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	app.listener = lis

	app.grpcServer = grpc.NewServer()
	authpb.RegisterAuthServiceServer(app.grpcServer, server.NewAuthServer(authService, logger))

	return app, nil
}

// Run обслуживает gRPC и планировщик до отмены ctx.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	errCh := make(chan error, 1)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		a.scheduler.Run(ctx)
	}()

	go func() {
		a.logger.Info("Auth gRPC service listening on", slog.String("address", a.listener.Addr().String()))
		errCh <- a.grpcServer.Serve(a.listener)
	}()

	var err error
	select {
	case <-ctx.Done():
		a.grpcServer.GracefulStop()
	case err = <-errCh:
	}
	cancel()
	wg.Wait()
	a.close()
	return err
}

func (a *App) close() {
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.logger.Error("failed to close publisher", sl.Err(err))
		}
	}
	if a.amqpConn != nil {
		_ = a.amqpConn.Close()
	}
	if a.cache != nil {
		_ = a.cache.Close()
	}
	if a.db != nil {
		_ = a.db.Close()
	}
}
