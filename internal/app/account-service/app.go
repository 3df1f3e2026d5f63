// Package accountservice собирает приложение: хранилище, кэш, очередь,
// внешнее медиахранилище, сервисы и HTTP-сервер.
package accountservice

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/account-service/internal/cache"
	"github.com/magabrotheeeer/account-service/internal/config"
	"github.com/magabrotheeeer/account-service/internal/lib/jwt"
	"github.com/magabrotheeeer/account-service/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/account-service/internal/mediaprovider"
	"github.com/magabrotheeeer/account-service/internal/migrations"
	authservice "github.com/magabrotheeeer/account-service/internal/services/auth"
	cleanupservice "github.com/magabrotheeeer/account-service/internal/services/cleanup"
	mediaservice "github.com/magabrotheeeer/account-service/internal/services/media"
	registrationservice "github.com/magabrotheeeer/account-service/internal/services/registration"
	"github.com/magabrotheeeer/account-service/internal/storage"
)

// App — собранное приложение с HTTP-сервером и фоновым воркером очистки.
type App struct {
	server        *http.Server
	logger        *slog.Logger
	db            *storage.Storage
	cache         *cache.Cache
	rabbitConn    *amqp.Connection
	rabbitChannel *amqp.Channel
	cleanupWorker *cleanupservice.Worker
}

// New инициализирует все зависимости приложения по конфигурации.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := storage.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, "./migrations"); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	rabbitConn, err := rabbitmq.Connect(cfg.RabbitConnection.AddressRabbit,
		cfg.RabbitConnection.ConnectRetries, cfg.RabbitConnection.ConnectDelay)
	if err != nil {
		return nil, err
	}
	rabbitChannel, err := rabbitmq.SetupChannel(rabbitConn, []rabbitmq.QueueConfig{rabbitmq.CleanupQueue})
	if err != nil {
		return nil, err
	}

	mediaClient, err := mediaprovider.New(ctx, cfg.MediaStorage)
	if err != nil {
		return nil, err
	}

	jwtMaker := jwt.NewMaker(cfg.AuthTokens.AccessSecretKey, cfg.AuthTokens.RefreshSecretKey,
		cfg.AuthTokens.AccessTokenTTL, cfg.AuthTokens.RefreshTokenTTL)

	cleanupPublisher := cleanupservice.NewPublisher(rabbitChannel)
	cleanupWorker := cleanupservice.NewWorker(rabbitChannel, mediaClient, logger)

	sessionService := authservice.NewSessionService(db, jwtMaker)
	registrationService := registrationservice.NewRegistrationService(db, mediaClient, logger)
	mediaService := mediaservice.NewMediaService(db, mediaClient, cleanupPublisher, cacheRedis, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, cfg, jwtMaker, db, cacheRedis,
		sessionService, registrationService, mediaService)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server:        srv,
		logger:        logger,
		db:            db,
		cache:         cacheRedis,
		rabbitConn:    rabbitConn,
		rabbitChannel: rabbitChannel,
		cleanupWorker: cleanupWorker,
	}, nil
}

// Run запускает воркер очистки и HTTP-сервер; блокируется до остановки.
// При отмене контекста сервер завершает работу с таймаутом.
func (a *App) Run(ctx context.Context) error {
	if err := a.cleanupWorker.Start(ctx); err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		_ = a.rabbitChannel.Close()
		_ = a.rabbitConn.Close()
		_ = a.db.DB.Close()
		return err
	}
}
