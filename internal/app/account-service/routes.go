// Package accountservice предоставляет маршруты приложения.
package accountservice

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/magabrotheeeer/account-service/internal/cache"
	"github.com/magabrotheeeer/account-service/internal/config"
	"github.com/magabrotheeeer/account-service/internal/http/handlers/auth/changepassword"
	"github.com/magabrotheeeer/account-service/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/account-service/internal/http/handlers/auth/logout"
	"github.com/magabrotheeeer/account-service/internal/http/handlers/auth/refresh"
	"github.com/magabrotheeeer/account-service/internal/http/handlers/auth/register"
	"github.com/magabrotheeeer/account-service/internal/http/handlers/user/avatar"
	"github.com/magabrotheeeer/account-service/internal/http/handlers/user/coverimage"
	"github.com/magabrotheeeer/account-service/internal/http/handlers/user/profile"
	"github.com/magabrotheeeer/account-service/internal/http/middlewarectx"
	"github.com/magabrotheeeer/account-service/internal/lib/jwt"
	authservice "github.com/magabrotheeeer/account-service/internal/services/auth"
	mediaservice "github.com/magabrotheeeer/account-service/internal/services/media"
	registrationservice "github.com/magabrotheeeer/account-service/internal/services/registration"
	"github.com/magabrotheeeer/account-service/internal/storage"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, cfg *config.Config, jwtMaker jwt.Maker,
	db *storage.Storage, cacheRedis *cache.Cache,
	sessionService *authservice.SessionService,
	registrationService *registrationservice.RegistrationService,
	mediaService *mediaservice.MediaService) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	accessTTL := cfg.AuthTokens.AccessTokenTTL
	refreshTTL := cfg.AuthTokens.RefreshTokenTTL

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/auth/register", register.New(logger, registrationService).ServeHTTP)
		r.Post("/auth/login", login.New(logger, sessionService, accessTTL, refreshTTL).ServeHTTP)
		r.Post("/auth/refresh", refresh.New(logger, sessionService, accessTTL, refreshTTL).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(jwtMaker, logger))
			r.Post("/auth/logout", logout.New(logger, sessionService).ServeHTTP)
			r.Post("/auth/change-password", changepassword.New(logger, sessionService).ServeHTTP)
			r.Get("/users/me", profile.New(logger, db, cacheRedis).ServeHTTP)
			r.Patch("/users/me/avatar", avatar.New(logger, mediaService).ServeHTTP)
			r.Patch("/users/me/cover-image", coverimage.New(logger, mediaService).ServeHTTP)
		})
	})

	r.Handle("/metrics", promhttp.Handler())
}
