// Package refresh реализует HTTP-обработчик ротации пары токенов.
//
// Refresh-токен принимается из cookie refresh_token или из тела запроса.
// Повторное использование уже ротированного токена отклоняется, а cookie
// сессии при этом сбрасываются.
package refresh

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/account-service/internal/http/cookies"
	"github.com/magabrotheeeer/account-service/internal/http/response"
	"github.com/magabrotheeeer/account-service/internal/lib/sl"
	services "github.com/magabrotheeeer/account-service/internal/services/auth"
)

// Request — тело запроса с refresh-токеном; используется, когда
// токен не передан в cookie.
type Request struct {
	RefreshToken string `json:"refresh_token"`
}

// Service описывает интерфейс бизнес-логики ротации токенов.
type Service interface {
	Refresh(ctx context.Context, presented string) (*services.TokenPair, error)
}

// Handler обрабатывает HTTP-запросы ротации пары токенов.
type Handler struct {
	log        *slog.Logger
	service    Service
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service, accessTTL, refreshTTL time.Duration) *Handler {
	return &Handler{
		log:        log,
		service:    service,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// extractToken возвращает refresh-токен из cookie или, если cookie
// отсутствует, из тела запроса.
func extractToken(r *http.Request) string {
	if cookie, err := r.Cookie(cookies.RefreshToken); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err == nil {
		return req.RefreshToken
	}
	return ""
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.refresh"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	presented := extractToken(r)

	pair, err := h.service.Refresh(r.Context(), presented)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUnauthenticated):
			log.Error("refresh token is missing")
			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, response.Error("unauthorized request"))
		case errors.Is(err, services.ErrInvalidToken):
			log.Error("invalid refresh token", sl.Err(err))
			cookies.ClearSession(w)
			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, response.Error("invalid or expired refresh token"))
		case errors.Is(err, services.ErrTokenReplayed):
			log.Error("refresh token reuse detected")
			cookies.ClearSession(w)
			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, response.Error("refresh token is expired or used"))
		default:
			log.Error("refresh failed", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("failed to refresh token pair"))
		}
		return
	}

	cookies.SetSession(w, pair.AccessToken, pair.RefreshToken, h.accessTTL, h.refreshTTL)

	log.Info("token pair rotated")
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
	}))
}
