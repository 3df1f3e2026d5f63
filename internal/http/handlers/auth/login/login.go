// Package login реализует HTTP-обработчик входа пользователя.
//
// В нём определяется структура Request для входных данных, выполняется
// декодирование JSON, проверка и валидация полей, а также делегирование
// операции входа сервису сессий. При успешном входе пара токенов
// возвращается в теле ответа и дублируется в HttpOnly cookie.
package login

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/account-service/internal/http/cookies"
	"github.com/magabrotheeeer/account-service/internal/http/response"
	"github.com/magabrotheeeer/account-service/internal/lib/sl"
	services "github.com/magabrotheeeer/account-service/internal/services/auth"
)

// Request — структура входных данных для входа.
//
// Достаточно одного из идентификаторов: username или email.
type Request struct {
	Username string `json:"username" validate:"omitempty,min=3,max=50"`
	Email    string `json:"email" validate:"omitempty,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// Service описывает интерфейс бизнес-логики сессий.
type Service interface {
	Login(ctx context.Context, username, email, password string) (*services.LoginResult, error)
}

// Handler обрабатывает HTTP-запросы входа.
type Handler struct {
	log        *slog.Logger
	service    Service
	validate   *validator.Validate
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// New создает новый экземпляр Handler. TTL токенов задают срок жизни cookie.
func New(log *slog.Logger, service Service, accessTTL, refreshTTL time.Duration) *Handler {
	return &Handler{
		log:        log,
		service:    service,
		validate:   validator.New(),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.login"

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
		log.Error("validation failed", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}
	log.Info("all fields are validated")

	result, err := h.service.Login(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidRequest):
			log.Error("login rejected", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("username or email is required"))
		case errors.Is(err, services.ErrUserNotFound):
			log.Error("user not found")
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, response.Error("user does not exist"))
		case errors.Is(err, services.ErrInvalidCredentials):
			log.Error("invalid credentials")
			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, response.Error("invalid credentials"))
		default:
			log.Error("login failed", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("failed to login user"))
		}
		return
	}

	cookies.SetSession(w, result.Tokens.AccessToken, result.Tokens.RefreshToken,
		h.accessTTL, h.refreshTTL)

	log.Info("login success", slog.String("username", result.User.Username))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"user":          result.User,
		"access_token":  result.Tokens.AccessToken,
		"refresh_token": result.Tokens.RefreshToken,
	}))
}
