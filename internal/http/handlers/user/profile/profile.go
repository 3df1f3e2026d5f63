// Package profile реализует HTTP-обработчик чтения профиля текущего
// пользователя. Профиль кэшируется в Redis на время profileCacheTTL;
// при изменении профиля запись инвалидируется другими обработчиками.
package profile

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/account-service/internal/cache"
	"github.com/magabrotheeeer/account-service/internal/http/middlewarectx"
	"github.com/magabrotheeeer/account-service/internal/http/response"
	"github.com/magabrotheeeer/account-service/internal/lib/sl"
	"github.com/magabrotheeeer/account-service/internal/models"
	"github.com/magabrotheeeer/account-service/internal/storage"
)

const profileCacheTTL = 5 * time.Minute

// UserRepository описывает контракт чтения пользователя.
type UserRepository interface {
	GetUser(ctx context.Context, uid string) (*models.User, error)
}

// ProfileCache описывает контракт кэша профилей.
type ProfileCache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
}

// Handler обрабатывает HTTP-запросы чтения профиля.
type Handler struct {
	log   *slog.Logger
	users UserRepository
	cache ProfileCache
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, users UserRepository, profileCache ProfileCache) *Handler {
	return &Handler{
		log:   log,
		users: users,
		cache: profileCache,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.user.profile"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	uid, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || uid == "" {
		log.Error("missing uid in context")
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized request"))
		return
	}

	key := cache.UserKey(uid)
	var cached models.PublicUser
	found, err := h.cache.Get(key, &cached)
	if err != nil {
		log.Warn("failed to read profile cache", sl.Err(err))
	}
	if found {
		log.Info("profile served from cache", slog.String("uid", uid))
		render.JSON(w, r, response.StatusOKWithData(map[string]any{"user": cached}))
		return
	}

	user, err := h.users.GetUser(r.Context(), uid)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			log.Error("user not found")
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, response.Error("user does not exist"))
			return
		}
		log.Error("failed to read user", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to fetch user profile"))
		return
	}
	public := user.Public()

	if err := h.cache.Set(key, public, profileCacheTTL); err != nil {
		log.Warn("failed to write profile cache", sl.Err(err))
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{"user": public}))
}
