// Package coverimage реализует HTTP-обработчик замены обложки профиля.
//
// Файл приходит multipart-формой в поле coverImage. Обложка необязательна:
// запрос без файла возвращает текущее значение без изменений.
package coverimage

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/account-service/internal/http/middlewarectx"
	"github.com/magabrotheeeer/account-service/internal/http/response"
	"github.com/magabrotheeeer/account-service/internal/lib/formfile"
	"github.com/magabrotheeeer/account-service/internal/lib/sl"
	services "github.com/magabrotheeeer/account-service/internal/services/media"
)

const maxFormMemory = 10 << 20

// Service описывает интерфейс бизнес-логики замены обложки.
type Service interface {
	ReplaceCoverImage(ctx context.Context, uid, localPath string) (string, error)
}

// Handler обрабатывает HTTP-запросы замены обложки.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.user.coverimage"

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

	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		log.Error("failed to parse multipart form", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid multipart form"))
		return
	}

	localPath := ""
	if files := r.MultipartForm.File["coverImage"]; len(files) > 0 {
		path, err := formfile.SaveTemp(files[0])
		if err != nil {
			log.Error("failed to save cover image file", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("failed to save uploaded file"))
			return
		}
		localPath = path
	}
	defer formfile.Remove(localPath)

	url, err := h.service.ReplaceCoverImage(r.Context(), uid, localPath)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUserNotFound):
			log.Error("user not found")
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, response.Error("user does not exist"))
		case errors.Is(err, services.ErrUploadFailed):
			log.Error("cover image upload failed", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("failed to upload media file"))
		default:
			log.Error("cover image replacement failed", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("failed to update cover image"))
		}
		return
	}

	log.Info("cover image updated", slog.String("uid", uid))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"cover_image_url": url,
		"message":         "cover image updated successfully",
	}))
}
