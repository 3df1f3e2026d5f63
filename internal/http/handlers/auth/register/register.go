// Package register реализует HTTP-обработчик регистрации пользователя.
//
// Запрос приходит multipart-формой: текстовые поля и файлы аватара и
// обложки. Файлы сохраняются во временный каталог и передаются сервису
// регистрации путями; после обработки временные файлы удаляются.
package register

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/account-service/internal/http/response"
	"github.com/magabrotheeeer/account-service/internal/lib/formfile"
	"github.com/magabrotheeeer/account-service/internal/lib/sl"
	"github.com/magabrotheeeer/account-service/internal/models"
	services "github.com/magabrotheeeer/account-service/internal/services/registration"
)

// maxFormMemory — лимит памяти на разбор multipart-формы, остальное
// уходит на диск средствами net/http.
const maxFormMemory = 10 << 20

// Request — текстовые поля формы регистрации.
type Request struct {
	Username string `validate:"required,min=3,max=50"`
	Email    string `validate:"required,email"`
	FullName string `validate:"required,min=1,max=100"`
	Password string `validate:"required,min=6"`
}

// Service описывает интерфейс бизнес-логики регистрации.
type Service interface {
	Register(ctx context.Context, in services.Input) (*models.PublicUser, error)
}

// Handler обрабатывает HTTP-запросы регистрации.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.register"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		log.Error("failed to parse multipart form", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid multipart form"))
		return
	}

	req := Request{
		Username: r.FormValue("username"),
		Email:    r.FormValue("email"),
		FullName: r.FormValue("fullname"),
		Password: r.FormValue("password"),
	}
	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}
	log.Info("all fields are validated")

	avatarPath, err := saveFormFile(r, "avatar")
	if err != nil {
		log.Error("failed to save avatar file", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("avatar file is required"))
		return
	}
	defer formfile.Remove(avatarPath)

	coverImagePath, err := saveFormFile(r, "coverImage")
	if err != nil {
		// Обложка необязательна, её отсутствие не прерывает регистрацию.
		// Сбой сохранения переданного файла — не то же самое, что его
		// отсутствие, он остаётся в логе.
		if !errors.Is(err, http.ErrMissingFile) {
			log.Warn("failed to save cover image file", sl.Err(err))
		}
		coverImagePath = ""
	}
	defer formfile.Remove(coverImagePath)

	user, err := h.service.Register(r.Context(), services.Input{
		Username:       req.Username,
		Email:          req.Email,
		FullName:       req.FullName,
		Password:       req.Password,
		AvatarPath:     avatarPath,
		CoverImagePath: coverImagePath,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidRequest), errors.Is(err, services.ErrMissingFile):
			log.Error("registration rejected", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error(err.Error()))
		case errors.Is(err, services.ErrUserExists):
			log.Error("registration conflict", sl.Err(err))
			render.Status(r, http.StatusConflict)
			render.JSON(w, r, response.Error("user with this username or email already exists"))
		case errors.Is(err, services.ErrUploadFailed):
			log.Error("avatar upload failed", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("failed to upload media file"))
		default:
			log.Error("registration failed", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("failed to register user"))
		}
		return
	}

	log.Info("user registered", slog.String("username", user.Username))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"user":    user,
		"message": "user registered successfully",
	}))
}

// saveFormFile сохраняет файл из поля формы во временный каталог.
func saveFormFile(r *http.Request, field string) (string, error) {
	files := r.MultipartForm.File[field]
	if len(files) == 0 {
		return "", http.ErrMissingFile
	}
	return formfile.SaveTemp(files[0])
}
