// Package services содержит логику бизнес-уровня для регистрации пользователей:
// проверку уникальности, загрузку медиафайлов и создание записи.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/magabrotheeeer/account-service/internal/lib/password"
	"github.com/magabrotheeeer/account-service/internal/lib/sl"
	"github.com/magabrotheeeer/account-service/internal/models"
	"github.com/magabrotheeeer/account-service/internal/storage"
)

var (
	// ErrInvalidRequest — не заполнено одно из обязательных полей.
	ErrInvalidRequest = errors.New("all fields are required")
	// ErrUserExists — username или email уже заняты.
	ErrUserExists = errors.New("user with this username or email already exists")
	// ErrMissingFile — не передан обязательный файл аватара.
	ErrMissingFile = errors.New("avatar file is required")
	// ErrUploadFailed — внешнее хранилище отклонило загрузку аватара.
	ErrUploadFailed = errors.New("failed to upload media file")
	// ErrCreateFailed — запись не читается сразу после создания.
	ErrCreateFailed = errors.New("failed to register user")
)

// UserRepository описывает контракт для создания и чтения пользователей.
type UserRepository interface {
	FindUserByIdentity(ctx context.Context, username, email string) (*models.User, error)
	CreateUser(ctx context.Context, user models.User) (string, error)
	GetUser(ctx context.Context, uid string) (*models.User, error)
}

// Uploader описывает контракт внешнего хранилища медиафайлов.
type Uploader interface {
	Upload(ctx context.Context, localPath string) (string, error)
}

// Input — данные регистрации нового пользователя. AvatarPath и
// CoverImagePath — пути к локально сохранённым файлам из формы.
type Input struct {
	Username       string
	Email          string
	FullName       string
	Password       string
	AvatarPath     string
	CoverImagePath string
}

// RegistrationService выполняет одноразовый сценарий регистрации.
type RegistrationService struct {
	users    UserRepository
	uploader Uploader
	log      *slog.Logger
}

// NewRegistrationService создает новый экземпляр RegistrationService.
func NewRegistrationService(users UserRepository, uploader Uploader, log *slog.Logger) *RegistrationService {
	return &RegistrationService{
		users:    users,
		uploader: uploader,
		log:      log,
	}
}

// Register создает нового пользователя.
//
// Порядок шагов: проверка обязательных полей, нормализация username,
// проверка уникальности, загрузка аватара (обязательна) и обложки
// (необязательна, её сбой переносится), создание записи и контрольное
// чтение созданной записи. Возвращается представление без пароля
// и refresh-токена.
func (s *RegistrationService) Register(ctx context.Context, in Input) (*models.PublicUser, error) {
	const op = "services.registration.Register"

	if strings.TrimSpace(in.Username) == "" || strings.TrimSpace(in.Email) == "" ||
		strings.TrimSpace(in.FullName) == "" || strings.TrimSpace(in.Password) == "" {
		return nil, ErrInvalidRequest
	}
	username := strings.ToLower(strings.TrimSpace(in.Username))

	_, err := s.users.FindUserByIdentity(ctx, username, in.Email)
	if err == nil {
		return nil, ErrUserExists
	}
	if !errors.Is(err, storage.ErrUserNotFound) {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if in.AvatarPath == "" {
		return nil, ErrMissingFile
	}

	avatarURL, err := s.uploader.Upload(ctx, in.AvatarPath)
	if err != nil {
		return nil, ErrUploadFailed
	}

	coverImageURL := ""
	if in.CoverImagePath != "" {
		coverImageURL, err = s.uploader.Upload(ctx, in.CoverImagePath)
		if err != nil {
			// Обложка необязательна: запись создаётся с пустой ссылкой.
			s.log.Warn("cover image upload failed", sl.Err(err))
			coverImageURL = ""
		}
	}

	hashed, err := password.GetHash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	uid, err := s.users.CreateUser(ctx, models.User{
		Username:      username,
		Email:         in.Email,
		FullName:      strings.TrimSpace(in.FullName),
		PasswordHash:  hashed,
		AvatarURL:     avatarURL,
		CoverImageURL: coverImageURL,
	})
	if err != nil {
		if errors.Is(err, storage.ErrUserExists) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	created, err := s.users.GetUser(ctx, uid)
	if err != nil {
		return nil, ErrCreateFailed
	}
	return created.Public(), nil
}
