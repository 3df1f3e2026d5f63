// Package services содержит логику бизнес-уровня для замены медиафайлов
// профиля: аватара и обложки. Новая версия файла всегда загружается до
// удаления старой, а удаление выполняется в фоне и не влияет на результат.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/account-service/internal/cache"
	"github.com/magabrotheeeer/account-service/internal/lib/sl"
	"github.com/magabrotheeeer/account-service/internal/models"
	"github.com/magabrotheeeer/account-service/internal/storage"
)

var (
	// ErrUserNotFound — пользователь с таким UID не существует.
	ErrUserNotFound = errors.New("user not found")
	// ErrMissingFile — не передан файл для обязательного поля.
	ErrMissingFile = errors.New("media file is required")
	// ErrUploadFailed — внешнее хранилище отклонило загрузку;
	// запись пользователя при этом не изменяется.
	ErrUploadFailed = errors.New("failed to upload media file")
)

// UserRepository описывает контракт для чтения пользователя
// и точечного обновления ссылок на медиафайлы.
type UserRepository interface {
	GetUser(ctx context.Context, uid string) (*models.User, error)
	UpdateAvatarURL(ctx context.Context, uid, url string) error
	UpdateCoverImageURL(ctx context.Context, uid, url string) error
}

// Uploader описывает контракт внешнего хранилища медиафайлов.
type Uploader interface {
	Upload(ctx context.Context, localPath string) (string, error)
}

// CleanupDispatcher ставит задачу удаления замещённого файла в очередь.
type CleanupDispatcher interface {
	DispatchDeletion(url string) error
}

// ProfileCache инвалидирует закэшированный профиль после изменения.
type ProfileCache interface {
	Invalidate(key string) error
}

// MediaService координирует замену аватара и обложки профиля.
type MediaService struct {
	users    UserRepository
	uploader Uploader
	cleanup  CleanupDispatcher
	cache    ProfileCache
	log      *slog.Logger
}

// NewMediaService создает новый экземпляр MediaService.
func NewMediaService(users UserRepository, uploader Uploader, cleanup CleanupDispatcher, cache ProfileCache, log *slog.Logger) *MediaService {
	return &MediaService{
		users:    users,
		uploader: uploader,
		cleanup:  cleanup,
		cache:    cache,
		log:      log,
	}
}

// ReplaceAvatar заменяет аватар пользователя и возвращает новую ссылку.
// Аватар обязателен: пустой путь к файлу отклоняется.
func (s *MediaService) ReplaceAvatar(ctx context.Context, uid, localPath string) (string, error) {
	if localPath == "" {
		return "", ErrMissingFile
	}
	return s.replace(ctx, uid, localPath,
		func(u *models.User) string { return u.AvatarURL },
		s.users.UpdateAvatarURL)
}

// ReplaceCoverImage заменяет обложку профиля и возвращает новую ссылку.
// Обложка необязательна: пустой путь — успешная no-op операция,
// возвращающая текущее значение.
func (s *MediaService) ReplaceCoverImage(ctx context.Context, uid, localPath string) (string, error) {
	if localPath == "" {
		user, err := s.users.GetUser(ctx, uid)
		if err != nil {
			if errors.Is(err, storage.ErrUserNotFound) {
				return "", ErrUserNotFound
			}
			return "", err
		}
		return user.CoverImageURL, nil
	}
	return s.replace(ctx, uid, localPath,
		func(u *models.User) string { return u.CoverImageURL },
		s.users.UpdateCoverImageURL)
}

// replace выполняет общую последовательность: чтение текущей ссылки,
// загрузка нового файла, обновление записи и фоновое удаление старого
// файла. Порядок "сначала новый, потом удаление старого" гарантирует,
// что запись пользователя всегда указывает на существующий объект.
func (s *MediaService) replace(ctx context.Context, uid, localPath string,
	current func(*models.User) string,
	update func(context.Context, string, string) error) (string, error) {
	const op = "services.media.replace"

	user, err := s.users.GetUser(ctx, uid)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return "", ErrUserNotFound
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}
	oldURL := current(user)

	newURL, err := s.uploader.Upload(ctx, localPath)
	if err != nil {
		return "", ErrUploadFailed
	}

	if err := update(ctx, uid, newURL); err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return "", ErrUserNotFound
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}

	if err := s.cache.Invalidate(cache.UserKey(uid)); err != nil {
		s.log.Warn("failed to invalidate profile cache", sl.Err(err))
	}

	// Удаление старого файла — фоновая задача: её исход не меняет
	// уже зафиксированный результат замены и не блокирует вызывающего.
	if oldURL != "" {
		if err := s.cleanup.DispatchDeletion(oldURL); err != nil {
			s.log.Error("failed to dispatch media cleanup",
				slog.String("url", oldURL), sl.Err(err))
		}
	}

	return newURL, nil
}
