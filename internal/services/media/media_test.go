package services_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/account-service/internal/models"
	services "github.com/magabrotheeeer/account-service/internal/services/media"
	"github.com/magabrotheeeer/account-service/internal/storage"
)

type UserRepoMock struct {
	mock.Mock
}

func (m *UserRepoMock) GetUser(ctx context.Context, uid string) (*models.User, error) {
	args := m.Called(ctx, uid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *UserRepoMock) UpdateAvatarURL(ctx context.Context, uid, url string) error {
	args := m.Called(ctx, uid, url)
	return args.Error(0)
}

func (m *UserRepoMock) UpdateCoverImageURL(ctx context.Context, uid, url string) error {
	args := m.Called(ctx, uid, url)
	return args.Error(0)
}

type UploaderMock struct {
	mock.Mock
}

func (m *UploaderMock) Upload(ctx context.Context, localPath string) (string, error) {
	args := m.Called(ctx, localPath)
	return args.String(0), args.Error(1)
}

type CleanupMock struct {
	mock.Mock
}

func (m *CleanupMock) DispatchDeletion(url string) error {
	args := m.Called(url)
	return args.Error(0)
}

type CacheMock struct {
	mock.Mock
}

func (m *CacheMock) Invalidate(key string) error {
	args := m.Called(key)
	return args.Error(0)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

const (
	oldAvatarURL = "https://media.example.com/media/2026/01/old-avatar.png"
	newAvatarURL = "https://media.example.com/media/2026/02/new-avatar.png"
	oldCoverURL  = "https://media.example.com/media/2026/01/old-cover.png"
	newCoverURL  = "https://media.example.com/media/2026/02/new-cover.png"
)

func mediaUser() *models.User {
	return &models.User{
		UID:           "uid-1",
		Username:      "testuser",
		Email:         "test@example.com",
		AvatarURL:     oldAvatarURL,
		CoverImageURL: oldCoverURL,
	}
}

func newService(r *UserRepoMock, u *UploaderMock, c *CleanupMock, cc *CacheMock) *services.MediaService {
	return services.NewMediaService(r, u, c, cc, newNoopLogger())
}

func TestMediaService_ReplaceAvatar(t *testing.T) {
	t.Run("successful replacement dispatches cleanup of old file", func(t *testing.T) {
		repo := new(UserRepoMock)
		uploader := new(UploaderMock)
		cleanup := new(CleanupMock)
		cacheMock := new(CacheMock)
		svc := newService(repo, uploader, cleanup, cacheMock)

		repo.On("GetUser", mock.Anything, "uid-1").Return(mediaUser(), nil).Once()
		uploader.On("Upload", mock.Anything, "/tmp/new.png").Return(newAvatarURL, nil).Once()
		repo.On("UpdateAvatarURL", mock.Anything, "uid-1", newAvatarURL).Return(nil).Once()
		cacheMock.On("Invalidate", "user:uid-1").Return(nil).Once()
		cleanup.On("DispatchDeletion", oldAvatarURL).Return(nil).Once()

		url, err := svc.ReplaceAvatar(context.Background(), "uid-1", "/tmp/new.png")
		assert.NoError(t, err)
		assert.Equal(t, newAvatarURL, url)

		repo.AssertExpectations(t)
		uploader.AssertExpectations(t)
		cleanup.AssertExpectations(t)
		cacheMock.AssertExpectations(t)
	})

	t.Run("missing file is rejected", func(t *testing.T) {
		svc := newService(new(UserRepoMock), new(UploaderMock), new(CleanupMock), new(CacheMock))

		_, err := svc.ReplaceAvatar(context.Background(), "uid-1", "")
		assert.ErrorIs(t, err, services.ErrMissingFile)
	})

	t.Run("upload failure keeps stored url untouched", func(t *testing.T) {
		repo := new(UserRepoMock)
		uploader := new(UploaderMock)
		svc := newService(repo, uploader, new(CleanupMock), new(CacheMock))

		repo.On("GetUser", mock.Anything, "uid-1").Return(mediaUser(), nil).Once()
		uploader.On("Upload", mock.Anything, "/tmp/new.png").
			Return("", errors.New("storage unavailable")).Once()

		_, err := svc.ReplaceAvatar(context.Background(), "uid-1", "/tmp/new.png")
		assert.ErrorIs(t, err, services.ErrUploadFailed)

		repo.AssertNotCalled(t, "UpdateAvatarURL", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("cleanup dispatch failure does not fail the replacement", func(t *testing.T) {
		repo := new(UserRepoMock)
		uploader := new(UploaderMock)
		cleanup := new(CleanupMock)
		cacheMock := new(CacheMock)
		svc := newService(repo, uploader, cleanup, cacheMock)

		repo.On("GetUser", mock.Anything, "uid-1").Return(mediaUser(), nil).Once()
		uploader.On("Upload", mock.Anything, "/tmp/new.png").Return(newAvatarURL, nil).Once()
		repo.On("UpdateAvatarURL", mock.Anything, "uid-1", newAvatarURL).Return(nil).Once()
		cacheMock.On("Invalidate", "user:uid-1").Return(nil).Once()
		cleanup.On("DispatchDeletion", oldAvatarURL).
			Return(errors.New("broker unavailable")).Once()

		url, err := svc.ReplaceAvatar(context.Background(), "uid-1", "/tmp/new.png")
		assert.NoError(t, err)
		assert.Equal(t, newAvatarURL, url)
	})

	t.Run("unknown user", func(t *testing.T) {
		repo := new(UserRepoMock)
		svc := newService(repo, new(UploaderMock), new(CleanupMock), new(CacheMock))

		repo.On("GetUser", mock.Anything, "uid-1").Return(nil, storage.ErrUserNotFound).Once()

		_, err := svc.ReplaceAvatar(context.Background(), "uid-1", "/tmp/new.png")
		assert.ErrorIs(t, err, services.ErrUserNotFound)
	})
}

func TestMediaService_ReplaceCoverImage(t *testing.T) {
	t.Run("successful replacement", func(t *testing.T) {
		repo := new(UserRepoMock)
		uploader := new(UploaderMock)
		cleanup := new(CleanupMock)
		cacheMock := new(CacheMock)
		svc := newService(repo, uploader, cleanup, cacheMock)

		repo.On("GetUser", mock.Anything, "uid-1").Return(mediaUser(), nil).Once()
		uploader.On("Upload", mock.Anything, "/tmp/cover.png").Return(newCoverURL, nil).Once()
		repo.On("UpdateCoverImageURL", mock.Anything, "uid-1", newCoverURL).Return(nil).Once()
		cacheMock.On("Invalidate", "user:uid-1").Return(nil).Once()
		cleanup.On("DispatchDeletion", oldCoverURL).Return(nil).Once()

		url, err := svc.ReplaceCoverImage(context.Background(), "uid-1", "/tmp/cover.png")
		assert.NoError(t, err)
		assert.Equal(t, newCoverURL, url)
	})

	t.Run("empty path is a no-op returning current value", func(t *testing.T) {
		repo := new(UserRepoMock)
		uploader := new(UploaderMock)
		svc := newService(repo, uploader, new(CleanupMock), new(CacheMock))

		repo.On("GetUser", mock.Anything, "uid-1").Return(mediaUser(), nil).Once()

		url, err := svc.ReplaceCoverImage(context.Background(), "uid-1", "")
		assert.NoError(t, err)
		assert.Equal(t, oldCoverURL, url)

		uploader.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything)
	})

	t.Run("no cleanup when previous value is empty", func(t *testing.T) {
		repo := new(UserRepoMock)
		uploader := new(UploaderMock)
		cleanup := new(CleanupMock)
		cacheMock := new(CacheMock)
		svc := newService(repo, uploader, cleanup, cacheMock)

		user := mediaUser()
		user.CoverImageURL = ""
		repo.On("GetUser", mock.Anything, "uid-1").Return(user, nil).Once()
		uploader.On("Upload", mock.Anything, "/tmp/cover.png").Return(newCoverURL, nil).Once()
		repo.On("UpdateCoverImageURL", mock.Anything, "uid-1", newCoverURL).Return(nil).Once()
		cacheMock.On("Invalidate", "user:uid-1").Return(nil).Once()

		url, err := svc.ReplaceCoverImage(context.Background(), "uid-1", "/tmp/cover.png")
		assert.NoError(t, err)
		assert.Equal(t, newCoverURL, url)

		cleanup.AssertNotCalled(t, "DispatchDeletion", mock.Anything)
	})
}
