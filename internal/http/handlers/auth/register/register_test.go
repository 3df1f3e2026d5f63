package register

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/account-service/internal/models"
	services "github.com/magabrotheeeer/account-service/internal/services/registration"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) Register(ctx context.Context, in services.Input) (*models.PublicUser, error) {
	args := m.Called(ctx, in)
	resp, _ := args.Get(0).(*models.PublicUser)
	return resp, args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

// buildForm собирает multipart-форму регистрации с необязательными файлами.
func buildForm(t *testing.T, fields map[string]string, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for name, value := range fields {
		require.NoError(t, writer.WriteField(name, value))
	}
	for field, filename := range files {
		part, err := writer.CreateFormFile(field, filename)
		require.NoError(t, err)
		_, err = part.Write([]byte("imagebytes"))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func validFields() map[string]string {
	return map[string]string{
		"username": "testuser",
		"email":    "test@example.com",
		"fullname": "Test User",
		"password": "password123",
	}
}

func doRequest(handler *Handler, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", body)
	req.Header.Set("Content-Type", contentType)
	req = req.WithContext(context.WithValue(req.Context(), middleware.RequestIDKey, "reqid123"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var got map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	return got
}

func TestRegisterHandler_Success(t *testing.T) {
	serviceMock := new(ServiceMock)
	handler := New(newNoopLogger(), serviceMock)

	serviceMock.On("Register", mock.Anything, mock.MatchedBy(func(in services.Input) bool {
		return in.Username == "testuser" && in.Email == "test@example.com" &&
			in.AvatarPath != "" && in.CoverImagePath != ""
	})).Return(&models.PublicUser{UID: "uid-1", Username: "testuser"}, nil).Once()

	body, contentType := buildForm(t, validFields(), map[string]string{
		"avatar":     "avatar.png",
		"coverImage": "cover.png",
	})
	rec := doRequest(handler, body, contentType)

	assert.Equal(t, http.StatusCreated, rec.Code)
	got := decodeBody(t, rec)
	assert.Equal(t, "OK", got["status"])

	serviceMock.AssertExpectations(t)
}

func TestRegisterHandler_OmittedCoverImage(t *testing.T) {
	serviceMock := new(ServiceMock)
	handler := New(newNoopLogger(), serviceMock)

	// Форма без обложки: сервис получает пустой путь, регистрация проходит.
	serviceMock.On("Register", mock.Anything, mock.MatchedBy(func(in services.Input) bool {
		return in.AvatarPath != "" && in.CoverImagePath == ""
	})).Return(&models.PublicUser{UID: "uid-1", Username: "testuser"}, nil).Once()

	body, contentType := buildForm(t, validFields(), map[string]string{
		"avatar": "avatar.png",
	})
	rec := doRequest(handler, body, contentType)

	assert.Equal(t, http.StatusCreated, rec.Code)
	serviceMock.AssertExpectations(t)
}

func TestRegisterHandler_MissingAvatar(t *testing.T) {
	serviceMock := new(ServiceMock)
	handler := New(newNoopLogger(), serviceMock)

	body, contentType := buildForm(t, validFields(), nil)
	rec := doRequest(handler, body, contentType)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	got := decodeBody(t, rec)
	assert.Equal(t, "Error", got["status"])
	assert.Equal(t, "avatar file is required", got["error"])

	serviceMock.AssertNotCalled(t, "Register", mock.Anything, mock.Anything)
}

func TestRegisterHandler_ValidationFailed(t *testing.T) {
	serviceMock := new(ServiceMock)
	handler := New(newNoopLogger(), serviceMock)

	fields := validFields()
	fields["email"] = "not-an-email"
	body, contentType := buildForm(t, fields, map[string]string{"avatar": "avatar.png"})
	rec := doRequest(handler, body, contentType)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	got := decodeBody(t, rec)
	assert.Equal(t, "Error", got["status"])
	assert.Equal(t, "field Email must be a valid email", got["error"])
}

func TestRegisterHandler_DuplicateIdentity(t *testing.T) {
	serviceMock := new(ServiceMock)
	handler := New(newNoopLogger(), serviceMock)

	serviceMock.On("Register", mock.Anything, mock.Anything).
		Return(nil, services.ErrUserExists).Once()

	body, contentType := buildForm(t, validFields(), map[string]string{"avatar": "avatar.png"})
	rec := doRequest(handler, body, contentType)

	assert.Equal(t, http.StatusConflict, rec.Code)
	got := decodeBody(t, rec)
	assert.Equal(t, "user with this username or email already exists", got["error"])

	serviceMock.AssertExpectations(t)
}
