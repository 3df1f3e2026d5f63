package login

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/account-service/internal/models"
	services "github.com/magabrotheeeer/account-service/internal/services/auth"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) Login(ctx context.Context, username, email, password string) (*services.LoginResult, error) {
	args := m.Called(ctx, username, email, password)
	resp, _ := args.Get(0).(*services.LoginResult)
	return resp, args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestLoginHandler_ServeHTTP(t *testing.T) {
	okResult := &services.LoginResult{
		Tokens: services.TokenPair{AccessToken: "access-1", RefreshToken: "refresh-1"},
		User:   &models.PublicUser{UID: "uid-1", Username: "user1", Email: "user1@example.com"},
	}

	tests := []struct {
		name           string
		requestBody    interface{}
		mockResp       *services.LoginResult
		mockErr        error
		wantStatusCode int
		wantStatus     string
		wantError      string
		wantCookies    bool
	}{
		{
			name:           "valid login",
			requestBody:    Request{Username: "user1", Password: "password123"},
			mockResp:       okResult,
			wantStatusCode: http.StatusOK,
			wantStatus:     "OK",
			wantCookies:    true,
		},
		{
			name:           "invalid json body",
			requestBody:    "not a json",
			wantStatusCode: http.StatusBadRequest,
			wantStatus:     "Error",
			wantError:      "invalid request body",
		},
		{
			name:           "validation error - missing password",
			requestBody:    Request{Username: "user1"},
			wantStatusCode: http.StatusBadRequest,
			wantStatus:     "Error",
			wantError:      "field Password is a required field",
		},
		{
			name:           "user not found",
			requestBody:    Request{Username: "user1", Password: "password123"},
			mockErr:        services.ErrUserNotFound,
			wantStatusCode: http.StatusNotFound,
			wantStatus:     "Error",
			wantError:      "user does not exist",
		},
		{
			name:           "invalid credentials",
			requestBody:    Request{Username: "user1", Password: "password123"},
			mockErr:        services.ErrInvalidCredentials,
			wantStatusCode: http.StatusUnauthorized,
			wantStatus:     "Error",
			wantError:      "invalid credentials",
		},
		{
			name:           "internal error",
			requestBody:    Request{Username: "user1", Password: "password123"},
			mockErr:        errors.New("db error"),
			wantStatusCode: http.StatusInternalServerError,
			wantStatus:     "Error",
			wantError:      "failed to login user",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			serviceMock := new(ServiceMock)
			handler := New(newNoopLogger(), serviceMock, 15*time.Minute, 720*time.Hour)

			if tt.mockResp != nil || tt.mockErr != nil {
				req := tt.requestBody.(Request)
				serviceMock.On("Login", mock.Anything, req.Username, req.Email, req.Password).
					Return(tt.mockResp, tt.mockErr).Once()
			}

			var bodyBytes []byte
			switch v := tt.requestBody.(type) {
			case string:
				bodyBytes = []byte(v)
			default:
				var err error
				bodyBytes, err = json.Marshal(tt.requestBody)
				if err != nil {
					t.Fatal(err)
				}
			}

			req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(bodyBytes))
			req = req.WithContext(context.WithValue(req.Context(), middleware.RequestIDKey, "reqid123"))
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)

			var got map[string]any
			assert.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
			assert.Equal(t, tt.wantStatus, got["status"])

			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, got["error"])
			}

			if tt.wantCookies {
				cookieNames := make(map[string]string)
				for _, c := range rec.Result().Cookies() {
					cookieNames[c.Name] = c.Value
				}
				assert.Equal(t, "access-1", cookieNames["access_token"])
				assert.Equal(t, "refresh-1", cookieNames["refresh_token"])

				data := got["data"].(map[string]any)
				assert.Equal(t, "access-1", data["access_token"])
				assert.Equal(t, "refresh-1", data["refresh_token"])
			}

			serviceMock.AssertExpectations(t)
		})
	}
}
