// Package services содержит логику бизнес-уровня для аутентификации:
// вход, выпуск и ротация пары access/refresh токенов, выход и смена пароля.
//
// Сервис — единственный писатель хранимого refresh-токена пользователя.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/magabrotheeeer/account-service/internal/lib/jwt"
	"github.com/magabrotheeeer/account-service/internal/lib/password"
	"github.com/magabrotheeeer/account-service/internal/models"
	"github.com/magabrotheeeer/account-service/internal/storage"
)

var (
	// ErrInvalidRequest — не передан идентификатор или пароль; проверяется
	// до обращения к хранилищу.
	ErrInvalidRequest = errors.New("identity and password are required")
	// ErrUserNotFound — пользователь с таким username или email не существует.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidCredentials — пароль не совпал с хэшем.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnauthenticated — refresh-токен не представлен.
	ErrUnauthenticated = errors.New("refresh token is missing")
	// ErrInvalidToken — refresh-токен не прошёл проверку подписи или срока.
	ErrInvalidToken = errors.New("invalid refresh token")
	// ErrTokenReplayed — представленный refresh-токен не совпадает с хранимым:
	// он уже был ротирован или инвалидирован.
	ErrTokenReplayed = errors.New("refresh token reuse detected")
	// ErrTokenIssuance — непредвиденный сбой при выпуске или сохранении пары
	// токенов; деталь ошибки хранилища наружу не раскрывается.
	ErrTokenIssuance = errors.New("failed to issue token pair")
)

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	// FindUserByIdentity возвращает пользователя по username или email.
	FindUserByIdentity(ctx context.Context, username, email string) (*models.User, error)

	// GetUser возвращает пользователя по UID.
	GetUser(ctx context.Context, uid string) (*models.User, error)

	// UpdateRefreshToken безусловно устанавливает или сбрасывает refresh-токен.
	UpdateRefreshToken(ctx context.Context, uid string, token *string) error

	// RotateRefreshToken заменяет refresh-токен по принципу compare-and-swap.
	RotateRefreshToken(ctx context.Context, uid, previous, next string) error

	// UpdatePassword сохраняет новый хэш пароля.
	UpdatePassword(ctx context.Context, uid, passwordHash string) error
}

// TokenPair — выпущенная пара токенов сессии.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// LoginResult — результат успешного входа: пара токенов и
// безопасное представление пользователя.
type LoginResult struct {
	Tokens TokenPair
	User   *models.PublicUser
}

// SessionService отвечает за жизненный цикл сессионных токенов.
type SessionService struct {
	users    UserRepository
	jwtMaker jwt.Maker
}

// NewSessionService создает новый экземпляр SessionService.
func NewSessionService(users UserRepository, jwtMaker jwt.Maker) *SessionService {
	return &SessionService{
		users:    users,
		jwtMaker: jwtMaker,
	}
}

// Login проверяет идентификатор и пароль пользователя, выпускает пару
// токенов и сохраняет refresh-токен, перезаписывая прежнее значение.
// Перезапись инвалидирует любой ранее выданный refresh-токен.
//
// Если переданы и username, и email, достаточно совпадения любого из них.
func (s *SessionService) Login(ctx context.Context, username, email, rawPassword string) (*LoginResult, error) {
	const op = "services.auth.Login"

	if (username == "" && email == "") || rawPassword == "" {
		return nil, ErrInvalidRequest
	}

	user, err := s.users.FindUserByIdentity(ctx, strings.ToLower(username), email)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		return nil, ErrInvalidCredentials
	}

	pair, err := s.issuePair(user)
	if err != nil {
		return nil, ErrTokenIssuance
	}
	if err := s.users.UpdateRefreshToken(ctx, user.UID, &pair.RefreshToken); err != nil {
		return nil, ErrTokenIssuance
	}

	return &LoginResult{
		Tokens: pair,
		User:   user.Public(),
	}, nil
}

// Refresh проверяет представленный refresh-токен и проводит ротацию:
// выпускает новую пару и заменяет хранимый токен через compare-and-swap.
//
// Токен, не совпадающий с хранимым, отклоняется как повторно
// использованный независимо от валидности его подписи. Конфликт
// compare-and-swap означает конкурентную ротацию и отклоняется так же.
// Возвращаемый refresh-токен — всегда только что выпущенное значение.
func (s *SessionService) Refresh(ctx context.Context, presented string) (*TokenPair, error) {
	const op = "services.auth.Refresh"

	if presented == "" {
		return nil, ErrUnauthenticated
	}

	claims, err := s.jwtMaker.ParseRefreshToken(presented)
	if err != nil {
		return nil, ErrInvalidToken
	}

	user, err := s.users.GetUser(ctx, claims.UserUID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if user.RefreshToken == nil || *user.RefreshToken != presented {
		return nil, ErrTokenReplayed
	}

	pair, err := s.issuePair(user)
	if err != nil {
		return nil, ErrTokenIssuance
	}
	if err := s.users.RotateRefreshToken(ctx, user.UID, presented, pair.RefreshToken); err != nil {
		if errors.Is(err, storage.ErrTokenConflict) {
			return nil, ErrTokenReplayed
		}
		return nil, ErrTokenIssuance
	}

	return &pair, nil
}

// Logout сбрасывает хранимый refresh-токен пользователя. Очистка
// транспортных cookie выполняется вызывающей стороной только после
// успешного сброса.
func (s *SessionService) Logout(ctx context.Context, uid string) error {
	const op = "services.auth.Logout"

	if err := s.users.UpdateRefreshToken(ctx, uid, nil); err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ChangePassword проверяет старый пароль и сохраняет хэш нового.
// Обновляется только колонка пароля, прочие поля записи не проверяются.
func (s *SessionService) ChangePassword(ctx context.Context, uid, oldPassword, newPassword string) error {
	const op = "services.auth.ChangePassword"

	user, err := s.users.GetUser(ctx, uid)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := password.CompareHash(user.PasswordHash, oldPassword); err != nil {
		return ErrInvalidCredentials
	}

	hashed, err := password.GetHash(newPassword)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.users.UpdatePassword(ctx, uid, hashed); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *SessionService) issuePair(user *models.User) (TokenPair, error) {
	access, err := s.jwtMaker.NewAccessToken(user.UID, user.Username, user.Email)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := s.jwtMaker.NewRefreshToken(user.UID, user.Username, user.Email)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
