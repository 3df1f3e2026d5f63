// Package jwt реализует выпуск и разбор пары access/refresh JWT токенов.
//
// Maker определяет интерфейс для создания и проверки токенов обоих классов.
// MakerImpl — конкретная реализация с раздельными секретами и сроками жизни:
// компрометация секрета одного класса токенов не позволяет подделать другой.
package jwt

import (
	"errors"
	"time"
)

// ErrInvalidToken возвращается при любом невалидном токене:
// неверная подпись, истёкший срок или чужой класс токена.
var ErrInvalidToken = errors.New("invalid token")

// Maker описывает интерфейс для выпуска и разбора токенов сессии.
type Maker interface {
	// NewAccessToken выпускает короткоживущий access-токен.
	NewAccessToken(uid, username, email string) (string, error)
	// NewRefreshToken выпускает долгоживущий refresh-токен.
	NewRefreshToken(uid, username, email string) (string, error)
	// ParseAccessToken проверяет access-токен и возвращает его claims.
	ParseAccessToken(tokenStr string) (*Claims, error)
	// ParseRefreshToken проверяет refresh-токен и возвращает его claims.
	ParseRefreshToken(tokenStr string) (*Claims, error)
}

// MakerImpl реализует интерфейс Maker с раздельными секретными ключами
// и временем жизни для access и refresh токенов.
type MakerImpl struct {
	accessSecret  string
	refreshSecret string
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

// NewMaker создаёт новый экземпляр MakerImpl.
func NewMaker(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *MakerImpl {
	return &MakerImpl{
		accessSecret:  accessSecret,
		refreshSecret: refreshSecret,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}
