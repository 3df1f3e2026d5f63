package jwt

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims описывает пользовательские данные, хранящиеся в JWT.
type Claims struct {
	UserUID              string `json:"uid"`      // Идентификатор пользователя
	Username             string `json:"username"` // Имя пользователя
	Email                string `json:"email"`    // Электронная почта
	jwt.RegisteredClaims        // Встроенные стандартные claims JWT (ExpiresAt, IssuedAt и пр.)
}

// NewAccessToken выпускает access-токен с заданными uid, username и email,
// подписывая его access-секретом. Побочных эффектов не имеет.
func (m *MakerImpl) NewAccessToken(uid, username, email string) (string, error) {
	return m.sign(uid, username, email, m.accessSecret, m.accessTTL)
}

// NewRefreshToken выпускает refresh-токен, подписанный refresh-секретом.
func (m *MakerImpl) NewRefreshToken(uid, username, email string) (string, error) {
	return m.sign(uid, username, email, m.refreshSecret, m.refreshTTL)
}

func (m *MakerImpl) sign(uid, username, email, secret string, ttl time.Duration) (string, error) {
	const op = "jwt.sign"
	claims := Claims{
		UserUID:  uid,
		Username: username,
		Email:    email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return signed, nil
}

// ParseAccessToken разбирает access-токен, проверяет подпись и срок жизни.
func (m *MakerImpl) ParseAccessToken(tokenStr string) (*Claims, error) {
	return m.parse(tokenStr, m.accessSecret)
}

// ParseRefreshToken разбирает refresh-токен, проверяет подпись и срок жизни.
func (m *MakerImpl) ParseRefreshToken(tokenStr string) (*Claims, error) {
	return m.parse(tokenStr, m.refreshSecret)
}

func (m *MakerImpl) parse(tokenStr, secret string) (*Claims, error) {
	const op = "jwt.parse"
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(_ *jwt.Token) (any, error) {
		return []byte(secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}
	return claims, nil
}
