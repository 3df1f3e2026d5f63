package storage

import "errors"

var (
	// ErrUserNotFound возвращается, когда пользователь не найден в базе.
	ErrUserNotFound = errors.New("user not found")
	// ErrUserExists возвращается при нарушении уникальности username или email.
	// Уникальные индексы в базе — окончательная защита от гонок при регистрации.
	ErrUserExists = errors.New("user with this username or email already exists")
	// ErrTokenConflict возвращается, когда compare-and-swap ротации refresh-токена
	// не прошёл: хранимое значение изменилось после чтения.
	ErrTokenConflict = errors.New("stored refresh token has changed")
)
