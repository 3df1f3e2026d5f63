// Package models содержит доменную модель пользователя системы,
// включающую данные учётной записи, хэш пароля, ссылки на медиафайлы
// и текущий refresh-токен. Структуры используются в бизнес‑логике
// и при работе с хранилищем.
package models

import "time"

// User представляет зарегистрированного пользователя системы.
//
// PasswordHash и RefreshToken никогда не сериализуются наружу:
// для ответов API используется PublicUser.
type User struct {
	UID           string    // Уникальный идентификатор пользователя
	Username      string    // Имя пользователя (уникальное, в нижнем регистре)
	Email         string    // Электронная почта (уникальная)
	FullName      string    // Полное имя
	PasswordHash  string    // bcrypt-хэш пароля
	AvatarURL     string    // Ссылка на аватар, обязательна после регистрации
	CoverImageURL string    // Ссылка на обложку профиля, может быть пустой
	RefreshToken  *string   // Текущий refresh-токен, nil после выхода
	CreatedAt     time.Time // Дата создания записи
}

// PublicUser — безопасное представление пользователя для ответов API.
type PublicUser struct {
	UID           string    `json:"uid"`
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	FullName      string    `json:"fullname"`
	AvatarURL     string    `json:"avatar_url"`
	CoverImageURL string    `json:"cover_image_url,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// Public возвращает представление пользователя без пароля и refresh-токена.
func (u *User) Public() *PublicUser {
	return &PublicUser{
		UID:           u.UID,
		Username:      u.Username,
		Email:         u.Email,
		FullName:      u.FullName,
		AvatarURL:     u.AvatarURL,
		CoverImageURL: u.CoverImageURL,
		CreatedAt:     u.CreatedAt,
	}
}
