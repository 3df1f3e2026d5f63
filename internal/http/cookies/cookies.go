// Package cookies управляет транспортными cookie сессионных токенов.
// Оба токена выставляются как HttpOnly, чтобы исключить доступ из скриптов.
package cookies

import (
	"net/http"
	"time"
)

const (
	// AccessToken — имя cookie access-токена.
	AccessToken = "access_token"
	// RefreshToken — имя cookie refresh-токена.
	RefreshToken = "refresh_token"
)

// SetSession выставляет cookie с парой токенов сессии.
func SetSession(w http.ResponseWriter, access, refresh string, accessTTL, refreshTTL time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     AccessToken,
		Value:    access,
		Path:     "/",
		MaxAge:   int(accessTTL.Seconds()),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshToken,
		Value:    refresh,
		Path:     "/",
		MaxAge:   int(refreshTTL.Seconds()),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
}

// ClearSession сбрасывает cookie сессии.
func ClearSession(w http.ResponseWriter) {
	for _, name := range []string{AccessToken, RefreshToken} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   true,
			SameSite: http.SameSiteStrictMode,
		})
	}
}
