package auth

import (
	"net/http"
	"time"
)

const (
	SessionCookie = "user_session"
	EmailCookie   = "user_email"
)

// CookieOptions controla atributos que dependen del entorno.
type CookieOptions struct {
	Secure bool
}

// SetSessionCookies escribe el par user_session (HttpOnly) + user_email.
func SetSessionCookies(writer http.ResponseWriter, token, email string, ttl time.Duration, options CookieOptions) {
	maxAge := int(ttl / time.Second)
	http.SetCookie(writer, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   options.Secure,
		SameSite: http.SameSiteStrictMode,
	})
	http.SetCookie(writer, &http.Cookie{
		Name:     EmailCookie,
		Value:    email,
		Path:     "/",
		MaxAge:   maxAge,
		Secure:   options.Secure,
		SameSite: http.SameSiteStrictMode,
	})
}

// ClearSessionCookies expira ambas cookies.
func ClearSessionCookies(writer http.ResponseWriter, options CookieOptions) {
	for _, name := range []string{SessionCookie, EmailCookie} {
		http.SetCookie(writer, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: name == SessionCookie,
			Secure:   options.Secure,
			SameSite: http.SameSiteStrictMode,
		})
	}
}
