package handlers

import (
	"net/http"
	"time"

	"github.com/iudanet/rentspace/internal/server/session"
	"github.com/iudanet/rentspace/pkg/api"
)

// refresh cookie живет "вечно": сессию завершает только удаление токена из хранилища
const refreshCookieLifetime = 100 * 365 * 24 * time.Hour

// SessionCookies читает токены сессии из cookie запроса
func SessionCookies(r *http.Request) (access, refresh string) {
	if c, err := r.Cookie(api.AccessTokenCookie); err == nil {
		access = c.Value
	}
	if c, err := r.Cookie(api.RefreshTokenCookie); err == nil {
		refresh = c.Value
	}
	return access, refresh
}

func setSessionCookies(w http.ResponseWriter, pair session.Pair, secure bool, now time.Time) {
	http.SetCookie(w, sessionCookie(api.AccessTokenCookie, pair.AccessToken, secure))

	refresh := sessionCookie(api.RefreshTokenCookie, pair.RefreshToken, secure)
	refresh.Expires = now.Add(refreshCookieLifetime)
	http.SetCookie(w, refresh)
}

func clearSessionCookies(w http.ResponseWriter, secure bool) {
	for _, name := range []string{api.AccessTokenCookie, api.RefreshTokenCookie} {
		c := sessionCookie(name, "", secure)
		c.MaxAge = -1
		c.Expires = time.Unix(0, 0)
		http.SetCookie(w, c)
	}
}

func sessionCookie(name, value string, secure bool) *http.Cookie {
	c := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteNoneMode,
	}
	if !secure {
		// браузеры отбрасывают SameSite=None без Secure
		c.SameSite = http.SameSiteLaxMode
	}
	return c
}
