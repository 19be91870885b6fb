package middlewarectx

import (
	"net/http"
	"strings"
	"time"

	"github.com/magabrotheeeer/zecko/internal/config"
)

// Transport описывает, как сессионный токен передаётся между шлюзом и клиентом.
// Режим выбирается один раз в конфигурации: в режиме token токен отдаётся в теле
// ответа и читается из Authorization, в режиме cookie он живёт в HTTP-only cookie.
// Режимы не смешиваются.
type Transport struct {
	mode       string
	cookieName string
	secure     bool
}

// NewTransport создаёт Transport из конфигурации.
func NewTransport(cfg config.Auth) *Transport {
	name := cfg.CookieName
	if name == "" {
		name = "zecko_session"
	}
	return &Transport{
		mode:       cfg.Transport,
		cookieName: name,
		secure:     cfg.CookieSecure,
	}
}

// CookieMode сообщает, работает ли шлюз в режиме cookie.
func (t *Transport) CookieMode() bool {
	return t.mode == config.TransportCookie
}

// Token извлекает токен из запроса согласно режиму.
func (t *Transport) Token(r *http.Request) string {
	if t.CookieMode() {
		c, err := r.Cookie(t.cookieName)
		if err != nil {
			return ""
		}
		return c.Value
	}
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

// Issue передаёт выданный токен клиенту. В режиме cookie токен ставится в cookie
// и в тело не попадает, поэтому возвращается пустая строка.
func (t *Transport) Issue(w http.ResponseWriter, token string, expiresAt time.Time) string {
	if !t.CookieMode() {
		return token
	}
	http.SetCookie(w, &http.Cookie{
		Name:     t.cookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   t.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return ""
}

// Expire удаляет сессионную cookie. В режиме token ничего не делает.
func (t *Transport) Expire(w http.ResponseWriter) {
	if !t.CookieMode() {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     t.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   t.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
