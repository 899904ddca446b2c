package httpx

import (
	"net/http"
	"strings"
)

// profileCookieMaxAge keeps the browser profile id for a year, like local storage.
const profileCookieMaxAge = 365 * 24 * 60 * 60

// isSecureRequest reports whether the request arrived over TLS, directly or via a proxy.
func isSecureRequest(r *http.Request) bool {
	return r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}

// cookieParams groups values needed to set a cookie.
type cookieParams struct {
	Name   string
	Value  string
	Domain string
	MaxAge int
}

func setCookie(w http.ResponseWriter, r *http.Request, p cookieParams) {
	http.SetCookie(w, &http.Cookie{
		Name:     p.Name,
		Value:    p.Value,
		Path:     "/",
		Domain:   p.Domain,
		HttpOnly: true,
		Secure:   isSecureRequest(r),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   p.MaxAge,
	})
}
