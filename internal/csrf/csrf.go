package csrf

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
)

const (
	cookieName = "logview_csrf_token"
	headerName = "X-CSRF-Token"
	tokenLen   = 32
)

// safeMethods never mutate state; they only make sure the token cookie
// exists so the browser UI can echo it back on uploads and deletes.
var safeMethods = map[string]bool{
	http.MethodGet:     true,
	http.MethodHead:    true,
	http.MethodOptions: true,
}

// Protect implements the double-submit cookie pattern: safe methods seed a
// JS-readable cookie, mutating methods must present the matching header.
func Protect(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if safeMethods[r.Method] {
			ensureCookie(w, r)
			next.ServeHTTP(w, r)
			return
		}

		cookie, err := r.Cookie(cookieName)
		if err != nil || cookie.Value == "" {
			http.Error(w, "Forbidden: missing CSRF token", http.StatusForbidden)
			return
		}
		if token := r.Header.Get(headerName); token == "" || token != cookie.Value {
			http.Error(w, "Forbidden: invalid CSRF token", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func ensureCookie(w http.ResponseWriter, r *http.Request) {
	if _, err := r.Cookie(cookieName); err == nil {
		return
	}
	b := make([]byte, tokenLen)
	if _, err := rand.Read(b); err != nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    hex.EncodeToString(b),
		Path:     "/",
		HttpOnly: false,
		SameSite: http.SameSiteStrictMode,
	})
}
