package session

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

type ctxKey struct{}

// Middleware assigns each visitor a session cookie. The cookie value is an
// opaque uuid; nothing about the cart is stored client-side.
type Middleware struct {
	CookieName string
	Secure     bool
}

// Handler ensures the request carries a session id, issuing a cookie when
// missing, and stores the id in the request context.
func (m Middleware) Handler(next http.Handler) http.Handler {
	name := m.CookieName
	if name == "" {
		name = "storefront_session"
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := ""
		if cookie, err := r.Cookie(name); err == nil {
			id = strings.TrimSpace(cookie.Value)
		}
		if id == "" {
			id = uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Name:     name,
				Value:    id,
				Path:     "/",
				HttpOnly: true,
				Secure:   m.Secure,
				SameSite: http.SameSiteLaxMode,
			})
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, id)))
	})
}

// FromContext extracts the session id set by the middleware.
func FromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(ctxKey{}).(string)
	return id, ok && id != ""
}
