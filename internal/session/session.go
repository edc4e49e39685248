// Package session gives every visitor a stable anonymous id carried in a cookie.
// The id keys the visitor's cart.
package session

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
)

const CookieName = "sid"

type ctxKey string

const ctxSessionID ctxKey = "session_id"

type Options struct {
	TTL    time.Duration
	Secure bool
}

// Middleware reuses a valid sid cookie or issues a new one, and stores the id in the request context.
func Middleware(opts Options) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sid := ""
			if c, err := r.Cookie(CookieName); err == nil {
				if _, perr := uuid.Parse(c.Value); perr == nil {
					sid = c.Value
				}
			}
			if sid == "" {
				sid = uuid.NewString()
				cookie := &http.Cookie{
					Name:     CookieName,
					Value:    sid,
					Path:     "/",
					HttpOnly: true,
					Secure:   opts.Secure,
					SameSite: http.SameSiteLaxMode,
				}
				if opts.TTL > 0 {
					cookie.MaxAge = int(opts.TTL / time.Second)
				}
				http.SetCookie(w, cookie)
			}

			next.ServeHTTP(w, r.WithContext(WithID(r.Context(), sid)))
		})
	}
}

func WithID(ctx context.Context, sid string) context.Context {
	return context.WithValue(ctx, ctxSessionID, sid)
}

// FromContext returns the visitor id, or "" outside the middleware.
func FromContext(ctx context.Context) string {
	if v := ctx.Value(ctxSessionID); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
