package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"
)

const (
	CookieName   = "admin_token"
	LoginPath    = "/admin/login"
	bearerPrefix = "Bearer "
)

type ctxKey string

const ctxAdmin ctxKey = "admin"

// RequireAdmin lets the request through only with a valid token from the admin_token
// cookie or an Authorization bearer header. Browsers are redirected to the login page,
// everything else gets 401.
func RequireAdmin(a *Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := a.Validate(TokenFromRequest(r))
			if err != nil {
				unauthorized(w, r)
				return
			}
			ctx := context.WithValue(r.Context(), ctxAdmin, claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func TokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, bearerPrefix) {
		return strings.TrimSpace(strings.TrimPrefix(h, bearerPrefix))
	}
	if c, err := r.Cookie(CookieName); err == nil {
		return c.Value
	}
	return ""
}

// AdminFromContext returns the authenticated admin name, or "".
func AdminFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxAdmin).(string); ok {
		return v
	}
	return ""
}

func wantsHTML(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}

func unauthorized(w http.ResponseWriter, r *http.Request) {
	if wantsHTML(r) {
		http.Redirect(w, r, LoginPath, http.StatusSeeOther)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": "unauthorized"})
}

func SetCookie(w http.ResponseWriter, token string, exp time.Time, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		Expires:  exp,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func ClearCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}
