package httpapi

import (
	"net/http"
	"strings"
)

const (
	corsMethods = "GET,POST,PUT,DELETE,OPTIONS"
	corsHeaders = "Content-Type, Authorization, X-Request-Id"
)

// corsPolicy lets the storefront and admin frontends call the API with cookies.
// The origin is echoed back instead of "*" because credentialed requests need it.
type corsPolicy struct {
	anyOrigin bool
	origins   map[string]struct{}
}

func newCORSPolicy(allowOrigins []string) corsPolicy {
	p := corsPolicy{origins: make(map[string]struct{}, len(allowOrigins))}
	for _, o := range allowOrigins {
		o = strings.ToLower(strings.TrimSpace(o))
		if o == "*" {
			p.anyOrigin = true
			continue
		}
		if o != "" {
			p.origins[o] = struct{}{}
		}
	}
	return p
}

func (p corsPolicy) allows(origin string) bool {
	if origin == "" {
		return false
	}
	if p.anyOrigin {
		return true
	}
	_, ok := p.origins[strings.ToLower(strings.TrimSpace(origin))]
	return ok
}

// CORS applies the allowed origins to every response and answers preflights with 204.
func CORS(allowOrigins []string) func(http.Handler) http.Handler {
	policy := newCORSPolicy(allowOrigins)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Add("Vary", "Origin")
			if origin := r.Header.Get("Origin"); policy.allows(origin) {
				h.Set("Access-Control-Allow-Origin", origin)
				h.Set("Access-Control-Allow-Credentials", "true")
				h.Set("Access-Control-Allow-Methods", corsMethods)
				h.Set("Access-Control-Allow-Headers", corsHeaders)
			}

			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
