package server

import (
	"net/http"
	"strings"
)

// SecurityConfig controls the security headers and CORS policy applied to
// every response.
type SecurityConfig struct {
	// EnableCORS adds Access-Control-* headers for allowed origins.
	EnableCORS bool
	// AllowedOrigins lists origins allowed by CORS. "*" allows any origin.
	AllowedOrigins []string
	// AllowedMethods is advertised in Access-Control-Allow-Methods.
	AllowedMethods []string
	// MaxBodyBytes bounds POST bodies. Seeds may be arbitrarily large, so
	// this is the only cap on their size.
	MaxBodyBytes int64
}

// DefaultMaxBodyBytes is the POST body limit of DefaultSecurityConfig.
const DefaultMaxBodyBytes = 8 << 20

// DefaultSecurityConfig allows cross-origin reads from any origin.
func DefaultSecurityConfig() SecurityConfig {
	return SecurityConfig{
		EnableCORS:     true,
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		MaxBodyBytes:   DefaultMaxBodyBytes,
	}
}

// SecurityConfigFor builds the policy for the given CORS origins. An empty
// list disables CORS.
func SecurityConfigFor(origins []string) SecurityConfig {
	cfg := DefaultSecurityConfig()
	cfg.AllowedOrigins = origins
	cfg.EnableCORS = len(origins) > 0
	return cfg
}

// SecurityMiddleware sets security headers, applies the CORS policy and
// answers preflight requests with 204.
func SecurityMiddleware(config SecurityConfig, next http.HandlerFunc) http.HandlerFunc {
	methods := strings.Join(config.AllowedMethods, ", ")
	return func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("X-XSS-Protection", "1; mode=block")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")

		if config.EnableCORS {
			if origin, ok := allowedOrigin(config.AllowedOrigins, r.Header.Get("Origin")); ok {
				h.Set("Access-Control-Allow-Origin", origin)
				h.Set("Access-Control-Allow-Methods", methods)
				h.Set("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")
				h.Set("Access-Control-Max-Age", "86400")
				if origin != "*" {
					h.Add("Vary", "Origin")
				}
			}
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next(w, r)
	}
}

// allowedOrigin returns the value for Access-Control-Allow-Origin.
func allowedOrigin(allowed []string, origin string) (string, bool) {
	for _, o := range allowed {
		if o == "*" {
			return "*", true
		}
		if origin != "" && o == origin {
			return origin, true
		}
	}
	return "", false
}
