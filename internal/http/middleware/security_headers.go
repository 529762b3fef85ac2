package middleware

import (
	"fmt"
	"net/http"

	"github.com/courseloop/courseloop-auth/internal/config"
)

// SecurityHeaders applies OWASP-recommended response headers. Disabled or
// empty values set nothing.
func SecurityHeaders(cfg config.SecurityHeadersConfig) func(http.Handler) http.Handler {
	if !cfg.Enabled {
		return func(next http.Handler) http.Handler {
			return next
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			headers := w.Header()
			set := func(name, value string) {
				if value != "" {
					headers.Set(name, value)
				}
			}
			set("Content-Security-Policy", cfg.CSP)
			if cfg.HSTSMaxAge > 0 {
				headers.Set("Strict-Transport-Security",
					fmt.Sprintf("max-age=%d; includeSubDomains", cfg.HSTSMaxAge))
			}
			set("X-Frame-Options", cfg.FrameOptions)
			set("X-Content-Type-Options", cfg.ContentTypeOptions)
			set("Referrer-Policy", cfg.ReferrerPolicy)

			next.ServeHTTP(w, r)
		})
	}
}
