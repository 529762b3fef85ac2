package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/httprate"

	"github.com/courseloop/courseloop-auth/internal/config"
	"github.com/courseloop/courseloop-auth/internal/httputil"
)

// RateLimit returns an IP-keyed limiter that logs rejected requests.
func RateLimit(requests int, window time.Duration, logger *slog.Logger) func(http.Handler) http.Handler {
	return httprate.Limit(
		requests,
		window,
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			if logger != nil {
				logger.Warn("rate limit exceeded",
					"ip", r.RemoteAddr,
					"path", r.URL.Path,
					"method", r.Method,
				)
			}
			httputil.Error(w, http.StatusTooManyRequests, "rate limit exceeded. please try again later")
		}),
	)
}

// RateLimiters builds the per-group limiters used by the router. Login and
// verify-email get separate budgets since the latter is driven by mail
// clicks, not form submissions.
func RateLimiters(cfg config.RateLimitConfig, logger *slog.Logger) map[string]func(http.Handler) http.Handler {
	if !cfg.Enabled {
		noOp := func(next http.Handler) http.Handler { return next }
		return map[string]func(http.Handler) http.Handler{
			"login":  noOp,
			"verify": noOp,
		}
	}

	return map[string]func(http.Handler) http.Handler{
		"login":  RateLimit(cfg.LoginRequestsPerWindow, cfg.LoginWindow, logger),
		"verify": RateLimit(cfg.VerifyRequestsPerWindow, cfg.VerifyWindow, logger),
	}
}
