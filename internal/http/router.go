package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/courseloop/courseloop-auth/internal/config"
	"github.com/courseloop/courseloop-auth/internal/http/features/login"
	"github.com/courseloop/courseloop-auth/internal/http/features/verify"
	"github.com/courseloop/courseloop-auth/internal/http/middleware"
	"github.com/courseloop/courseloop-auth/internal/httputil"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Logger           *slog.Logger
	LoginFlow        login.Flow
	TokenConsumer    verify.TokenConsumer
	IdentityVerifier verify.IdentityVerifier
	AccessTokenTTL   time.Duration
	RateLimit        config.RateLimitConfig
	SecurityHeaders  config.SecurityHeadersConfig
	MaxBodySize      int64
}

// NewRouter creates the HTTP router with all routes registered.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recover(cfg.Logger))
	r.Use(middleware.Logging(cfg.Logger))
	r.Use(middleware.SecurityHeaders(cfg.SecurityHeaders))
	r.Use(middleware.RequestSizeLimit(cfg.MaxBodySize))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	limiters := middleware.RateLimiters(cfg.RateLimit, cfg.Logger)

	loginHandler := login.NewHandler(cfg.Logger, cfg.LoginFlow, cfg.AccessTokenTTL)
	r.With(limiters["login"]).Post("/v1/auth/login", loginHandler.Login)
	r.Post("/v1/auth/logout", loginHandler.Logout)

	verifyHandler := verify.NewHandler(cfg.Logger, cfg.TokenConsumer, cfg.IdentityVerifier)
	r.With(limiters["verify"]).Post("/v1/auth/verify-email", verifyHandler.VerifyEmail)

	return r
}
