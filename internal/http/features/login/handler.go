package login

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/courseloop/courseloop-auth/internal/httputil"
	"github.com/courseloop/courseloop-auth/pkg/domain"
)

// Flow runs one login attempt to a terminal result.
type Flow interface {
	Login(ctx context.Context, email, password, code, callbackURL string) (domain.LoginResult, error)
}

// Handler handles the login endpoint.
type Handler struct {
	logger         *slog.Logger
	flow           Flow
	cookieConfig   httputil.CookieConfig
	accessTokenTTL time.Duration
}

// NewHandler creates a new login handler.
func NewHandler(logger *slog.Logger, flow Flow, accessTokenTTL time.Duration) *Handler {
	return &Handler{
		logger:         logger,
		flow:           flow,
		cookieConfig:   httputil.DefaultCookieConfig(),
		accessTokenTTL: accessTokenTTL,
	}
}

// Request is a raw login submission.
type Request struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	Code        string `json:"code,omitempty"`
	CallbackURL string `json:"callbackUrl,omitempty"`
}

// ErrorResponse carries a terminal failure.
type ErrorResponse struct {
	Error string `json:"error"`
}

// SuccessResponse carries a mid-flow terminal message.
type SuccessResponse struct {
	Success string `json:"success"`
}

// TwoFactorResponse tells the client to resubmit with a code.
type TwoFactorResponse struct {
	TwoFactor bool `json:"twoFactor"`
}

// SessionResponse carries the established session.
type SessionResponse struct {
	AccessToken string `json:"access_token,omitempty"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
	RedirectTo  string `json:"redirect_to,omitempty"`
}

// Login handles a login attempt.
// POST /v1/auth/login
//
// Exactly one of {error}, {success}, {twoFactor} is populated, except when a
// session was established: web clients then get an HttpOnly cookie, mobile
// clients (X-Client-Type: mobile) the token in the body.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, domain.ErrorInvalidFields.Message())
		return
	}

	result, err := h.flow.Login(r.Context(), req.Email, req.Password, req.Code, req.CallbackURL)
	if err != nil {
		// Infrastructure failure, not a login outcome.
		h.logger.Error("login attempt failed", "error", err)
		httputil.Error(w, http.StatusInternalServerError, domain.ErrorUnknown.Message())
		return
	}

	switch {
	case result.IsError():
		httputil.Error(w, statusFor(result.Err), result.Err.Message())
	case result.TwoFactor:
		httputil.JSON(w, http.StatusOK, TwoFactorResponse{TwoFactor: true})
	case result.Session != nil:
		h.writeSession(w, r, result.Session)
	default:
		httputil.JSON(w, http.StatusOK, SuccessResponse{Success: result.Success})
	}
}

// Logout clears the web session cookie. Mobile clients hold the token
// themselves and simply discard it.
// POST /v1/auth/logout
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	httputil.ClearSessionCookie(w, h.cookieConfig)
	httputil.JSON(w, http.StatusOK, SuccessResponse{Success: "Logged out!"})
}

func statusFor(kind domain.ErrorKind) int {
	switch kind {
	case domain.ErrorInvalidFields:
		return http.StatusBadRequest
	case domain.ErrorInvalidCredentials, domain.ErrorInvalidCode, domain.ErrorCodeExpired:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) writeSession(w http.ResponseWriter, r *http.Request, session *domain.SessionData) {
	if httputil.IsMobileClient(r) {
		httputil.JSON(w, http.StatusOK, SessionResponse{
			AccessToken: session.AccessToken,
			TokenType:   session.TokenType,
			ExpiresIn:   session.ExpiresIn,
			RedirectTo:  session.RedirectTo,
		})
		return
	}

	httputil.SetSessionCookie(w, session.AccessToken, h.accessTokenTTL, h.cookieConfig)
	httputil.JSON(w, http.StatusOK, SessionResponse{
		TokenType:  session.TokenType,
		ExpiresIn:  session.ExpiresIn,
		RedirectTo: session.RedirectTo,
	})
}
