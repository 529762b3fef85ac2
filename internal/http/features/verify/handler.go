package verify

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/courseloop/courseloop-auth/internal/httputil"
	"github.com/courseloop/courseloop-auth/pkg/domain"
)

// TokenConsumer exercises a verification token and returns its email.
type TokenConsumer interface {
	Consume(ctx context.Context, token string) (string, error)
}

// IdentityVerifier marks an identity's email as confirmed.
type IdentityVerifier interface {
	MarkEmailVerified(ctx context.Context, email string) error
}

// Handler handles the email confirmation endpoint, the consuming end of the
// verification token contract.
type Handler struct {
	logger     *slog.Logger
	tokens     TokenConsumer
	identities IdentityVerifier
}

// NewHandler creates a new verify handler.
func NewHandler(logger *slog.Logger, tokens TokenConsumer, identities IdentityVerifier) *Handler {
	return &Handler{
		logger:     logger,
		tokens:     tokens,
		identities: identities,
	}
}

// Request carries the token from the emailed link.
type Request struct {
	Token string `json:"token"`
}

// VerifyEmail consumes a verification token and confirms the email.
// POST /v1/auth/verify-email
func (h *Handler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Token == "" {
		httputil.Error(w, http.StatusBadRequest, "token is required")
		return
	}

	email, err := h.tokens.Consume(r.Context(), req.Token)
	if err != nil {
		if errors.Is(err, domain.ErrVerificationTokenExpired) {
			httputil.Error(w, http.StatusBadRequest, "Token has expired!")
			return
		}
		if errors.Is(err, domain.ErrVerificationTokenInvalid) {
			httputil.Error(w, http.StatusBadRequest, "Token does not exist!")
			return
		}
		h.logger.Error("failed to consume verification token", "error", err)
		httputil.Error(w, http.StatusInternalServerError, domain.ErrorUnknown.Message())
		return
	}

	if err := h.identities.MarkEmailVerified(r.Context(), email); err != nil {
		if errors.Is(err, domain.ErrIdentityNotFound) {
			httputil.Error(w, http.StatusBadRequest, "Email does not exist!")
			return
		}
		h.logger.Error("failed to mark email verified", "error", err, "email", email)
		httputil.Error(w, http.StatusInternalServerError, domain.ErrorUnknown.Message())
		return
	}

	httputil.JSON(w, http.StatusOK, map[string]string{"success": "Email verified!"})
}
