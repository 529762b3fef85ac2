package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/courseloop/courseloop-auth/pkg/domain"
)

// MsgConfirmationSent is returned when an unverified identity attempts to
// log in and a fresh verification token has been dispatched.
const MsgConfirmationSent = "Confirmation email sent!"

// DefaultLoginRedirect is used when the caller supplies no callback URL.
const DefaultLoginRedirect = "/dashboard"

// IdentityStore looks up authentication records. Owned by the surrounding
// platform.
type IdentityStore interface {
	FindByEmail(ctx context.Context, email string) (*domain.Identity, error)
}

// VerificationTokens issues email verification tokens.
type VerificationTokens interface {
	Issue(ctx context.Context, email string) (*domain.VerificationToken, error)
}

// TwoFactorCodes issues and verifies second-factor codes.
type TwoFactorCodes interface {
	Method(ctx context.Context, identity *domain.Identity) (TwoFactorMethod, error)
	Issue(ctx context.Context, email string) (*domain.TwoFactorCode, error)
	Verify(ctx context.Context, identity *domain.Identity, code string) (domain.TwoFactorOutcome, error)
}

// Confirmations records passed two-factor challenges, one row per user.
type Confirmations interface {
	Replace(ctx context.Context, userID uuid.UUID) (*domain.TwoFactorConfirmation, error)
}

// Notifier delivers tokens and codes by email. Failures are soft for the
// login flow: logged, never surfaced to the caller.
type Notifier interface {
	SendVerificationEmail(email, token string) error
	SendTwoFactorEmail(email, code string) error
}

// SessionIssuer establishes an authenticated session for confirmed
// credentials. ErrInvalidCredentials is the only failure the orchestrator
// maps to a login-kind error; everything else becomes the generic unknown
// outcome.
type SessionIssuer interface {
	Establish(ctx context.Context, email, password, redirectTo string) (*domain.SessionData, error)
}

// LoginConfig holds orchestrator settings.
type LoginConfig struct {
	DefaultRedirect string
}

// LoginService sequences a login attempt: schema validation, identity
// lookup, email verification gating, the optional two-factor challenge, and
// the hand-off to session establishment. It holds no state of its own
// between invocations; all intermediate state lives in the token stores and
// the confirmation ledger, keyed by email or user.
type LoginService struct {
	config        LoginConfig
	logger        *slog.Logger
	identities    IdentityStore
	verification  VerificationTokens
	twoFactor     TwoFactorCodes
	confirmations Confirmations
	notifier      Notifier
	sessions      SessionIssuer
}

// NewLoginService creates the login orchestrator.
func NewLoginService(
	config LoginConfig,
	logger *slog.Logger,
	identities IdentityStore,
	verification VerificationTokens,
	twoFactor TwoFactorCodes,
	confirmations Confirmations,
	notifier Notifier,
	sessions SessionIssuer,
) *LoginService {
	if config.DefaultRedirect == "" {
		config.DefaultRedirect = DefaultLoginRedirect
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &LoginService{
		config:        config,
		logger:        logger,
		identities:    identities,
		verification:  verification,
		twoFactor:     twoFactor,
		confirmations: confirmations,
		notifier:      notifier,
		sessions:      sessions,
	}
}

// Login runs one attempt through the state machine and resolves it to a
// terminal result. The error return is reserved for infrastructure failures
// (store unreachable and the like); every login-kind outcome, including bad
// credentials and expired codes, arrives in the result.
func (s *LoginService) Login(ctx context.Context, email, password, code, callbackURL string) (domain.LoginResult, error) {
	req, ok := ValidateLogin(email, password, code)
	if !ok {
		return domain.ErrorResult(domain.ErrorInvalidFields), nil
	}

	identity, err := s.identities.FindByEmail(ctx, req.Email)
	if errors.Is(err, domain.ErrIdentityNotFound) {
		return domain.ErrorResult(domain.ErrorInvalidCredentials), nil
	}
	if err != nil {
		return domain.LoginResult{}, fmt.Errorf("identity lookup: %w", err)
	}
	// OAuth-only accounts get the same answer as a wrong password so error
	// text never reveals which accounts exist or how they authenticate.
	if !identity.CanPasswordLogin() {
		return domain.ErrorResult(domain.ErrorInvalidCredentials), nil
	}

	if !identity.EmailVerified() {
		return s.requireVerification(ctx, identity)
	}

	if identity.TwoFactorEnabled {
		if !req.HasCode() {
			return s.issueChallenge(ctx, identity)
		}
		result, done, err := s.verifyChallenge(ctx, identity, req.Code)
		if done || err != nil {
			return result, err
		}
	}

	redirectTo := callbackURL
	if redirectTo == "" {
		redirectTo = s.config.DefaultRedirect
	}

	session, err := s.sessions.Establish(ctx, req.Email, req.Password, redirectTo)
	if errors.Is(err, domain.ErrInvalidCredentials) {
		return domain.ErrorResult(domain.ErrorInvalidCredentials), nil
	}
	if err != nil {
		s.logger.Error("session establishment failed", "error", err)
		return domain.ErrorResult(domain.ErrorUnknown), nil
	}
	return domain.SessionResult(session), nil
}

// requireVerification issues a fresh verification token and tells the user
// to check their mail. Terminal for this attempt; no password check happens
// on this path (carried over from the original flow, see DESIGN.md).
func (s *LoginService) requireVerification(ctx context.Context, identity *domain.Identity) (domain.LoginResult, error) {
	token, err := s.verification.Issue(ctx, identity.Email)
	if err != nil {
		return domain.LoginResult{}, fmt.Errorf("issue verification token: %w", err)
	}

	s.dispatch("verification email", identity.Email, func() error {
		return s.notifier.SendVerificationEmail(identity.Email, token.Token)
	})
	return domain.SuccessResult(MsgConfirmationSent), nil
}

// issueChallenge starts the second-factor exchange. Identities using an
// authenticator app get no mail; everyone else gets a fresh emailed code.
func (s *LoginService) issueChallenge(ctx context.Context, identity *domain.Identity) (domain.LoginResult, error) {
	method, err := s.twoFactor.Method(ctx, identity)
	if err != nil {
		return domain.LoginResult{}, fmt.Errorf("resolve two-factor method: %w", err)
	}
	if method == MethodAuthenticator {
		return domain.TwoFactorResult(), nil
	}

	code, err := s.twoFactor.Issue(ctx, identity.Email)
	if err != nil {
		return domain.LoginResult{}, fmt.Errorf("issue two-factor code: %w", err)
	}

	s.dispatch("two-factor email", identity.Email, func() error {
		return s.notifier.SendTwoFactorEmail(identity.Email, code.Code)
	})
	return domain.TwoFactorResult(), nil
}

// verifyChallenge checks the submitted code. done is true when the result is
// terminal; on a valid code the confirmation ledger is updated and the flow
// proceeds to session establishment.
func (s *LoginService) verifyChallenge(ctx context.Context, identity *domain.Identity, code string) (domain.LoginResult, bool, error) {
	outcome, err := s.twoFactor.Verify(ctx, identity, code)
	if err != nil {
		return domain.LoginResult{}, true, fmt.Errorf("verify two-factor code: %w", err)
	}

	switch outcome {
	case domain.TwoFactorNotFound, domain.TwoFactorMismatch:
		return domain.ErrorResult(domain.ErrorInvalidCode), true, nil
	case domain.TwoFactorExpired:
		return domain.ErrorResult(domain.ErrorCodeExpired), true, nil
	}

	if _, err := s.confirmations.Replace(ctx, identity.ID); err != nil {
		return domain.LoginResult{}, true, fmt.Errorf("replace two-factor confirmation: %w", err)
	}
	return domain.LoginResult{}, false, nil
}

// dispatch sends mail without blocking the login response. A hung or failed
// delivery is the notifier's problem, not the caller's.
func (s *LoginService) dispatch(what, email string, send func() error) {
	go func() {
		if err := send(); err != nil {
			s.logger.Error("failed to send "+what, "error", err, "email", email)
		}
	}()
}
