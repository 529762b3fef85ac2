package domain

// LoginRequest is a validated, normalized login submission. Transient, never
// persisted.
type LoginRequest struct {
	Email    string // normalized lowercase
	Password string
	Code     string // optional two-factor code
}

// HasCode reports whether a two-factor code was submitted.
func (r LoginRequest) HasCode() bool {
	return r.Code != ""
}

// ErrorKind classifies terminal login failures. Kinds are surfaced in the
// result, never raised across the subsystem boundary.
type ErrorKind int

const (
	// ErrorNone means the result is not an error.
	ErrorNone ErrorKind = iota
	// ErrorInvalidFields means the request was malformed; no store access occurred.
	ErrorInvalidFields
	// ErrorInvalidCredentials covers unknown email, missing password
	// capability, and wrong password. Deliberately indistinguishable.
	ErrorInvalidCredentials
	// ErrorInvalidCode means the two-factor code was absent from the store or
	// did not match the active one.
	ErrorInvalidCode
	// ErrorCodeExpired means the two-factor code matched but is past expiry.
	ErrorCodeExpired
	// ErrorUnknown is the catch-all for session-layer failures that are not
	// the credentials case.
	ErrorUnknown
)

// Message returns the user-facing text for the error kind.
func (k ErrorKind) Message() string {
	switch k {
	case ErrorInvalidFields:
		return "Invalid fields!"
	case ErrorInvalidCredentials:
		return "Invalid credentials!"
	case ErrorInvalidCode:
		return "Invalid code!"
	case ErrorCodeExpired:
		return "Code expired!"
	case ErrorUnknown:
		return "Something went wrong!"
	default:
		return ""
	}
}

// SessionData is what the session issuer returns on success.
type SessionData struct {
	AccessToken string
	TokenType   string
	ExpiresIn   int
	RedirectTo  string
}

// LoginResult is a tagged union: exactly one of Err, Success, TwoFactor or
// Session is meaningful. Use the constructors below.
type LoginResult struct {
	Err       ErrorKind
	Success   string
	TwoFactor bool
	Session   *SessionData
}

// ErrorResult returns a terminal failure result.
func ErrorResult(kind ErrorKind) LoginResult {
	return LoginResult{Err: kind}
}

// SuccessResult returns a terminal result carrying a user-facing message, for
// mid-flow outcomes that are not failures (e.g. "check your email").
func SuccessResult(message string) LoginResult {
	return LoginResult{Success: message}
}

// TwoFactorResult tells the caller to resubmit with a two-factor code.
func TwoFactorResult() LoginResult {
	return LoginResult{TwoFactor: true}
}

// SessionResult returns the terminal success carrying the established session.
func SessionResult(session *SessionData) LoginResult {
	return LoginResult{Session: session}
}

// IsError reports whether the result is a terminal failure.
func (r LoginResult) IsError() bool {
	return r.Err != ErrorNone
}
