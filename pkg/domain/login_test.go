package domain

import "testing"

func TestLoginResultConstructors(t *testing.T) {
	session := &SessionData{AccessToken: "tok"}

	tests := []struct {
		name    string
		result  LoginResult
		isError bool
	}{
		{"error", ErrorResult(ErrorInvalidCredentials), true},
		{"success", SuccessResult("Confirmation email sent!"), false},
		{"two factor", TwoFactorResult(), false},
		{"session", SessionResult(session), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.result.IsError() != tt.isError {
				t.Errorf("IsError() = %v, want %v", tt.result.IsError(), tt.isError)
			}

			// Exactly one arm of the union is populated.
			populated := 0
			if tt.result.Err != ErrorNone {
				populated++
			}
			if tt.result.Success != "" {
				populated++
			}
			if tt.result.TwoFactor {
				populated++
			}
			if tt.result.Session != nil {
				populated++
			}
			if populated != 1 {
				t.Errorf("populated arms = %d, want exactly 1", populated)
			}
		})
	}
}

func TestErrorKindMessages(t *testing.T) {
	tests := []struct {
		kind    ErrorKind
		message string
	}{
		{ErrorInvalidFields, "Invalid fields!"},
		{ErrorInvalidCredentials, "Invalid credentials!"},
		{ErrorInvalidCode, "Invalid code!"},
		{ErrorCodeExpired, "Code expired!"},
		{ErrorUnknown, "Something went wrong!"},
		{ErrorNone, ""},
	}

	for _, tt := range tests {
		if got := tt.kind.Message(); got != tt.message {
			t.Errorf("Message(%d) = %q, want %q", tt.kind, got, tt.message)
		}
	}
}

func TestLoginRequestHasCode(t *testing.T) {
	if (LoginRequest{Code: "123456"}).HasCode() != true {
		t.Error("request with a code should report HasCode")
	}
	if (LoginRequest{}).HasCode() {
		t.Error("request without a code should not report HasCode")
	}
}
