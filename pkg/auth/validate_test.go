package auth

import "testing"

func TestValidateLogin(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
		code     string
		ok       bool
	}{
		{"valid", "user@example.com", "secret", "", true},
		{"valid with code", "user@example.com", "secret", "123456", true},
		{"uppercase normalized", "User@Example.COM", "secret", "", true},
		{"surrounding whitespace", "  user@example.com  ", "secret", "", true},
		{"empty email", "", "secret", "", false},
		{"missing at sign", "userexample.com", "secret", "", false},
		{"missing domain", "user@", "secret", "", false},
		{"display name form", "User <user@example.com>", "secret", "", false},
		{"empty password", "user@example.com", "", "", false},
		{"code too short", "user@example.com", "secret", "123", false},
		{"code too long", "user@example.com", "secret", "1234567", false},
		{"code non-numeric", "user@example.com", "secret", "12345a", false},
		{"code with spaces trims", "user@example.com", "secret", " 123456 ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, ok := ValidateLogin(tt.email, tt.password, tt.code)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if !ok {
				return
			}
			if req.Email != NormalizeEmail(tt.email) {
				t.Errorf("Email = %q, want normalized %q", req.Email, NormalizeEmail(tt.email))
			}
			if req.Password != tt.password {
				t.Errorf("Password = %q, want untouched %q", req.Password, tt.password)
			}
		})
	}
}

func TestValidateLogin_TooLongEmail(t *testing.T) {
	local := make([]byte, 250)
	for i := range local {
		local[i] = 'a'
	}
	email := string(local) + "@example.com"

	if _, ok := ValidateLogin(email, "secret", ""); ok {
		t.Error("emails beyond 254 characters must be rejected")
	}
}

func TestNormalizeEmail(t *testing.T) {
	if got := NormalizeEmail("  User@EXAMPLE.com "); got != "user@example.com" {
		t.Errorf("NormalizeEmail = %q, want user@example.com", got)
	}
}
