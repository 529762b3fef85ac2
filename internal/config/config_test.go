package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.ServerPort != 8080 {
		t.Errorf("ServerPort = %d", cfg.ServerPort)
	}
	if cfg.DefaultLoginRedirect != "/dashboard" {
		t.Errorf("DefaultLoginRedirect = %q", cfg.DefaultLoginRedirect)
	}
	if cfg.VerificationTokenTTL != time.Hour {
		t.Errorf("VerificationTokenTTL = %v", cfg.VerificationTokenTTL)
	}
	if cfg.TwoFactorCodeTTL != 5*time.Minute {
		t.Errorf("TwoFactorCodeTTL = %v", cfg.TwoFactorCodeTTL)
	}
	if cfg.AccessTokenTTL != 15*time.Minute {
		t.Errorf("AccessTokenTTL = %v", cfg.AccessTokenTTL)
	}
	if !cfg.RateLimit.Enabled || cfg.RateLimit.LoginRequestsPerWindow != 10 {
		t.Errorf("RateLimit = %+v", cfg.RateLimit)
	}
	if cfg.HasSMTP() {
		t.Error("HasSMTP should be false without SMTP_HOST and SMTP_FROM")
	}
}

func TestLoad_RequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	if _, err := Load(); err == nil {
		t.Fatal("Load should fail without JWT_SECRET")
	}
}

func TestLoad_RejectsInvertedTTLs(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("VERIFICATION_TOKEN_TTL", "5m")
	t.Setenv("TWO_FACTOR_CODE_TTL", "10m")

	if _, err := Load(); err == nil {
		t.Fatal("Load should reject a code TTL at or beyond the verification TTL")
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("TWO_FACTOR_CODE_TTL", "3m")
	t.Setenv("SMTP_HOST", "smtp.example.com")
	t.Setenv("SMTP_FROM", "noreply@example.com")
	t.Setenv("RATE_LIMIT_ENABLED", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.ServerPort != 9090 {
		t.Errorf("ServerPort = %d", cfg.ServerPort)
	}
	if cfg.TwoFactorCodeTTL != 3*time.Minute {
		t.Errorf("TwoFactorCodeTTL = %v", cfg.TwoFactorCodeTTL)
	}
	if !cfg.HasSMTP() {
		t.Error("HasSMTP should be true with host and from set")
	}
	if cfg.RateLimit.Enabled {
		t.Error("RateLimit.Enabled should honor the override")
	}
}
