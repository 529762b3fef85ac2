package repository

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/courseloop/courseloop-auth/pkg/domain"
)

// consumeScript is the atomic check-and-delete for emailed codes. Running it
// as one script means two concurrent submissions of the correct code cannot
// both observe "valid": the first deletes the key, the second sees notfound.
// Mismatched and expired submissions leave the stored code untouched.
var consumeScript = redis.NewScript(`
local v = redis.call("GET", KEYS[1])
if not v then
  return "notfound"
end
local sep = string.find(v, "|", 1, true)
local code = string.sub(v, 1, sep - 1)
local expires = tonumber(string.sub(v, sep + 1))
if code ~= ARGV[1] then
  return "mismatch"
end
if tonumber(ARGV[2]) >= expires then
  return "expired"
end
redis.call("DEL", KEYS[1])
return "valid"
`)

// TwoFactorCodeStore keeps the active emailed code per address in Redis.
// Codes are stored as "code|expiresUnix" with a retention window past their
// expiry so a late resubmission can still be answered with "expired" rather
// than "not found". SET with EX is the atomic replace.
type TwoFactorCodeStore struct {
	client    redis.UniversalClient
	prefix    string
	retention time.Duration
}

// DefaultTwoFactorRetention is how long an expired code stays observable.
const DefaultTwoFactorRetention = 24 * time.Hour

// NewTwoFactorCodeStore creates a Redis-backed code store.
func NewTwoFactorCodeStore(client redis.UniversalClient, prefix string, retention time.Duration) *TwoFactorCodeStore {
	if prefix == "" {
		prefix = "2fa"
	}
	if retention <= 0 {
		retention = DefaultTwoFactorRetention
	}
	return &TwoFactorCodeStore{
		client:    client,
		prefix:    prefix,
		retention: retention,
	}
}

func (s *TwoFactorCodeStore) key(email string) string {
	return s.prefix + ":" + email
}

// Replace stores the code for its email, overwriting any existing one.
func (s *TwoFactorCodeStore) Replace(ctx context.Context, code *domain.TwoFactorCode) error {
	value := code.Code + "|" + strconv.FormatInt(code.ExpiresAt.Unix(), 10)
	if err := s.client.Set(ctx, s.key(code.Email), value, s.retention).Err(); err != nil {
		return fmt.Errorf("failed to store two-factor code: %w", err)
	}
	return nil
}

// Consume checks a submitted code against the stored one and deletes it only
// on a valid match.
func (s *TwoFactorCodeStore) Consume(ctx context.Context, email, code string, now time.Time) (domain.TwoFactorOutcome, error) {
	raw, err := consumeScript.Run(ctx, s.client, []string{s.key(email)}, code, now.Unix()).Result()
	if err != nil {
		return domain.TwoFactorNotFound, fmt.Errorf("failed to consume two-factor code: %w", err)
	}

	outcome, ok := raw.(string)
	if !ok {
		return domain.TwoFactorNotFound, fmt.Errorf("unexpected redis script response type %T", raw)
	}
	switch outcome {
	case "valid":
		return domain.TwoFactorValid, nil
	case "notfound":
		return domain.TwoFactorNotFound, nil
	case "mismatch":
		return domain.TwoFactorMismatch, nil
	case "expired":
		return domain.TwoFactorExpired, nil
	default:
		return domain.TwoFactorNotFound, fmt.Errorf("unexpected redis script response %q", outcome)
	}
}

// GetByEmail retrieves the stored code for an email, expired or not. Returns
// nil when none exists.
func (s *TwoFactorCodeStore) GetByEmail(ctx context.Context, email string) (*domain.TwoFactorCode, error) {
	raw, err := s.client.Get(ctx, s.key(email)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get two-factor code: %w", err)
	}

	sep := strings.IndexByte(raw, '|')
	if sep < 0 {
		return nil, fmt.Errorf("malformed two-factor code entry %q", raw)
	}
	expires, err := strconv.ParseInt(raw[sep+1:], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("malformed two-factor code expiry: %w", err)
	}

	return &domain.TwoFactorCode{
		Code:      raw[:sep],
		Email:     email,
		ExpiresAt: time.Unix(expires, 0),
	}, nil
}
