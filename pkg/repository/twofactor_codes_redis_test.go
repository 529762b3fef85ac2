package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/courseloop/courseloop-auth/pkg/domain"
)

func newTestCodeStore(t *testing.T) *TwoFactorCodeStore {
	t.Helper()
	m := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewTwoFactorCodeStore(client, "2fa", time.Hour)
}

func TestTwoFactorCodeStore_ReplaceKeepsOne(t *testing.T) {
	store := newTestCodeStore(t)
	ctx := context.Background()
	expires := time.Now().Add(5 * time.Minute)

	if err := store.Replace(ctx, &domain.TwoFactorCode{Code: "111111", Email: "a@x.com", ExpiresAt: expires}); err != nil {
		t.Fatal(err)
	}
	if err := store.Replace(ctx, &domain.TwoFactorCode{Code: "222222", Email: "a@x.com", ExpiresAt: expires}); err != nil {
		t.Fatal(err)
	}

	stored, err := store.GetByEmail(ctx, "a@x.com")
	if err != nil {
		t.Fatal(err)
	}
	if stored == nil || stored.Code != "222222" {
		t.Fatalf("stored = %+v, want the replacement code only", stored)
	}

	// The first code is dead after replacement.
	outcome, err := store.Consume(ctx, "a@x.com", "111111", time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if outcome != domain.TwoFactorMismatch {
		t.Errorf("superseded code outcome = %v, want mismatch", outcome)
	}
}

func TestTwoFactorCodeStore_ConsumeValidDeletes(t *testing.T) {
	store := newTestCodeStore(t)
	ctx := context.Background()
	now := time.Now()

	if err := store.Replace(ctx, &domain.TwoFactorCode{Code: "123456", Email: "a@x.com", ExpiresAt: now.Add(5 * time.Minute)}); err != nil {
		t.Fatal(err)
	}

	outcome, err := store.Consume(ctx, "a@x.com", "123456", now)
	if err != nil {
		t.Fatal(err)
	}
	if outcome != domain.TwoFactorValid {
		t.Fatalf("outcome = %v, want valid", outcome)
	}

	// Replay of the consumed code.
	outcome, err = store.Consume(ctx, "a@x.com", "123456", now)
	if err != nil {
		t.Fatal(err)
	}
	if outcome != domain.TwoFactorNotFound {
		t.Errorf("replay outcome = %v, want not_found", outcome)
	}
}

func TestTwoFactorCodeStore_MismatchKeepsStored(t *testing.T) {
	store := newTestCodeStore(t)
	ctx := context.Background()
	now := time.Now()

	if err := store.Replace(ctx, &domain.TwoFactorCode{Code: "123456", Email: "a@x.com", ExpiresAt: now.Add(5 * time.Minute)}); err != nil {
		t.Fatal(err)
	}

	outcome, err := store.Consume(ctx, "a@x.com", "654321", now)
	if err != nil {
		t.Fatal(err)
	}
	if outcome != domain.TwoFactorMismatch {
		t.Fatalf("outcome = %v, want mismatch", outcome)
	}

	// A correct follow-up attempt still works.
	outcome, err = store.Consume(ctx, "a@x.com", "123456", now)
	if err != nil {
		t.Fatal(err)
	}
	if outcome != domain.TwoFactorValid {
		t.Errorf("follow-up outcome = %v, want valid", outcome)
	}
}

func TestTwoFactorCodeStore_ExpiredKeepsStored(t *testing.T) {
	store := newTestCodeStore(t)
	ctx := context.Background()
	now := time.Now()

	if err := store.Replace(ctx, &domain.TwoFactorCode{Code: "123456", Email: "a@x.com", ExpiresAt: now.Add(5 * time.Minute)}); err != nil {
		t.Fatal(err)
	}

	outcome, err := store.Consume(ctx, "a@x.com", "123456", now.Add(6*time.Minute))
	if err != nil {
		t.Fatal(err)
	}
	if outcome != domain.TwoFactorExpired {
		t.Fatalf("outcome = %v, want expired", outcome)
	}

	stored, err := store.GetByEmail(ctx, "a@x.com")
	if err != nil {
		t.Fatal(err)
	}
	if stored == nil {
		t.Error("expired attempt must leave the code in place for retention")
	}
}

func TestTwoFactorCodeStore_ConsumeUnknownEmail(t *testing.T) {
	store := newTestCodeStore(t)

	outcome, err := store.Consume(context.Background(), "nobody@x.com", "123456", time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if outcome != domain.TwoFactorNotFound {
		t.Errorf("outcome = %v, want not_found", outcome)
	}
}

func TestTwoFactorCodeStore_GetByEmailAbsent(t *testing.T) {
	store := newTestCodeStore(t)

	stored, err := store.GetByEmail(context.Background(), "nobody@x.com")
	if err != nil {
		t.Fatal(err)
	}
	if stored != nil {
		t.Errorf("stored = %+v, want nil for an absent key", stored)
	}
}

func TestTwoFactorCodeStore_GetByEmailRoundTrip(t *testing.T) {
	store := newTestCodeStore(t)
	ctx := context.Background()
	expires := time.Now().Add(5 * time.Minute).Truncate(time.Second)

	if err := store.Replace(ctx, &domain.TwoFactorCode{Code: "987654", Email: "a@x.com", ExpiresAt: expires}); err != nil {
		t.Fatal(err)
	}

	stored, err := store.GetByEmail(ctx, "a@x.com")
	if err != nil {
		t.Fatal(err)
	}
	if stored == nil {
		t.Fatal("expected a stored code")
	}
	if stored.Code != "987654" || stored.Email != "a@x.com" || !stored.ExpiresAt.Equal(expires) {
		t.Errorf("stored = %+v, want code 987654 expiring at %v", stored, expires)
	}
}
