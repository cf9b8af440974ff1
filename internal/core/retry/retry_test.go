package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	errx "github.com/fraud-detection-agent/server/internal/core/error"
)

func TestDoSucceedsAfterTransientFailure(t *testing.T) {
	attempts := 0
	out, err := Do(context.Background(), Policy{MaxAttempts: 3}, func(ctx context.Context) (string, error) {
		attempts++
		if attempts < 3 {
			return "", errors.New("transient")
		}
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "ok" {
		t.Errorf("out = %q, want %q", out, "ok")
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestDoExhaustsBudget(t *testing.T) {
	attempts := 0
	wantErr := errors.New("still failing")
	_, err := Do(context.Background(), Policy{MaxAttempts: 3}, func(ctx context.Context) (int, error) {
		attempts++
		return 0, wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("err = %v, want %v", err, wantErr)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestDoDoesNotRetryConfigurationErrors(t *testing.T) {
	attempts := 0
	_, err := Do(context.Background(), Policy{MaxAttempts: 3}, func(ctx context.Context) (int, error) {
		attempts++
		return 0, errx.NewConfiguration("prompt registry client missing")
	})
	if !errors.Is(err, errx.ErrConfiguration) {
		t.Fatalf("err = %v, want configuration error", err)
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1", attempts)
	}
}

func TestDoStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0
	_, err := Do(ctx, Policy{MaxAttempts: 5, InitialBackoff: time.Hour}, func(ctx context.Context) (int, error) {
		attempts++
		cancel()
		return 0, errors.New("transient")
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1", attempts)
	}
}

func TestDoTreatsInvalidPolicyAsSingleAttempt(t *testing.T) {
	attempts := 0
	_, err := Do(context.Background(), Policy{MaxAttempts: 0}, func(ctx context.Context) (int, error) {
		attempts++
		return 0, errors.New("boom")
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1", attempts)
	}
}
