package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	apperrors "github.com/w3wave/social-digest/pkg/errors"
	"github.com/w3wave/social-digest/pkg/logger"
)

type throttledErr struct{ after time.Duration }

func (e throttledErr) Error() string             { return "too many requests" }
func (e throttledErr) RetryAfter() time.Duration { return e.after }

func TestCooldownPolicyRetriesThrottled(t *testing.T) {
	p := CooldownPolicy{MaxRetries: 3, Cooldown: time.Millisecond, MaxCooldown: 5 * time.Millisecond}

	calls := 0
	err := p.Do(context.Background(), logger.Nop(), "timeline", func() error {
		calls++
		if calls < 3 {
			return throttledErr{}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Do returned %v", err)
	}
	if calls != 3 {
		t.Errorf("operation called %d times, want 3", calls)
	}
}

func TestCooldownPolicyGivesUp(t *testing.T) {
	p := CooldownPolicy{MaxRetries: 2, Cooldown: time.Millisecond, MaxCooldown: 2 * time.Millisecond}

	calls := 0
	err := p.Do(context.Background(), logger.Nop(), "timeline", func() error {
		calls++
		return throttledErr{}
	})
	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if calls != 3 {
		t.Errorf("operation called %d times, want 3 (1 + 2 retries)", calls)
	}
	if apperrors.GetCode(err) != apperrors.CodeRateLimited {
		t.Errorf("code = %q, want %q", apperrors.GetCode(err), apperrors.CodeRateLimited)
	}
}

func TestCooldownPolicyPassesOtherErrors(t *testing.T) {
	p := CooldownPolicy{MaxRetries: 5, Cooldown: time.Millisecond}
	boom := errors.New("account suspended")

	calls := 0
	err := p.Do(context.Background(), logger.Nop(), "timeline", func() error {
		calls++
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Do returned %v, want %v", err, boom)
	}
	if calls != 1 {
		t.Errorf("non-throttled error retried %d times", calls-1)
	}
}

func TestCooldownPolicyHonoursContext(t *testing.T) {
	p := CooldownPolicy{MaxRetries: 5, Cooldown: time.Hour, MaxCooldown: time.Hour}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := p.Do(ctx, logger.Nop(), "timeline", func() error { return throttledErr{} })
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Do returned %v, want deadline exceeded", err)
	}
	if time.Since(start) > time.Second {
		t.Error("cooldown did not stop on context cancellation")
	}
}

func TestCooldownPolicyUsesServerHint(t *testing.T) {
	p := CooldownPolicy{MaxRetries: 1, Cooldown: time.Millisecond, MaxCooldown: time.Second}

	start := time.Now()
	calls := 0
	_ = p.Do(context.Background(), logger.Nop(), "timeline", func() error {
		calls++
		if calls == 1 {
			return throttledErr{after: 30 * time.Millisecond}
		}
		return nil
	})
	if elapsed := time.Since(start); elapsed < 30*time.Millisecond {
		t.Errorf("waited %v, want at least the 30ms server hint", elapsed)
	}
}

func TestCooldownPolicyServerHintOutlastsMaxCooldown(t *testing.T) {
	p := CooldownPolicy{MaxRetries: 1, Cooldown: time.Millisecond, MaxCooldown: 5 * time.Millisecond}

	var retriedAfter time.Duration
	start := time.Now()
	calls := 0
	err := p.Do(context.Background(), logger.Nop(), "timeline", func() error {
		calls++
		if calls == 1 {
			return throttledErr{after: 40 * time.Millisecond}
		}
		retriedAfter = time.Since(start)
		return nil
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if retriedAfter < 40*time.Millisecond {
		t.Errorf("retried after %v, before the 40ms reset", retriedAfter)
	}
}

func TestDoRetriesUntilSuccess(t *testing.T) {
	cfg := Config{MaxRetries: 3, InitialInterval: time.Millisecond, MaxInterval: 2 * time.Millisecond, Multiplier: 1.5}

	calls := 0
	err := Do(context.Background(), logger.Nop(), "send", func() error {
		calls++
		if calls == 1 {
			return errors.New("503")
		}
		return nil
	}, cfg)
	if err != nil {
		t.Fatalf("Do returned %v", err)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}

func TestDoStopsOnPermanent(t *testing.T) {
	cfg := Config{MaxRetries: 3, InitialInterval: time.Millisecond, MaxInterval: time.Millisecond, Multiplier: 1}
	bad := errors.New("400 bad request")

	calls := 0
	err := Do(context.Background(), logger.Nop(), "send", func() error {
		calls++
		return Permanent(bad)
	}, cfg)
	if !errors.Is(err, bad) {
		t.Fatalf("Do returned %v", err)
	}
	if calls != 1 {
		t.Errorf("permanent error retried, calls = %d", calls)
	}
}
