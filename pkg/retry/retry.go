package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	apperrors "github.com/w3wave/social-digest/pkg/errors"
	"github.com/w3wave/social-digest/pkg/logger"
)

type Config struct {
	MaxRetries      uint64
	InitialInterval time.Duration
	MaxInterval     time.Duration
	Multiplier      float64
}

func DefaultConfig() Config {
	return Config{
		MaxRetries:      3,
		InitialInterval: 500 * time.Millisecond,
		MaxInterval:     5 * time.Second,
		Multiplier:      1.5,
	}
}

// Permanent marks err as not worth retrying.
func Permanent(err error) error {
	return backoff.Permanent(err)
}

func Do(ctx context.Context, log logger.Logger, operationName string, operation func() error, cfg Config) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = cfg.InitialInterval
	bo.MaxInterval = cfg.MaxInterval
	bo.Multiplier = cfg.Multiplier
	bo.Reset()

	retryable := backoff.WithMaxRetries(bo, cfg.MaxRetries)
	retryableWithContext := backoff.WithContext(retryable, ctx)

	notify := func(err error, t time.Duration) {
		log.Warn(
			"Operation failed, retrying...",
			"operation", operationName,
			"error", err,
			"next_attempt_in", t.Round(time.Millisecond).String(),
		)
	}

	return backoff.RetryNotify(operation, retryableWithContext, notify)
}

// Throttled is implemented by errors that signal a rate limit. RetryAfter is the
// server's hint for when the limit resets, zero when unknown.
type Throttled interface {
	error
	RetryAfter() time.Duration
}

// CooldownPolicy is a bounded retry policy for rate-limit signals. Only errors
// implementing Throttled are retried; anything else is returned as is.
type CooldownPolicy struct {
	MaxRetries  int
	Cooldown    time.Duration
	MaxCooldown time.Duration
}

// Do runs operation, suspending for a cooldown after each rate-limit signal. The
// cooldown doubles from Cooldown up to MaxCooldown and is stretched to the server
// hint when that is longer, even past MaxCooldown.
func (p CooldownPolicy) Do(ctx context.Context, log logger.Logger, operationName string, operation func() error) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = p.Cooldown
	bo.Multiplier = 2
	bo.RandomizationFactor = 0
	bo.MaxInterval = p.MaxCooldown
	if bo.MaxInterval <= 0 {
		bo.MaxInterval = time.Duration(1<<63 - 1)
	}
	bo.MaxElapsedTime = 0
	bo.Reset()

	for attempt := 0; ; attempt++ {
		err := operation()
		if err == nil {
			return nil
		}

		var throttled Throttled
		if !errors.As(err, &throttled) {
			return err
		}
		if attempt >= p.MaxRetries {
			return apperrors.WrapWithCode(err, apperrors.CodeRateLimited,
				fmt.Sprintf("%s still rate limited after %d retries", operationName, p.MaxRetries))
		}

		wait := bo.NextBackOff()
		if hint := throttled.RetryAfter(); hint > wait {
			wait = hint
		}

		log.Warn("Rate limited, cooling down",
			"operation", operationName,
			"retry", attempt+1,
			"max_retries", p.MaxRetries,
			"cooldown", wait.Round(time.Millisecond).String(),
		)

		if err := Sleep(ctx, wait); err != nil {
			return err
		}
	}
}

// Sleep blocks for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
