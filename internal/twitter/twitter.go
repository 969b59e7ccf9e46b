package twitter

//go:generate go run go.uber.org/mock/mockgen -source=twitter.go -destination=mocks/mock.go

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/w3wave/social-digest/internal/domain"
)

var (
	ErrAccountNotFound = errors.New("account not found")
	ErrUnauthorized    = errors.New("source api rejected credentials")
	ErrRateLimited     = errors.New("rate limited by source api")

	// ErrStopPaging may be returned from a PageFunc to end pagination early
	// without failing the fetch.
	ErrStopPaging = errors.New("stop paging")
)

// PageFunc receives one page of the timeline. Returning an error stops pagination.
type PageFunc func(page []RawTweet) error

type Client interface {
	ResolveUserID(ctx context.Context, handle string) (string, error)
	// FetchTimeline walks the account's original posts inside window, newest first.
	// The next page is requested only after fn returns nil for the current one.
	FetchTimeline(ctx context.Context, handle string, window domain.Window, fn PageFunc) error
}

// RateLimitError is returned for an HTTP 429. Reset is the server's reset time
// when it sent one.
type RateLimitError struct {
	Endpoint string
	Reset    time.Time
	now      func() time.Time
}

func NewRateLimitError(endpoint string, reset time.Time, now func() time.Time) *RateLimitError {
	if now == nil {
		now = time.Now
	}
	return &RateLimitError{Endpoint: endpoint, Reset: reset, now: now}
}

func (e *RateLimitError) Error() string {
	if e.Reset.IsZero() {
		return fmt.Sprintf("%s: %v", e.Endpoint, ErrRateLimited)
	}
	return fmt.Sprintf("%s: %v until %s", e.Endpoint, ErrRateLimited, e.Reset.UTC().Format(time.RFC3339))
}

func (e *RateLimitError) Unwrap() error { return ErrRateLimited }

// RetryAfter is the time left until Reset, zero when unknown or already past.
func (e *RateLimitError) RetryAfter() time.Duration {
	if e.Reset.IsZero() {
		return 0
	}
	now := time.Now
	if e.now != nil {
		now = e.now
	}
	if d := e.Reset.Sub(now()); d > 0 {
		return d
	}
	return 0
}
