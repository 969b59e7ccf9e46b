package pipeline

//go:generate go run go.uber.org/mock/mockgen -source=pipeline.go -destination=mocks/mock.go

import (
	"context"
	"errors"
	"time"

	"github.com/w3wave/social-digest/internal/domain"
)

var ErrRunInProgress = errors.New("a digest run is already in progress")

type Client interface {
	// Run ingests, selects the posts of date's calendar day, and delivers the
	// digest. The result always carries a status; err is set when it is "error".
	Run(ctx context.Context, date time.Time) (domain.RunResult, error)

	// Reset clears the processed flag for posts created on date so they can be
	// delivered again.
	Reset(ctx context.Context, date time.Time) (int64, error)

	// Preview returns what Run would select for date right now.
	Preview(ctx context.Context, date time.Time, threshold int) ([]domain.Post, error)

	// Reports lists the digest attempts recorded for date.
	Reports(ctx context.Context, date time.Time) ([]domain.Report, error)

	// Schedule starts the daily job. It stops when ctx is done.
	Schedule(ctx context.Context) error

	// Location is the timezone calendar days are computed in.
	Location() *time.Location
}
