package post

import (
	"context"
	"errors"
	"time"

	"github.com/w3wave/social-digest/internal/domain"
)

var (
	ErrNotFound    = errors.New("post not found")
	ErrPartialMark = errors.New("not every post could be marked processed")
)

type InsertResult int

const (
	Inserted InsertResult = iota + 1
	Duplicate
)

func (r InsertResult) String() string {
	switch r {
	case Inserted:
		return "inserted"
	case Duplicate:
		return "duplicate"
	default:
		return "unknown"
	}
}

//go:generate go run go.uber.org/mock/mockgen -source=post.go -destination=mocks/mock.go
type Repository interface {
	// InsertIfAbsent stores post unless its external id is already known.
	// A duplicate is not an error and never updates the stored row.
	InsertIfAbsent(ctx context.Context, post domain.Post) (InsertResult, error)

	// GetByExternalID returns a single post by its platform id
	GetByExternalID(ctx context.Context, externalID string) (domain.Post, error)

	// ListUnprocessed returns posts created inside window that are not yet processed
	ListUnprocessed(ctx context.Context, window domain.Window) ([]domain.Post, error)

	// MarkProcessed flags every listed post as processed in one transaction.
	// Nothing is marked unless every id matches a stored post.
	MarkProcessed(ctx context.Context, externalIDs []string) error

	// ResetProcessed clears the processed flag for posts created in [from, to)
	ResetProcessed(ctx context.Context, from, to time.Time) (int64, error)
}

// Distinct returns ids without duplicates or blanks, keeping first-seen order.
func Distinct(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
