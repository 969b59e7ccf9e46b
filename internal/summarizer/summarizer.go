package summarizer

//go:generate go run go.uber.org/mock/mockgen -source=summarizer.go -destination=mocks/mock.go

import (
	"context"
	"errors"

	"github.com/w3wave/social-digest/internal/domain"
)

var (
	ErrNoPosts       = errors.New("nothing to summarize")
	ErrEmptyResponse = errors.New("summarizer returned no content")
)

type Client interface {
	// Summarize turns the day's selected posts, in selection order, into digest text.
	Summarize(ctx context.Context, date string, posts []domain.Post) (string, error)
}
