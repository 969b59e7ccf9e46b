package ingest

//go:generate go run go.uber.org/mock/mockgen -source=ingest.go -destination=mocks/mock.go

import (
	"context"

	"github.com/w3wave/social-digest/internal/domain"
)

type Client interface {
	// Ingest pulls every account's timeline over window and stores the posts not
	// seen before. Per-account and per-record failures are counted, not returned.
	Ingest(ctx context.Context, handles []string, window domain.Window) (domain.IngestStats, error)
}
