package ingestimpl

import (
	"context"
	"time"

	"github.com/w3wave/social-digest/internal/domain"
	"github.com/w3wave/social-digest/internal/normalizer"
	"github.com/w3wave/social-digest/internal/repositories/post"
	"github.com/w3wave/social-digest/internal/twitter"
	apperrors "github.com/w3wave/social-digest/pkg/errors"
	"github.com/w3wave/social-digest/pkg/logger"
)

// Gate normalizes raw items and persists accepted ones exactly once.
type Gate struct {
	repo   post.Repository
	logger logger.Logger
	now    func() time.Time
}

func NewGate(repo post.Repository, log logger.Logger) *Gate {
	return &Gate{
		repo:   repo,
		logger: log.WithComponent("IngestGate"),
		now:    time.Now,
	}
}

// Admit processes one page for handle in feed order. Store failures are logged
// and counted; the rest of the page still goes through.
func (g *Gate) Admit(ctx context.Context, handle string, page []twitter.RawTweet) domain.IngestStats {
	var stats domain.IngestStats

	for _, raw := range page {
		stats.Fetched++

		p, reason := normalizer.Normalize(handle, raw)
		if reason != normalizer.Accepted {
			stats.Rejected++
			g.logger.Debug("Rejected item", "handle", handle, "id", raw.ID, "reason", reason)
			continue
		}

		p.IngestedAt = g.now().UTC()
		res, err := g.repo.InsertIfAbsent(ctx, p)
		if err != nil {
			stats.StoreErrors++
			err = apperrors.WrapWithCode(err, apperrors.CodeStoreWriteFailed, "store post "+p.ExternalID)
			g.logger.Error("Failed to store post", "handle", handle, "id", p.ExternalID, "error", err)
			continue
		}

		switch res {
		case post.Inserted:
			stats.Inserted++
		case post.Duplicate:
			stats.Duplicates++
		}
	}

	return stats
}
