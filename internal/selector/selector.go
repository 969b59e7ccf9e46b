// Package selector picks the posts of one calendar day that clear the engagement
// threshold, in a stable order.
package selector

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/w3wave/social-digest/internal/domain"
	"github.com/w3wave/social-digest/internal/repositories/post"
	"github.com/w3wave/social-digest/pkg/config"
	"github.com/w3wave/social-digest/pkg/logger"
	"go.uber.org/fx"
)

const DefaultThreshold = 50

type Opts struct {
	fx.In

	PostRepo post.Repository
	Logger   logger.Logger
	Config   *config.Config
}

type Selector struct {
	repo     post.Repository
	logger   logger.Logger
	location *time.Location
}

func New(opts Opts) (*Selector, error) {
	loc, err := opts.Config.Location()
	if err != nil {
		return nil, err
	}
	return &Selector{
		repo:     opts.PostRepo,
		logger:   opts.Logger.WithComponent("Selector"),
		location: loc,
	}, nil
}

// NewWithLocation is used where no config is at hand.
func NewWithLocation(repo post.Repository, log logger.Logger, loc *time.Location) *Selector {
	if loc == nil {
		loc = time.UTC
	}
	return &Selector{repo: repo, logger: log.WithComponent("Selector"), location: loc}
}

// Location is the timezone calendar days are computed in.
func (s *Selector) Location() *time.Location {
	return s.location
}

// Select returns unprocessed posts created on date with score >= threshold,
// ordered by score desc, created_at asc, external id asc. Negative thresholds
// are treated as zero. An empty result is not an error.
func (s *Selector) Select(ctx context.Context, date time.Time, threshold int) ([]domain.Post, error) {
	if threshold < 0 {
		threshold = 0
	}
	window := domain.Day(date, s.location)

	candidates, err := s.repo.ListUnprocessed(ctx, window)
	if err != nil {
		return nil, fmt.Errorf("list unprocessed posts for %s: %w", window.Date(), err)
	}

	selected := Filter(candidates, window, threshold)

	s.logger.Info("Selected posts",
		"date", window.Date(),
		"threshold", threshold,
		"candidates", len(candidates),
		"selected", len(selected),
	)
	return selected, nil
}

// Filter applies the selection rules to posts in memory and sorts the result.
func Filter(posts []domain.Post, window domain.Window, threshold int) []domain.Post {
	out := make([]domain.Post, 0, len(posts))
	for _, p := range posts {
		if p.Processed || !window.Contains(p.CreatedAt) || p.Score() < threshold {
			continue
		}
		out = append(out, p)
	}
	Sort(out)
	return out
}

// Sort orders posts by score desc, then created_at asc, then external id asc.
func Sort(posts []domain.Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		a, b := posts[i], posts[j]
		if sa, sb := a.Score(), b.Score(); sa != sb {
			return sa > sb
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ExternalID < b.ExternalID
	})
}
