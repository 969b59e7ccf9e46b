package ingestimpl

import (
	"context"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/w3wave/social-digest/internal/domain"
	"github.com/w3wave/social-digest/internal/ingest"
	"github.com/w3wave/social-digest/internal/repositories/post"
	"github.com/w3wave/social-digest/internal/twitter"
	"github.com/w3wave/social-digest/pkg/config"
	apperrors "github.com/w3wave/social-digest/pkg/errors"
	"github.com/w3wave/social-digest/pkg/logger"
	"go.uber.org/fx"
)

type Opts struct {
	fx.In

	Twitter  twitter.Client
	PostRepo post.Repository
	Logger   logger.Logger
	Config   *config.Config
}

type IngestImpl struct {
	Twitter     twitter.Client
	Gate        *Gate
	Logger      logger.Logger
	Concurrency int
}

func New(opts Opts) *IngestImpl {
	concurrency := opts.Config.Twitter.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}

	return &IngestImpl{
		Twitter:     opts.Twitter,
		Gate:        NewGate(opts.PostRepo, opts.Logger),
		Logger:      opts.Logger.WithComponent("Ingest"),
		Concurrency: concurrency,
	}
}

var _ ingest.Client = (*IngestImpl)(nil)

func (i *IngestImpl) Ingest(ctx context.Context, handles []string, window domain.Window) (domain.IngestStats, error) {
	var (
		mu    sync.Mutex
		total domain.IngestStats
		wg    sync.WaitGroup
	)

	pool, err := ants.NewPool(i.Concurrency, ants.WithPreAlloc(true))
	if err != nil {
		return total, err
	}
	defer pool.Release()

	i.Logger.Info("Starting ingestion", "accounts", len(handles), "from", window.Start, "to", window.End)

	for _, handle := range handles {
		wg.Add(1)
		account := handle

		err := pool.Submit(func() {
			defer wg.Done()

			stats := i.processAccount(ctx, account, window)

			mu.Lock()
			total.Add(stats)
			mu.Unlock()
		})
		if err != nil {
			wg.Done()
			i.Logger.Error("Failed to submit account to pool", "handle", account, "error", err)
			mu.Lock()
			total.Add(domain.IngestStats{Accounts: 1, FailedAccounts: 1})
			mu.Unlock()
		}
	}

	wg.Wait()

	i.Logger.Info("Ingestion finished",
		"accounts", total.Accounts,
		"failed_accounts", total.FailedAccounts,
		"fetched", total.Fetched,
		"inserted", total.Inserted,
		"duplicates", total.Duplicates,
		"rejected", total.Rejected,
		"store_errors", total.StoreErrors,
	)

	if err := ctx.Err(); err != nil {
		return total, err
	}
	return total, nil
}

// processAccount streams one account's pages through the gate. Pages delivered
// before a failure stay stored.
func (i *IngestImpl) processAccount(ctx context.Context, handle string, window domain.Window) domain.IngestStats {
	stats := domain.IngestStats{Accounts: 1}

	select {
	case <-ctx.Done():
		i.Logger.Info("Skipping account due to context cancellation", "handle", handle)
		stats.FailedAccounts = 1
		return stats
	default:
	}

	err := i.Twitter.FetchTimeline(ctx, handle, window, func(page []twitter.RawTweet) error {
		stats.Add(i.Gate.Admit(ctx, handle, page))
		return ctx.Err()
	})
	if err != nil {
		stats.FailedAccounts = 1
		err = apperrors.WrapWithCode(err, apperrors.CodeAccountFetchFailed, "fetch "+handle)
		i.Logger.Error("Skipping account", "handle", handle, "code", apperrors.GetCode(err),
			"rate_limited", apperrors.HasCode(err, apperrors.CodeRateLimited), "error", err)
		return stats
	}

	i.Logger.Info("Account ingested", "handle", handle, "fetched", stats.Fetched, "inserted", stats.Inserted)
	return stats
}
