package ingestimpl

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/w3wave/social-digest/internal/domain"
	"github.com/w3wave/social-digest/internal/repositories/post/posttest"
	"github.com/w3wave/social-digest/internal/twitter"
	mock_twitter "github.com/w3wave/social-digest/internal/twitter/mocks"
	apperrors "github.com/w3wave/social-digest/pkg/errors"
	"github.com/w3wave/social-digest/pkg/logger"
	"go.uber.org/mock/gomock"
)

var window = domain.Window{
	Start: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	End:   time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
}

func tweet(id string, likes int) twitter.RawTweet {
	return twitter.RawTweet{
		ID:            id,
		Text:          "post " + id,
		AuthorID:      "1",
		CreatedAt:     "2024-01-01T12:00:00Z",
		PublicMetrics: &twitter.PublicMetrics{LikeCount: likes},
	}
}

// serve returns a FetchTimeline stub that delivers pages one by one.
func serve(pages ...[]twitter.RawTweet) func(context.Context, string, domain.Window, twitter.PageFunc) error {
	return func(_ context.Context, _ string, _ domain.Window, fn twitter.PageFunc) error {
		for _, p := range pages {
			if err := fn(p); err != nil {
				return err
			}
		}
		return nil
	}
}

func newRunner(tw twitter.Client, repo *posttest.Memory) *IngestImpl {
	log := logger.Nop()
	return &IngestImpl{
		Twitter:     tw,
		Gate:        NewGate(repo, log),
		Logger:      log,
		Concurrency: 2,
	}
}

func TestIngestIsIdempotent(t *testing.T) {
	ctrl := gomock.NewController(t)
	tw := mock_twitter.NewMockClient(ctrl)
	repo := posttest.NewMemory()

	feed := []twitter.RawTweet{tweet("3", 10), tweet("2", 20), tweet("1", 30)}
	tw.EXPECT().FetchTimeline(gomock.Any(), "macro_alpha", window, gomock.Any()).
		DoAndReturn(serve(feed)).Times(2)

	runner := newRunner(tw, repo)
	ctx := context.Background()

	first, err := runner.Ingest(ctx, []string{"macro_alpha"}, window)
	if err != nil {
		t.Fatalf("first Ingest: %v", err)
	}
	if first.Inserted != 3 || first.Duplicates != 0 {
		t.Errorf("first run stats = %+v", first)
	}
	before := repo.All()

	second, err := runner.Ingest(ctx, []string{"macro_alpha"}, window)
	if err != nil {
		t.Fatalf("second Ingest: %v", err)
	}
	if second.Inserted != 0 || second.Duplicates != 3 {
		t.Errorf("second run stats = %+v", second)
	}

	after := repo.All()
	if len(after) != len(before) {
		t.Fatalf("store grew from %d to %d", len(before), len(after))
	}
	for i := range before {
		if before[i] != after[i] {
			t.Errorf("record %s changed on re-ingestion", before[i].ExternalID)
		}
	}
}

func TestIngestRejectsNonOriginalContent(t *testing.T) {
	ctrl := gomock.NewController(t)
	tw := mock_twitter.NewMockClient(ctrl)
	repo := posttest.NewMemory()

	rt := tweet("10", 500)
	rt.ReferencedTweets = []twitter.ReferencedTweet{{Type: twitter.RefRetweeted, ID: "9"}}
	reply := tweet("11", 500)
	reply.InReplyToUserID = "777"
	noID := tweet("", 500)

	tw.EXPECT().FetchTimeline(gomock.Any(), "macro_alpha", window, gomock.Any()).
		DoAndReturn(serve([]twitter.RawTweet{rt, reply, noID, tweet("12", 5)}))

	stats, err := newRunner(tw, repo).Ingest(context.Background(), []string{"macro_alpha"}, window)
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if stats.Rejected != 3 || stats.Inserted != 1 || stats.Fetched != 4 {
		t.Errorf("stats = %+v", stats)
	}
	if _, err := repo.GetByExternalID(context.Background(), "12"); err != nil {
		t.Errorf("original post missing: %v", err)
	}
}

func TestIngestSkipsRateLimitedAccount(t *testing.T) {
	ctrl := gomock.NewController(t)
	tw := mock_twitter.NewMockClient(ctrl)
	repo := posttest.NewMemory()

	exhausted := apperrors.WrapWithCode(
		twitter.NewRateLimitError("users/tweets", time.Time{}, nil),
		apperrors.CodeRateLimited, "still rate limited after 5 retries")

	tw.EXPECT().FetchTimeline(gomock.Any(), "account_a", window, gomock.Any()).Return(exhausted)
	tw.EXPECT().FetchTimeline(gomock.Any(), "account_b", window, gomock.Any()).
		DoAndReturn(serve([]twitter.RawTweet{tweet("b1", 100), tweet("b2", 60)}))

	stats, err := newRunner(tw, repo).Ingest(context.Background(), []string{"account_a", "account_b"}, window)
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if stats.Accounts != 2 || stats.FailedAccounts != 1 {
		t.Errorf("stats = %+v", stats)
	}
	if repo.Len() != 2 {
		t.Errorf("stored = %d, want account_b's 2 posts", repo.Len())
	}
}

func TestIngestKeepsPagesDeliveredBeforeFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	tw := mock_twitter.NewMockClient(ctrl)
	repo := posttest.NewMemory()

	tw.EXPECT().FetchTimeline(gomock.Any(), "macro_alpha", window, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, _ domain.Window, fn twitter.PageFunc) error {
			if err := fn([]twitter.RawTweet{tweet("1", 1)}); err != nil {
				return err
			}
			return errors.New("connection reset")
		})

	stats, _ := newRunner(tw, repo).Ingest(context.Background(), []string{"macro_alpha"}, window)
	if stats.FailedAccounts != 1 || stats.Inserted != 1 || repo.Len() != 1 {
		t.Errorf("stats = %+v, stored = %d", stats, repo.Len())
	}
}

func TestIngestContinuesPastStoreErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	tw := mock_twitter.NewMockClient(ctrl)
	repo := posttest.NewMemory()
	repo.InsertErr = func(p domain.Post) error {
		if p.ExternalID == "2" {
			return errors.New("disk full")
		}
		return nil
	}

	tw.EXPECT().FetchTimeline(gomock.Any(), "macro_alpha", window, gomock.Any()).
		DoAndReturn(serve([]twitter.RawTweet{tweet("1", 1), tweet("2", 2), tweet("3", 3)}))

	stats, err := newRunner(tw, repo).Ingest(context.Background(), []string{"macro_alpha"}, window)
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if stats.StoreErrors != 1 || stats.Inserted != 2 || stats.FailedAccounts != 0 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestIngestHonorsCancellation(t *testing.T) {
	ctrl := gomock.NewController(t)
	tw := mock_twitter.NewMockClient(ctrl)
	repo := posttest.NewMemory()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	stats, err := newRunner(tw, repo).Ingest(ctx, []string{"a", "b"}, window)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if stats.FailedAccounts != 2 {
		t.Errorf("stats = %+v", stats)
	}
}
