package pipelineimpl

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/w3wave/social-digest/internal/digest"
	"github.com/w3wave/social-digest/internal/domain"
	mock_ingest "github.com/w3wave/social-digest/internal/ingest/mocks"
	mock_mailer "github.com/w3wave/social-digest/internal/mailer/mocks"
	"github.com/w3wave/social-digest/internal/pipeline"
	"github.com/w3wave/social-digest/internal/repositories/post"
	"github.com/w3wave/social-digest/internal/repositories/post/posttest"
	mock_report "github.com/w3wave/social-digest/internal/repositories/report/mocks"
	"github.com/w3wave/social-digest/internal/selector"
	mock_summarizer "github.com/w3wave/social-digest/internal/summarizer/mocks"
	mock_telegram "github.com/w3wave/social-digest/internal/telegram/mocks"
	"github.com/w3wave/social-digest/pkg/config"
	apperrors "github.com/w3wave/social-digest/pkg/errors"
	"github.com/w3wave/social-digest/pkg/logger"
	"github.com/w3wave/social-digest/pkg/retry"
	"go.uber.org/mock/gomock"
)

var (
	day = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	now = time.Date(2024, 1, 1, 23, 0, 0, 0, time.UTC)
)

type fixture struct {
	pipeline   *PipelineImpl
	posts      *posttest.Memory
	ingest     *mock_ingest.MockClient
	summarizer *mock_summarizer.MockClient
	mailer     *mock_mailer.MockClient
	reports    *mock_report.MockRepository
	telegram   *mock_telegram.MockClient
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)

	cfg := &config.Config{}
	cfg.Twitter.Handles = "macro_alpha"
	cfg.Twitter.Lookback = 24 * time.Hour
	cfg.Digest.MinEngagement = 50
	cfg.Digest.RunTimeout = time.Minute

	f := &fixture{
		posts:      posttest.NewMemory(),
		ingest:     mock_ingest.NewMockClient(ctrl),
		summarizer: mock_summarizer.NewMockClient(ctrl),
		mailer:     mock_mailer.NewMockClient(ctrl),
		reports:    mock_report.NewMockRepository(ctrl),
		telegram:   mock_telegram.NewMockClient(ctrl),
	}

	log := logger.Nop()
	f.pipeline = &PipelineImpl{
		Config:     cfg,
		Logger:     log,
		Ingest:     f.ingest,
		Selector:   selector.NewWithLocation(f.posts, log, time.UTC),
		Summarizer: f.summarizer,
		Mailer:     f.mailer,
		Renderer:   digest.NewRenderer("Daily Social Media Summary Report", "Daily Update", []string{"pm@fund.example"}),
		PostRepo:   f.posts,
		ReportRepo: f.reports,
		Telegram:   f.telegram,
		retry:      retry.Config{MaxRetries: 1, InitialInterval: time.Millisecond, MaxInterval: time.Millisecond, Multiplier: 1},
		now:        func() time.Time { return now },
	}

	f.ingest.EXPECT().Ingest(gomock.Any(), []string{"macro_alpha"}, domain.Lookback(now, 24*time.Hour)).
		Return(domain.IngestStats{Accounts: 1}, nil).AnyTimes()
	f.telegram.EXPECT().SendMessageToUser(gomock.Any()).AnyTimes()

	return f
}

func (f *fixture) seed(t *testing.T, scores map[string]int) {
	t.Helper()
	i := 0
	for id, likes := range scores {
		i++
		_, err := f.posts.InsertIfAbsent(context.Background(), domain.Post{
			ExternalID:   id,
			AuthorHandle: "macro_alpha",
			Content:      "post " + id,
			CreatedAt:    day.Add(time.Duration(i) * time.Hour),
			SourceURL:    "https://twitter.com/macro_alpha/status/" + id,
			Metrics:      domain.Metrics{Likes: likes},
		})
		if err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
}

func (f *fixture) processed(t *testing.T, id string) bool {
	t.Helper()
	p, err := f.posts.GetByExternalID(context.Background(), id)
	if err != nil {
		t.Fatalf("GetByExternalID(%s): %v", id, err)
	}
	return p.Processed
}

func selectedIDs(posts []domain.Post) string {
	return strings.Join(domain.ExternalIDs(posts), ",")
}

func TestRunSuccess(t *testing.T) {
	f := newFixture(t)
	f.seed(t, map[string]int{"low": 10, "mid": 60, "top": 80})

	f.summarizer.EXPECT().Summarize(gomock.Any(), "2024-01-01", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, posts []domain.Post) (string, error) {
			if got := selectedIDs(posts); got != "top,mid" {
				t.Errorf("summarized %s, want top,mid", got)
			}
			return "🧠 Macro\n- Risk on", nil
		})
	f.reports.EXPECT().Create(gomock.Any(), domain.Report{Date: "2024-01-01", Summary: "🧠 Macro\n- Risk on", PostIDs: []string{"top", "mid"}}).
		Return(int64(7), nil)
	f.mailer.EXPECT().Send(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, e domain.Email) error {
			if !strings.Contains(e.HTML, "<h2>🧠 Macro</h2>") || e.Subject != "Daily Update - 2024-01-01" {
				t.Errorf("unexpected email: %+v", e)
			}
			return nil
		})
	f.reports.EXPECT().MarkEmailSent(gomock.Any(), int64(7)).Return(nil)

	result, err := f.pipeline.Run(context.Background(), now)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Status != domain.RunSuccess || result.Selected != 2 || result.ReportID != 7 {
		t.Errorf("result = %+v", result)
	}
	if !f.processed(t, "top") || !f.processed(t, "mid") {
		t.Error("delivered posts must be marked processed")
	}
	if f.processed(t, "low") {
		t.Error("unselected post must stay unprocessed")
	}
}

func TestRunEmptySkipsDelivery(t *testing.T) {
	f := newFixture(t)
	f.seed(t, map[string]int{"quiet": 3, "quieter": 1})

	result, err := f.pipeline.Run(context.Background(), now)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Status != domain.RunEmpty || result.Selected != 0 {
		t.Errorf("result = %+v", result)
	}
}

func TestRunDispatchFailureLeavesPostsEligible(t *testing.T) {
	f := newFixture(t)
	f.seed(t, map[string]int{"a": 100, "b": 70})

	f.summarizer.EXPECT().Summarize(gomock.Any(), "2024-01-01", gomock.Any()).Return("summary", nil).Times(2)
	f.reports.EXPECT().Create(gomock.Any(), gomock.Any()).Return(int64(1), nil).Times(2)

	gomock.InOrder(
		f.mailer.EXPECT().Send(gomock.Any(), gomock.Any()).Return(errors.New("smtp 503")),
		f.mailer.EXPECT().Send(gomock.Any(), gomock.Any()).Return(errors.New("smtp 503")),
	)

	result, err := f.pipeline.Run(context.Background(), now)
	if err == nil || result.Status != domain.RunError {
		t.Fatalf("Run = (%+v, %v), want error", result, err)
	}
	if apperrors.GetCode(err) != apperrors.CodeDispatchFailed {
		t.Errorf("code = %s, want dispatch_failed", apperrors.GetCode(err))
	}
	if f.processed(t, "a") || f.processed(t, "b") {
		t.Error("posts must stay unprocessed after a failed dispatch")
	}

	again, err := f.pipeline.Preview(context.Background(), now, 50)
	if err != nil {
		t.Fatalf("Preview: %v", err)
	}
	if selectedIDs(again) != "a,b" {
		t.Errorf("reselected %s, want a,b", selectedIDs(again))
	}

	if _, err := f.pipeline.Run(context.Background(), now); err == nil {
		t.Fatal("second run should fail the same way")
	}
}

func TestRunSummarizationFailure(t *testing.T) {
	f := newFixture(t)
	f.seed(t, map[string]int{"a": 100})

	f.summarizer.EXPECT().Summarize(gomock.Any(), gomock.Any(), gomock.Any()).Return("", errors.New("model overloaded"))

	_, err := f.pipeline.Run(context.Background(), now)
	if apperrors.GetCode(err) != apperrors.CodeSummarizationFailed {
		t.Errorf("err = %v, want summarization_failed", err)
	}
	if f.processed(t, "a") {
		t.Error("nothing may be marked when summarization fails")
	}
}

func TestRunMarkFailureMarksNothing(t *testing.T) {
	f := newFixture(t)
	f.seed(t, map[string]int{"a": 100, "b": 90})
	f.posts.MarkErr = errors.New("connection lost")

	f.summarizer.EXPECT().Summarize(gomock.Any(), gomock.Any(), gomock.Any()).Return("summary", nil)
	f.reports.EXPECT().Create(gomock.Any(), gomock.Any()).Return(int64(3), nil)
	f.mailer.EXPECT().Send(gomock.Any(), gomock.Any()).Return(nil)

	result, err := f.pipeline.Run(context.Background(), now)
	if apperrors.GetCode(err) != apperrors.CodeMarkFailed || result.Status != domain.RunError {
		t.Fatalf("Run = (%+v, %v), want mark_failed", result, err)
	}
	if f.processed(t, "a") || f.processed(t, "b") {
		t.Error("a failed mark must leave every post unprocessed")
	}
}

func TestRunDoesNotRetryPartialMark(t *testing.T) {
	f := newFixture(t)
	f.seed(t, map[string]int{"a": 100})
	f.posts.MarkErr = post.ErrPartialMark

	f.summarizer.EXPECT().Summarize(gomock.Any(), gomock.Any(), gomock.Any()).Return("summary", nil)
	f.reports.EXPECT().Create(gomock.Any(), gomock.Any()).Return(int64(0), errors.New("reports table missing"))
	f.mailer.EXPECT().Send(gomock.Any(), gomock.Any()).Return(nil)

	_, err := f.pipeline.Run(context.Background(), now)
	if !errors.Is(err, post.ErrPartialMark) {
		t.Errorf("err = %v, want ErrPartialMark", err)
	}
}

func TestRunRejectsOverlap(t *testing.T) {
	f := newFixture(t)
	f.pipeline.mu.Lock()
	defer f.pipeline.mu.Unlock()

	result, err := f.pipeline.Run(context.Background(), now)
	if !errors.Is(err, pipeline.ErrRunInProgress) || result.Status != domain.RunError {
		t.Errorf("Run = (%+v, %v), want ErrRunInProgress", result, err)
	}
}

func TestResetMakesPostsEligibleAgain(t *testing.T) {
	f := newFixture(t)
	f.seed(t, map[string]int{"a": 100})
	if err := f.posts.MarkProcessed(context.Background(), []string{"a"}); err != nil {
		t.Fatalf("MarkProcessed: %v", err)
	}

	n, err := f.pipeline.Reset(context.Background(), day.Add(12*time.Hour))
	if err != nil || n != 1 {
		t.Fatalf("Reset = (%d, %v), want 1", n, err)
	}
	if f.processed(t, "a") {
		t.Error("post should be unprocessed after reset")
	}
}

func TestFormatResult(t *testing.T) {
	msg := FormatResult(domain.RunResult{
		Status:   domain.RunError,
		Date:     "2024-01-01",
		Message:  "send digest: smtp 503",
		Ingest:   domain.IngestStats{Accounts: 3, FailedAccounts: 1, Fetched: 1200, Inserted: 40},
		Selected: 12,
	})
	for _, want := range []string{"❌ Digest 2024-01-01: error", "send digest: smtp 503", "Accounts: 3 (1 failed)", "Fetched: 1,200, new: 40", "Selected: 12"} {
		if !strings.Contains(msg, want) {
			t.Errorf("message missing %q:\n%s", want, msg)
		}
	}
}
