package pipelineimpl

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/w3wave/social-digest/internal/domain"
	"github.com/w3wave/social-digest/internal/pipeline"
	"github.com/w3wave/social-digest/internal/repositories/post"
	apperrors "github.com/w3wave/social-digest/pkg/errors"
	"github.com/w3wave/social-digest/pkg/retry"
)

func (p *PipelineImpl) Run(ctx context.Context, date time.Time) (domain.RunResult, error) {
	day := domain.Day(date, p.Location())
	result := domain.RunResult{Date: day.Date()}

	if !p.mu.TryLock() {
		result.Status = domain.RunError
		result.Message = pipeline.ErrRunInProgress.Error()
		return result, pipeline.ErrRunInProgress
	}
	defer p.mu.Unlock()

	if timeout := p.Config.Digest.RunTimeout; timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	started := p.now()
	p.Logger.Info("Starting digest run", "date", result.Date)

	err := p.run(ctx, day, &result)
	if err != nil {
		result.Status = domain.RunError
		result.Message = err.Error()
		p.Logger.Error("Digest run failed", "date", result.Date, "code", apperrors.GetCode(err), "error", err)
	} else {
		p.Logger.Info("Digest run finished",
			"date", result.Date,
			"status", result.Status,
			"selected", result.Selected,
			"duration", p.now().Sub(started).Round(time.Millisecond).String(),
		)
	}

	p.notify(result)
	return result, err
}

func (p *PipelineImpl) run(ctx context.Context, day domain.Window, result *domain.RunResult) error {
	handles := p.Config.Handles()
	if len(handles) == 0 {
		p.Logger.Warn("No accounts configured, skipping ingestion")
	} else {
		stats, err := p.Ingest.Ingest(ctx, handles, domain.Lookback(p.now(), p.Config.Twitter.Lookback))
		result.Ingest = stats
		if err != nil {
			return fmt.Errorf("ingestion aborted: %w", err)
		}
	}

	posts, err := p.Selector.Select(ctx, day.Start, p.Config.Digest.MinEngagement)
	if err != nil {
		return err
	}
	result.Selected = len(posts)

	if len(posts) == 0 {
		result.Status = domain.RunEmpty
		result.Message = fmt.Sprintf("no posts at or above %d engagement for %s", p.Config.Digest.MinEngagement, result.Date)
		return nil
	}

	summary, err := p.Summarizer.Summarize(ctx, result.Date, posts)
	if err != nil {
		return apperrors.WrapWithCode(err, apperrors.CodeSummarizationFailed, "summarize")
	}

	ids := domain.ExternalIDs(posts)

	reportID, err := p.ReportRepo.Create(ctx, domain.Report{Date: result.Date, Summary: summary, PostIDs: ids})
	if err != nil {
		p.Logger.Error("Failed to store report, continuing with delivery", "date", result.Date, "error", err)
	}
	result.ReportID = reportID

	email, err := p.Renderer.Render(result.Date, summary, len(posts))
	if err != nil {
		return apperrors.WrapWithCode(err, apperrors.CodeDispatchFailed, "render digest")
	}

	if err := p.Mailer.Send(ctx, email); err != nil {
		return apperrors.WrapWithCode(err, apperrors.CodeDispatchFailed, "send digest")
	}

	mark := func() error {
		err := p.PostRepo.MarkProcessed(ctx, ids)
		if errors.Is(err, post.ErrPartialMark) {
			return retry.Permanent(err)
		}
		return err
	}
	if err := retry.Do(ctx, p.Logger, "MarkProcessed", mark, p.retry); err != nil {
		return apperrors.WrapWithCode(err, apperrors.CodeMarkFailed, "mark delivered posts")
	}

	if reportID > 0 {
		if err := p.ReportRepo.MarkEmailSent(ctx, reportID); err != nil {
			p.Logger.Warn("Failed to flag report as sent", "report_id", reportID, "error", err)
		}
	}

	result.Status = domain.RunSuccess
	result.Message = fmt.Sprintf("digest for %s sent with %d posts", result.Date, len(posts))
	return nil
}

func (p *PipelineImpl) Reset(ctx context.Context, date time.Time) (int64, error) {
	day := domain.Day(date, p.Location())

	n, err := p.PostRepo.ResetProcessed(ctx, day.Start, day.End)
	if err != nil {
		return 0, fmt.Errorf("reset processed posts for %s: %w", day.Date(), err)
	}

	p.Logger.Info("Reset processed posts", "date", day.Date(), "count", n)
	return n, nil
}

func (p *PipelineImpl) Preview(ctx context.Context, date time.Time, threshold int) ([]domain.Post, error) {
	return p.Selector.Select(ctx, date, threshold)
}

func (p *PipelineImpl) Reports(ctx context.Context, date time.Time) ([]domain.Report, error) {
	return p.ReportRepo.ListByDate(ctx, domain.Day(date, p.Location()).Date())
}
