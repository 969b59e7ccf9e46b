package pipelineimpl

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-co-op/gocron/v2"
	"github.com/w3wave/social-digest/internal/pipeline"
)

// Schedule runs the digest daily at DIGEST_RUN_AT in APP_TIMEZONE. A run still
// going when the next one is due makes the next one wait for the following slot.
func (p *PipelineImpl) Schedule(ctx context.Context) error {
	hour, minute, err := p.Config.RunAt()
	if err != nil {
		return err
	}

	scheduler, err := gocron.NewScheduler(gocron.WithLocation(p.Location()))
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}

	job, err := scheduler.NewJob(
		gocron.DailyJob(
			1,
			gocron.NewAtTimes(gocron.NewAtTime(hour, minute, 0)),
		),
		gocron.NewTask(func() {
			if ctx.Err() != nil {
				p.Logger.Info("Context cancelled, skipping scheduled digest run")
				return
			}
			if _, err := p.Run(ctx, p.now()); err != nil && !errors.Is(err, pipeline.ErrRunInProgress) {
				p.Logger.Error("Scheduled digest run failed", "error", err)
			}
		}),
		gocron.WithName("daily-digest"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("failed to schedule digest run: %w", err)
	}

	scheduler.Start()

	if next, err := job.NextRun(); err == nil {
		p.Logger.Info("Digest run scheduled", "at", p.Config.Digest.RunAt, "timezone", p.Location().String(), "next_run", next)
	}

	go func() {
		<-ctx.Done()
		p.Logger.Info("Stopping digest scheduler")
		if err := scheduler.Shutdown(); err != nil {
			p.Logger.Error("Failed to shut down scheduler", "error", err)
		}
	}()

	return nil
}
