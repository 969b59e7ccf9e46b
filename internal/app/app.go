package app

import (
	"context"
	"time"

	"github.com/w3wave/social-digest/internal/cache"
	"github.com/w3wave/social-digest/internal/command"
	"github.com/w3wave/social-digest/internal/command/commandimpl"
	"github.com/w3wave/social-digest/internal/digest"
	"github.com/w3wave/social-digest/internal/httpserver"
	"github.com/w3wave/social-digest/internal/ingest/ingestimpl"
	"github.com/w3wave/social-digest/internal/mailer/resendimpl"
	"github.com/w3wave/social-digest/internal/migrations"
	"github.com/w3wave/social-digest/internal/pipeline"
	"github.com/w3wave/social-digest/internal/pipeline/pipelineimpl"
	repositories "github.com/w3wave/social-digest/internal/repositories/fx"
	"github.com/w3wave/social-digest/internal/selector"
	"github.com/w3wave/social-digest/internal/summarizer/openaiimpl"
	"github.com/w3wave/social-digest/internal/telegram/telegramimpl"
	"github.com/w3wave/social-digest/internal/twitter/twitterimpl"
	"github.com/w3wave/social-digest/pkg/config"
	"github.com/w3wave/social-digest/pkg/logger"
	"github.com/w3wave/social-digest/pkg/pgx"
	"go.uber.org/fx"
)

// Core wires the pipeline and everything it depends on.
var Core = fx.Options(
	fx.Provide(
		config.New,
		logger.FxOption,
		pgx.New,
	),
	cache.FxOption,
	twitterimpl.FxOption,
	ingestimpl.FxOption,
	selector.FxOption,
	openaiimpl.FxOption,
	resendimpl.FxOption,
	digest.FxOption,
	telegramimpl.FxOption,
	pipelineimpl.FxOption,
	repositories.Module,
	fx.Invoke(migrate),
)

// Serve adds the daily scheduler, the admin HTTP server and the operator bot.
var Serve = fx.Options(
	Core,
	httpserver.FxOption,
	commandimpl.FxOption,
	fx.Invoke(schedule, listen),
)

func migrate(cfg *config.Config, log logger.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	n, err := migrations.Up(ctx, cfg.GetDSN())
	if err != nil {
		return err
	}
	log.Info("Database migrations applied", "count", n)
	return nil
}

func schedule(lc fx.Lifecycle, log logger.Logger, p pipeline.Client) {
	ctx, cancel := context.WithCancel(context.Background())

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			if err := p.Schedule(ctx); err != nil {
				log.Error("Failed to schedule digest", "error", err)
				return err
			}
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			return nil
		},
	})
}

// listen serves operator bot commands, restarting the handler when the update
// stream drops.
func listen(lc fx.Lifecycle, cfg *config.Config, log logger.Logger, cmd command.Client) {
	if cfg.Telegram.Token == "" {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				defer close(done)
				for {
					err := cmd.HandleCommand(ctx)
					if ctx.Err() != nil {
						return
					}
					log.Error("Command handler stopped, restarting", "error", err)
					select {
					case <-ctx.Done():
						return
					case <-time.After(5 * time.Second):
					}
				}
			}()
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			select {
			case <-done:
			case <-stopCtx.Done():
			}
			return nil
		},
	})
}
