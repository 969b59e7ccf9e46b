package pipelineimpl

import (
	"sync"
	"time"

	"github.com/w3wave/social-digest/internal/digest"
	"github.com/w3wave/social-digest/internal/ingest"
	"github.com/w3wave/social-digest/internal/mailer"
	"github.com/w3wave/social-digest/internal/pipeline"
	"github.com/w3wave/social-digest/internal/repositories/post"
	"github.com/w3wave/social-digest/internal/repositories/report"
	"github.com/w3wave/social-digest/internal/selector"
	"github.com/w3wave/social-digest/internal/summarizer"
	"github.com/w3wave/social-digest/internal/telegram"
	"github.com/w3wave/social-digest/pkg/config"
	"github.com/w3wave/social-digest/pkg/logger"
	"github.com/w3wave/social-digest/pkg/retry"
	"go.uber.org/fx"
)

type Opts struct {
	fx.In

	Config     *config.Config
	Logger     logger.Logger
	Ingest     ingest.Client
	Selector   *selector.Selector
	Summarizer summarizer.Client
	Mailer     mailer.Client
	Renderer   *digest.Renderer
	PostRepo   post.Repository
	ReportRepo report.Repository
	Telegram   telegram.Client
}

type PipelineImpl struct {
	Config     *config.Config
	Logger     logger.Logger
	Ingest     ingest.Client
	Selector   *selector.Selector
	Summarizer summarizer.Client
	Mailer     mailer.Client
	Renderer   *digest.Renderer
	PostRepo   post.Repository
	ReportRepo report.Repository
	Telegram   telegram.Client

	retry retry.Config
	now   func() time.Time
	// Serializes scheduled and manual runs inside the process.
	mu sync.Mutex
}

func New(opts Opts) *PipelineImpl {
	return &PipelineImpl{
		Config:     opts.Config,
		Logger:     opts.Logger.WithComponent("Pipeline"),
		Ingest:     opts.Ingest,
		Selector:   opts.Selector,
		Summarizer: opts.Summarizer,
		Mailer:     opts.Mailer,
		Renderer:   opts.Renderer,
		PostRepo:   opts.PostRepo,
		ReportRepo: opts.ReportRepo,
		Telegram:   opts.Telegram,
		retry:      retry.DefaultConfig(),
		now:        time.Now,
	}
}

var _ pipeline.Client = (*PipelineImpl)(nil)

func (p *PipelineImpl) Location() *time.Location {
	return p.Selector.Location()
}
