package commandimpl

import (
	"github.com/w3wave/social-digest/internal/command"
	"github.com/w3wave/social-digest/internal/pipeline"
	"github.com/w3wave/social-digest/internal/telegram"
	"github.com/w3wave/social-digest/pkg/config"
	"github.com/w3wave/social-digest/pkg/logger"
	"go.uber.org/fx"
)

type Opts struct {
	fx.In

	Pipeline pipeline.Client
	Telegram telegram.Client
	Logger   logger.Logger
	Config   *config.Config
}

type CommandImpl struct {
	Pipeline pipeline.Client
	Telegram telegram.Client
	Logger   logger.Logger
	Config   *config.Config
}

func New(opts Opts) *CommandImpl {
	return &CommandImpl{
		Pipeline: opts.Pipeline,
		Telegram: opts.Telegram,
		Logger:   opts.Logger.WithComponent("Command"),
		Config:   opts.Config,
	}
}

var _ command.Client = (*CommandImpl)(nil)
