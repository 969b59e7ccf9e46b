package pipelineimpl

import (
	"github.com/w3wave/social-digest/internal/pipeline"
	"go.uber.org/fx"
)

var FxOption = fx.Provide(
	fx.Annotate(
		New,
		fx.As(new(pipeline.Client)),
	),
)
