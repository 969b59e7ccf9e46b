package openaiimpl

import (
	"github.com/w3wave/social-digest/internal/summarizer"
	"go.uber.org/fx"
)

var FxOption = fx.Provide(
	fx.Annotate(
		New,
		fx.As(new(summarizer.Client)),
	),
)
