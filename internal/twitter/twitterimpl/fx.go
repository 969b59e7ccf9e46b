package twitterimpl

import (
	"github.com/w3wave/social-digest/internal/twitter"
	"go.uber.org/fx"
)

var FxOption = fx.Provide(
	fx.Annotate(
		New,
		fx.As(new(twitter.Client)),
	),
)
