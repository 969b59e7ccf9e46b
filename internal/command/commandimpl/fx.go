package commandimpl

import (
	"github.com/w3wave/social-digest/internal/command"
	"go.uber.org/fx"
)

var FxOption = fx.Provide(
	fx.Annotate(
		New,
		fx.As(new(command.Client)),
	),
)
