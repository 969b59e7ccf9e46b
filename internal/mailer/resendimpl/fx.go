package resendimpl

import (
	"github.com/w3wave/social-digest/internal/mailer"
	"go.uber.org/fx"
)

var FxOption = fx.Provide(
	fx.Annotate(
		New,
		fx.As(new(mailer.Client)),
	),
)
