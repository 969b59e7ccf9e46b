package ingestimpl

import (
	"github.com/w3wave/social-digest/internal/ingest"
	"go.uber.org/fx"
)

var FxOption = fx.Provide(
	fx.Annotate(
		New,
		fx.As(new(ingest.Client)),
	),
)
