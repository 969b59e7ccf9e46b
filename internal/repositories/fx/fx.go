package fx

import (
	"github.com/w3wave/social-digest/internal/repositories/post"
	"github.com/w3wave/social-digest/internal/repositories/report"
	"go.uber.org/fx"
)

var Module = fx.Options(
	post.Module,
	report.Module,
)
