package telegramimpl

import "go.uber.org/fx"

var FxOption = fx.Provide(New)
