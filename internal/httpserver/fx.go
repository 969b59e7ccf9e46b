package httpserver

import "go.uber.org/fx"

var FxOption = fx.Options(
	fx.Provide(New),
	fx.Invoke(func(*Server) {}),
)
