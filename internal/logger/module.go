package logger

import "go.uber.org/fx"

// Module provides the application slog logger.
var Module = fx.Provide(New)
