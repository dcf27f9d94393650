package shipping

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/orderflow/internal/config"
	"github.com/polkiloo/orderflow/internal/domain/port"
)

// Module exposes the shipping client to the fx graph.
var Module = fx.Provide(newClient)

type clientParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

func newClient(p clientParams) (port.ShippingClient, error) {
	return NewHTTPClient(p.Config.ShippingAddress, p.Logger)
}
