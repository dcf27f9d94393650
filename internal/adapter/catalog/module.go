package catalog

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/orderflow/internal/config"
	"github.com/polkiloo/orderflow/internal/domain/port"
)

// Module exposes the catalog client to the fx graph.
var Module = fx.Provide(newClient)

type clientParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

func newClient(p clientParams) (port.ProductCatalog, error) {
	return NewHTTPClient(p.Config.CatalogAddress, p.Logger)
}
