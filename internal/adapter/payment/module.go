package payment

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/orderflow/internal/config"
	"github.com/polkiloo/orderflow/internal/domain/port"
)

// Module exposes the payment gateway to the fx graph, both as the domain
// port and as the concrete type used by the webhook handler and worker.
var Module = fx.Options(
	fx.Provide(newGateway),
	fx.Provide(func(g *HTTPGateway) port.PaymentGateway { return g }),
)

type gatewayParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

func newGateway(p gatewayParams) (*HTTPGateway, error) {
	return NewHTTPGateway(p.Config.PaymentGatewayAddress, p.Logger)
}
