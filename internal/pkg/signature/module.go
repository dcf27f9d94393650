package signature

import (
	"go.uber.org/fx"

	"github.com/polkiloo/orderflow/internal/config"
)

// Module provides the webhook signer to the fx container.
var Module = fx.Provide(func(cfg *config.Config) *Signer {
	return New(cfg.WebhookSecret)
})
