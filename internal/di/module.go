package di

import (
	"go.uber.org/fx"

	"github.com/polkiloo/orderflow/internal/adapter/catalog"
	"github.com/polkiloo/orderflow/internal/adapter/payment"
	"github.com/polkiloo/orderflow/internal/adapter/shipping"
	"github.com/polkiloo/orderflow/internal/app"
	"github.com/polkiloo/orderflow/internal/config"
	"github.com/polkiloo/orderflow/internal/logger"
	"github.com/polkiloo/orderflow/internal/pkg/auth"
	"github.com/polkiloo/orderflow/internal/pkg/idgen"
	"github.com/polkiloo/orderflow/internal/pkg/signature"
	"github.com/polkiloo/orderflow/internal/server/http/handlers"
	"github.com/polkiloo/orderflow/internal/server/http/router"
	"github.com/polkiloo/orderflow/internal/storage/postgres"
	"github.com/polkiloo/orderflow/internal/usecase"
)

func Module(opts ...fx.Option) fx.Option {
	modules := []fx.Option{
		config.Module,
		logger.Module,
		auth.Module,
		signature.Module,
		idgen.Module,
		postgres.Module,
		catalog.Module,
		shipping.Module,
		payment.Module,
		usecase.Module,
		fx.Provide(func(f *app.FlowFacade) handlers.FlowFacade { return f }),
		router.Module,
		app.Module,
	}
	modules = append(modules, opts...)
	return fx.Options(modules...)
}
