package port

import (
	"context"

	"github.com/polkiloo/orderflow/internal/domain/model"
)

// IDAllocator issues a unique order identifier once per placed order.
type IDAllocator interface {
	NextID(ctx context.Context) (string, error)
}

// ProductCatalog resolves pricing attributes of a product by name.
type ProductCatalog interface {
	UnitPrice(ctx context.Context, productName string) (float64, error)
	UnitWeight(ctx context.Context, productName string) (float64, error)
}

// ShippingClient quotes and executes shipments. Ship is synchronous and
// returns the carrier tracking code.
type ShippingClient interface {
	Quote(ctx context.Context, address model.Address, totalWeight float64) (float64, error)
	Ship(ctx context.Context, address model.Address, totalWeight float64) (string, error)
}

// PaymentCallback receives the outcome of one asynchronous gateway request.
// Exactly one of the two methods is delivered per outstanding request, and
// never before the request was issued.
type PaymentCallback interface {
	OnSuccess(code string)
	OnError(code string)
}

// PaymentGateway initiates charges and refunds. Both calls are
// fire-and-forget: the result arrives later through the callback.
type PaymentGateway interface {
	Pay(ctx context.Context, card model.Card, amount float64, cb PaymentCallback) error
	Refund(ctx context.Context, confirmationCode string, cb PaymentCallback) error
}
