package handlers

import (
	"context"

	"github.com/polkiloo/orderflow/internal/domain/model"
)

// AuthFacade describes authentication capabilities required by handlers.
type AuthFacade interface {
	Register(ctx context.Context, login, password string) (string, error)
	Authenticate(ctx context.Context, login, password string) (string, error)
	ParseToken(token string) (int64, error)
}

// OrderFacade encapsulates order lifecycle operations exposed via HTTP.
type OrderFacade interface {
	PlaceOrder(ctx context.Context, customerID int64, customerName, productName string, quantity int, address model.Address) (model.Order, error)
	PayOrder(ctx context.Context, customerID int64, orderID string, card model.Card) (model.Order, error)
	ShipOrder(ctx context.Context, customerID int64, orderID string) (model.Order, error)
	CancelOrder(ctx context.Context, customerID int64, orderID string) (model.Order, error)
	Order(ctx context.Context, customerID int64, orderID string) (model.Order, error)
	Orders(ctx context.Context, customerID int64) ([]model.Order, error)
}

// WebhookFacade routes payment gateway verdicts to pending requests.
type WebhookFacade interface {
	DispatchPaymentResult(requestID string, succeeded bool, code string) error
}

// FlowFacade aggregates the full set of operations used across handlers.
type FlowFacade interface {
	AuthFacade
	OrderFacade
	WebhookFacade
}
