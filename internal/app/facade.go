package app

import (
	"context"
	"time"

	"github.com/polkiloo/orderflow/internal/adapter/payment"
	"github.com/polkiloo/orderflow/internal/domain/model"
	"github.com/polkiloo/orderflow/internal/usecase"
)

// FlowFacade aggregates use cases and the payment gateway behind the surface
// the HTTP layer and the reconciliation worker consume.
type FlowFacade struct {
	auth    *usecase.AuthUseCase
	orders  *usecase.OrderUseCase
	gateway *payment.HTTPGateway
}

func NewFlowFacade(auth *usecase.AuthUseCase, orders *usecase.OrderUseCase, gateway *payment.HTTPGateway) *FlowFacade {
	return &FlowFacade{auth: auth, orders: orders, gateway: gateway}
}

func (f *FlowFacade) Register(ctx context.Context, login, password string) (string, error) {
	_, token, err := f.auth.Register(ctx, login, password)
	return token, err
}

func (f *FlowFacade) Authenticate(ctx context.Context, login, password string) (string, error) {
	_, token, err := f.auth.Authenticate(ctx, login, password)
	return token, err
}

func (f *FlowFacade) ParseToken(token string) (int64, error) {
	return f.auth.ParseToken(token)
}

func (f *FlowFacade) PlaceOrder(ctx context.Context, customerID int64, customerName, productName string, quantity int, address model.Address) (model.Order, error) {
	return f.orders.PlaceOrder(ctx, customerID, customerName, productName, quantity, address)
}

func (f *FlowFacade) PayOrder(ctx context.Context, customerID int64, orderID string, card model.Card) (model.Order, error) {
	return f.orders.Pay(ctx, customerID, orderID, card)
}

func (f *FlowFacade) ShipOrder(ctx context.Context, customerID int64, orderID string) (model.Order, error) {
	return f.orders.Ship(ctx, customerID, orderID)
}

func (f *FlowFacade) CancelOrder(ctx context.Context, customerID int64, orderID string) (model.Order, error) {
	return f.orders.Cancel(ctx, customerID, orderID)
}

func (f *FlowFacade) Order(ctx context.Context, customerID int64, orderID string) (model.Order, error) {
	return f.orders.Get(ctx, customerID, orderID)
}

func (f *FlowFacade) Orders(ctx context.Context, customerID int64) ([]model.Order, error) {
	return f.orders.ListByCustomer(ctx, customerID)
}

// DispatchPaymentResult delivers a gateway webhook verdict to the pending
// charge or refund it answers.
func (f *FlowFacade) DispatchPaymentResult(requestID string, succeeded bool, code string) error {
	return f.gateway.Dispatch(requestID, succeeded, code)
}

// StalePaymentRequests lists gateway requests still awaiting a webhook after
// the given age.
func (f *FlowFacade) StalePaymentRequests(age time.Duration, limit int) []string {
	return f.gateway.StalePending(age, limit)
}

// ReconcilePaymentRequest resolves one stale request by polling the gateway.
func (f *FlowFacade) ReconcilePaymentRequest(ctx context.Context, requestID string) error {
	return f.gateway.Reconcile(ctx, requestID)
}

// PendingOrders returns persisted orders stuck awaiting a verdict.
func (f *FlowFacade) PendingOrders(ctx context.Context, age time.Duration, limit int) ([]model.Order, error) {
	return f.orders.PendingOlderThan(ctx, age, limit)
}
