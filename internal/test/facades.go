package test

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/polkiloo/orderflow/internal/domain/model"
	"github.com/polkiloo/orderflow/internal/domain/port"
)

// OrderFacadeStub provides controllable behaviour for order endpoints.
type OrderFacadeStub struct {
	PlaceFn  func(context.Context, int64, string, string, int, model.Address) (model.Order, error)
	PayFn    func(context.Context, int64, string, model.Card) (model.Order, error)
	ShipFn   func(context.Context, int64, string) (model.Order, error)
	CancelFn func(context.Context, int64, string) (model.Order, error)
	GetFn    func(context.Context, int64, string) (model.Order, error)
	ListFn   func(context.Context, int64) ([]model.Order, error)
}

// PlaceOrder delegates to the override or returns a placed order.
func (s OrderFacadeStub) PlaceOrder(ctx context.Context, customerID int64, customerName, productName string, quantity int, address model.Address) (model.Order, error) {
	if s.PlaceFn != nil {
		return s.PlaceFn(ctx, customerID, customerName, productName, quantity, address)
	}
	return model.Order{
		ID:              "order-1",
		CustomerID:      customerID,
		CustomerName:    customerName,
		ProductName:     productName,
		Quantity:        quantity,
		ShippingAddress: address,
		Status:          model.StatusPlaced,
	}, nil
}

// PayOrder delegates to the override or reports the payment as submitted.
func (s OrderFacadeStub) PayOrder(ctx context.Context, customerID int64, orderID string, card model.Card) (model.Order, error) {
	if s.PayFn != nil {
		return s.PayFn(ctx, customerID, orderID, card)
	}
	return model.Order{ID: orderID, CustomerID: customerID, Status: model.StatusPaymentCheck}, nil
}

// ShipOrder delegates to the override or reports the order as shipped.
func (s OrderFacadeStub) ShipOrder(ctx context.Context, customerID int64, orderID string) (model.Order, error) {
	if s.ShipFn != nil {
		return s.ShipFn(ctx, customerID, orderID)
	}
	return model.Order{ID: orderID, CustomerID: customerID, Status: model.StatusShipped, TrackingCode: "11001"}, nil
}

// CancelOrder delegates to the override or reports the order as canceled.
func (s OrderFacadeStub) CancelOrder(ctx context.Context, customerID int64, orderID string) (model.Order, error) {
	if s.CancelFn != nil {
		return s.CancelFn(ctx, customerID, orderID)
	}
	return model.Order{ID: orderID, CustomerID: customerID, Status: model.StatusCanceled}, nil
}

// Order returns the configured snapshot for the identifier.
func (s OrderFacadeStub) Order(ctx context.Context, customerID int64, orderID string) (model.Order, error) {
	if s.GetFn != nil {
		return s.GetFn(ctx, customerID, orderID)
	}
	return model.Order{ID: orderID, CustomerID: customerID, Status: model.StatusPlaced}, nil
}

// Orders returns predefined orders for the customer.
func (s OrderFacadeStub) Orders(ctx context.Context, customerID int64) ([]model.Order, error) {
	if s.ListFn != nil {
		return s.ListFn(ctx, customerID)
	}
	return []model.Order{{ID: "order-1", CustomerID: customerID, Status: model.StatusPlaced}}, nil
}

// WebhookFacadeStub records payment verdict deliveries.
type WebhookFacadeStub struct {
	DispatchFn func(string, bool, string) error

	mu         sync.Mutex
	Dispatched []WebhookDispatch
}

// WebhookDispatch stores one DispatchPaymentResult invocation.
type WebhookDispatch struct {
	RequestID string
	Succeeded bool
	Code      string
}

// DispatchPaymentResult records the verdict or delegates to the override.
func (s *WebhookFacadeStub) DispatchPaymentResult(requestID string, succeeded bool, code string) error {
	if s.DispatchFn != nil {
		return s.DispatchFn(requestID, succeeded, code)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Dispatched = append(s.Dispatched, WebhookDispatch{RequestID: requestID, Succeeded: succeeded, Code: code})
	return nil
}

// FlowFacadeStub aggregates facade dependencies for HTTP layer tests.
type FlowFacadeStub struct {
	AuthFacadeStub
	OrderFacadeStub
	*WebhookFacadeStub
}

// NewFlowFacadeStub constructs an aggregate stub with default behaviour.
func NewFlowFacadeStub() *FlowFacadeStub {
	return &FlowFacadeStub{WebhookFacadeStub: &WebhookFacadeStub{}}
}

// ReconcilerFacadeStub mimics worker interactions with the application facade.
type ReconcilerFacadeStub struct {
	StaleFn     func(time.Duration, int) []string
	ReconcileFn func(context.Context, string) error
	PendingFn   func(context.Context, time.Duration, int) ([]model.Order, error)

	StaleBatches [][]string

	mu              sync.Mutex
	staleCallCount  int
	ReconciledIDs   []string
	PendingRequests int
}

// StalePaymentRequests serves batches from the configured queue.
func (s *ReconcilerFacadeStub) StalePaymentRequests(age time.Duration, limit int) []string {
	if s.StaleFn != nil {
		return s.StaleFn(age, limit)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.staleCallCount < len(s.StaleBatches) {
		batch := s.StaleBatches[s.staleCallCount]
		s.staleCallCount++
		return batch
	}
	return nil
}

// ReconcilePaymentRequest records reconciled request identifiers.
func (s *ReconcilerFacadeStub) ReconcilePaymentRequest(ctx context.Context, requestID string) error {
	if s.ReconcileFn != nil {
		return s.ReconcileFn(ctx, requestID)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ReconciledIDs = append(s.ReconciledIDs, requestID)
	return nil
}

// PendingOrders returns stuck order snapshots for visibility logging.
func (s *ReconcilerFacadeStub) PendingOrders(ctx context.Context, age time.Duration, limit int) ([]model.Order, error) {
	if s.PendingFn != nil {
		return s.PendingFn(ctx, age, limit)
	}
	return nil, nil
}

// Reconciled returns a copy of the reconciled identifiers.
func (s *ReconcilerFacadeStub) Reconciled() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.ReconciledIDs...)
}

// IDAllocatorStub hands out sequential identifiers.
type IDAllocatorStub struct {
	NextFn func(context.Context) (string, error)
	IDs    []string

	mu   sync.Mutex
	next int
}

// NextID returns the next configured identifier.
func (s *IDAllocatorStub) NextID(ctx context.Context) (string, error) {
	if s.NextFn != nil {
		return s.NextFn(ctx)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	if s.next <= len(s.IDs) {
		return s.IDs[s.next-1], nil
	}
	return fmt.Sprintf("order-%d", s.next), nil
}

// CatalogStub serves fixed product data.
type CatalogStub struct {
	Price     float64
	Weight    float64
	PriceErr  error
	WeightErr error
}

// UnitPrice returns the configured price.
func (s CatalogStub) UnitPrice(ctx context.Context, productName string) (float64, error) {
	if s.PriceErr != nil {
		return 0, s.PriceErr
	}
	return s.Price, nil
}

// UnitWeight returns the configured weight.
func (s CatalogStub) UnitWeight(ctx context.Context, productName string) (float64, error) {
	if s.WeightErr != nil {
		return 0, s.WeightErr
	}
	return s.Weight, nil
}

// ShippingStub serves fixed quotes and tracking codes.
type ShippingStub struct {
	QuotePrice float64
	Tracking   string
	QuoteErr   error
	ShipErr    error
}

// Quote returns the configured shipping price.
func (s ShippingStub) Quote(ctx context.Context, address model.Address, totalWeight float64) (float64, error) {
	if s.QuoteErr != nil {
		return 0, s.QuoteErr
	}
	return s.QuotePrice, nil
}

// Ship returns the configured tracking code.
func (s ShippingStub) Ship(ctx context.Context, address model.Address, totalWeight float64) (string, error) {
	if s.ShipErr != nil {
		return "", s.ShipErr
	}
	return s.Tracking, nil
}

// GatewayStub captures submitted callbacks so tests deliver verdicts manually.
type GatewayStub struct {
	PayErr    error
	RefundErr error

	mu              sync.Mutex
	PayCallbacks    []port.PaymentCallback
	RefundCallbacks []port.PaymentCallback
	Amounts         []float64
	RefundCodes     []string
}

// Pay records the callback for later resolution.
func (s *GatewayStub) Pay(ctx context.Context, card model.Card, amount float64, cb port.PaymentCallback) error {
	if s.PayErr != nil {
		return s.PayErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.PayCallbacks = append(s.PayCallbacks, cb)
	s.Amounts = append(s.Amounts, amount)
	return nil
}

// Refund records the callback for later resolution.
func (s *GatewayStub) Refund(ctx context.Context, confirmationCode string, cb port.PaymentCallback) error {
	if s.RefundErr != nil {
		return s.RefundErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.RefundCallbacks = append(s.RefundCallbacks, cb)
	s.RefundCodes = append(s.RefundCodes, confirmationCode)
	return nil
}

// LastPayCallback returns the most recent charge callback.
func (s *GatewayStub) LastPayCallback() port.PaymentCallback {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.PayCallbacks) == 0 {
		return nil
	}
	return s.PayCallbacks[len(s.PayCallbacks)-1]
}

// LastRefundCallback returns the most recent refund callback.
func (s *GatewayStub) LastRefundCallback() port.PaymentCallback {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.RefundCallbacks) == 0 {
		return nil
	}
	return s.RefundCallbacks[len(s.RefundCallbacks)-1]
}
