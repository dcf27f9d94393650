package order

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/polkiloo/orderflow/internal/domain/costing"
	domainErrors "github.com/polkiloo/orderflow/internal/domain/errors"
	"github.com/polkiloo/orderflow/internal/domain/model"
	"github.com/polkiloo/orderflow/internal/domain/port"
)

// Observer is invoked after every committed transition with the resulting
// snapshot. It runs outside the order lock.
type Observer func(snapshot model.Order)

// Order drives one purchase through its lifecycle. All transitions are
// serialized through an internal mutex; commands and asynchronous gateway
// callbacks may arrive from different goroutines.
type Order struct {
	mu    sync.Mutex
	state model.Order

	ids      port.IDAllocator
	catalog  port.ProductCatalog
	shipping port.ShippingClient
	payments port.PaymentGateway
	observer Observer

	pendingPayment *callbackToken
	pendingRefund  *callbackToken
}

// Option customizes a new order.
type Option func(*Order)

// WithObserver registers a transition observer.
func WithObserver(fn Observer) Option {
	return func(o *Order) { o.observer = fn }
}

// WithCustomerID attributes the order to a registered customer.
func WithCustomerID(id int64) Option {
	return func(o *Order) { o.state.CustomerID = id }
}

// New creates an order in CREATED with injected collaborators. The order
// holds non-owning references; collaborators are shared stateless services.
func New(ids port.IDAllocator, catalog port.ProductCatalog, shipping port.ShippingClient, payments port.PaymentGateway, opts ...Option) *Order {
	o := &Order{
		ids:      ids,
		catalog:  catalog,
		shipping: shipping,
		payments: payments,
		state: model.Order{
			Status:    model.StatusCreated,
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Restore rebuilds an order from a persisted snapshot. An in-flight payment
// or refund request is not resurrected; the reconciliation worker resolves
// orders stuck in PAYMENT_CHECK or AWAIT_REFUND.
func Restore(snapshot model.Order, ids port.IDAllocator, catalog port.ProductCatalog, shipping port.ShippingClient, payments port.PaymentGateway, opts ...Option) *Order {
	o := New(ids, catalog, shipping, payments, opts...)
	o.state = snapshot
	return o
}

// Place assigns an identifier and records purchase details. Legal only from
// CREATED.
func (o *Order) Place(ctx context.Context, customerName, productName string, quantity int, address model.Address) error {
	o.mu.Lock()
	if o.state.Status != model.StatusCreated {
		o.mu.Unlock()
		return domainErrors.NewTransitionError("place", o.state.Status)
	}
	if strings.TrimSpace(customerName) == "" {
		o.mu.Unlock()
		return domainErrors.Validation("customer name must not be empty")
	}
	if strings.TrimSpace(productName) == "" {
		o.mu.Unlock()
		return domainErrors.Validation("product name must not be empty")
	}
	if quantity <= 0 {
		o.mu.Unlock()
		return domainErrors.Validation("quantity must be positive, got %d", quantity)
	}

	id, err := o.ids.NextID(ctx)
	if err != nil {
		o.mu.Unlock()
		return err
	}

	o.state.ID = id
	o.state.CustomerName = customerName
	o.state.ProductName = productName
	o.state.Quantity = quantity
	o.state.ShippingAddress = address
	o.state.Status = model.StatusPlaced
	snap := o.commitLocked()
	o.mu.Unlock()

	o.notify(snap)
	return nil
}

// Pay computes the total cost on first invocation and submits a charge to the
// payment gateway. Legal from PLACED and, as a retry, from PAYMENT_CHECK or
// PAYMENT_ERROR. The cached cost is reused on retries so the charged amount
// never drifts from the first quote.
func (o *Order) Pay(ctx context.Context, card model.Card) error {
	o.mu.Lock()
	switch o.state.Status {
	case model.StatusPlaced, model.StatusPaymentCheck, model.StatusPaymentError:
	default:
		status := o.state.Status
		o.mu.Unlock()
		return domainErrors.NewTransitionError("pay", status)
	}

	if o.state.TotalCost == nil {
		if err := o.computeCostLocked(ctx); err != nil {
			o.mu.Unlock()
			return err
		}
	}

	tok := &callbackToken{order: o, kind: kindPayment}
	o.pendingPayment = tok
	o.state.Status = model.StatusPaymentCheck
	amount := *o.state.TotalCost
	snap := o.commitLocked()
	o.mu.Unlock()

	o.notify(snap)

	if err := o.payments.Pay(ctx, card, amount, tok); err != nil {
		// The request never reached the gateway, so no callback will come.
		tok.OnError("")
		return err
	}
	return nil
}

// computeCostLocked resolves catalog and shipping quotes and caches the total.
// The caller holds the lock; nothing is mutated when any lookup fails.
func (o *Order) computeCostLocked(ctx context.Context) error {
	price, err := o.catalog.UnitPrice(ctx, o.state.ProductName)
	if err != nil {
		return err
	}
	unitWeight, err := o.catalog.UnitWeight(ctx, o.state.ProductName)
	if err != nil {
		return err
	}
	weight, err := costing.TotalWeight(unitWeight, o.state.Quantity)
	if err != nil {
		return err
	}
	shippingPrice, err := o.shipping.Quote(ctx, o.state.ShippingAddress, weight)
	if err != nil {
		return err
	}
	total, err := costing.Total(price, o.state.Quantity, shippingPrice)
	if err != nil {
		return err
	}

	o.state.TotalCost = &total
	o.state.TotalWeight = &weight
	o.state.ShippingPrice = &shippingPrice
	return nil
}

// Ship executes the shipment synchronously and records the tracking code.
// Legal only from PAID. The weight and price quoted at pay time stay
// authoritative; Ship never re-quotes.
func (o *Order) Ship(ctx context.Context) error {
	o.mu.Lock()
	if o.state.Status != model.StatusPaid {
		status := o.state.Status
		o.mu.Unlock()
		return domainErrors.NewTransitionError("ship", status)
	}

	tracking, err := o.shipping.Ship(ctx, o.state.ShippingAddress, *o.state.TotalWeight)
	if err != nil {
		o.mu.Unlock()
		return err
	}

	o.state.TrackingCode = tracking
	o.state.Status = model.StatusShipped
	snap := o.commitLocked()
	o.mu.Unlock()

	o.notify(snap)
	return nil
}

// Cancel aborts the purchase. From PLACED it is a pure local transition; once
// money has been captured (PAID or SHIPPED) it always routes through a refund
// request and waits for the gateway verdict in AWAIT_REFUND.
func (o *Order) Cancel(ctx context.Context) error {
	o.mu.Lock()
	switch o.state.Status {
	case model.StatusPlaced:
		o.state.Status = model.StatusCanceled
		snap := o.commitLocked()
		o.mu.Unlock()
		o.notify(snap)
		return nil
	case model.StatusPaid, model.StatusShipped:
		tok := &callbackToken{order: o, kind: kindRefund}
		o.pendingRefund = tok
		o.state.Status = model.StatusAwaitRefund
		code := o.state.ConfirmationCode
		snap := o.commitLocked()
		o.mu.Unlock()

		o.notify(snap)

		if err := o.payments.Refund(ctx, code, tok); err != nil {
			tok.OnError("")
			return err
		}
		return nil
	default:
		status := o.state.Status
		o.mu.Unlock()
		return domainErrors.NewTransitionError("cancel", status)
	}
}

// resolve applies one asynchronous gateway verdict. A token that was already
// consumed, superseded by a retry, or delivered in the wrong state is ignored.
func (o *Order) resolve(tok *callbackToken, code string, success bool) {
	o.mu.Lock()
	if tok.used {
		o.mu.Unlock()
		return
	}
	tok.used = true

	switch tok.kind {
	case kindPayment:
		if o.pendingPayment != tok || o.state.Status != model.StatusPaymentCheck {
			o.mu.Unlock()
			return
		}
		o.pendingPayment = nil
		if success {
			o.state.ConfirmationCode = code
			o.state.Status = model.StatusPaid
		} else {
			o.state.Status = model.StatusPaymentError
		}
	case kindRefund:
		if o.pendingRefund != tok || o.state.Status != model.StatusAwaitRefund {
			o.mu.Unlock()
			return
		}
		o.pendingRefund = nil
		if success {
			o.state.Status = model.StatusRefunded
		} else {
			o.state.Status = model.StatusRefundError
		}
	}

	snap := o.commitLocked()
	o.mu.Unlock()
	o.notify(snap)
}

func (o *Order) commitLocked() model.Order {
	o.state.UpdatedAt = time.Now()
	return o.state
}

func (o *Order) notify(snap model.Order) {
	if o.observer != nil {
		o.observer(snap)
	}
}

// ID returns the allocated identifier, empty before Place.
func (o *Order) ID() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state.ID
}

// Status returns the current lifecycle state.
func (o *Order) Status() model.Status {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state.Status
}

// TotalCost returns the cached cost, nil until the first Pay computed it.
func (o *Order) TotalCost() *float64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state.TotalCost == nil {
		return nil
	}
	cost := *o.state.TotalCost
	return &cost
}

// Snapshot returns a copy of the current order data.
func (o *Order) Snapshot() model.Order {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}
