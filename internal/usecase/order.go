package usecase

import (
	"context"
	"log/slog"
	"sync"
	"time"

	domainErrors "github.com/polkiloo/orderflow/internal/domain/errors"
	"github.com/polkiloo/orderflow/internal/domain/model"
	"github.com/polkiloo/orderflow/internal/domain/order"
	"github.com/polkiloo/orderflow/internal/domain/port"
	"github.com/polkiloo/orderflow/internal/domain/repository"
)

// OrderUseCase drives order lifecycles. Live state machines are kept in an
// in-memory registry keyed by order ID so asynchronous gateway verdicts land
// on the same instance that issued the request; every committed transition is
// written through to the repository.
type OrderUseCase struct {
	mu       sync.Mutex
	registry map[string]*order.Order

	orders   repository.OrderRepository
	ids      port.IDAllocator
	catalog  port.ProductCatalog
	shipping port.ShippingClient
	payments port.PaymentGateway
	logger   *slog.Logger
}

// NewOrderUseCase constructs OrderUseCase.
func NewOrderUseCase(
	orders repository.OrderRepository,
	ids port.IDAllocator,
	catalog port.ProductCatalog,
	shipping port.ShippingClient,
	payments port.PaymentGateway,
	logger *slog.Logger,
) *OrderUseCase {
	return &OrderUseCase{
		registry: make(map[string]*order.Order),
		orders:   orders,
		ids:      ids,
		catalog:  catalog,
		shipping: shipping,
		payments: payments,
		logger:   logger,
	}
}

// persist is the transition observer shared by every machine. Callbacks can
// outlive the originating request, so saving uses a detached context.
func (u *OrderUseCase) persist(snapshot model.Order) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := u.orders.Save(ctx, snapshot); err != nil {
		u.logger.Error("persist order snapshot",
			slog.String("order_id", snapshot.ID),
			slog.String("status", string(snapshot.Status)),
			slog.String("error", err.Error()),
		)
		return
	}

	if snapshot.Status.Terminal() {
		u.mu.Lock()
		delete(u.registry, snapshot.ID)
		u.mu.Unlock()
	}
}

// PlaceOrder creates and places a new order for the customer.
func (u *OrderUseCase) PlaceOrder(ctx context.Context, customerID int64, customerName, productName string, quantity int, address model.Address) (model.Order, error) {
	o := order.New(u.ids, u.catalog, u.shipping, u.payments,
		order.WithCustomerID(customerID),
		order.WithObserver(u.persist),
	)

	if err := o.Place(ctx, customerName, productName, quantity, address); err != nil {
		return model.Order{}, err
	}

	u.mu.Lock()
	u.registry[o.ID()] = o
	u.mu.Unlock()

	return o.Snapshot(), nil
}

// Pay submits a charge for the customer's order.
func (u *OrderUseCase) Pay(ctx context.Context, customerID int64, orderID string, card model.Card) (model.Order, error) {
	o, err := u.machine(ctx, customerID, orderID)
	if err != nil {
		return model.Order{}, err
	}
	if err := o.Pay(ctx, card); err != nil {
		return model.Order{}, err
	}
	return o.Snapshot(), nil
}

// Ship dispatches the customer's paid order.
func (u *OrderUseCase) Ship(ctx context.Context, customerID int64, orderID string) (model.Order, error) {
	o, err := u.machine(ctx, customerID, orderID)
	if err != nil {
		return model.Order{}, err
	}
	if err := o.Ship(ctx); err != nil {
		return model.Order{}, err
	}
	return o.Snapshot(), nil
}

// Cancel aborts the customer's order, refunding when money was captured.
func (u *OrderUseCase) Cancel(ctx context.Context, customerID int64, orderID string) (model.Order, error) {
	o, err := u.machine(ctx, customerID, orderID)
	if err != nil {
		return model.Order{}, err
	}
	if err := o.Cancel(ctx); err != nil {
		return model.Order{}, err
	}
	return o.Snapshot(), nil
}

// Get returns the current snapshot of the customer's order.
func (u *OrderUseCase) Get(ctx context.Context, customerID int64, orderID string) (model.Order, error) {
	u.mu.Lock()
	o, ok := u.registry[orderID]
	u.mu.Unlock()
	if ok {
		snap := o.Snapshot()
		if snap.CustomerID != customerID {
			return model.Order{}, domainErrors.ErrNotFound
		}
		return snap, nil
	}

	stored, err := u.orders.GetByID(ctx, orderID)
	if err != nil {
		return model.Order{}, err
	}
	if stored.CustomerID != customerID {
		return model.Order{}, domainErrors.ErrNotFound
	}
	return *stored, nil
}

// ListByCustomer returns the customer's orders sorted by creation time.
func (u *OrderUseCase) ListByCustomer(ctx context.Context, customerID int64) ([]model.Order, error) {
	return u.orders.ListByCustomer(ctx, customerID)
}

// PendingOlderThan returns persisted orders stuck awaiting a gateway verdict
// longer than the given age.
func (u *OrderUseCase) PendingOlderThan(ctx context.Context, age time.Duration, limit int) ([]model.Order, error) {
	return u.orders.ListPendingOlderThan(ctx, time.Now().Add(-age), limit)
}

// machine returns the live state machine for the order, restoring it from the
// repository when the process has no instance yet. Orders belonging to another
// customer are reported as not found.
func (u *OrderUseCase) machine(ctx context.Context, customerID int64, orderID string) (*order.Order, error) {
	u.mu.Lock()
	if o, ok := u.registry[orderID]; ok {
		u.mu.Unlock()
		if o.Snapshot().CustomerID != customerID {
			return nil, domainErrors.ErrNotFound
		}
		return o, nil
	}
	u.mu.Unlock()

	stored, err := u.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if stored.CustomerID != customerID {
		return nil, domainErrors.ErrNotFound
	}

	restored := order.Restore(*stored, u.ids, u.catalog, u.shipping, u.payments,
		order.WithObserver(u.persist),
	)

	u.mu.Lock()
	defer u.mu.Unlock()
	// Another request may have restored the same order concurrently.
	if existing, ok := u.registry[orderID]; ok {
		return existing, nil
	}
	u.registry[orderID] = restored
	return restored, nil
}
