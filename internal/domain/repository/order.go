package repository

import (
	"context"
	"time"

	"github.com/polkiloo/orderflow/internal/domain/model"
)

// OrderRepository persists order snapshots.
type OrderRepository interface {
	Save(ctx context.Context, order model.Order) error
	GetByID(ctx context.Context, id string) (*model.Order, error)
	ListByCustomer(ctx context.Context, customerID int64) ([]model.Order, error)
	// ListPendingOlderThan returns orders sitting in PAYMENT_CHECK or
	// AWAIT_REFUND whose last update is older than the cutoff.
	ListPendingOlderThan(ctx context.Context, cutoff time.Time, limit int) ([]model.Order, error)
}
