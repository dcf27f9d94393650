package repository

import (
	"context"

	"github.com/polkiloo/orderflow/internal/domain/model"
)

// CustomerRepository persists customer accounts.
type CustomerRepository interface {
	Create(ctx context.Context, login, passwordHash string) (*model.Customer, error)
	GetByLogin(ctx context.Context, login string) (*model.Customer, error)
	GetByID(ctx context.Context, id int64) (*model.Customer, error)
}
