package test

import (
	"context"
	"sync"
	"time"

	domainErrors "github.com/polkiloo/orderflow/internal/domain/errors"
	"github.com/polkiloo/orderflow/internal/domain/model"
)

// CustomerRepositoryStub stores customers in-memory for tests.
type CustomerRepositoryStub struct {
	Customers map[string]*model.Customer
	ByID      map[int64]*model.Customer
	Next      int64
	Err       error
}

// NewCustomerRepositoryStub constructs stub repository with initialized maps.
func NewCustomerRepositoryStub() *CustomerRepositoryStub {
	return &CustomerRepositoryStub{
		Customers: make(map[string]*model.Customer),
		ByID:      make(map[int64]*model.Customer),
		Next:      1,
	}
}

// Create registers customer unless already exists or stub has explicit error.
func (s *CustomerRepositoryStub) Create(ctx context.Context, login, passwordHash string) (*model.Customer, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if s.Customers == nil {
		s.Customers = make(map[string]*model.Customer)
	}
	if s.ByID == nil {
		s.ByID = make(map[int64]*model.Customer)
	}
	if _, exists := s.Customers[login]; exists {
		return nil, domainErrors.ErrAlreadyExists
	}
	if s.Next == 0 {
		s.Next = 1
	}
	customer := &model.Customer{ID: s.Next, Login: login, PasswordHash: passwordHash}
	s.Next++
	s.Customers[login] = customer
	s.ByID[customer.ID] = customer
	return customer, nil
}

// GetByLogin fetches customer by login or returns not found.
func (s *CustomerRepositoryStub) GetByLogin(ctx context.Context, login string) (*model.Customer, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if customer, ok := s.Customers[login]; ok {
		return customer, nil
	}
	return nil, domainErrors.ErrNotFound
}

// GetByID fetches customer by identifier or returns not found.
func (s *CustomerRepositoryStub) GetByID(ctx context.Context, id int64) (*model.Customer, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if customer, ok := s.ByID[id]; ok {
		return customer, nil
	}
	return nil, domainErrors.ErrNotFound
}

// OrderRepositoryStub keeps order snapshots in memory and lets tests override
// individual calls.
type OrderRepositoryStub struct {
	mu        sync.Mutex
	Snapshots map[string]model.Order
	Saved     []model.Order

	SaveFn           func(context.Context, model.Order) error
	GetByIDFn        func(context.Context, string) (*model.Order, error)
	ListByCustomerFn func(context.Context, int64) ([]model.Order, error)
	ListPendingFn    func(context.Context, time.Time, int) ([]model.Order, error)
	Err              error
	Pending          []model.Order
}

// NewOrderRepositoryStub constructs stub with an initialized snapshot map.
func NewOrderRepositoryStub() *OrderRepositoryStub {
	return &OrderRepositoryStub{Snapshots: make(map[string]model.Order)}
}

// Save upserts the snapshot and records the call.
func (s *OrderRepositoryStub) Save(ctx context.Context, order model.Order) error {
	if s.SaveFn != nil {
		return s.SaveFn(ctx, order)
	}
	if s.Err != nil {
		return s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Snapshots == nil {
		s.Snapshots = make(map[string]model.Order)
	}
	s.Snapshots[order.ID] = order
	s.Saved = append(s.Saved, order)
	return nil
}

// GetByID returns the stored snapshot or not found.
func (s *OrderRepositoryStub) GetByID(ctx context.Context, id string) (*model.Order, error) {
	if s.GetByIDFn != nil {
		return s.GetByIDFn(ctx, id)
	}
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if order, ok := s.Snapshots[id]; ok {
		copied := order
		return &copied, nil
	}
	return nil, domainErrors.ErrNotFound
}

// ListByCustomer returns snapshots belonging to the customer.
func (s *OrderRepositoryStub) ListByCustomer(ctx context.Context, customerID int64) ([]model.Order, error) {
	if s.ListByCustomerFn != nil {
		return s.ListByCustomerFn(ctx, customerID)
	}
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []model.Order
	for _, order := range s.Snapshots {
		if order.CustomerID == customerID {
			result = append(result, order)
		}
	}
	return result, nil
}

// ListPendingOlderThan returns the configured pending slice.
func (s *OrderRepositoryStub) ListPendingOlderThan(ctx context.Context, cutoff time.Time, limit int) ([]model.Order, error) {
	if s.ListPendingFn != nil {
		return s.ListPendingFn(ctx, cutoff, limit)
	}
	if s.Err != nil {
		return nil, s.Err
	}
	if limit < len(s.Pending) {
		return s.Pending[:limit], nil
	}
	return s.Pending, nil
}

// SavedStatuses lists the statuses written through Save in order.
func (s *OrderRepositoryStub) SavedStatuses() []model.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	statuses := make([]model.Status, 0, len(s.Saved))
	for _, order := range s.Saved {
		statuses = append(statuses, order.Status)
	}
	return statuses
}
