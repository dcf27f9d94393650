package idgen

import (
	"context"

	"github.com/google/uuid"

	"go.uber.org/fx"

	"github.com/polkiloo/orderflow/internal/domain/port"
)

// Module provides the order id allocator.
var Module = fx.Provide(func() port.IDAllocator { return UUIDAllocator{} })

// UUIDAllocator issues random UUID order identifiers.
type UUIDAllocator struct{}

// NextID returns a fresh identifier.
func (UUIDAllocator) NextID(context.Context) (string, error) {
	return uuid.NewString(), nil
}
