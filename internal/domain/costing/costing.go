package costing

import (
	"math"

	domainErrors "github.com/polkiloo/orderflow/internal/domain/errors"
)

// Total computes the full order cost: unit price times quantity plus the
// shipping price. Pure computation, no rounding beyond float64 precision.
func Total(unitPrice float64, quantity int, shippingPrice float64) (float64, error) {
	if quantity <= 0 {
		return 0, domainErrors.Validation("quantity must be positive, got %d", quantity)
	}
	if math.IsNaN(unitPrice) || unitPrice < 0 {
		return 0, domainErrors.Validation("unit price must be a non-negative number, got %v", unitPrice)
	}
	if math.IsNaN(shippingPrice) || shippingPrice < 0 {
		return 0, domainErrors.Validation("shipping price must be a non-negative number, got %v", shippingPrice)
	}
	return unitPrice*float64(quantity) + shippingPrice, nil
}

// TotalWeight computes the shipment weight for quantity units.
func TotalWeight(unitWeight float64, quantity int) (float64, error) {
	if quantity <= 0 {
		return 0, domainErrors.Validation("quantity must be positive, got %d", quantity)
	}
	if math.IsNaN(unitWeight) || unitWeight < 0 {
		return 0, domainErrors.Validation("unit weight must be a non-negative number, got %v", unitWeight)
	}
	return unitWeight * float64(quantity), nil
}
