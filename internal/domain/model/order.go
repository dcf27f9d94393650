package model

import "time"

// Status describes the order lifecycle state.
type Status string

const (
	StatusCreated      Status = "CREATED"
	StatusPlaced       Status = "PLACED"
	StatusCanceled     Status = "CANCELED"
	StatusPaymentCheck Status = "PAYMENT_CHECK"
	StatusPaid         Status = "PAID"
	StatusPaymentError Status = "PAYMENT_ERROR"
	StatusShipped      Status = "SHIPPED"
	StatusAwaitRefund  Status = "AWAIT_REFUND"
	StatusRefunded     Status = "REFUNDED"
	StatusRefundError  Status = "REFUND_ERROR"
)

// Terminal reports whether no further commands apply to an order in this status.
func (s Status) Terminal() bool {
	switch s {
	case StatusCanceled, StatusRefunded, StatusRefundError:
		return true
	}
	return false
}

// PaymentCaptured reports whether money has been captured at some point of the
// order's history, i.e. a confirmation code is present.
func (s Status) PaymentCaptured() bool {
	switch s {
	case StatusPaid, StatusShipped, StatusAwaitRefund, StatusRefunded, StatusRefundError:
		return true
	}
	return false
}

// Order is a persisted snapshot of one purchase.
type Order struct {
	ID               string
	CustomerID       int64
	CustomerName     string
	ProductName      string
	Quantity         int
	ShippingAddress  Address
	Status           Status
	TotalCost        *float64
	TotalWeight      *float64
	ShippingPrice    *float64
	ConfirmationCode string
	TrackingCode     string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
