package dto

import (
	"time"

	"github.com/polkiloo/orderflow/internal/domain/model"
)

// PlaceOrderRequest describes the payload for creating an order.
type PlaceOrderRequest struct {
	CustomerName string        `json:"customer_name"`
	ProductName  string        `json:"product_name"`
	Quantity     int           `json:"quantity"`
	Address      model.Address `json:"address"`
}

// CardPayload carries payment card details for a charge.
type CardPayload struct {
	Number      string `json:"number"`
	Holder      string `json:"holder"`
	ExpiryMonth int    `json:"expiry_month"`
	ExpiryYear  int    `json:"expiry_year"`
}

// PayRequest describes the payload for paying an order.
type PayRequest struct {
	Card CardPayload `json:"card"`
}

// OrderResponse describes an order snapshot returned to clients.
type OrderResponse struct {
	ID            string        `json:"id"`
	Status        string        `json:"status"`
	CustomerName  string        `json:"customer_name"`
	ProductName   string        `json:"product_name"`
	Quantity      int           `json:"quantity"`
	Address       model.Address `json:"address"`
	TotalCost     *float64      `json:"total_cost,omitempty"`
	ShippingPrice *float64      `json:"shipping_price,omitempty"`
	TrackingCode  string        `json:"tracking_code,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}
