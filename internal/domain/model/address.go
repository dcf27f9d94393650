package model

// Address is the shipping destination of an order. JSON tags double for the
// API payload and the jsonb storage column.
type Address struct {
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	Region     string `json:"region,omitempty"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

// Card carries the payment instrument details passed through to the gateway.
// The service never stores card data.
type Card struct {
	Number      string
	Holder      string
	ExpiryMonth int
	ExpiryYear  int
}
