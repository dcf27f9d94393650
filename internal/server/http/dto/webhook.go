package dto

// PaymentWebhookRequest is the verdict the payment gateway posts back for a
// previously accepted charge or refund.
type PaymentWebhookRequest struct {
	RequestID string `json:"request_id"`
	Status    string `json:"status"`
	Code      string `json:"code"`
}

// PaymentWebhookStatusSucceeded marks a captured charge or completed refund.
const PaymentWebhookStatusSucceeded = "succeeded"
