package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/orderflow/internal/adapter/payment"
	"github.com/polkiloo/orderflow/internal/pkg/signature"
	"github.com/polkiloo/orderflow/internal/server/http/dto"
)

// WebhookHandler receives asynchronous verdicts from the payment gateway.
type WebhookHandler struct {
	facade WebhookFacade
	signer *signature.Signer
}

// SignatureHeader carries the hex HMAC of the raw request body.
const SignatureHeader = "X-Gateway-Signature"

// NewWebhookHandler constructs WebhookHandler.
func NewWebhookHandler(facade WebhookFacade, signer *signature.Signer) *WebhookHandler {
	return &WebhookHandler{facade: facade, signer: signer}
}

// PaymentResult handles POST /api/webhooks/payment. The signature is checked
// against the raw body before it is parsed. Verdicts for unknown requests are
// acknowledged so the gateway stops retrying; duplicates resolve to unknown
// because delivery consumes the pending entry.
func (h *WebhookHandler) PaymentResult(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	if err := h.signer.Verify(body, c.GetHeader(SignatureHeader)); err != nil {
		c.Status(http.StatusUnauthorized)
		return
	}

	var req dto.PaymentWebhookRequest
	if err := json.Unmarshal(body, &req); err != nil || req.RequestID == "" {
		c.Status(http.StatusBadRequest)
		return
	}

	succeeded := req.Status == dto.PaymentWebhookStatusSucceeded
	if err := h.facade.DispatchPaymentResult(req.RequestID, succeeded, req.Code); err != nil {
		if errors.Is(err, payment.ErrUnknownRequest) {
			c.Status(http.StatusOK)
			return
		}
		c.Status(http.StatusInternalServerError)
		return
	}

	c.Status(http.StatusOK)
}
