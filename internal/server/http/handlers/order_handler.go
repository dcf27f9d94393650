package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/orderflow/internal/adapter/catalog"
	"github.com/polkiloo/orderflow/internal/adapter/shipping"
	domainErrors "github.com/polkiloo/orderflow/internal/domain/errors"
	"github.com/polkiloo/orderflow/internal/domain/model"
	"github.com/polkiloo/orderflow/internal/server/http/dto"
)

// OrderHandler manages order lifecycle endpoints.
type OrderHandler struct {
	facade OrderFacade
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(facade OrderFacade) *OrderHandler {
	return &OrderHandler{facade: facade}
}

// Place handles POST /api/orders.
func (h *OrderHandler) Place(c *gin.Context) {
	customerID := CurrentCustomerID(c)

	var req dto.PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	order, err := h.facade.PlaceOrder(c.Request.Context(), customerID, req.CustomerName, req.ProductName, req.Quantity, req.Address)
	if err != nil {
		abortWithOrderError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toOrderResponse(order))
}

// Pay handles POST /api/orders/:id/pay. The charge is asynchronous: the
// gateway verdict arrives later through the webhook, so acceptance means the
// order entered PAYMENT_CHECK.
func (h *OrderHandler) Pay(c *gin.Context) {
	customerID := CurrentCustomerID(c)

	var req dto.PayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	card := model.Card{
		Number:      req.Card.Number,
		Holder:      req.Card.Holder,
		ExpiryMonth: req.Card.ExpiryMonth,
		ExpiryYear:  req.Card.ExpiryYear,
	}

	order, err := h.facade.PayOrder(c.Request.Context(), customerID, c.Param("id"), card)
	if err != nil {
		abortWithOrderError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, toOrderResponse(order))
}

// Ship handles POST /api/orders/:id/ship.
func (h *OrderHandler) Ship(c *gin.Context) {
	customerID := CurrentCustomerID(c)

	order, err := h.facade.ShipOrder(c.Request.Context(), customerID, c.Param("id"))
	if err != nil {
		abortWithOrderError(c, err)
		return
	}

	c.JSON(http.StatusOK, toOrderResponse(order))
}

// Cancel handles POST /api/orders/:id/cancel. Cancelling a paid or shipped
// order waits for the refund verdict, reported as accepted rather than done.
func (h *OrderHandler) Cancel(c *gin.Context) {
	customerID := CurrentCustomerID(c)

	order, err := h.facade.CancelOrder(c.Request.Context(), customerID, c.Param("id"))
	if err != nil {
		abortWithOrderError(c, err)
		return
	}

	status := http.StatusOK
	if order.Status == model.StatusAwaitRefund {
		status = http.StatusAccepted
	}
	c.JSON(status, toOrderResponse(order))
}

// Get handles GET /api/orders/:id.
func (h *OrderHandler) Get(c *gin.Context) {
	customerID := CurrentCustomerID(c)

	order, err := h.facade.Order(c.Request.Context(), customerID, c.Param("id"))
	if err != nil {
		abortWithOrderError(c, err)
		return
	}

	c.JSON(http.StatusOK, toOrderResponse(order))
}

// List handles GET /api/orders.
func (h *OrderHandler) List(c *gin.Context) {
	customerID := CurrentCustomerID(c)
	orders, err := h.facade.Orders(c.Request.Context(), customerID)
	if err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}
	if len(orders) == 0 {
		c.Status(http.StatusNoContent)
		return
	}

	response := make([]dto.OrderResponse, 0, len(orders))
	for _, o := range orders {
		response = append(response, toOrderResponse(o))
	}

	c.JSON(http.StatusOK, response)
}

func abortWithOrderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domainErrors.ErrNotFound):
		c.Status(http.StatusNotFound)
	case errors.Is(err, domainErrors.ErrIllegalTransition):
		c.Status(http.StatusConflict)
	case errors.Is(err, domainErrors.ErrValidation),
		errors.Is(err, catalog.ErrProductNotFound),
		errors.Is(err, shipping.ErrUndeliverable):
		c.Status(http.StatusUnprocessableEntity)
	default:
		c.Status(http.StatusInternalServerError)
	}
}

func toOrderResponse(order model.Order) dto.OrderResponse {
	return dto.OrderResponse{
		ID:            order.ID,
		Status:        string(order.Status),
		CustomerName:  order.CustomerName,
		ProductName:   order.ProductName,
		Quantity:      order.Quantity,
		Address:       order.ShippingAddress,
		TotalCost:     order.TotalCost,
		ShippingPrice: order.ShippingPrice,
		TrackingCode:  order.TrackingCode,
		CreatedAt:     order.CreatedAt,
		UpdatedAt:     order.UpdatedAt,
	}
}
