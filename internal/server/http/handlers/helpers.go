package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/polkiloo/orderflow/internal/server/http/middleware"
)

// CurrentCustomerID extracts the authenticated customer identifier from context.
func CurrentCustomerID(c *gin.Context) int64 {
	val, ok := c.Get(middleware.CustomerIDContextKey)
	if !ok {
		return 0
	}
	id, _ := val.(int64)
	return id
}
