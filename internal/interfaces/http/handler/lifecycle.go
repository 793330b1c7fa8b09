package handler

import (
	"context"

	"github.com/gin-gonic/gin"
)

// Lifecycle toggles the integration on and off
type Lifecycle interface {
	Activate(ctx context.Context) error
	Deactivate(ctx context.Context) error
}

// LifecycleHandler exposes integration activation
type LifecycleHandler struct {
	BaseHandler
	lifecycle Lifecycle
}

// NewLifecycleHandler creates a new LifecycleHandler
func NewLifecycleHandler(lifecycle Lifecycle) *LifecycleHandler {
	return &LifecycleHandler{lifecycle: lifecycle}
}

// Activate handles POST /_action/paypal/lifecycle/activate
func (h *LifecycleHandler) Activate(c *gin.Context) {
	if err := h.lifecycle.Activate(c.Request.Context()); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Deactivate handles POST /_action/paypal/lifecycle/deactivate.
// It answers 409 while POS sales channels still exist.
func (h *LifecycleHandler) Deactivate(c *gin.Context) {
	if err := h.lifecycle.Deactivate(c.Request.Context()); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
