package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	apppos "github.com/swagpaypal/backend/internal/application/pos"
)

// InventorySyncer runs a manual inventory synchronisation
type InventorySyncer interface {
	SyncInventory(ctx context.Context, salesChannelID uuid.UUID) (*apppos.SyncResult, error)
}

// SyncHandler exposes the manual sync trigger
type SyncHandler struct {
	BaseHandler
	syncer InventorySyncer
}

// NewSyncHandler creates a new SyncHandler
func NewSyncHandler(syncer InventorySyncer) *SyncHandler {
	return &SyncHandler{syncer: syncer}
}

// SyncInventory handles POST /_action/paypal/izettle/sync/:salesChannelId/inventory.
// A failed remote update still answers 200; the summary carries remote_failed.
func (h *SyncHandler) SyncInventory(c *gin.Context) {
	id, err := salesChannelID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	result, err := h.syncer.SyncInventory(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
