package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/swagpaypal/backend/internal/domain/pos"
)

// WebhookService is the application service behind the webhook endpoints
type WebhookService interface {
	RegisterWebhook(ctx context.Context, salesChannelID uuid.UUID) error
	UnregisterWebhook(ctx context.Context, salesChannelID uuid.UUID) error
	ExecuteWebhook(ctx context.Context, salesChannelID uuid.UUID, webhook *pos.Webhook) error
}

// WebhookHandler serves iZettle webhook deliveries and their registration
type WebhookHandler struct {
	BaseHandler
	service WebhookService
}

// NewWebhookHandler creates a new WebhookHandler
func NewWebhookHandler(service WebhookService) *WebhookHandler {
	return &WebhookHandler{service: service}
}

// WebhookRequest is the body iZettle posts, form encoded or JSON
type WebhookRequest struct {
	OrganizationUUID string `form:"organizationUuid" json:"organizationUuid"`
	MessageUUID      string `form:"messageUuid" json:"messageUuid"`
	EventName        string `form:"eventName" json:"eventName"`
	MessageID        string `form:"messageId" json:"messageId"`
	Payload          string `form:"payload" json:"payload"`
	Timestamp        string `form:"timestamp" json:"timestamp"`
}

// ToWebhook converts the request into a domain webhook
func (r *WebhookRequest) ToWebhook(signature string) *pos.Webhook {
	return &pos.Webhook{
		OrganizationUUID: r.OrganizationUUID,
		MessageUUID:      r.MessageUUID,
		EventName:        r.EventName,
		MessageID:        r.MessageID,
		Payload:          r.Payload,
		Timestamp:        r.Timestamp,
		Signature:        signature,
	}
}

// Execute handles POST /_action/paypal/izettle/webhook/execute/:salesChannelId.
// The endpoint is unauthenticated; the signature header authenticates the delivery.
func (h *WebhookHandler) Execute(c *gin.Context) {
	id, err := uuid.Parse(c.Param("salesChannelId"))
	if err != nil {
		h.HandleError(c, pos.ErrWebhookIDInvalid)
		return
	}

	var req WebhookRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBind(&req); err != nil {
			h.HandleError(c, pos.ErrWebhookMalformed.Wrap(err))
			return
		}
	}

	if err := h.service.ExecuteWebhook(c.Request.Context(), id, req.ToWebhook(c.GetHeader(pos.SignatureHeader))); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Register handles POST /_action/paypal/izettle/webhook/registration/:salesChannelId
func (h *WebhookHandler) Register(c *gin.Context) {
	id, err := salesChannelID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if err := h.service.RegisterWebhook(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Unregister handles DELETE /_action/paypal/izettle/webhook/registration/:salesChannelId
func (h *WebhookHandler) Unregister(c *gin.Context) {
	id, err := salesChannelID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if err := h.service.UnregisterWebhook(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
