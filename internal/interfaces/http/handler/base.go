package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/swagpaypal/backend/internal/domain/pos"
	"github.com/swagpaypal/backend/internal/domain/shared"
	"github.com/swagpaypal/backend/internal/infrastructure/logger"
	"github.com/swagpaypal/backend/internal/infrastructure/telemetry"
	"github.com/swagpaypal/backend/internal/interfaces/http/dto"
	"github.com/swagpaypal/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// NoContent sends a 204 no content response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error sends an error response with the appropriate status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponseWithIDs(
		code, message,
		middleware.GetRequestID(c),
		telemetry.GetTraceID(c.Request.Context()),
	))
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// HandleError maps domain errors to their HTTP status and hides everything else behind a 500
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)

	domainErr, ok := shared.AsDomainError(err)
	if !ok {
		logger.GetGinLogger(c).Error("Unhandled error", zap.Error(err))
		h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, "An unexpected error occurred")
		return
	}

	message := domainErr.Message
	var existing *pos.ExistingPosSalesChannelsError
	if errors.As(err, &existing) {
		message = existing.Error()
	}

	code := dto.NormalizeErrorCode(domainErr.Code)
	h.Error(c, dto.GetHTTPStatus(code), code, message)
}

// salesChannelID parses the :salesChannelId path parameter
func salesChannelID(c *gin.Context) (uuid.UUID, error) {
	var uri dto.SalesChannelURI
	if err := c.ShouldBindUri(&uri); err != nil {
		return uuid.Nil, shared.ErrInvalidInput.WithMessage("salesChannelId must be a UUID")
	}
	return uuid.Parse(uri.SalesChannelID)
}
