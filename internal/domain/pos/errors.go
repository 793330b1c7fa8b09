package pos

import (
	"errors"
	"fmt"
	"strings"

	"github.com/swagpaypal/backend/internal/domain/shared"
)

// Webhook errors
var (
	ErrWebhookUnauthenticated  = shared.NewDomainError("WEBHOOK_UNAUTHENTICATED", "Request not signed")
	ErrWebhookNotRegistered    = shared.NewDomainError("WEBHOOK_NOT_REGISTERED", "Webhook is not registered")
	ErrWebhookInvalidSignature = shared.NewDomainError("WEBHOOK_INVALID_SIGNATURE", "Signature is invalid")
	ErrWebhookMalformed        = shared.NewDomainError("WEBHOOK_MALFORMED", "No webhook data sent")
	ErrWebhookIDInvalid        = shared.NewDomainError("WEBHOOK_ID_INVALID", "Webhook ID is invalid")
	ErrWebhookExecution        = shared.NewDomainError("WEBHOOK_EXECUTION_FAILED", "An error occurred during execution of webhook")
	ErrWebhookHandlerConflict  = shared.NewDomainError("WEBHOOK_HANDLER_CONFLICT", "A webhook handler is already registered for this event")
)

// Remote API and integration errors
var (
	ErrRemoteAPI                = shared.NewDomainError("POS_REMOTE_API_ERROR", "iZettle API request failed")
	ErrSalesChannelNotFound     = shared.NewDomainError("POS_SALES_CHANNEL_NOT_FOUND", "POS sales channel not found")
	ErrExistingPosSalesChannels = shared.NewDomainError("EXISTING_POS_SALES_CHANNELS", "POS sales channels still exist")
	ErrInvalidAPIKey            = shared.NewDomainError("POS_INVALID_API_KEY", "iZettle API key could not be decoded")
	ErrSyncInProgress           = shared.NewDomainError("POS_SYNC_IN_PROGRESS", "An inventory sync for this sales channel is already running")
)

// Violation is a single property error reported by the iZettle API
type Violation struct {
	PropertyName     string `json:"propertyName"`
	DeveloperMessage string `json:"developerMessage"`
	ConstraintType   string `json:"constraintType"`
}

// RemoteAPIError describes a failed call to the iZettle API.
// errors.Is(err, ErrRemoteAPI) holds for every RemoteAPIError.
type RemoteAPIError struct {
	Endpoint         string
	StatusCode       int
	ErrorType        string      `json:"errorType"`
	DeveloperMessage string      `json:"developerMessage"`
	Violations       []Violation `json:"violations"`
	Err              error
}

func (e *RemoteAPIError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "iZettle API error (%s, status %d)", e.Endpoint, e.StatusCode)
	if e.ErrorType != "" {
		fmt.Fprintf(&b, " %s", e.ErrorType)
	}
	if e.DeveloperMessage != "" {
		fmt.Fprintf(&b, ": %s", e.DeveloperMessage)
	}
	for _, v := range e.Violations {
		fmt.Fprintf(&b, "; %s: %s", v.PropertyName, v.DeveloperMessage)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

// Unwrap exposes both the sentinel and the transport cause
func (e *RemoteAPIError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrRemoteAPI}
	}
	return []error{ErrRemoteAPI, e.Err}
}

// IsNotFound reports whether the remote resource does not exist
func (e *RemoteAPIError) IsNotFound() bool {
	return e.StatusCode == 404
}

// IsRemoteNotFound reports whether err is a RemoteAPIError for a missing resource
func IsRemoteNotFound(err error) bool {
	var apiErr *RemoteAPIError
	return errors.As(err, &apiErr) && apiErr.IsNotFound()
}

// ExistingPosSalesChannelsError is returned when deactivation is blocked by POS channels
type ExistingPosSalesChannelsError struct {
	Count int
	Names []string
}

func (e *ExistingPosSalesChannelsError) Error() string {
	return fmt.Sprintf("there are still %d POS sales channels (%s)", e.Count, strings.Join(e.Names, ", "))
}

func (e *ExistingPosSalesChannelsError) Unwrap() error {
	return ErrExistingPosSalesChannels
}
