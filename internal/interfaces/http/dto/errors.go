package dto

import "net/http"

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION> for transport errors; domain codes pass through unchanged.

// General error codes
const (
	ErrCodeUnknown  = "ERR_UNKNOWN"
	ErrCodeInternal = "ERR_INTERNAL"
)

// Authentication error codes
const (
	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	ErrCodeForbidden    = "ERR_FORBIDDEN"
	ErrCodeTokenExpired = "ERR_TOKEN_EXPIRED"
	ErrCodeTokenInvalid = "ERR_TOKEN_INVALID"
)

// Input error codes
const (
	ErrCodeBadRequest      = "ERR_BAD_REQUEST"
	ErrCodeInvalidInput    = "ERR_INVALID_INPUT"
	ErrCodeNotFound        = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists   = "ERR_ALREADY_EXISTS"
	ErrCodeInvalidState    = "ERR_INVALID_STATE"
	ErrCodePayloadTooLarge = "ERR_PAYLOAD_TOO_LARGE"
)

// Webhook and POS domain codes, as produced by the pos package
const (
	ErrCodeWebhookUnauthenticated   = "WEBHOOK_UNAUTHENTICATED"
	ErrCodeWebhookNotRegistered     = "WEBHOOK_NOT_REGISTERED"
	ErrCodeWebhookInvalidSignature  = "WEBHOOK_INVALID_SIGNATURE"
	ErrCodeWebhookMalformed         = "WEBHOOK_MALFORMED"
	ErrCodeWebhookIDInvalid         = "WEBHOOK_ID_INVALID"
	ErrCodeWebhookExecutionFailed   = "WEBHOOK_EXECUTION_FAILED"
	ErrCodeWebhookHandlerConflict   = "WEBHOOK_HANDLER_CONFLICT"
	ErrCodeRemoteAPI                = "POS_REMOTE_API_ERROR"
	ErrCodeSalesChannelNotFound     = "POS_SALES_CHANNEL_NOT_FOUND"
	ErrCodeExistingPosSalesChannels = "EXISTING_POS_SALES_CHANNELS"
	ErrCodeInvalidAPIKey            = "POS_INVALID_API_KEY"
	ErrCodeSyncInProgress           = "POS_SYNC_IN_PROGRESS"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,
	ErrCodeTokenExpired: http.StatusUnauthorized,
	ErrCodeTokenInvalid: http.StatusUnauthorized,

	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeInvalidInput:    http.StatusBadRequest,
	ErrCodeNotFound:        http.StatusNotFound,
	ErrCodeAlreadyExists:   http.StatusConflict,
	ErrCodeInvalidState:    http.StatusUnprocessableEntity,
	ErrCodePayloadTooLarge: http.StatusRequestEntityTooLarge,

	ErrCodeWebhookUnauthenticated:   http.StatusUnauthorized,
	ErrCodeWebhookNotRegistered:     http.StatusNotFound,
	ErrCodeWebhookInvalidSignature:  http.StatusUnauthorized,
	ErrCodeWebhookMalformed:         http.StatusBadRequest,
	ErrCodeWebhookIDInvalid:         http.StatusNotFound,
	ErrCodeWebhookExecutionFailed:   http.StatusBadRequest,
	ErrCodeWebhookHandlerConflict:   http.StatusConflict,
	ErrCodeRemoteAPI:                http.StatusBadGateway,
	ErrCodeSalesChannelNotFound:     http.StatusNotFound,
	ErrCodeExistingPosSalesChannels: http.StatusConflict,
	ErrCodeInvalidAPIKey:            http.StatusBadRequest,
	ErrCodeSyncInProgress:           http.StatusConflict,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unknown codes map to 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// LegacyErrorCodeMapping maps the generic shared domain codes to transport codes
var LegacyErrorCodeMapping = map[string]string{
	"NOT_FOUND":      ErrCodeNotFound,
	"ALREADY_EXISTS": ErrCodeAlreadyExists,
	"INVALID_INPUT":  ErrCodeInvalidInput,
	"INVALID_STATE":  ErrCodeInvalidState,
	"UNAUTHORIZED":   ErrCodeUnauthorized,
}

// NormalizeErrorCode converts a shared domain code to its transport code.
// Codes without a mapping are returned as-is.
func NormalizeErrorCode(code string) string {
	if newCode, ok := LegacyErrorCodeMapping[code]; ok {
		return newCode
	}
	return code
}
