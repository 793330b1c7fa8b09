package pos

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/swagpaypal/backend/internal/domain/pos"
	"github.com/swagpaypal/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// WebhookHandler executes one kind of iZettle webhook
type WebhookHandler interface {
	EventName() string
	// NewPayload returns an empty payload the webhook body is decoded into
	NewPayload() pos.Payload
	Execute(ctx context.Context, payload pos.Payload, channel *pos.SalesChannel) error
}

// Dispatcher routes webhooks to the handler registered for their event name
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[string]WebhookHandler
	decoder  pos.APIKeyDecoder
	logger   *zap.Logger
}

// NewDispatcher creates an empty dispatcher
func NewDispatcher(decoder pos.APIKeyDecoder, log *zap.Logger) *Dispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Dispatcher{
		handlers: make(map[string]WebhookHandler),
		decoder:  decoder,
		logger:   log,
	}
}

// Register adds a handler. A second handler for the same event is a conflict.
func (d *Dispatcher) Register(h WebhookHandler) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	name := h.EventName()
	if _, exists := d.handlers[name]; exists {
		return pos.ErrWebhookHandlerConflict.WithMessage(fmt.Sprintf("a webhook handler for %q is already registered", name))
	}
	d.handlers[name] = h
	return nil
}

// EventNames returns the names of all registered events
func (d *Dispatcher) EventNames() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	names := make([]string, 0, len(d.handlers))
	for name := range d.handlers {
		names = append(names, name)
	}
	return names
}

// Dispatch decodes the payload and runs the matching handler.
// Changes made by this installation itself are not executed again;
// executed is false in that case.
func (d *Dispatcher) Dispatch(ctx context.Context, webhook *pos.Webhook, channel *pos.SalesChannel) (executed bool, err error) {
	d.mu.RLock()
	h, ok := d.handlers[webhook.EventName]
	d.mu.RUnlock()
	if !ok {
		return false, pos.ErrWebhookNotRegistered.WithMessage(fmt.Sprintf("no webhook handler for event %q", webhook.EventName))
	}

	payload := h.NewPayload()
	if err := json.Unmarshal([]byte(webhook.Payload), payload); err != nil {
		return false, pos.ErrWebhookMalformed.Wrap(fmt.Errorf("decode %s payload: %w", webhook.EventName, err))
	}

	if d.isOwnChange(ctx, payload, channel) {
		logger.For(ctx, d.logger).Debug("Skipping webhook caused by this installation",
			zap.String("event", webhook.EventName),
			zap.String("sales_channel_id", channel.ID.String()),
		)
		return false, nil
	}

	if err := h.Execute(ctx, payload, channel); err != nil {
		return false, err
	}
	return true, nil
}

// isOwnChange compares the originating client with the client of the channel's API key.
// An undecodable key never suppresses execution.
func (d *Dispatcher) isOwnChange(ctx context.Context, payload pos.Payload, channel *pos.SalesChannel) bool {
	clientUUID := payload.UpdatedBy().ClientUUID
	if clientUUID == "" || d.decoder == nil {
		return false
	}
	key, err := d.decoder.Decode(channel.APIKey())
	if err != nil {
		logger.For(ctx, d.logger).Warn("Could not decode API key of sales channel",
			zap.String("sales_channel_id", channel.ID.String()),
			zap.Error(err),
		)
		return false
	}
	return key.ClientID == clientUUID
}
