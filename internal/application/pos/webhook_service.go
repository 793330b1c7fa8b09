package pos

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/swagpaypal/backend/internal/domain/pos"
	"github.com/swagpaypal/backend/internal/domain/shared"
	"github.com/swagpaypal/backend/internal/infrastructure/logger"
	"github.com/swagpaypal/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const defaultDedupeTTL = 24 * time.Hour

// WebhookService registers iZettle webhook subscriptions and executes inbound webhooks
type WebhookService struct {
	salesChannels pos.SalesChannelRepository
	subscriptions pos.SubscriptionResource
	dispatcher    *Dispatcher
	idempotency   shared.IdempotencyStore
	publisher     shared.EventPublisher
	metrics       Metrics
	logger        *zap.Logger
	destination   func(salesChannelID string) string
	contactEmail  string
	dedupeTTL     time.Duration
}

// WebhookServiceConfig contains the dependencies of WebhookService
type WebhookServiceConfig struct {
	SalesChannels pos.SalesChannelRepository
	Subscriptions pos.SubscriptionResource
	Dispatcher    *Dispatcher
	// Idempotency is optional; without it every delivery is dispatched
	Idempotency shared.IdempotencyStore
	Publisher   shared.EventPublisher
	Metrics     Metrics
	Logger      *zap.Logger
	// Destination builds the public webhook URL of a sales channel
	Destination  func(salesChannelID string) string
	ContactEmail string
	DedupeTTL    time.Duration
}

// NewWebhookService creates the service
func NewWebhookService(cfg WebhookServiceConfig) *WebhookService {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = nopMetrics{}
	}
	if cfg.DedupeTTL <= 0 {
		cfg.DedupeTTL = defaultDedupeTTL
	}
	return &WebhookService{
		salesChannels: cfg.SalesChannels,
		subscriptions: cfg.Subscriptions,
		dispatcher:    cfg.Dispatcher,
		idempotency:   cfg.Idempotency,
		publisher:     cfg.Publisher,
		metrics:       cfg.Metrics,
		logger:        cfg.Logger,
		destination:   cfg.Destination,
		contactEmail:  cfg.ContactEmail,
		dedupeTTL:     cfg.DedupeTTL,
	}
}

// RegisterWebhook subscribes the channel to iZettle webhooks. An existing
// subscription is updated; if iZettle no longer knows it, a new one is created.
func (s *WebhookService) RegisterWebhook(ctx context.Context, salesChannelID uuid.UUID) error {
	channel, err := s.findPOSChannel(ctx, salesChannelID)
	if err != nil {
		return err
	}
	log := logger.For(ctx, s.logger).With(zap.String("sales_channel_id", salesChannelID.String()))
	subscriptionUUID := channel.SubscriptionUUID().String()
	destination := s.destination(salesChannelID.String())

	if channel.HasWebhook() {
		err := s.subscriptions.UpdateWebhook(ctx, channel.APIKey(), subscriptionUUID, &pos.UpdateSubscription{
			EventNames:   pos.SubscribedEvents,
			Destination:  destination,
			ContactEmail: s.contactEmail,
		})
		if err == nil {
			log.Info("Webhook subscription updated", zap.String("subscription_uuid", subscriptionUUID))
			return nil
		}
		if !pos.IsRemoteNotFound(err) {
			return err
		}
		log.Warn("Webhook subscription missing at iZettle, creating a new one")
	}

	sub, err := s.subscriptions.CreateWebhook(ctx, channel.APIKey(), &pos.CreateSubscription{
		UUID:          subscriptionUUID,
		TransportName: pos.TransportWebhook,
		EventNames:    pos.SubscribedEvents,
		Destination:   destination,
		ContactEmail:  s.contactEmail,
	})
	if err != nil {
		return err
	}

	signingKey := sub.SigningKey
	if err := s.salesChannels.SaveSigningKey(ctx, channel.ID, &signingKey); err != nil {
		return err
	}
	channel.SetSigningKey(signingKey)

	log.Info("Webhook subscription created", zap.String("subscription_uuid", subscriptionUUID))
	s.publish(ctx, pos.NewWebhookRegistrationEvent(pos.EventTypeWebhookRegistered, channel))
	return nil
}

// UnregisterWebhook removes the subscription and forgets the signing key.
// A subscription already gone at iZettle is not an error.
func (s *WebhookService) UnregisterWebhook(ctx context.Context, salesChannelID uuid.UUID) error {
	channel, err := s.findPOSChannel(ctx, salesChannelID)
	if err != nil {
		return err
	}

	subscriptionUUID := channel.SubscriptionUUID().String()
	if err := s.subscriptions.RemoveWebhook(ctx, channel.APIKey(), subscriptionUUID); err != nil && !pos.IsRemoteNotFound(err) {
		return err
	}
	if err := s.salesChannels.SaveSigningKey(ctx, channel.ID, nil); err != nil {
		return err
	}
	channel.SetSigningKey("")

	logger.For(ctx, s.logger).Info("Webhook subscription removed",
		zap.String("sales_channel_id", salesChannelID.String()),
		zap.String("subscription_uuid", subscriptionUUID),
	)
	s.publish(ctx, pos.NewWebhookRegistrationEvent(pos.EventTypeWebhookUnregistered, channel))
	return nil
}

// ExecuteWebhook validates and dispatches one inbound webhook delivery.
// Test messages and redeliveries are acknowledged without dispatch.
func (s *WebhookService) ExecuteWebhook(ctx context.Context, salesChannelID uuid.UUID, webhook *pos.Webhook) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "webhook", "ExecuteWebhook",
		attribute.String(telemetry.SpanAttrSalesChannelID, salesChannelID.String()))
	defer span.End()
	if webhook != nil {
		span.SetAttributes(attribute.String(telemetry.SpanAttrEvent, webhook.EventName))
	}

	err := s.executeWebhook(ctx, salesChannelID, webhook)
	telemetry.RecordError(span, err)
	return err
}

func (s *WebhookService) executeWebhook(ctx context.Context, salesChannelID uuid.UUID, webhook *pos.Webhook) error {
	if webhook == nil || webhook.IsEmpty() {
		s.metrics.WebhookReceived(ctx, "", OutcomeRejected)
		return pos.ErrWebhookMalformed
	}
	eventName := webhook.EventName

	channel, err := s.salesChannels.FindByID(ctx, salesChannelID)
	if errors.Is(err, shared.ErrNotFound) || (err == nil && !channel.IsPOS()) {
		s.metrics.WebhookReceived(ctx, eventName, OutcomeRejected)
		return pos.ErrWebhookIDInvalid
	}
	if err != nil {
		return err
	}

	if webhook.IsTestMessage() {
		s.metrics.WebhookReceived(ctx, eventName, OutcomeTest)
		return nil
	}

	if err := pos.ValidateSignature(webhook, channel.SigningKey()); err != nil {
		s.metrics.WebhookReceived(ctx, eventName, OutcomeRejected)
		return err
	}

	log := logger.For(ctx, s.logger).With(
		zap.String("sales_channel_id", salesChannelID.String()),
		zap.String("event", eventName),
	)

	key := webhook.DeliveryKey()
	if s.idempotency != nil {
		isNew, err := s.idempotency.MarkProcessed(ctx, key, s.dedupeTTL)
		if err != nil {
			log.Warn("Webhook deduplication unavailable", zap.Error(err))
		} else if !isNew {
			log.Info("Duplicate webhook delivery ignored", zap.String("delivery_key", key))
			s.metrics.WebhookReceived(ctx, eventName, OutcomeDuplicate)
			return nil
		}
	}

	executed, err := s.dispatcher.Dispatch(ctx, webhook, channel)
	if err != nil {
		if s.idempotency != nil {
			// let iZettle's redelivery try again
			if ferr := s.idempotency.Forget(ctx, key); ferr != nil {
				log.Warn("Failed to release webhook delivery", zap.Error(ferr))
			}
		}
		if errors.Is(err, pos.ErrWebhookNotRegistered) || errors.Is(err, pos.ErrWebhookMalformed) {
			s.metrics.WebhookReceived(ctx, eventName, OutcomeRejected)
			return err
		}

		webhookJSON, _ := json.Marshal(webhook)
		log.Error("Webhook execution failed",
			zap.ByteString("webhook", webhookJSON),
			zap.Error(err),
		)
		s.metrics.WebhookReceived(ctx, eventName, OutcomeFailed)
		return pos.ErrWebhookExecution.Wrap(err)
	}

	if executed {
		s.metrics.WebhookReceived(ctx, eventName, OutcomeDispatched)
	} else {
		s.metrics.WebhookReceived(ctx, eventName, OutcomeSkipped)
	}
	return nil
}

func (s *WebhookService) findPOSChannel(ctx context.Context, id uuid.UUID) (*pos.SalesChannel, error) {
	channel, err := s.salesChannels.FindByID(ctx, id)
	if errors.Is(err, shared.ErrNotFound) {
		return nil, pos.ErrSalesChannelNotFound
	}
	if err != nil {
		return nil, err
	}
	if !channel.IsPOS() {
		return nil, pos.ErrSalesChannelNotFound
	}
	return channel, nil
}

func (s *WebhookService) publish(ctx context.Context, event shared.DomainEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		logger.For(ctx, s.logger).Warn("Failed to publish event",
			zap.String("event_type", event.EventType()),
			zap.Error(err),
		)
	}
}
