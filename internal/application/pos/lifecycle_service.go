package pos

import (
	"context"
	"fmt"

	"github.com/swagpaypal/backend/internal/domain/pos"
	"github.com/swagpaypal/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// LifecycleService prepares and removes the shop entities the POS integration relies on
type LifecycleService struct {
	paymentMethods    pos.PaymentMethodRepository
	shippingMethods   pos.ShippingMethodRepository
	salesChannels     pos.SalesChannelRepository
	salesChannelTypes pos.SalesChannelTypeRepository
	logger            *zap.Logger
}

// LifecycleServiceConfig contains the dependencies of LifecycleService
type LifecycleServiceConfig struct {
	PaymentMethods    pos.PaymentMethodRepository
	ShippingMethods   pos.ShippingMethodRepository
	SalesChannels     pos.SalesChannelRepository
	SalesChannelTypes pos.SalesChannelTypeRepository
	Logger            *zap.Logger
}

// NewLifecycleService creates the service
func NewLifecycleService(cfg LifecycleServiceConfig) *LifecycleService {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &LifecycleService{
		paymentMethods:    cfg.PaymentMethods,
		shippingMethods:   cfg.ShippingMethods,
		salesChannels:     cfg.SalesChannels,
		salesChannelTypes: cfg.SalesChannelTypes,
		logger:            cfg.Logger,
	}
}

// Activate enables the PayPal payment method and registers the POS sales channel type
func (s *LifecycleService) Activate(ctx context.Context) error {
	if err := s.setPayPalActive(ctx, true); err != nil {
		return err
	}
	if err := s.salesChannelTypes.Upsert(ctx, pos.POSSalesChannelType()); err != nil {
		return fmt.Errorf("register POS sales channel type: %w", err)
	}
	logger.For(ctx, s.logger).Info("POS integration activated")
	return nil
}

// Deactivate disables PayPal and removes the POS entities.
// It refuses while POS sales channels exist; PayPal stays disabled in that case.
func (s *LifecycleService) Deactivate(ctx context.Context) error {
	if err := s.setPayPalActive(ctx, false); err != nil {
		return err
	}

	channels, err := s.salesChannels.FindByType(ctx, pos.SalesChannelTypePOS)
	if err != nil {
		return fmt.Errorf("find POS sales channels: %w", err)
	}
	if len(channels) > 0 {
		names := make([]string, 0, len(channels))
		for _, ch := range channels {
			names = append(names, ch.Name)
		}
		return &pos.ExistingPosSalesChannelsError{Count: len(channels), Names: names}
	}

	if err := s.salesChannelTypes.Delete(ctx, pos.SalesChannelTypePOS); err != nil {
		return fmt.Errorf("remove POS sales channel type: %w", err)
	}
	if err := s.paymentMethods.Delete(ctx, pos.POSPaymentMethodID); err != nil {
		return fmt.Errorf("remove POS payment method: %w", err)
	}
	if err := s.shippingMethods.Delete(ctx, pos.POSShippingMethodID); err != nil {
		return fmt.Errorf("remove POS shipping method: %w", err)
	}

	logger.For(ctx, s.logger).Info("POS integration deactivated")
	return nil
}

func (s *LifecycleService) setPayPalActive(ctx context.Context, active bool) error {
	id, err := s.paymentMethods.FindIDByHandler(ctx, pos.PayPalPaymentHandler)
	if err != nil {
		return fmt.Errorf("find PayPal payment method: %w", err)
	}
	if id == nil {
		return nil
	}
	if err := s.paymentMethods.SetActive(ctx, *id, active); err != nil {
		return fmt.Errorf("set PayPal payment method active=%t: %w", active, err)
	}
	return nil
}
