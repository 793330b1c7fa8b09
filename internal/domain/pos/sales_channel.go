package pos

import (
	"github.com/google/uuid"
)

// SalesChannelTypePOS is the type of sales channels synchronised with iZettle
var SalesChannelTypePOS = uuid.MustParse("1ce0868f-406d-47d9-8cfe-4b281e62f099")

// SalesChannel is a storefront or POS channel of the shop
type SalesChannel struct {
	ID     uuid.UUID
	Name   string
	TypeID uuid.UUID
	Active bool
	POS    *POSSettings
}

// POSSettings are the iZettle specific settings of a POS sales channel
type POSSettings struct {
	APIKey            string
	WebhookSigningKey *string
	MediaDomain       string
	ReplaceInventory  bool
}

// IsPOS reports whether the channel is synchronised with iZettle
func (s *SalesChannel) IsPOS() bool {
	return s.TypeID == SalesChannelTypePOS && s.POS != nil
}

// APIKey returns the iZettle API key, or "" for non POS channels
func (s *SalesChannel) APIKey() string {
	if s.POS == nil {
		return ""
	}
	return s.POS.APIKey
}

// SigningKey returns the webhook signing key, or "" when no webhook is registered
func (s *SalesChannel) SigningKey() string {
	if s.POS == nil || s.POS.WebhookSigningKey == nil {
		return ""
	}
	return *s.POS.WebhookSigningKey
}

// HasWebhook reports whether a webhook subscription is registered for the channel
func (s *SalesChannel) HasWebhook() bool {
	return s.SigningKey() != ""
}

// SetSigningKey stores the signing key handed out by iZettle.
// An empty key clears the registration.
func (s *SalesChannel) SetSigningKey(key string) {
	if s.POS == nil {
		s.POS = &POSSettings{}
	}
	if key == "" {
		s.POS.WebhookSigningKey = nil
		return
	}
	s.POS.WebhookSigningKey = &key
}

// SubscriptionUUID is the id of the channel's webhook subscription at iZettle
func (s *SalesChannel) SubscriptionUUID() uuid.UUID {
	return ToV1(s.ID)
}
