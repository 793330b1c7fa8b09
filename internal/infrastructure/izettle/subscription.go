package izettle

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/swagpaypal/backend/internal/domain/pos"
)

const (
	subscriptionsPath      = "/organizations/self/subscriptions"
	subscriptionDeletePath = "/organizations/self/subscriptions/uuid/"
)

// SubscriptionResource implements pos.SubscriptionResource
type SubscriptionResource struct {
	client   *Client
	baseURL  string
	validate *validator.Validate
}

// NewSubscriptionResource creates the webhook subscription API resource
func NewSubscriptionResource(client *Client, baseURL string) *SubscriptionResource {
	return &SubscriptionResource{
		client:   client,
		baseURL:  strings.TrimRight(baseURL, "/"),
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// CreateWebhook registers a subscription; the response carries the signing key
func (r *SubscriptionResource) CreateWebhook(ctx context.Context, apiKey string, req *pos.CreateSubscription) (*pos.Subscription, error) {
	if err := r.validate.Struct(req); err != nil {
		return nil, invalidSubscription(err)
	}
	var sub pos.Subscription
	if err := r.client.doRequest(ctx, http.MethodPost, r.baseURL, subscriptionsPath, apiKey, req, &sub); err != nil {
		return nil, err
	}
	return &sub, nil
}

// UpdateWebhook changes destination, events and contact of a subscription
func (r *SubscriptionResource) UpdateWebhook(ctx context.Context, apiKey, subscriptionUUID string, req *pos.UpdateSubscription) error {
	if err := r.validate.Struct(req); err != nil {
		return invalidSubscription(err)
	}
	return r.client.doRequest(ctx, http.MethodPut, r.baseURL, subscriptionsPath+"/"+subscriptionUUID, apiKey, req, nil)
}

// RemoveWebhook deletes a subscription
func (r *SubscriptionResource) RemoveWebhook(ctx context.Context, apiKey, subscriptionUUID string) error {
	return r.client.doRequest(ctx, http.MethodDelete, r.baseURL, subscriptionDeletePath+subscriptionUUID, apiKey, nil, nil)
}

func invalidSubscription(err error) error {
	return pos.ErrWebhookMalformed.Wrap(fmt.Errorf("invalid subscription: %w", err))
}

var _ pos.SubscriptionResource = (*SubscriptionResource)(nil)
