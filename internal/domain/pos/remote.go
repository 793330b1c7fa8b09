package pos

import "context"

// InventoryResource is the iZettle inventory API.
// Failures are returned as *RemoteAPIError.
type InventoryResource interface {
	ChangeInventoryBulk(ctx context.Context, apiKey string, changes *BulkChanges) (*InventoryStatus, error)
	FetchLocations(ctx context.Context, apiKey string) ([]Location, error)
	FetchInventory(ctx context.Context, apiKey, locationUUID string) (*InventoryStatus, error)
}

// SubscriptionResource is the iZettle webhook subscription API
type SubscriptionResource interface {
	CreateWebhook(ctx context.Context, apiKey string, req *CreateSubscription) (*Subscription, error)
	UpdateWebhook(ctx context.Context, apiKey, subscriptionUUID string, req *UpdateSubscription) error
	RemoveWebhook(ctx context.Context, apiKey, subscriptionUUID string) error
}
