package izettle

import (
	"context"
	"net/http"
	"strings"

	"github.com/swagpaypal/backend/internal/domain/pos"
)

const (
	inventoryBulkPath = "/organizations/self/inventory/bulk"
	locationsPath     = "/organizations/self/locations"
	locationInventory = "/organizations/self/inventory/locations/"
)

// InventoryResource implements pos.InventoryResource
type InventoryResource struct {
	client  *Client
	baseURL string
}

// NewInventoryResource creates the inventory API resource
func NewInventoryResource(client *Client, baseURL string) *InventoryResource {
	return &InventoryResource{client: client, baseURL: strings.TrimRight(baseURL, "/")}
}

// ChangeInventoryBulk applies all changes in one request and returns the
// balance of changes.ReturnBalanceForLocationUUID, if requested
func (r *InventoryResource) ChangeInventoryBulk(ctx context.Context, apiKey string, changes *pos.BulkChanges) (*pos.InventoryStatus, error) {
	var status pos.InventoryStatus
	if err := r.client.doRequest(ctx, http.MethodPost, r.baseURL, inventoryBulkPath, apiKey, changes, &status); err != nil {
		return nil, err
	}
	if status.LocationUUID == "" && len(status.Variants) == 0 {
		return nil, nil
	}
	return &status, nil
}

// FetchLocations lists the inventory locations of the organization
func (r *InventoryResource) FetchLocations(ctx context.Context, apiKey string) ([]pos.Location, error) {
	var locations []pos.Location
	if err := r.client.doRequest(ctx, http.MethodGet, r.baseURL, locationsPath, apiKey, nil, &locations); err != nil {
		return nil, err
	}
	return locations, nil
}

// FetchInventory returns the balance of every tracked variant at a location
func (r *InventoryResource) FetchInventory(ctx context.Context, apiKey, locationUUID string) (*pos.InventoryStatus, error) {
	var status pos.InventoryStatus
	if err := r.client.doRequest(ctx, http.MethodGet, r.baseURL, locationInventory+locationUUID, apiKey, nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

var _ pos.InventoryResource = (*InventoryResource)(nil)
