package pos

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
)

// Tracking status changes accepted by the bulk inventory endpoint
const (
	TrackingStatusNoChange = "NO_CHANGE"
	TrackingStatusStart    = "START_TRACKING"
	TrackingStatusStop     = "STOP_TRACKING"
)

// Location types reported by the inventory API
const (
	LocationTypeStore    = "STORE"
	LocationTypeSupplier = "SUPPLIER"
	LocationTypeBin      = "BIN"
	LocationTypeSold     = "SOLD"
)

// Quantity is an integer stock amount.
// The inventory API encodes balances as decimal strings ("12", "12.000").
type Quantity int

// UnmarshalJSON accepts a JSON number or a decimal string
func (q *Quantity) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*q = 0
		return nil
	}

	raw := string(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		raw = s
	}
	if raw == "" {
		*q = 0
		return nil
	}

	d, err := decimal.NewFromString(raw)
	if err != nil {
		return fmt.Errorf("invalid quantity %q: %w", raw, err)
	}
	if !d.Equal(d.Truncate(0)) {
		return fmt.Errorf("quantity %q is not an integer", raw)
	}
	*q = Quantity(d.IntPart())
	return nil
}

// MarshalJSON encodes the quantity the way the API does, as a string
func (q Quantity) MarshalJSON() ([]byte, error) {
	return json.Marshal(strconv.Itoa(int(q)))
}

// Int returns the quantity as an int
func (q Quantity) Int() int {
	return int(q)
}

// VariantChange moves stock of one variant between two locations
type VariantChange struct {
	ProductUUID      string `json:"productUuid"`
	VariantUUID      string `json:"variantUuid"`
	FromLocationUUID string `json:"fromLocationUuid"`
	ToLocationUUID   string `json:"toLocationUuid"`
	Change           int    `json:"change"`
}

// ProductChange groups the variant changes of one product
type ProductChange struct {
	ProductUUID          string          `json:"productUuid"`
	TrackingStatusChange string          `json:"trackingStatusChange"`
	VariantChanges       []VariantChange `json:"variantChanges"`
}

// NewProductChange creates a change for productUUID that keeps its tracking status
func NewProductChange(productUUID string) *ProductChange {
	return &ProductChange{
		ProductUUID:          productUUID,
		TrackingStatusChange: TrackingStatusNoChange,
	}
}

// AddVariantChange appends a variant change
func (c *ProductChange) AddVariantChange(change VariantChange) {
	c.VariantChanges = append(c.VariantChanges, change)
}

// BulkChanges is a batch of product changes sent in one request
type BulkChanges struct {
	ProductChanges               []*ProductChange `json:"productChanges"`
	ReturnBalanceForLocationUUID string           `json:"returnBalanceForLocationUuid,omitempty"`
}

// AddProductChange appends a product change to the batch
func (b *BulkChanges) AddProductChange(change *ProductChange) {
	b.ProductChanges = append(b.ProductChanges, change)
}

// Len returns the number of product changes in the batch
func (b *BulkChanges) Len() int {
	return len(b.ProductChanges)
}

// Variant is the remote stock level of one variant at one location
type Variant struct {
	LocationUUID string   `json:"locationUuid"`
	LocationType string   `json:"locationType,omitempty"`
	ProductUUID  string   `json:"productUuid"`
	VariantUUID  string   `json:"variantUuid"`
	Balance      Quantity `json:"balance"`
}

// InventoryStatus is the balance snapshot returned by the inventory API
type InventoryStatus struct {
	LocationUUID string    `json:"locationUuid"`
	Variants     []Variant `json:"variants"`
}

// Locations holds the iZettle location UUIDs of an organization
type Locations struct {
	Store    string
	Supplier string
	Bin      string
	Sold     string
}

// Location is a single entry of the locations endpoint
type Location struct {
	UUID        string `json:"uuid"`
	Type        string `json:"type"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Default     bool   `json:"default"`
}

// LocationsFromList picks the default location of each type.
// A non-default location is used when no default exists for its type.
func LocationsFromList(list []Location) Locations {
	var locs Locations
	pick := func(dst *string, l Location) {
		if *dst == "" || l.Default {
			*dst = l.UUID
		}
	}
	for _, l := range list {
		switch l.Type {
		case LocationTypeStore:
			pick(&locs.Store, l)
		case LocationTypeSupplier:
			pick(&locs.Supplier, l)
		case LocationTypeBin:
			pick(&locs.Bin, l)
		case LocationTypeSold:
			pick(&locs.Sold, l)
		}
	}
	return locs
}
