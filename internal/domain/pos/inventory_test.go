package pos

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// Quantity
// ---------------------------------------------------------------------------

func TestQuantity_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Quantity
		wantErr bool
	}{
		{"string", `"12"`, 12, false},
		{"decimal string", `"12.000"`, 12, false},
		{"negative string", `"-3"`, -3, false},
		{"number", `7`, 7, false},
		{"null", `null`, 0, false},
		{"empty string", `""`, 0, false},
		{"fraction", `"1.5"`, 0, true},
		{"garbage", `"abc"`, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var q Quantity
			err := json.Unmarshal([]byte(tt.input), &q)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, q)
		})
	}
}

func TestInventoryStatus_Decode(t *testing.T) {
	body := `{
		"locationUuid": "store",
		"variants": [
			{"locationUuid": "store", "locationType": "STORE", "productUuid": "p1", "variantUuid": "v1", "balance": "8"},
			{"locationUuid": "store", "locationType": "STORE", "productUuid": "p2", "variantUuid": "v2", "balance": "-1"}
		]
	}`

	var status InventoryStatus
	require.NoError(t, json.Unmarshal([]byte(body), &status))

	require.Len(t, status.Variants, 2)
	assert.Equal(t, 8, status.Variants[0].Balance.Int())
	assert.Equal(t, -1, status.Variants[1].Balance.Int())
	assert.Equal(t, "v2", status.Variants[1].VariantUUID)
}

func TestBulkChanges_Encode(t *testing.T) {
	changes := &BulkChanges{}
	pc := NewProductChange("p1")
	pc.AddVariantChange(VariantChange{
		ProductUUID:      "p1",
		VariantUUID:      "v1",
		FromLocationUUID: "supplier",
		ToLocationUUID:   "store",
		Change:           3,
	})
	changes.AddProductChange(pc)
	changes.ReturnBalanceForLocationUUID = "store"

	data, err := json.Marshal(changes)
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"productChanges": [{
			"productUuid": "p1",
			"trackingStatusChange": "NO_CHANGE",
			"variantChanges": [{
				"productUuid": "p1",
				"variantUuid": "v1",
				"fromLocationUuid": "supplier",
				"toLocationUuid": "store",
				"change": 3
			}]
		}],
		"returnBalanceForLocationUuid": "store"
	}`, string(data))
	assert.Equal(t, 1, changes.Len())
}

func TestLocationsFromList(t *testing.T) {
	locs := LocationsFromList([]Location{
		{UUID: "store-old", Type: LocationTypeStore},
		{UUID: "store", Type: LocationTypeStore, Default: true},
		{UUID: "store-late", Type: LocationTypeStore},
		{UUID: "supplier", Type: LocationTypeSupplier, Default: true},
		{UUID: "bin", Type: LocationTypeBin},
		{UUID: "sold", Type: LocationTypeSold, Default: true},
		{UUID: "other", Type: "UNKNOWN"},
	})

	assert.Equal(t, Locations{Store: "store", Supplier: "supplier", Bin: "bin", Sold: "sold"}, locs)
}

// ---------------------------------------------------------------------------
// InventoryContext
// ---------------------------------------------------------------------------

func TestInventoryContext_RemoteInventory(t *testing.T) {
	ctx := NewInventoryContext(&SalesChannel{ID: uuid.New()}, Locations{Store: "store"}, nil)

	ctx.AddRemoteInventory(Variant{ProductUUID: "p1", VariantUUID: "v1", Balance: 1})
	ctx.AddRemoteInventory(Variant{ProductUUID: "p2", VariantUUID: "v2", Balance: 2})
	ctx.AddRemoteInventory(Variant{ProductUUID: "p1", VariantUUID: "v1", Balance: 5})

	inv := ctx.RemoteInventory()
	require.Len(t, inv, 2)
	assert.Equal(t, "v1", inv[0].VariantUUID)
	assert.Equal(t, Quantity(5), inv[0].Balance)
	assert.Equal(t, "v2", inv[1].VariantUUID)

	balance, ok := ctx.RemoteBalance("p2", "v2")
	assert.True(t, ok)
	assert.Equal(t, 2, balance)

	_, ok = ctx.RemoteBalance("p3", "v3")
	assert.False(t, ok)
	assert.Equal(t, "store", ctx.StoreUUID())
}

func TestInventoryContext_LocalSnapshotIsCopied(t *testing.T) {
	id := uuid.New()
	initial := map[uuid.UUID]int{id: 4}
	ctx := NewInventoryContext(&SalesChannel{}, Locations{}, initial)

	ctx.SetLocalStock(id, 9)

	assert.Equal(t, 4, initial[id])
	stock, ok := ctx.LocalStock(id)
	assert.True(t, ok)
	assert.Equal(t, 9, stock)

	snapshot := ctx.LocalSnapshot()
	snapshot[id] = 1
	stock, _ = ctx.LocalStock(id)
	assert.Equal(t, 9, stock)
}

// ---------------------------------------------------------------------------
// Errors
// ---------------------------------------------------------------------------

func TestRemoteAPIError(t *testing.T) {
	cause := errors.New("connection reset")
	err := &RemoteAPIError{
		Endpoint:         "/organizations/self/inventory/bulk",
		StatusCode:       400,
		ErrorType:        "VALIDATION",
		DeveloperMessage: "bad request",
		Violations:       []Violation{{PropertyName: "change", DeveloperMessage: "must not be 0"}},
		Err:              cause,
	}

	assert.ErrorIs(t, err, ErrRemoteAPI)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "VALIDATION")
	assert.Contains(t, err.Error(), "change: must not be 0")
	assert.False(t, IsRemoteNotFound(err))
	assert.True(t, IsRemoteNotFound(&RemoteAPIError{StatusCode: 404}))
}

func TestExistingPosSalesChannelsError(t *testing.T) {
	err := &ExistingPosSalesChannelsError{Count: 2, Names: []string{"Cafe", "Shop"}}

	assert.ErrorIs(t, err, ErrExistingPosSalesChannels)
	assert.Equal(t, "there are still 2 POS sales channels (Cafe, Shop)", err.Error())
}

func TestSalesChannel_SigningKey(t *testing.T) {
	ch := &SalesChannel{ID: uuid.New(), TypeID: SalesChannelTypePOS}
	assert.False(t, ch.IsPOS())
	assert.Equal(t, "", ch.SigningKey())

	ch.SetSigningKey("secret")
	assert.True(t, ch.IsPOS())
	assert.True(t, ch.HasWebhook())
	assert.Equal(t, "secret", ch.SigningKey())

	ch.SetSigningKey("")
	assert.False(t, ch.HasWebhook())
	assert.Nil(t, ch.POS.WebhookSigningKey)
}
