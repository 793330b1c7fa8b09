package izettle

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swagpaypal/backend/internal/domain/pos"
	"github.com/swagpaypal/backend/internal/infrastructure/cache"
	"github.com/swagpaypal/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

const testClientID = "c5d3b2a0-1111-4aaa-8bbb-0123456789ab"

func newAPIKey(t *testing.T, clientID string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"client_id": clientID,
		"iss":       "https://oauth.izettle.com",
		"aud":       []string{"inventory"},
		"scope":     "READ:PRODUCT WRITE:PRODUCT",
	})
	signed, err := token.SignedString([]byte("not-the-real-izettle-key"))
	require.NoError(t, err)
	return signed
}

// fakeIZettle serves the token endpoint and records API calls
type fakeIZettle struct {
	server      *httptest.Server
	tokenCalls  atomic.Int32
	lastMethod  string
	lastPath    string
	lastBody    []byte
	lastAuth    string
	apiHandler  func(w http.ResponseWriter, r *http.Request)
	tokenStatus int
}

func newFakeIZettle(t *testing.T) *fakeIZettle {
	t.Helper()
	f := &fakeIZettle{tokenStatus: http.StatusOK}
	f.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == tokenPath {
			f.tokenCalls.Add(1)
			require.NoError(t, r.ParseForm())
			assert.Equal(t, jwtBearerGrant, r.PostForm.Get("grant_type"))
			assert.Equal(t, testClientID, r.PostForm.Get("client_id"))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(f.tokenStatus)
			if f.tokenStatus != http.StatusOK {
				_, _ = io.WriteString(w, `{"error":"invalid_grant","error_description":"Invalid assertion"}`)
				return
			}
			_, _ = io.WriteString(w, `{"access_token":"access-1","expires_in":7200}`)
			return
		}
		f.lastMethod = r.Method
		f.lastPath = r.URL.Path
		f.lastAuth = r.Header.Get("Authorization")
		f.lastBody, _ = io.ReadAll(r.Body)
		f.apiHandler(w, r)
	}))
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeIZettle) client() *Client {
	return NewClient(config.IZettleConfig{
		OAuthURL:    f.server.URL,
		Timeout:     5 * time.Second,
		TokenLeeway: time.Minute,
	}, cache.NewInMemoryTokenStore(), zap.NewNop())
}

func TestInventoryResource_ChangeInventoryBulk(t *testing.T) {
	f := newFakeIZettle(t)
	f.apiHandler = func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"locationUuid":"store","variants":[{"productUuid":"p1","variantUuid":"v1","locationUuid":"store","balance":"4"}]}`)
	}
	resource := NewInventoryResource(f.client(), f.server.URL+"/")
	apiKey := newAPIKey(t, testClientID)

	changes := &pos.BulkChanges{ReturnBalanceForLocationUUID: "store"}
	pc := pos.NewProductChange("p1")
	pc.AddVariantChange(pos.VariantChange{ProductUUID: "p1", VariantUUID: "v1", FromLocationUUID: "supplier", ToLocationUUID: "store", Change: 4})
	changes.AddProductChange(pc)

	status, err := resource.ChangeInventoryBulk(context.Background(), apiKey, changes)
	require.NoError(t, err)
	require.NotNil(t, status)
	assert.Equal(t, 4, status.Variants[0].Balance.Int())

	assert.Equal(t, http.MethodPost, f.lastMethod)
	assert.Equal(t, inventoryBulkPath, f.lastPath)
	assert.Equal(t, "Bearer access-1", f.lastAuth)

	var sent map[string]any
	require.NoError(t, json.Unmarshal(f.lastBody, &sent))
	assert.Equal(t, "store", sent["returnBalanceForLocationUuid"])

	t.Run("token is cached between requests", func(t *testing.T) {
		_, err := resource.ChangeInventoryBulk(context.Background(), apiKey, changes)
		require.NoError(t, err)
		assert.Equal(t, int32(1), f.tokenCalls.Load())
	})
}

func TestInventoryResource_Errors(t *testing.T) {
	f := newFakeIZettle(t)
	f.apiHandler = func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"errorType":"VALIDATION_ERROR","developerMessage":"Invalid change","violations":[{"propertyName":"change","developerMessage":"must not be zero","constraintType":"NOT_ZERO"}]}`)
	}
	resource := NewInventoryResource(f.client(), f.server.URL)

	_, err := resource.ChangeInventoryBulk(context.Background(), newAPIKey(t, testClientID), &pos.BulkChanges{})
	require.Error(t, err)
	assert.ErrorIs(t, err, pos.ErrRemoteAPI)

	var apiErr *pos.RemoteAPIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "VALIDATION_ERROR", apiErr.ErrorType)
	require.Len(t, apiErr.Violations, 1)
	assert.Equal(t, "NOT_ZERO", apiErr.Violations[0].ConstraintType)
}

func TestInventoryResource_FetchLocations(t *testing.T) {
	f := newFakeIZettle(t)
	f.apiHandler = func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[{"uuid":"s","type":"STORE","name":"Store","default":true},{"uuid":"b","type":"BIN","name":"Bin","default":true}]`)
	}
	resource := NewInventoryResource(f.client(), f.server.URL)

	locations, err := resource.FetchLocations(context.Background(), newAPIKey(t, testClientID))
	require.NoError(t, err)
	assert.Equal(t, http.MethodGet, f.lastMethod)
	assert.Equal(t, locationsPath, f.lastPath)
	assert.Equal(t, pos.Locations{Store: "s", Bin: "b"}, pos.LocationsFromList(locations))
}

func TestInventoryResource_FetchInventory(t *testing.T) {
	f := newFakeIZettle(t)
	f.apiHandler = func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"locationUuid":"store","variants":[{"productUuid":"p1","variantUuid":"v1","balance":"2"},{"productUuid":"p2","variantUuid":"v2","balance":null}]}`)
	}
	resource := NewInventoryResource(f.client(), f.server.URL)

	status, err := resource.FetchInventory(context.Background(), newAPIKey(t, testClientID), "store")
	require.NoError(t, err)
	assert.Equal(t, locationInventory+"store", f.lastPath)
	require.Len(t, status.Variants, 2)
	assert.Equal(t, 0, status.Variants[1].Balance.Int())
}

func TestTokenResource_Errors(t *testing.T) {
	f := newFakeIZettle(t)
	f.tokenStatus = http.StatusBadRequest
	f.apiHandler = func(w http.ResponseWriter, r *http.Request) {
		t.Error("API must not be called without token")
	}
	resource := NewInventoryResource(f.client(), f.server.URL)

	_, err := resource.FetchLocations(context.Background(), newAPIKey(t, testClientID))
	var apiErr *pos.RemoteAPIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, tokenPath, apiErr.Endpoint)
	assert.Equal(t, "invalid_grant", apiErr.ErrorType)
	assert.Equal(t, "Invalid assertion", apiErr.DeveloperMessage)

	_, err = resource.FetchLocations(context.Background(), "")
	assert.ErrorIs(t, err, pos.ErrInvalidAPIKey)
}

func TestTokenResource_CancelledCallerDoesNotFailSharedRequest(t *testing.T) {
	arrived := make(chan struct{})
	release := make(chan struct{})
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			close(arrived)
			<-release
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"access_token":"access-1","expires_in":7200}`)
	}))
	t.Cleanup(server.Close)

	tokens := NewTokenResource(server.Client(), server.URL, cache.NewInMemoryTokenStore(), time.Minute)
	apiKey := newAPIKey(t, testClientID)

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := tokens.GetToken(firstCtx, apiKey)
		firstErr <- err
	}()
	<-arrived

	type result struct {
		token string
		err   error
	}
	second := make(chan result, 1)
	go func() {
		token, err := tokens.GetToken(context.Background(), apiKey)
		second <- result{token: token, err: err}
	}()

	cancelFirst()
	assert.ErrorIs(t, <-firstErr, context.Canceled)

	close(release)
	got := <-second
	require.NoError(t, got.err)
	assert.Equal(t, "access-1", got.token)
}

func TestSubscriptionResource(t *testing.T) {
	f := newFakeIZettle(t)
	f.apiHandler = func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			_, _ = io.WriteString(w, `{"uuid":"sub-1","transportName":"WEBHOOK","signingKey":"signing-1","status":"ACTIVE"}`)
		case http.MethodPut:
			w.WriteHeader(http.StatusNoContent)
		case http.MethodDelete:
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"errorType":"NOT_FOUND","developerMessage":"Subscription not found"}`)
		}
	}
	resource := NewSubscriptionResource(f.client(), f.server.URL)
	apiKey := newAPIKey(t, testClientID)
	ctx := context.Background()

	create := &pos.CreateSubscription{
		UUID:          "0fa91ce3-e96a-1bc2-be4b-d9ce752c3425",
		TransportName: pos.TransportWebhook,
		EventNames:    pos.SubscribedEvents,
		Destination:   "https://shop.example.com/api/v1/_action/paypal/izettle/webhook/execute/0fa91ce3",
		ContactEmail:  "ops@example.com",
	}

	t.Run("create returns signing key", func(t *testing.T) {
		sub, err := resource.CreateWebhook(ctx, apiKey, create)
		require.NoError(t, err)
		assert.Equal(t, "signing-1", sub.SigningKey)
		assert.Equal(t, subscriptionsPath, f.lastPath)
	})

	t.Run("invalid request is rejected locally", func(t *testing.T) {
		bad := *create
		bad.ContactEmail = "not-an-email"
		f.lastPath = ""
		_, err := resource.CreateWebhook(ctx, apiKey, &bad)
		assert.ErrorIs(t, err, pos.ErrWebhookMalformed)
		assert.Empty(t, f.lastPath)
	})

	t.Run("update", func(t *testing.T) {
		err := resource.UpdateWebhook(ctx, apiKey, "sub-1", &pos.UpdateSubscription{
			EventNames:   pos.SubscribedEvents,
			Destination:  create.Destination,
			ContactEmail: create.ContactEmail,
		})
		require.NoError(t, err)
		assert.Equal(t, http.MethodPut, f.lastMethod)
		assert.Equal(t, subscriptionsPath+"/sub-1", f.lastPath)
	})

	t.Run("remove surfaces not found", func(t *testing.T) {
		err := resource.RemoveWebhook(ctx, apiKey, "sub-1")
		assert.True(t, pos.IsRemoteNotFound(err))
		assert.Equal(t, subscriptionDeletePath+"sub-1", f.lastPath)
	})
}

func TestAPIKeyDecoder(t *testing.T) {
	decoder := NewAPIKeyDecoder()

	key, err := decoder.Decode(newAPIKey(t, testClientID))
	require.NoError(t, err)
	assert.Equal(t, testClientID, key.ClientID)
	assert.Equal(t, "https://oauth.izettle.com", key.Issuer)
	assert.Equal(t, []string{"READ:PRODUCT", "WRITE:PRODUCT"}, key.Scopes)

	_, err = decoder.Decode("garbage")
	assert.ErrorIs(t, err, pos.ErrInvalidAPIKey)

	_, err = decoder.Decode(newAPIKey(t, ""))
	assert.ErrorIs(t, err, pos.ErrInvalidAPIKey)
}

func TestParseError_PlainBody(t *testing.T) {
	err := parseError("/x", http.StatusBadGateway, []byte("upstream unavailable"))
	var apiErr *pos.RemoteAPIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "upstream unavailable", apiErr.DeveloperMessage)

}
