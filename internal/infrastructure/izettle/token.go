package izettle

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/swagpaypal/backend/internal/domain/pos"
	"golang.org/x/sync/singleflight"
)

const (
	tokenPath      = "/token"
	jwtBearerGrant = "urn:ietf:params:oauth:grant-type:jwt-bearer"
)

// TokenCache stores access tokens between requests
type TokenCache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, token string, ttl time.Duration) error
}

// Token is the OAuth response of the token endpoint
type Token struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}

// TokenResource exchanges API keys for access tokens and caches them
type TokenResource struct {
	httpClient *http.Client
	baseURL    string
	cache      TokenCache
	leeway     time.Duration
	group      singleflight.Group
}

// NewTokenResource creates a token resource
func NewTokenResource(httpClient *http.Client, baseURL string, cache TokenCache, leeway time.Duration) *TokenResource {
	return &TokenResource{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		cache:      cache,
		leeway:     leeway,
	}
}

// GetToken returns a cached access token for apiKey, requesting a new one when needed.
// Concurrent misses for the same key share one token request.
func (r *TokenResource) GetToken(ctx context.Context, apiKey string) (string, error) {
	if apiKey == "" {
		return "", pos.ErrInvalidAPIKey
	}
	key := cacheKey(apiKey)

	if token, ok, err := r.cache.Get(ctx, key); err == nil && ok {
		return token, nil
	}

	// The shared request must not inherit the cancellation of the caller that started it.
	flightCtx := context.WithoutCancel(ctx)
	ch := r.group.DoChan(key, func() (any, error) {
		token, err := r.requestToken(flightCtx, apiKey)
		if err != nil {
			return "", err
		}
		ttl := time.Duration(token.ExpiresIn)*time.Second - r.leeway
		if ttl > 0 {
			// a failing cache only costs an extra token request
			_ = r.cache.Set(flightCtx, key, token.AccessToken, ttl)
		}
		return token.AccessToken, nil
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

func (r *TokenResource) requestToken(ctx context.Context, apiKey string) (*Token, error) {
	form := url.Values{}
	form.Set("grant_type", jwtBearerGrant)
	form.Set("client_id", clientIDOf(apiKey))
	form.Set("assertion", apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+tokenPath, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("izettle: failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, &pos.RemoteAPIError{Endpoint: tokenPath, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, &pos.RemoteAPIError{Endpoint: tokenPath, StatusCode: resp.StatusCode, Err: err}
	}
	if resp.StatusCode >= 400 {
		return nil, parseError(tokenPath, resp.StatusCode, body)
	}

	var token Token
	if err := json.Unmarshal(body, &token); err != nil || token.AccessToken == "" {
		return nil, &pos.RemoteAPIError{
			Endpoint:         tokenPath,
			StatusCode:       resp.StatusCode,
			DeveloperMessage: "token response without access_token",
			Err:              err,
		}
	}
	return &token, nil
}

// cacheKey never stores the API key itself
func cacheKey(apiKey string) string {
	sum := sha256.Sum256([]byte(apiKey))
	return hex.EncodeToString(sum[:])
}

// clientIDOf reads the client_id claim, falling back to "" for undecodable keys.
// The token endpoint rejects those with a proper error.
func clientIDOf(apiKey string) string {
	key, err := NewAPIKeyDecoder().Decode(apiKey)
	if err != nil {
		return ""
	}
	return key.ClientID
}
