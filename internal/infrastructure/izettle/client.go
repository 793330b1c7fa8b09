// Package izettle talks to the iZettle (PayPal Zettle) REST APIs.
package izettle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/swagpaypal/backend/internal/domain/pos"
	"github.com/swagpaypal/backend/internal/infrastructure/config"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

// maxResponseSize is the maximum accepted response body (10MB)
const maxResponseSize = 10 * 1024 * 1024

// Client performs authenticated JSON requests against the iZettle APIs
type Client struct {
	httpClient *http.Client
	tokens     *TokenResource
	logger     *zap.Logger
}

// NewHTTPClient returns an HTTP client whose requests are traced
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport,
			otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
				return "izettle " + r.Method + " " + r.URL.Path
			}),
		),
	}
}

// NewClient creates a client sharing one HTTP client between token and API calls
func NewClient(cfg config.IZettleConfig, tokens TokenCache, logger *zap.Logger) *Client {
	httpClient := NewHTTPClient(cfg.Timeout)
	return &Client{
		httpClient: httpClient,
		tokens:     NewTokenResource(httpClient, cfg.OAuthURL, tokens, cfg.TokenLeeway),
		logger:     logger.Named("izettle"),
	}
}

// doRequest sends body as JSON and decodes the response into out.
// Non-2xx responses become *pos.RemoteAPIError.
func (c *Client) doRequest(ctx context.Context, method, baseURL, path, apiKey string, body, out any) error {
	token, err := c.tokens.GetToken(ctx, apiKey)
	if err != nil {
		return err
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("izettle: failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("izettle: failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &pos.RemoteAPIError{Endpoint: path, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return &pos.RemoteAPIError{Endpoint: path, StatusCode: resp.StatusCode, Err: err}
	}

	c.logger.Debug("iZettle request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
	)

	if resp.StatusCode >= 400 {
		return parseError(path, resp.StatusCode, respBody)
	}

	if out == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return &pos.RemoteAPIError{
			Endpoint:   path,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("invalid response body: %w", err),
		}
	}
	return nil
}

type errorResponse struct {
	ErrorType        string          `json:"errorType"`
	DeveloperMessage string          `json:"developerMessage"`
	Violations       []pos.Violation `json:"violations"`

	// OAuth style errors
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

func parseError(path string, status int, body []byte) error {
	apiErr := &pos.RemoteAPIError{Endpoint: path, StatusCode: status}

	var parsed errorResponse
	if err := json.Unmarshal(body, &parsed); err == nil {
		apiErr.ErrorType = parsed.ErrorType
		apiErr.DeveloperMessage = parsed.DeveloperMessage
		apiErr.Violations = parsed.Violations
		if apiErr.ErrorType == "" {
			apiErr.ErrorType = parsed.Error
		}
		if apiErr.DeveloperMessage == "" {
			apiErr.DeveloperMessage = parsed.ErrorDescription
		}
	}
	if apiErr.DeveloperMessage == "" && len(body) > 0 && len(body) < 512 {
		apiErr.DeveloperMessage = string(body)
	}
	return apiErr
}
