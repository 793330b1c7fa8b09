package izettle

import (
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/swagpaypal/backend/internal/domain/pos"
)

// apiKeyClaims are the claims of an iZettle API key
type apiKeyClaims struct {
	ClientID string `json:"client_id"`
	Scope    any    `json:"scope"`
	jwt.RegisteredClaims
}

// APIKeyDecoder decodes iZettle API keys. The keys are signed by iZettle,
// their signature is verified by the token endpoint and not here.
type APIKeyDecoder struct {
	parser *jwt.Parser
}

// NewAPIKeyDecoder creates a decoder
func NewAPIKeyDecoder() *APIKeyDecoder {
	return &APIKeyDecoder{parser: jwt.NewParser()}
}

// Decode reads the claims of apiKey
func (d *APIKeyDecoder) Decode(apiKey string) (*pos.APIKey, error) {
	var claims apiKeyClaims
	if _, _, err := d.parser.ParseUnverified(strings.TrimSpace(apiKey), &claims); err != nil {
		return nil, pos.ErrInvalidAPIKey.Wrap(fmt.Errorf("decode api key: %w", err))
	}
	if claims.ClientID == "" {
		return nil, pos.ErrInvalidAPIKey.WithMessage("api key has no client_id")
	}

	return &pos.APIKey{
		ClientID: claims.ClientID,
		Issuer:   claims.Issuer,
		Audience: claims.Audience,
		Scopes:   scopes(claims.Scope),
		Raw:      apiKey,
	}, nil
}

func scopes(v any) []string {
	switch s := v.(type) {
	case string:
		return strings.Fields(s)
	case []any:
		out := make([]string, 0, len(s))
		for _, item := range s {
			if str, ok := item.(string); ok {
				out = append(out, str)
			}
		}
		return out
	default:
		return nil
	}
}

var _ pos.APIKeyDecoder = (*APIKeyDecoder)(nil)
