package pos

// APIKey is the decoded content of an iZettle API key
type APIKey struct {
	ClientID string
	Issuer   string
	Audience []string
	Scopes   []string
	Raw      string
}

// APIKeyDecoder reads the claims of an iZettle API key
type APIKeyDecoder interface {
	Decode(apiKey string) (*APIKey, error)
}
