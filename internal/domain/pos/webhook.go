package pos

// Webhook event names known to the integration
const (
	// EventTestMessage is sent by iZettle to check connectivity.
	// It is acknowledged without signature validation or dispatch.
	EventTestMessage             = "TestMessage"
	EventInventoryBalanceChanged = "InventoryBalanceChanged"
)

// SignatureHeader carries the HMAC signature of an inbound webhook
const SignatureHeader = "x-izettle-signature"

// Webhook is a single inbound iZettle webhook delivery.
// It is built per request and discarded after dispatch.
type Webhook struct {
	OrganizationUUID string `json:"organizationUuid"`
	MessageUUID      string `json:"messageUuid"`
	EventName        string `json:"eventName"`
	MessageID        string `json:"messageId"`
	Payload          string `json:"payload"`
	Timestamp        string `json:"timestamp"`
	Signature        string `json:"-"`
}

// IsTestMessage reports whether the webhook is a connectivity check
func (w *Webhook) IsTestMessage() bool {
	return w.EventName == EventTestMessage
}

// IsEmpty reports whether no webhook fields were sent at all
func (w *Webhook) IsEmpty() bool {
	return w.EventName == "" && w.Payload == "" && w.Timestamp == "" &&
		w.OrganizationUUID == "" && w.MessageUUID == "" && w.MessageID == ""
}

// DeliveryKey identifies a delivery for deduplication.
// iZettle redelivers with the same message UUID; the signature is the fallback.
func (w *Webhook) DeliveryKey() string {
	if w.MessageUUID != "" {
		return w.EventName + ":" + w.MessageUUID
	}
	return w.EventName + ":" + w.Signature
}

// Updated describes who caused a change reported by a webhook
type Updated struct {
	UUID       string `json:"uuid"`
	UserType   string `json:"userType"`
	ClientUUID string `json:"clientUuid"`
	Timestamp  string `json:"timestamp"`
}

// Payload is the decoded body of a webhook.
// Every payload reports the client that originated the change.
type Payload interface {
	UpdatedBy() Updated
}

// Balance is one location/variant stock level inside a balance change payload
type Balance struct {
	OrganizationUUID string   `json:"organizationUuid"`
	LocationUUID     string   `json:"locationUuid"`
	ProductUUID      string   `json:"productUuid"`
	VariantUUID      string   `json:"variantUuid"`
	Balance          Quantity `json:"balance"`
}

// InventoryBalanceChangedPayload is the payload of the InventoryBalanceChanged event
type InventoryBalanceChangedPayload struct {
	OrganizationUUID string    `json:"organizationUuid"`
	BalanceBefore    []Balance `json:"balanceBefore"`
	BalanceAfter     []Balance `json:"balanceAfter"`
	Updated          Updated   `json:"updated"`
	ExternalUUID     string    `json:"externalUuid"`
}

// UpdatedBy implements Payload
func (p *InventoryBalanceChangedPayload) UpdatedBy() Updated {
	return p.Updated
}
