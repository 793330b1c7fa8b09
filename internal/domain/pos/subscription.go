package pos

// TransportWebhook is the only transport the integration subscribes with
const TransportWebhook = "WEBHOOK"

// SubscribedEvents are the events every POS channel subscribes to
var SubscribedEvents = []string{EventInventoryBalanceChanged}

// CreateSubscription is the request body for a new webhook subscription
type CreateSubscription struct {
	UUID          string   `json:"uuid" validate:"required,uuid"`
	TransportName string   `json:"transportName" validate:"required,eq=WEBHOOK"`
	EventNames    []string `json:"eventNames" validate:"required,min=1,dive,required"`
	Destination   string   `json:"destination" validate:"required,url"`
	ContactEmail  string   `json:"contactEmail" validate:"required,email"`
}

// UpdateSubscription is the request body for changing an existing subscription
type UpdateSubscription struct {
	EventNames   []string `json:"eventNames" validate:"required,min=1,dive,required"`
	Destination  string   `json:"destination" validate:"required,url"`
	ContactEmail string   `json:"contactEmail" validate:"required,email"`
}

// Subscription is a webhook subscription as returned by iZettle
type Subscription struct {
	UUID          string   `json:"uuid"`
	TransportName string   `json:"transportName"`
	EventNames    []string `json:"eventNames"`
	Updated       string   `json:"updated"`
	Destination   string   `json:"destination"`
	ContactEmail  string   `json:"contactEmail"`
	Status        string   `json:"status"`
	SigningKey    string   `json:"signingKey"`
}
