package pos

import "github.com/google/uuid"

// PayPalPaymentHandler identifies the PayPal payment method
const PayPalPaymentHandler = "swag_paypal.payment_handler.paypal"

// IDs of the default entities created for POS sales channels
var (
	POSPaymentMethodID  = uuid.MustParse("f7e2d1c8-6b1a-4a43-9a57-3f0c2b9d4e11")
	POSShippingMethodID = uuid.MustParse("0b1d7c3e-52a4-4f6e-8d91-7c2a6e4f5a22")
)

// SalesChannelType describes a kind of sales channel
type SalesChannelType struct {
	ID           uuid.UUID
	IconName     string
	Name         string
	Manufacturer string
	Description  string
}

// POSSalesChannelType is the type registered on activation
func POSSalesChannelType() *SalesChannelType {
	return &SalesChannelType{
		ID:           SalesChannelTypePOS,
		IconName:     "default-money-cash",
		Name:         "iZettle",
		Manufacturer: "Shopware",
		Description:  "Sales Channel for synchronisation with your iZettle account",
	}
}
