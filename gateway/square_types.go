package gateway

import "github.com/shopspring/decimal"

type Money struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// Decimal converts the amount in minor units to a two decimal amount.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Amount, -2)
}

type CreatePaymentLinkRequest struct {
	IdempotencyKey   string            `json:"idempotency_key"`
	Description      string            `json:"description"`
	Order            NewOrder          `json:"order"`
	CheckoutOptions  *CheckoutOptions  `json:"checkout_options,omitempty"`
	PrePopulatedData *PrePopulatedData `json:"pre_populated_data,omitempty"`
}

type NewOrder struct {
	LocationID string        `json:"location_id"`
	CustomerID *string       `json:"customer_id,omitempty"`
	LineItems  []NewLineItem `json:"line_items"`
}

type NewLineItem struct {
	Quantity        string `json:"quantity"`
	CatalogObjectID string `json:"catalog_object_id"`
	CatalogVersion  int64  `json:"catalog_version"`
}

type CheckoutOptions struct {
	AllowTipping          bool   `json:"allow_tipping"`
	AskForShippingAddress bool   `json:"ask_for_shipping_address"`
	EnableCoupon          bool   `json:"enable_coupon"`
	EnableLoyalty         bool   `json:"enable_loyalty"`
	RedirectURL           string `json:"redirect_url"`
}

type PrePopulatedData struct {
	BuyerEmail       *string `json:"buyer_email,omitempty"`
	BuyerPhoneNumber *string `json:"buyer_phone_number,omitempty"`
}

type PaymentLink struct {
	ID          string `json:"id"`
	Version     int64  `json:"version"`
	Description string `json:"description"`
	OrderID     string `json:"order_id"`
	URL         string `json:"url"`
	LongURL     string `json:"long_url"`
	CreatedAt   string `json:"created_at"`
}

type createPaymentLinkResponse struct {
	PaymentLink PaymentLink `json:"payment_link"`
}

type Order struct {
	ID         string   `json:"id"`
	LocationID string   `json:"location_id"`
	State      string   `json:"state"`
	TotalMoney Money    `json:"total_money"`
	Tenders    []Tender `json:"tenders"`
}

type Tender struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	AmountMoney Money  `json:"amount_money"`
	PaymentID   string `json:"payment_id"`
}

type retrieveOrderResponse struct {
	Order Order `json:"order"`
}
