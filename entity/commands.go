package entity

type CheckPayment_v1 struct {
	Header EventHeader `json:"header"`

	BookingID      string `json:"booking_id"`
	PaymentOrderID string `json:"payment_order_id"`
}
