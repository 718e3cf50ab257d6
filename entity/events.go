package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type DomainEvent interface {
	IsInternal() bool
}

type EventHeader struct {
	ID             string    `json:"id"`
	PublishedAt    time.Time `json:"published_at"`
	IdempotencyKey string    `json:"idempotency_key"`
}

func NewEventHeader() EventHeader {
	return EventHeader{
		ID:          uuid.NewString(),
		PublishedAt: time.Now().UTC(),
	}
}

func NewEventHeaderWithIdempotencyKey(idempotencyKey string) EventHeader {
	return EventHeader{
		ID:             uuid.NewString(),
		PublishedAt:    time.Now().UTC(),
		IdempotencyKey: idempotencyKey,
	}
}

type BookingCreated_v1 struct {
	Header EventHeader `json:"header"`

	BookingID string           `json:"booking_id"`
	EventID   string           `json:"event_id"`
	ContactID string           `json:"contact_id"`
	Slots     map[string]int64 `json:"slots"`
	Total     decimal.Decimal  `json:"total"`
}

func (BookingCreated_v1) IsInternal() bool { return false }

type PaymentLinkCreated_v1 struct {
	Header EventHeader `json:"header"`

	BookingID      string `json:"booking_id"`
	PaymentOrderID string `json:"payment_order_id"`
}

func (PaymentLinkCreated_v1) IsInternal() bool { return false }

type BookingPaymentChecked_v1 struct {
	Header EventHeader `json:"header"`

	BookingID      string          `json:"booking_id"`
	PreviousStatus Status          `json:"previous_status"`
	Status         Status          `json:"status"`
	TotalPaid      decimal.Decimal `json:"total_paid"`
	TotalDue       decimal.Decimal `json:"total_due"`
}

func (BookingPaymentChecked_v1) IsInternal() bool { return false }
