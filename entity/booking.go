package entity

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

type Booking struct {
	ID             BookingID `json:"id"`
	Tickets        []Ticket  `json:"tickets"`
	Status         Status    `json:"status"`
	Payments       []Payment `json:"payments"`
	PaymentOrderID *string   `json:"payment_order_id,omitempty"`
	Contact        Person    `json:"contact"`
	Event          Event     `json:"event"`
}

func (Booking) Table() string { return "bookings" }

// TotalTicketValue sums the price of every ticket in the booking.
func (b Booking) TotalTicketValue() decimal.Decimal {
	total := Zero
	for _, t := range b.Tickets {
		total = total.Add(t.TicketType.Price)
	}
	return total
}

func (b Booking) TotalPaid() decimal.Decimal {
	return SumPayments(b.Payments)
}

// Zero is a zero amount at the two decimal scale used for all money.
var Zero = decimal.New(0, -2)

type Status string

const (
	StatusDraft         Status = "Draft"
	StatusAccepted      Status = "Accepted"
	StatusPaid          Status = "Paid"
	StatusPartiallyPaid Status = "PartiallyPaid"
	StatusCancelled     Status = "Cancelled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusAccepted, StatusPaid, StatusPartiallyPaid, StatusCancelled:
		return true
	}
	return false
}

// GoodStatuses are the statuses of bookings that consume slot capacity.
func GoodStatuses() []Status {
	return []Status{StatusAccepted, StatusPaid, StatusPartiallyPaid}
}

// HoldingStatuses are the statuses of bookings that keep their places when
// slot capacity is enforced: drafts included, so a booking waiting for its
// payment cannot be overtaken.
func HoldingStatuses() []Status {
	return append(GoodStatuses(), StatusDraft)
}

// ReconcileStatus derives a booking status from what has been paid against
// what is owed. Cancelled is never overridden.
func ReconcileStatus(current Status, totalPaid, totalDue decimal.Decimal) Status {
	if current == StatusCancelled {
		return current
	}
	switch {
	case totalPaid.GreaterThanOrEqual(totalDue):
		return StatusPaid
	case totalPaid.IsPositive():
		return StatusPartiallyPaid
	default:
		return current
	}
}

type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "cash"
	PaymentMethodCard         PaymentMethod = "card"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
)

// Payment is one of Cash, Card or BankTransfer. To is only set for cash
// payments, Reference only for card and bank transfer ones.
type Payment struct {
	Method    PaymentMethod   `json:"method"`
	Value     decimal.Decimal `json:"amount"`
	To        string          `json:"to,omitempty"`
	Reference string          `json:"reference,omitempty"`
}

func CashPayment(amount decimal.Decimal, to string) Payment {
	return Payment{Method: PaymentMethodCash, Value: amount, To: to}
}

func CardPayment(amount decimal.Decimal, reference string) Payment {
	return Payment{Method: PaymentMethodCard, Value: amount, Reference: reference}
}

func BankTransferPayment(amount decimal.Decimal, reference string) Payment {
	return Payment{Method: PaymentMethodBankTransfer, Value: amount, Reference: reference}
}

func (p Payment) Amount() decimal.Decimal {
	return p.Value
}

func (p *Payment) UnmarshalJSON(data []byte) error {
	type payment Payment
	var raw payment
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch raw.Method {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodBankTransfer:
	default:
		return fmt.Errorf("unknown payment method %q", raw.Method)
	}
	*p = Payment(raw)
	return nil
}

func SumPayments(payments []Payment) decimal.Decimal {
	total := Zero
	for _, p := range payments {
		total = total.Add(p.Amount())
	}
	return total
}
