package entity_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"happenings/entity"
)

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestBooking_totals_are_exact(t *testing.T) {
	booking := entity.Booking{
		Tickets: []entity.Ticket{
			entity.NewTicket(entity.TicketType{Name: "a", Price: money("0.10")}),
			entity.NewTicket(entity.TicketType{Name: "b", Price: money("0.20")}),
			entity.NewTicket(entity.TicketType{Name: "c", Price: money("0.30")}),
		},
		Payments: []entity.Payment{
			entity.CashPayment(money("0.10"), "door"),
			entity.CardPayment(money("0.20"), "pay_1"),
			entity.BankTransferPayment(money("0.30"), "ref"),
		},
	}

	assert.True(t, booking.TotalTicketValue().Equal(money("0.60")), booking.TotalTicketValue().String())
	assert.True(t, booking.TotalPaid().Equal(money("0.60")), booking.TotalPaid().String())
}

func TestBooking_empty_totals(t *testing.T) {
	var booking entity.Booking

	assert.True(t, booking.TotalTicketValue().IsZero())
	assert.True(t, booking.TotalPaid().IsZero())
	assert.Equal(t, "0.00", booking.TotalPaid().StringFixed(2))
}

func TestReconcileStatus(t *testing.T) {
	testCases := []struct {
		Name     string
		Current  entity.Status
		Paid     string
		Due      string
		Expected entity.Status
	}{
		{Name: "nothing paid", Current: entity.StatusDraft, Paid: "0", Due: "50.00", Expected: entity.StatusDraft},
		{Name: "partially paid", Current: entity.StatusDraft, Paid: "10.00", Due: "50.00", Expected: entity.StatusPartiallyPaid},
		{Name: "exactly paid", Current: entity.StatusDraft, Paid: "50.00", Due: "50.00", Expected: entity.StatusPaid},
		{Name: "overpaid", Current: entity.StatusPartiallyPaid, Paid: "60.00", Due: "50.00", Expected: entity.StatusPaid},
		{Name: "free booking", Current: entity.StatusDraft, Paid: "0", Due: "0", Expected: entity.StatusPaid},
		{Name: "accepted unpaid", Current: entity.StatusAccepted, Paid: "0", Due: "50.00", Expected: entity.StatusAccepted},
		{Name: "cancelled and paid", Current: entity.StatusCancelled, Paid: "50.00", Due: "50.00", Expected: entity.StatusCancelled},
		{Name: "cancelled and partially paid", Current: entity.StatusCancelled, Paid: "1.00", Due: "50.00", Expected: entity.StatusCancelled},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			status := entity.ReconcileStatus(tc.Current, money(tc.Paid), money(tc.Due))
			assert.Equal(t, tc.Expected, status)
		})
	}
}

func TestGoodStatuses(t *testing.T) {
	assert.ElementsMatch(
		t,
		[]entity.Status{entity.StatusAccepted, entity.StatusPaid, entity.StatusPartiallyPaid},
		entity.GoodStatuses(),
	)
}

func TestHoldingStatuses(t *testing.T) {
	assert.ElementsMatch(
		t,
		[]entity.Status{entity.StatusDraft, entity.StatusAccepted, entity.StatusPaid, entity.StatusPartiallyPaid},
		entity.HoldingStatuses(),
	)
	assert.NotContains(t, entity.HoldingStatuses(), entity.StatusCancelled)
	// the good statuses are not changed by it
	assert.Len(t, entity.GoodStatuses(), 3)
}

func TestPayment_json(t *testing.T) {
	payments := []entity.Payment{
		entity.CashPayment(money("5.00"), "front desk"),
		entity.CardPayment(money("12.50"), "pay_123"),
	}

	data, err := json.Marshal(payments)
	require.NoError(t, err)
	assert.JSONEq(t, `[
		{"method": "cash", "amount": "5", "to": "front desk"},
		{"method": "card", "amount": "12.5", "reference": "pay_123"}
	]`, string(data))

	var decoded []entity.Payment
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, entity.PaymentMethodCash, decoded[0].Method)
	assert.True(t, decoded[1].Amount().Equal(money("12.50")))

	err = json.Unmarshal([]byte(`{"method": "cheque", "amount": "1.00"}`), &entity.Payment{})
	assert.ErrorContains(t, err, "cheque")
}

func TestNotFoundError(t *testing.T) {
	err := wrapped(entity.NewNotFoundError(entity.BookingID("b-1")))

	assert.True(t, errors.Is(err, entity.ErrNotFound))

	var notFound entity.NotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, "bookings", notFound.Table)
	assert.Equal(t, "b-1", notFound.ID)
}

func TestSlotCapacityError(t *testing.T) {
	err := wrapped(entity.SlotCapacityError{Slot: "dinner", Requested: 2, Available: 1})

	assert.ErrorIs(t, err, entity.ErrSlotCapacityExceeded)
	assert.ErrorContains(t, err, "dinner")
}

func wrapped(err error) error {
	return errors.Join(errors.New("could not do it"), err)
}

func TestEvent_TicketTypes(t *testing.T) {
	event := entity.Event{
		DefaultTicketType: entity.TicketType{Name: "Standard", Price: money("20.00")},
		AdditionalTicketTypes: []entity.TicketType{
			{Name: "Concession", Price: money("10.00")},
			{Name: "Supporter", Price: money("40.00")},
		},
	}

	names := make([]string, 0)
	for _, tt := range event.TicketTypes() {
		names = append(names, tt.Name)
	}
	assert.Equal(t, []string{"Standard", "Concession", "Supporter"}, names)

	tt, ok := event.TicketType("Supporter")
	require.True(t, ok)
	assert.True(t, tt.Price.Equal(money("40.00")))

	_, ok = event.TicketType("VIP")
	assert.False(t, ok)
}

func TestTicketType_Equal(t *testing.T) {
	five := int64(5)
	alsoFive := int64(5)

	a := entity.TicketType{Name: "Standard", Price: money("20.0"), Available: &five}
	b := entity.TicketType{Name: "Standard", Price: money("20.00"), Available: &alsoFive}

	assert.True(t, a.Equal(b))

	b.Available = nil
	assert.False(t, a.Equal(b))
}

func TestID_table(t *testing.T) {
	assert.Equal(t, "events", entity.EventID("x").Table())
	assert.Equal(t, "people", entity.NewID[entity.Person]().Table())
	assert.True(t, entity.BookingID("").IsZero())
}
