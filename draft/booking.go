// Package draft holds a booking while it is being composed. Slot states are
// recomputed from explicit inputs on every read: the slot details snapshot
// taken when the session started (or last refreshed) and the current tickets.
package draft

import (
	"errors"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"happenings/entity"
	"happenings/reactive"
	"happenings/slots"
)

var (
	ErrSlotUnavailable   = errors.New("slot unavailable")
	ErrUnknownTicket     = errors.New("unknown ticket")
	ErrUnknownTicketType = errors.New("unknown ticket type")
)

type Booking struct {
	event   entity.Event
	contact entity.Person
	tickets *reactive.List[entity.Ticket]

	mu      sync.RWMutex
	details []entity.SlotDetail
}

// New starts a draft with a single ticket of the event's default type.
func New(event entity.Event, contact entity.Person, details []entity.SlotDetail) *Booking {
	b := &Booking{
		event:   event,
		contact: contact,
		tickets: reactive.New[entity.Ticket](),
		details: details,
	}
	b.tickets.Push(entity.NewTicket(event.DefaultTicketType))
	return b
}

// FromTickets rebuilds a draft from a plain ticket list, as submitted by a
// client that keeps the draft on its side.
func FromTickets(event entity.Event, contact entity.Person, details []entity.SlotDetail, tickets []entity.Ticket) *Booking {
	return &Booking{
		event:   event,
		contact: contact,
		tickets: reactive.FromSlice(tickets),
		details: details,
	}
}

func (b *Booking) Event() entity.Event {
	return b.event
}

func (b *Booking) Contact() entity.Person {
	return b.contact
}

func (b *Booking) Keys() []reactive.Key {
	return b.tickets.Keys()
}

func (b *Booking) AddTicket() reactive.Key {
	return b.tickets.Push(entity.NewTicket(b.event.DefaultTicketType))
}

func (b *Booking) RemoveTicket(key reactive.Key) {
	b.tickets.Remove(key)
}

func (b *Booking) Ticket(key reactive.Key) (entity.Ticket, error) {
	cell, err := b.cell(key)
	if err != nil {
		return entity.Ticket{}, err
	}
	return cell.Get(), nil
}

// SetTicketType switches the ticket to another type of the event. Dietary
// choices and the slot are kept.
func (b *Booking) SetTicketType(key reactive.Key, name string) error {
	cell, err := b.cell(key)
	if err != nil {
		return err
	}
	ticketType, ok := b.event.TicketType(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTicketType, name)
	}

	cell.Update(func(t entity.Ticket) entity.Ticket {
		t.TicketType = ticketType
		return t
	})
	return nil
}

func (b *Booking) SetDietary(key reactive.Key, vegetarian, glutenFree bool, requirements string) error {
	cell, err := b.cell(key)
	if err != nil {
		return err
	}

	cell.Update(func(t entity.Ticket) entity.Ticket {
		t.Vegetarian = vegetarian
		t.GlutenFree = glutenFree
		t.DietaryRequirements = requirements
		return t
	})
	return nil
}

func (b *Booking) SlotState(key reactive.Key, slotName string) slots.State {
	return slots.ForTicket(b.snapshot(), slotName, b.tickets, &key)
}

// Availability lists every slot of the event as seen by the ticket.
func (b *Booking) Availability(key reactive.Key) []slots.Option {
	return slots.Options(b.snapshot(), b.tickets, &key)
}

// AssignSlot places the ticket in the slot if the slot can take it. The
// check and the assignment happen under one lock, so concurrent assignments
// cannot overfill a slot between them.
func (b *Booking) AssignSlot(key reactive.Key, slotName string) error {
	cell, err := b.cell(key)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	state := slots.ForTicket(b.details, slotName, b.tickets, &key)
	if !state.CanTake() {
		return fmt.Errorf("%w: %s %s", ErrSlotUnavailable, slotName, state.Description())
	}

	cell.Update(func(t entity.Ticket) entity.Ticket {
		t.SlotName = &slotName
		return t
	})
	return nil
}

func (b *Booking) ClearSlot(key reactive.Key) error {
	cell, err := b.cell(key)
	if err != nil {
		return err
	}

	cell.Update(func(t entity.Ticket) entity.Ticket {
		t.SlotName = nil
		return t
	})
	return nil
}

// RefreshSlots replaces the slot details snapshot, e.g. after other bookings
// were made while this one was being composed.
func (b *Booking) RefreshSlots(details []entity.SlotDetail) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.details = details
}

// Tickets returns the tickets in the order they were added.
func (b *Booking) Tickets() []entity.Ticket {
	return b.tickets.Values()
}

func (b *Booking) Total() decimal.Decimal {
	return entity.Booking{Tickets: b.Tickets()}.TotalTicketValue()
}

// Unplaced returns the keys of tickets without a slot when the event has slots.
func (b *Booking) Unplaced() []reactive.Key {
	if len(b.event.Slots.List) == 0 {
		return nil
	}

	var keys []reactive.Key
	for key, cell := range b.tickets.All() {
		if cell.Get().SlotName == nil {
			keys = append(keys, key)
		}
	}
	return keys
}

func (b *Booking) snapshot() []entity.SlotDetail {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.details
}

func (b *Booking) cell(key reactive.Key) (*reactive.Cell[entity.Ticket], error) {
	cell, ok := b.tickets.Get(key)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTicket, key)
	}
	return cell, nil
}
