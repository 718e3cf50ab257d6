package entity

import (
	"time"
)

type Event struct {
	ID                    EventID      `json:"id"`
	Name                  string       `json:"name"`
	Tagline               string       `json:"tagline"`
	DefaultTicketType     TicketType   `json:"default_ticket_type"`
	AdditionalTicketTypes []TicketType `json:"additional_ticket_types"`
	Slots                 Slots        `json:"slots"`
	Start                 time.Time    `json:"start"`
	End                   time.Time    `json:"end"`
}

func (Event) Table() string { return "events" }

// TicketTypes returns the default ticket type followed by the additional ones.
func (e Event) TicketTypes() []TicketType {
	all := make([]TicketType, 0, len(e.AdditionalTicketTypes)+1)
	all = append(all, e.DefaultTicketType)
	return append(all, e.AdditionalTicketTypes...)
}

func (e Event) TicketType(name string) (TicketType, bool) {
	for _, tt := range e.TicketTypes() {
		if tt.Name == name {
			return tt, true
		}
	}
	return TicketType{}, false
}

type Slots struct {
	Description *string `json:"description,omitempty"`
	List        []Slot  `json:"list"`
}

// Slot is a named bucket tickets can be placed in. A nil Capacity means the
// slot is unlimited.
type Slot struct {
	Name     string `json:"name"`
	Capacity *int64 `json:"capacity,omitempty"`
}

// SlotDetail is computed when read: Sold counts tickets of bookings in
// GoodStatuses assigned to the slot.
type SlotDetail struct {
	Name     string `json:"name" db:"name"`
	Capacity *int64 `json:"capacity" db:"capacity"`
	Sold     int64  `json:"sold" db:"sold"`
}

// DataLakeEvent is a published domain event as stored in the events table.
type DataLakeEvent struct {
	ID          string    `db:"event_id"`
	PublishedAt time.Time `db:"published_at"`
	Name        string    `db:"event_name"`
	Payload     []byte    `db:"event_payload"`
}
