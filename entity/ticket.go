package entity

import "github.com/shopspring/decimal"

type TicketType struct {
	Name            string          `json:"name"`
	Price           decimal.Decimal `json:"price"`
	CatalogObjectID string          `json:"catalog_object_id"`
	CatalogVersion  int64           `json:"catalog_version"`
	Available       *int64          `json:"available,omitempty"`
}

// Equal compares ticket types structurally. Ticket types have no identity
// of their own beyond their name within an event.
func (t TicketType) Equal(other TicketType) bool {
	if t.Name != other.Name ||
		!t.Price.Equal(other.Price) ||
		t.CatalogObjectID != other.CatalogObjectID ||
		t.CatalogVersion != other.CatalogVersion {
		return false
	}
	if t.Available == nil || other.Available == nil {
		return t.Available == nil && other.Available == nil
	}
	return *t.Available == *other.Available
}

type Ticket struct {
	TicketType          TicketType `json:"ticket_type"`
	Vegetarian          bool       `json:"vegetarian"`
	GlutenFree          bool       `json:"gluten_free"`
	DietaryRequirements string     `json:"dietary_requirements"`
	SlotName            *string    `json:"slot_name,omitempty"`
}

func NewTicket(ticketType TicketType) Ticket {
	return Ticket{TicketType: ticketType}
}

// InSlot reports whether the ticket is assigned to the named slot.
func (t Ticket) InSlot(slotName string) bool {
	return t.SlotName != nil && *t.SlotName == slotName
}
