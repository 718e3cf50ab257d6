// Package slots decides whether a ticket of a booking being composed can be
// placed in a capacity limited slot.
package slots

import (
	"fmt"

	"happenings/entity"
	"happenings/reactive"
)

type Kind int

const (
	// InSlot means the ticket under consideration already holds a place in the slot.
	InSlot Kind = iota + 1
	SomeLeft
	Unlimited
	NoneLeft
	NotFound
)

func (k Kind) String() string {
	switch k {
	case InSlot:
		return "in_slot"
	case SomeLeft:
		return "some_left"
	case Unlimited:
		return "unlimited"
	case NoneLeft:
		return "none_left"
	case NotFound:
		return "not_found"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// State is the state of one slot with respect to one ticket. Available and
// Buying are only meaningful for InSlot, SomeLeft and NoneLeft (which only
// carries Buying). Slot is set for NotFound.
type State struct {
	Kind      Kind   `json:"kind"`
	Available int64  `json:"available"`
	Buying    int64  `json:"buying"`
	Slot      string `json:"slot,omitempty"`
}

func (s State) IsInSlot() bool {
	return s.Kind == InSlot
}

// CanTake reports whether the ticket may be (or stay) placed in the slot.
func (s State) CanTake() bool {
	switch s.Kind {
	case InSlot, Unlimited:
		return true
	case SomeLeft:
		return s.Buying <= s.Available
	default:
		return false
	}
}

func (s State) Description() string {
	switch s.Kind {
	case InSlot:
		if s.Available <= 0 {
			return "No more available."
		}
		return fmt.Sprintf("%d more available.", s.Available)
	case SomeLeft:
		return fmt.Sprintf("%d available.", s.Available)
	case Unlimited:
		return ""
	case NoneLeft:
		if s.Buying == 0 {
			return "Sold out."
		}
		return "No more available."
	case NotFound:
		return fmt.Sprintf("Error! slot %s not found.", s.Slot)
	default:
		return ""
	}
}

// ForTicket evaluates slotName against the slot details snapshot and the
// tickets of the draft booking. ticket is the key of the ticket the question
// is asked for, or nil when no particular ticket is considered.
//
// The tickets are scanned in full on every call; a booking holds a handful
// of tickets. ForTicket has no side effects.
func ForTicket(
	details []entity.SlotDetail,
	slotName string,
	tickets *reactive.List[entity.Ticket],
	ticket *reactive.Key,
) State {
	detail, ok := find(details, slotName)
	if !ok {
		return State{Kind: NotFound, Slot: slotName}
	}
	if detail.Capacity == nil {
		return State{Kind: Unlimited}
	}

	var buying int64
	alreadyThere := false
	for key, cell := range tickets.All() {
		if !cell.Get().InSlot(slotName) {
			continue
		}
		buying++
		if ticket != nil && *ticket == key {
			alreadyThere = true
		}
	}

	available := *detail.Capacity - detail.Sold - buying

	switch {
	case alreadyThere:
		return State{Kind: InSlot, Available: available, Buying: buying}
	case available > 0:
		return State{Kind: SomeLeft, Available: available, Buying: buying}
	default:
		return State{Kind: NoneLeft, Buying: buying}
	}
}

func find(details []entity.SlotDetail, name string) (entity.SlotDetail, bool) {
	for _, d := range details {
		if d.Name == name {
			return d, true
		}
	}
	return entity.SlotDetail{}, false
}

// Option is one row of a slot picker.
type Option struct {
	Name  string `json:"name"`
	State State  `json:"state"`
	Label string `json:"label"`
}

// Options evaluates every slot of the snapshot for ticket, in snapshot order.
func Options(
	details []entity.SlotDetail,
	tickets *reactive.List[entity.Ticket],
	ticket *reactive.Key,
) []Option {
	options := make([]Option, 0, len(details))
	for _, d := range details {
		state := ForTicket(details, d.Name, tickets, ticket)
		options = append(options, Option{
			Name:  d.Name,
			State: state,
			Label: fmt.Sprintf("%s - %s", d.Name, state.Description()),
		})
	}
	return options
}
