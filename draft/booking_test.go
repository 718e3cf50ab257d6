package draft_test

import (
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"happenings/draft"
	"happenings/entity"
	"happenings/slots"
)

func capacity(n int64) *int64 {
	return &n
}

func testEvent() entity.Event {
	return entity.Event{
		ID:                entity.EventID("supper-club"),
		Name:              "Supper club",
		DefaultTicketType: entity.TicketType{Name: "Standard", Price: decimal.RequireFromString("25.00")},
		AdditionalTicketTypes: []entity.TicketType{
			{Name: "Child", Price: decimal.RequireFromString("12.50")},
		},
		Slots: entity.Slots{List: []entity.Slot{
			{Name: "early", Capacity: capacity(4)},
			{Name: "late", Capacity: capacity(10)},
			{Name: "standing"},
		}},
	}
}

func TestNew_starts_with_one_default_ticket(t *testing.T) {
	b := draft.New(testEvent(), entity.Person{GivenName: "Ada"}, nil)

	tickets := b.Tickets()
	require.Len(t, tickets, 1)
	assert.Equal(t, "Standard", tickets[0].TicketType.Name)
	assert.Nil(t, tickets[0].SlotName)
	assert.Equal(t, "Ada", b.Contact().GivenName)
}

func TestAssignSlot(t *testing.T) {
	details := []entity.SlotDetail{
		{Name: "early", Capacity: capacity(4), Sold: 3},
		{Name: "late", Capacity: capacity(10), Sold: 0},
		{Name: "standing"},
	}
	b := draft.New(testEvent(), entity.Person{}, details)
	first := b.Keys()[0]
	second := b.AddTicket()

	require.NoError(t, b.AssignSlot(first, "early"))

	t.Run("placed ticket can stay", func(t *testing.T) {
		state := b.SlotState(first, "early")

		assert.Equal(t, slots.InSlot, state.Kind)
		assert.Equal(t, int64(0), state.Available)
		assert.NoError(t, b.AssignSlot(first, "early"))
	})

	t.Run("full slot refuses another ticket", func(t *testing.T) {
		err := b.AssignSlot(second, "early")

		assert.ErrorIs(t, err, draft.ErrSlotUnavailable)
		assert.ErrorContains(t, err, "No more available.")

		ticket, err := b.Ticket(second)
		require.NoError(t, err)
		assert.Nil(t, ticket.SlotName)
	})

	t.Run("unknown slot is refused", func(t *testing.T) {
		err := b.AssignSlot(second, "brunch")
		assert.ErrorIs(t, err, draft.ErrSlotUnavailable)
	})

	t.Run("unlimited slot", func(t *testing.T) {
		assert.NoError(t, b.AssignSlot(second, "standing"))
	})

	t.Run("clearing frees the place", func(t *testing.T) {
		require.NoError(t, b.ClearSlot(first))
		require.NoError(t, b.AssignSlot(second, "early"))

		state := b.SlotState(first, "early")
		assert.Equal(t, slots.State{Kind: slots.NoneLeft, Buying: 1}, state)
	})

	t.Run("unknown ticket", func(t *testing.T) {
		other := draft.New(testEvent(), entity.Person{}, details)
		err := b.AssignSlot(other.Keys()[0], "late")
		assert.ErrorIs(t, err, draft.ErrUnknownTicket)
	})
}

func TestAssignSlot_concurrent(t *testing.T) {
	details := []entity.SlotDetail{{Name: "early", Capacity: capacity(1)}}
	b := draft.New(testEvent(), entity.Person{}, details)
	for range 7 {
		b.AddTicket()
	}

	var wg sync.WaitGroup
	errs := make(chan error, len(b.Keys()))
	for _, key := range b.Keys() {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- b.AssignSlot(key, "early")
		}()
	}
	wg.Wait()
	close(errs)

	placed := 0
	for err := range errs {
		if err == nil {
			placed++
			continue
		}
		assert.ErrorIs(t, err, draft.ErrSlotUnavailable)
	}
	assert.Equal(t, 1, placed)

	inSlot := 0
	for _, ticket := range b.Tickets() {
		if ticket.SlotName != nil {
			inSlot++
		}
	}
	assert.Equal(t, 1, inSlot)
}

func TestRemoveTicket_gives_back_its_place(t *testing.T) {
	details := []entity.SlotDetail{{Name: "early", Capacity: capacity(1)}}
	b := draft.New(testEvent(), entity.Person{}, details)
	first := b.Keys()[0]
	second := b.AddTicket()

	require.NoError(t, b.AssignSlot(first, "early"))
	require.ErrorIs(t, b.AssignSlot(second, "early"), draft.ErrSlotUnavailable)

	b.RemoveTicket(first)

	assert.NoError(t, b.AssignSlot(second, "early"))
	assert.Len(t, b.Tickets(), 1)
}

func TestRefreshSlots(t *testing.T) {
	b := draft.New(testEvent(), entity.Person{}, []entity.SlotDetail{{Name: "late", Capacity: capacity(10), Sold: 2}})
	key := b.Keys()[0]

	assert.Equal(t, slots.SomeLeft, b.SlotState(key, "late").Kind)

	b.RefreshSlots([]entity.SlotDetail{{Name: "late", Capacity: capacity(10), Sold: 10}})

	state := b.SlotState(key, "late")
	assert.Equal(t, slots.NoneLeft, state.Kind)
	assert.Equal(t, "Sold out.", state.Description())
}

func TestAvailability(t *testing.T) {
	details := []entity.SlotDetail{
		{Name: "early", Capacity: capacity(4), Sold: 4},
		{Name: "late", Capacity: capacity(10), Sold: 1},
		{Name: "standing"},
	}
	b := draft.New(testEvent(), entity.Person{}, details)

	options := b.Availability(b.Keys()[0])

	require.Len(t, options, 3)
	assert.Equal(t, []string{"early - Sold out.", "late - 9 available.", "standing - "}, []string{
		options[0].Label, options[1].Label, options[2].Label,
	})
}

func TestSetTicketType(t *testing.T) {
	b := draft.New(testEvent(), entity.Person{}, []entity.SlotDetail{{Name: "late", Capacity: capacity(10)}})
	key := b.Keys()[0]
	require.NoError(t, b.AssignSlot(key, "late"))
	require.NoError(t, b.SetDietary(key, true, false, "no nuts"))

	require.NoError(t, b.SetTicketType(key, "Child"))

	ticket, err := b.Ticket(key)
	require.NoError(t, err)
	assert.Equal(t, "Child", ticket.TicketType.Name)
	assert.True(t, ticket.Vegetarian)
	assert.Equal(t, "no nuts", ticket.DietaryRequirements)
	assert.True(t, ticket.InSlot("late"))

	assert.ErrorIs(t, b.SetTicketType(key, "VIP"), draft.ErrUnknownTicketType)
}

func TestTotal(t *testing.T) {
	b := draft.New(testEvent(), entity.Person{}, nil)
	child := b.AddTicket()
	require.NoError(t, b.SetTicketType(child, "Child"))

	assert.True(t, b.Total().Equal(decimal.RequireFromString("37.50")), b.Total().String())
}

func TestUnplaced(t *testing.T) {
	b := draft.New(testEvent(), entity.Person{}, []entity.SlotDetail{{Name: "standing"}})
	first := b.Keys()[0]
	second := b.AddTicket()

	assert.Equal(t, []string{first.String(), second.String()}, keyStrings(b.Unplaced()))

	require.NoError(t, b.AssignSlot(first, "standing"))
	assert.Equal(t, []string{second.String()}, keyStrings(b.Unplaced()))

	noSlots := testEvent()
	noSlots.Slots = entity.Slots{}
	assert.Empty(t, draft.New(noSlots, entity.Person{}, nil).Unplaced())
}

func TestFromTickets(t *testing.T) {
	late := "late"
	event := testEvent()
	tickets := []entity.Ticket{
		{TicketType: event.DefaultTicketType, SlotName: &late},
		{TicketType: event.DefaultTicketType},
	}
	details := []entity.SlotDetail{{Name: "late", Capacity: capacity(3), Sold: 2}}

	b := draft.FromTickets(event, entity.Person{}, details, tickets)
	keys := b.Keys()

	assert.True(t, b.SlotState(keys[0], "late").IsInSlot())
	assert.False(t, b.SlotState(keys[1], "late").CanTake())
}

func keyStrings[K interface{ String() string }](keys []K) []string {
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k.String())
	}
	return out
}
