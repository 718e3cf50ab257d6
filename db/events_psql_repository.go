package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/samber/lo"

	"happenings/entity"
)

type EventsPostgresRepository struct {
	db *sqlx.DB
}

func NewEventsPostgresRepository(db *sqlx.DB) EventsPostgresRepository {
	if db == nil {
		panic("db is nil")
	}

	return EventsPostgresRepository{db: db}
}

type eventRow struct {
	EventID               string    `db:"event_id"`
	Name                  string    `db:"name"`
	Tagline               string    `db:"tagline"`
	DefaultTicketType     []byte    `db:"default_ticket_type"`
	AdditionalTicketTypes []byte    `db:"additional_ticket_types"`
	Slots                 []byte    `db:"slots"`
	StartsAt              time.Time `db:"starts_at"`
	EndsAt                time.Time `db:"ends_at"`
}

func newEventRow(event entity.Event) (eventRow, error) {
	defaultTicketType, err := json.Marshal(event.DefaultTicketType)
	if err != nil {
		return eventRow{}, err
	}
	additional := event.AdditionalTicketTypes
	if additional == nil {
		additional = []entity.TicketType{}
	}
	additionalTicketTypes, err := json.Marshal(additional)
	if err != nil {
		return eventRow{}, err
	}
	if event.Slots.List == nil {
		event.Slots.List = []entity.Slot{}
	}
	slots, err := json.Marshal(event.Slots)
	if err != nil {
		return eventRow{}, err
	}

	return eventRow{
		EventID:               event.ID.String(),
		Name:                  event.Name,
		Tagline:               event.Tagline,
		DefaultTicketType:     defaultTicketType,
		AdditionalTicketTypes: additionalTicketTypes,
		Slots:                 slots,
		StartsAt:              event.Start,
		EndsAt:                event.End,
	}, nil
}

func (r eventRow) toEntity() (entity.Event, error) {
	event := entity.Event{
		ID:      entity.EventID(r.EventID),
		Name:    r.Name,
		Tagline: r.Tagline,
		Start:   r.StartsAt,
		End:     r.EndsAt,
	}

	if err := json.Unmarshal(r.DefaultTicketType, &event.DefaultTicketType); err != nil {
		return entity.Event{}, fmt.Errorf("could not unmarshal default ticket type: %w", err)
	}
	if err := json.Unmarshal(r.AdditionalTicketTypes, &event.AdditionalTicketTypes); err != nil {
		return entity.Event{}, fmt.Errorf("could not unmarshal additional ticket types: %w", err)
	}
	if err := json.Unmarshal(r.Slots, &event.Slots); err != nil {
		return entity.Event{}, fmt.Errorf("could not unmarshal slots: %w", err)
	}

	return event, nil
}

// Store creates the event or replaces it when it already exists.
func (r EventsPostgresRepository) Store(ctx context.Context, event entity.Event) error {
	row, err := newEventRow(event)
	if err != nil {
		return fmt.Errorf("could not marshal event %s: %w", event.ID, err)
	}

	_, err = r.db.NamedExecContext(ctx, `
		INSERT INTO
			events (event_id, name, tagline, default_ticket_type, additional_ticket_types, slots, starts_at, ends_at)
		VALUES
			(:event_id, :name, :tagline, :default_ticket_type, :additional_ticket_types, :slots, :starts_at, :ends_at)
		ON CONFLICT (event_id) DO UPDATE SET
			name = excluded.name,
			tagline = excluded.tagline,
			default_ticket_type = excluded.default_ticket_type,
			additional_ticket_types = excluded.additional_ticket_types,
			slots = excluded.slots,
			starts_at = excluded.starts_at,
			ends_at = excluded.ends_at
	`, row)
	if err != nil {
		return fmt.Errorf("could not store event %s: %w", event.ID, err)
	}

	return nil
}

func (r EventsPostgresRepository) Get(ctx context.Context, id entity.EventID) (entity.Event, error) {
	var row eventRow
	err := r.db.GetContext(ctx, &row, `SELECT * FROM events WHERE event_id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.Event{}, entity.NewNotFoundError(id)
	}
	if err != nil {
		return entity.Event{}, fmt.Errorf("could not get event %s: %w", id, err)
	}

	return row.toEntity()
}

func (r EventsPostgresRepository) List(ctx context.Context) ([]entity.Event, error) {
	var rows []eventRow
	err := r.db.SelectContext(ctx, &rows, `SELECT * FROM events ORDER BY starts_at, event_id`)
	if err != nil {
		return nil, fmt.Errorf("could not list events: %w", err)
	}

	events := make([]entity.Event, 0, len(rows))
	for _, row := range rows {
		event, err := row.toEntity()
		if err != nil {
			return nil, fmt.Errorf("could not read event %s: %w", row.EventID, err)
		}
		events = append(events, event)
	}

	return events, nil
}

// SlotDetails computes, for every slot of the event in list order, how many
// tickets of bookings in a good status are placed in it. Nothing is cached.
func (r EventsPostgresRepository) SlotDetails(ctx context.Context, id entity.EventID) ([]entity.SlotDetail, error) {
	details, err := slotDetails(ctx, r.db, id, entity.GoodStatuses())
	if err != nil {
		return nil, err
	}
	if len(details) > 0 {
		return details, nil
	}

	var exists bool
	err = r.db.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM events WHERE event_id = $1)`, id)
	if err != nil {
		return nil, fmt.Errorf("could not check event %s: %w", id, err)
	}
	if !exists {
		return nil, entity.NewNotFoundError(id)
	}

	return []entity.SlotDetail{}, nil
}

// slotDetails counts the tickets of bookings in one of statuses per slot.
func slotDetails(
	ctx context.Context,
	db dbExecutor,
	id entity.EventID,
	counted []entity.Status,
) ([]entity.SlotDetail, error) {
	statuses := lo.Map(counted, func(s entity.Status, _ int) string {
		return string(s)
	})

	var details []entity.SlotDetail
	err := db.SelectContext(ctx, &details, `
		SELECT
			slot.value ->> 'name' AS name,
			(slot.value ->> 'capacity')::BIGINT AS capacity,
			(
				SELECT
					COUNT(*)
				FROM
					bookings b,
					jsonb_array_elements(b.tickets) AS ticket(value)
				WHERE
					b.event_id = e.event_id
					AND b.status = ANY($2)
					AND ticket.value ->> 'slot_name' = slot.value ->> 'name'
			) AS sold
		FROM
			events e,
			jsonb_array_elements(e.slots -> 'list') WITH ORDINALITY AS slot(value, position)
		WHERE
			e.event_id = $1
		ORDER BY
			slot.position
	`, id, pq.Array(statuses))
	if err != nil {
		return nil, fmt.Errorf("could not get slot details of event %s: %w", id, err)
	}

	return details, nil
}
