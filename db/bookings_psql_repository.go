package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/jmoiron/sqlx"

	"happenings/entity"
	"happenings/pubsub/bus"
	"happenings/pubsub/outbox"
)

type BookingsPostgresRepository struct {
	db *sqlx.DB
}

func NewBookingsPostgresRepository(db *sqlx.DB) BookingsPostgresRepository {
	if db == nil {
		panic("db is nil")
	}

	return BookingsPostgresRepository{db: db}
}

// NewBooking is what is needed to create a booking.
type NewBooking struct {
	ID        entity.BookingID
	EventID   entity.EventID
	ContactID entity.PersonID
	Tickets   []entity.Ticket
}

type bookingRow struct {
	BookingID      string  `db:"booking_id"`
	Tickets        []byte  `db:"tickets"`
	Status         string  `db:"status"`
	Payments       []byte  `db:"payments"`
	PaymentOrderID *string `db:"payment_order_id"`

	eventRow
	entity.Person
}

func (r bookingRow) toEntity() (entity.Booking, error) {
	event, err := r.eventRow.toEntity()
	if err != nil {
		return entity.Booking{}, err
	}

	booking := entity.Booking{
		ID:             entity.BookingID(r.BookingID),
		Status:         entity.Status(r.Status),
		PaymentOrderID: r.PaymentOrderID,
		Contact:        r.Person,
		Event:          event,
	}
	if err := json.Unmarshal(r.Tickets, &booking.Tickets); err != nil {
		return entity.Booking{}, fmt.Errorf("could not unmarshal tickets: %w", err)
	}
	if err := json.Unmarshal(r.Payments, &booking.Payments); err != nil {
		return entity.Booking{}, fmt.Errorf("could not unmarshal payments: %w", err)
	}

	return booking, nil
}

const selectBookings = `
	SELECT
		b.booking_id, b.tickets, b.status, b.payments, b.payment_order_id,
		e.*,
		p.*
	FROM
		bookings b
		JOIN events e ON e.event_id = b.event_id
		JOIN people p ON p.person_id = b.contact_id
`

// Create stores a Draft booking without looking at slot capacity.
func (r BookingsPostgresRepository) Create(ctx context.Context, booking NewBooking) (entity.Booking, error) {
	err := UpdateInTx(
		ctx,
		r.db,
		sql.LevelReadCommitted,
		func(ctx context.Context, tx *sqlx.Tx) error {
			return r.insert(ctx, tx, booking)
		},
	)
	if err != nil {
		return entity.Booking{}, err
	}

	return r.Get(ctx, booking.ID)
}

// CreateWithSlotCapacity stores a Draft booking only if every slot its
// tickets are placed in can still take them. Drafts count as holding their
// places here, otherwise the booking just written would not be seen by the
// next call. Concurrent calls for the same slots are serialized with
// advisory locks held until the end of the transaction.
func (r BookingsPostgresRepository) CreateWithSlotCapacity(ctx context.Context, booking NewBooking) (entity.Booking, error) {
	requested := ticketsPerSlot(booking.Tickets)

	slotNames := make([]string, 0, len(requested))
	for name := range requested {
		slotNames = append(slotNames, name)
	}
	// same lock order in every transaction
	sort.Strings(slotNames)

	err := UpdateInTx(
		ctx,
		r.db,
		sql.LevelReadCommitted,
		func(ctx context.Context, tx *sqlx.Tx) error {
			for _, name := range slotNames {
				_, err := tx.ExecContext(
					ctx,
					`SELECT pg_advisory_xact_lock(hashtext($1), hashtext($2))`,
					booking.EventID, name,
				)
				if err != nil {
					return fmt.Errorf("could not lock slot %s: %w", name, err)
				}
			}

			details, err := slotDetails(ctx, tx, booking.EventID, entity.HoldingStatuses())
			if err != nil {
				return err
			}

			for _, detail := range details {
				want, ok := requested[detail.Name]
				if !ok || detail.Capacity == nil {
					continue
				}
				if detail.Sold+want > *detail.Capacity {
					return entity.SlotCapacityError{
						Slot:      detail.Name,
						Requested: want,
						Available: *detail.Capacity - detail.Sold,
					}
				}
			}

			return r.insert(ctx, tx, booking)
		},
	)
	if err != nil {
		return entity.Booking{}, err
	}

	return r.Get(ctx, booking.ID)
}

func (r BookingsPostgresRepository) insert(ctx context.Context, tx *sqlx.Tx, booking NewBooking) error {
	tickets := booking.Tickets
	if tickets == nil {
		tickets = []entity.Ticket{}
	}
	ticketsJSON, err := json.Marshal(tickets)
	if err != nil {
		return fmt.Errorf("could not marshal tickets: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO
			bookings (booking_id, event_id, contact_id, tickets, status, payments)
		VALUES
			($1, $2, $3, $4, $5, '[]')
	`, booking.ID, booking.EventID, booking.ContactID, ticketsJSON, entity.StatusDraft)
	if err != nil {
		return fmt.Errorf("could not add booking: %w", err)
	}

	return publishInTx(ctx, tx, entity.BookingCreated_v1{
		Header:    entity.NewEventHeader(),
		BookingID: booking.ID.String(),
		EventID:   booking.EventID.String(),
		ContactID: booking.ContactID.String(),
		Slots:     ticketsPerSlot(tickets),
		Total:     entity.Booking{Tickets: tickets}.TotalTicketValue(),
	})
}

func (r BookingsPostgresRepository) Get(ctx context.Context, id entity.BookingID) (entity.Booking, error) {
	return r.get(ctx, r.db, id, false)
}

func (r BookingsPostgresRepository) get(ctx context.Context, db dbExecutor, id entity.BookingID, forUpdate bool) (entity.Booking, error) {
	query := selectBookings + ` WHERE b.booking_id = $1`
	if forUpdate {
		query += ` FOR UPDATE OF b`
	}

	var row bookingRow
	err := db.GetContext(ctx, &row, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.Booking{}, entity.NewNotFoundError(id)
	}
	if err != nil {
		return entity.Booking{}, fmt.Errorf("could not get booking %s: %w", id, err)
	}

	return row.toEntity()
}

func (r BookingsPostgresRepository) GetByPaymentOrder(ctx context.Context, orderID string) (entity.Booking, error) {
	var row bookingRow
	err := r.db.GetContext(ctx, &row, selectBookings+` WHERE b.payment_order_id = $1`, orderID)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.Booking{}, fmt.Errorf("no booking paid with order %s: %w", orderID, entity.ErrNotFound)
	}
	if err != nil {
		return entity.Booking{}, fmt.Errorf("could not get booking paid with order %s: %w", orderID, err)
	}

	return row.toEntity()
}

// ListForEvent returns the bookings of the event that are no longer drafts,
// oldest first.
func (r BookingsPostgresRepository) ListForEvent(ctx context.Context, eventID entity.EventID) ([]entity.Booking, error) {
	var rows []bookingRow
	err := r.db.SelectContext(
		ctx,
		&rows,
		selectBookings+` WHERE b.event_id = $1 AND b.status <> $2 ORDER BY b.created_at, b.booking_id`,
		eventID, entity.StatusDraft,
	)
	if err != nil {
		return nil, fmt.Errorf("could not list bookings of event %s: %w", eventID, err)
	}

	bookings := make([]entity.Booking, 0, len(rows))
	for _, row := range rows {
		booking, err := row.toEntity()
		if err != nil {
			return nil, fmt.Errorf("could not read booking %s: %w", row.BookingID, err)
		}
		bookings = append(bookings, booking)
	}

	return bookings, nil
}

func (r BookingsPostgresRepository) SetPaymentOrder(ctx context.Context, id entity.BookingID, orderID string) error {
	return UpdateInTx(
		ctx,
		r.db,
		sql.LevelReadCommitted,
		func(ctx context.Context, tx *sqlx.Tx) error {
			res, err := tx.ExecContext(
				ctx,
				`UPDATE bookings SET payment_order_id = $2 WHERE booking_id = $1`,
				id, orderID,
			)
			if err != nil {
				return fmt.Errorf("could not set payment order of booking %s: %w", id, err)
			}
			if n, err := res.RowsAffected(); err != nil {
				return err
			} else if n == 0 {
				return entity.NewNotFoundError(id)
			}

			return publishInTx(ctx, tx, entity.PaymentLinkCreated_v1{
				Header:         entity.NewEventHeader(),
				BookingID:      id.String(),
				PaymentOrderID: orderID,
			})
		},
	)
}

// UpdatePayments locks the booking, lets updateFn change it and stores the
// payments and status it returns. Other fields returned by updateFn are
// ignored.
func (r BookingsPostgresRepository) UpdatePayments(
	ctx context.Context,
	id entity.BookingID,
	updateFn func(booking entity.Booking) (entity.Booking, error),
) (entity.Booking, error) {
	err := UpdateInTx(
		ctx,
		r.db,
		sql.LevelReadCommitted,
		func(ctx context.Context, tx *sqlx.Tx) error {
			current, err := r.get(ctx, tx, id, true)
			if err != nil {
				return err
			}

			updated, err := updateFn(current)
			if err != nil {
				return err
			}
			if !updated.Status.Valid() {
				return fmt.Errorf("%w: status %q", entity.ErrInvalidBooking, updated.Status)
			}

			payments := updated.Payments
			if payments == nil {
				payments = []entity.Payment{}
			}
			paymentsJSON, err := json.Marshal(payments)
			if err != nil {
				return fmt.Errorf("could not marshal payments: %w", err)
			}

			_, err = tx.ExecContext(
				ctx,
				`UPDATE bookings SET payments = $2, status = $3 WHERE booking_id = $1`,
				id, paymentsJSON, updated.Status,
			)
			if err != nil {
				return fmt.Errorf("could not update payments of booking %s: %w", id, err)
			}

			if current.Status != updated.Status {
				log.FromContext(ctx).WithField("booking_id", id).Infof(
					"Booking status changed from %s to %s", current.Status, updated.Status,
				)
			}

			return publishInTx(ctx, tx, entity.BookingPaymentChecked_v1{
				Header:         entity.NewEventHeader(),
				BookingID:      id.String(),
				PreviousStatus: current.Status,
				Status:         updated.Status,
				TotalPaid:      updated.TotalPaid(),
				TotalDue:       current.TotalTicketValue(),
			})
		},
	)
	if err != nil {
		return entity.Booking{}, err
	}

	return r.Get(ctx, id)
}

func publishInTx(ctx context.Context, tx *sqlx.Tx, event entity.DomainEvent) error {
	outboxPublisher, err := outbox.NewPublisherForDb(ctx, tx)
	if err != nil {
		return err
	}

	eventBus, err := bus.NewEventBus(outboxPublisher)
	if err != nil {
		return fmt.Errorf("could not create event bus: %w", err)
	}

	if err := eventBus.Publish(ctx, event); err != nil {
		return fmt.Errorf("could not publish event: %w", err)
	}

	return nil
}

func ticketsPerSlot(tickets []entity.Ticket) map[string]int64 {
	perSlot := make(map[string]int64)
	for _, t := range tickets {
		if t.SlotName != nil {
			perSlot[*t.SlotName]++
		}
	}
	return perSlot
}
