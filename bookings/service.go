// Package bookings creates bookings and reconciles them with what the payment
// provider has taken.
package bookings

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/google/uuid"
	"github.com/iancoleman/strcase"
	"github.com/lithammer/shortuuid/v3"
	"github.com/nyaruka/phonenumbers"
	"github.com/samber/lo"

	"happenings/db"
	"happenings/draft"
	"happenings/entity"
	"happenings/gateway"
)

// phone numbers without a country code are read as UK numbers
const defaultPhoneRegion = "GB"

type Repository interface {
	Create(ctx context.Context, booking db.NewBooking) (entity.Booking, error)
	CreateWithSlotCapacity(ctx context.Context, booking db.NewBooking) (entity.Booking, error)
	Get(ctx context.Context, id entity.BookingID) (entity.Booking, error)
	GetByPaymentOrder(ctx context.Context, orderID string) (entity.Booking, error)
	ListForEvent(ctx context.Context, eventID entity.EventID) ([]entity.Booking, error)
	SetPaymentOrder(ctx context.Context, id entity.BookingID, orderID string) error
	UpdatePayments(
		ctx context.Context,
		id entity.BookingID,
		updateFn func(booking entity.Booking) (entity.Booking, error),
	) (entity.Booking, error)
}

type EventsRepository interface {
	Get(ctx context.Context, id entity.EventID) (entity.Event, error)
	SlotDetails(ctx context.Context, id entity.EventID) ([]entity.SlotDetail, error)
}

type PeopleRepository interface {
	Get(ctx context.Context, id entity.PersonID) (entity.Person, error)
}

type PaymentProvider interface {
	LocationID() string
	CreatePaymentLink(ctx context.Context, request gateway.CreatePaymentLinkRequest) (gateway.PaymentLink, error)
	RetrieveOrder(ctx context.Context, orderID string) (gateway.Order, error)
}

type Service struct {
	repo     Repository
	events   EventsRepository
	people   PeopleRepository
	payments PaymentProvider

	enforceSlotCapacity bool
}

func NewService(
	repo Repository,
	events EventsRepository,
	people PeopleRepository,
	payments PaymentProvider,
	enforceSlotCapacity bool,
) Service {
	if repo == nil {
		panic("missing repo")
	}
	if events == nil {
		panic("missing events")
	}
	if people == nil {
		panic("missing people")
	}
	if payments == nil {
		panic("missing payments")
	}

	return Service{
		repo:                repo,
		events:              events,
		people:              people,
		payments:            payments,
		enforceSlotCapacity: enforceSlotCapacity,
	}
}

// Draft loads what is needed to compose a booking for the event and returns
// a draft holding tickets.
func (s Service) Draft(
	ctx context.Context,
	eventID entity.EventID,
	contact entity.Person,
	tickets []entity.Ticket,
) (*draft.Booking, error) {
	event, err := s.events.Get(ctx, eventID)
	if err != nil {
		return nil, err
	}

	details, err := s.events.SlotDetails(ctx, eventID)
	if err != nil {
		return nil, err
	}

	if tickets == nil {
		return draft.New(event, contact, details), nil
	}
	return draft.FromTickets(event, contact, details, tickets), nil
}

// Create stores a Draft booking of tickets for the event. Ticket types are
// taken from the event by name, so prices always come from the event.
func (s Service) Create(
	ctx context.Context,
	eventID entity.EventID,
	contactID entity.PersonID,
	tickets []entity.Ticket,
) (entity.Booking, error) {
	logger := log.FromContext(ctx).WithField("event_id", eventID)

	event, err := s.events.Get(ctx, eventID)
	if err != nil {
		return entity.Booking{}, err
	}
	if _, err := s.people.Get(ctx, contactID); err != nil {
		return entity.Booking{}, err
	}

	tickets, err = ticketsForEvent(event, tickets)
	if err != nil {
		logger.WithError(err).Warn("Refusing booking")
		return entity.Booking{}, err
	}

	newBooking := db.NewBooking{
		ID:        entity.BookingID(shortuuid.New()),
		EventID:   eventID,
		ContactID: contactID,
		Tickets:   tickets,
	}

	var booking entity.Booking
	if s.enforceSlotCapacity {
		booking, err = s.repo.CreateWithSlotCapacity(ctx, newBooking)
	} else {
		booking, err = s.repo.Create(ctx, newBooking)
	}
	if err != nil {
		logger.WithError(err).Warn("Could not create booking")
		return entity.Booking{}, err
	}

	logger.WithField("booking_id", booking.ID).Info("Booking created")

	return booking, nil
}

func ticketsForEvent(event entity.Event, tickets []entity.Ticket) ([]entity.Ticket, error) {
	if len(tickets) == 0 {
		return nil, fmt.Errorf("%w: no tickets", entity.ErrInvalidBooking)
	}

	slotNames := lo.Map(event.Slots.List, func(s entity.Slot, _ int) string { return s.Name })

	out := make([]entity.Ticket, 0, len(tickets))
	for i, t := range tickets {
		ticketType, ok := event.TicketType(t.TicketType.Name)
		if !ok {
			return nil, fmt.Errorf("%w: ticket %d has unknown type %q", entity.ErrInvalidBooking, i, t.TicketType.Name)
		}
		if t.SlotName != nil && !lo.Contains(slotNames, *t.SlotName) {
			return nil, fmt.Errorf("%w: ticket %d is in unknown slot %q", entity.ErrInvalidBooking, i, *t.SlotName)
		}

		t.TicketType = ticketType
		out = append(out, t)
	}

	return out, nil
}

// CreatePaymentLink asks the payment provider for a checkout page for the
// booking and remembers the order behind it. It returns the checkout URL.
func (s Service) CreatePaymentLink(ctx context.Context, id entity.BookingID, redirectTo string) (string, error) {
	logger := log.FromContext(ctx).WithField("booking_id", id)
	logger.Info("Creating payment link")

	booking, err := s.repo.Get(ctx, id)
	if err != nil {
		return "", err
	}

	contact := booking.Contact
	customerID := strcase.ToSnake(strings.TrimSpace(contact.FullName()))

	link, err := s.payments.CreatePaymentLink(ctx, gateway.CreatePaymentLinkRequest{
		IdempotencyKey: uuid.NewString(),
		Description:    booking.Event.Name,
		Order: gateway.NewOrder{
			LocationID: s.payments.LocationID(),
			CustomerID: &customerID,
			LineItems: lo.Map(booking.Tickets, func(t entity.Ticket, _ int) gateway.NewLineItem {
				return gateway.NewLineItem{
					Quantity:        "1",
					CatalogObjectID: t.TicketType.CatalogObjectID,
					CatalogVersion:  t.TicketType.CatalogVersion,
				}
			}),
		},
		CheckoutOptions: &gateway.CheckoutOptions{
			RedirectURL: redirectTo,
		},
		PrePopulatedData: &gateway.PrePopulatedData{
			BuyerEmail:       &contact.Email,
			BuyerPhoneNumber: e164(contact.Phone),
		},
	})
	if err != nil {
		logger.WithError(err).Warn("Payment link was not created")
		return "", err
	}

	if err := s.repo.SetPaymentOrder(ctx, id, link.OrderID); err != nil {
		return "", err
	}

	return link.LongURL, nil
}

// e164 formats phone for the payment provider. Numbers that cannot be parsed
// are left out.
func e164(phone *string) *string {
	if phone == nil {
		return nil
	}

	number, err := phonenumbers.Parse(*phone, defaultPhoneRegion)
	if err != nil {
		return nil
	}

	formatted := phonenumbers.Format(number, phonenumbers.E164)
	return &formatted
}

// CheckPayment replaces the payments of the booking with the tenders of its
// payment order and derives the status from them. Calling it again without
// new tenders changes nothing.
func (s Service) CheckPayment(ctx context.Context, id entity.BookingID) (entity.Booking, error) {
	logger := log.FromContext(ctx).WithField("booking_id", id)

	booking, err := s.repo.Get(ctx, id)
	if err != nil {
		return entity.Booking{}, err
	}
	if booking.PaymentOrderID == nil {
		return entity.Booking{}, entity.ErrNoPaymentOrder
	}

	order, err := s.payments.RetrieveOrder(ctx, *booking.PaymentOrderID)
	if err != nil {
		logger.WithError(err).Warn("Could not retrieve payment order")
		return entity.Booking{}, err
	}

	payments := lo.Map(order.Tenders, func(t gateway.Tender, _ int) entity.Payment {
		return entity.CardPayment(t.AmountMoney.Decimal(), t.PaymentID)
	})

	return s.repo.UpdatePayments(ctx, id, func(booking entity.Booking) (entity.Booking, error) {
		booking.Payments = payments
		booking.Status = entity.ReconcileStatus(
			booking.Status,
			entity.SumPayments(payments),
			booking.TotalTicketValue(),
		)
		return booking, nil
	})
}

// CheckPaymentForOrder runs CheckPayment for the booking paid with orderID.
func (s Service) CheckPaymentForOrder(ctx context.Context, orderID string) (entity.Booking, error) {
	booking, err := s.repo.GetByPaymentOrder(ctx, orderID)
	if err != nil {
		return entity.Booking{}, err
	}

	return s.CheckPayment(ctx, booking.ID)
}

func (s Service) Get(ctx context.Context, id entity.BookingID) (entity.Booking, error) {
	return s.repo.Get(ctx, id)
}

func (s Service) ListForEvent(ctx context.Context, eventID entity.EventID) ([]entity.Booking, error) {
	if _, err := s.events.Get(ctx, eventID); err != nil {
		return nil, err
	}

	return s.repo.ListForEvent(ctx, eventID)
}

// IsClientError reports whether err was caused by the request rather than by
// the service or its dependencies.
func IsClientError(err error) bool {
	return errors.Is(err, entity.ErrNotFound) ||
		errors.Is(err, entity.ErrInvalidBooking) ||
		errors.Is(err, entity.ErrNoPaymentOrder) ||
		errors.Is(err, entity.ErrSlotCapacityExceeded)
}
