package http

import (
	"context"
	"errors"
	"net/http"

	echoHTTP "github.com/ThreeDotsLabs/go-event-driven/common/http"
	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/ThreeDotsLabs/watermill/components/cqrs"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"

	"happenings/draft"
	"happenings/entity"
	"happenings/tracing"
)

type EventsRepository interface {
	Store(ctx context.Context, event entity.Event) error
	Get(ctx context.Context, id entity.EventID) (entity.Event, error)
	List(ctx context.Context) ([]entity.Event, error)
	SlotDetails(ctx context.Context, id entity.EventID) ([]entity.SlotDetail, error)
}

type PeopleRepository interface {
	Store(ctx context.Context, person entity.Person) error
	Get(ctx context.Context, id entity.PersonID) (entity.Person, error)
}

type BookingsService interface {
	Draft(ctx context.Context, eventID entity.EventID, contact entity.Person, tickets []entity.Ticket) (*draft.Booking, error)
	Create(ctx context.Context, eventID entity.EventID, contactID entity.PersonID, tickets []entity.Ticket) (entity.Booking, error)
	CreatePaymentLink(ctx context.Context, id entity.BookingID, redirectTo string) (string, error)
	CheckPayment(ctx context.Context, id entity.BookingID) (entity.Booking, error)
	Get(ctx context.Context, id entity.BookingID) (entity.Booking, error)
	ListForEvent(ctx context.Context, eventID entity.EventID) ([]entity.Booking, error)
}

type SessionStore interface {
	Create(ctx context.Context, personID entity.PersonID) (string, error)
	Person(ctx context.Context, token string) (entity.PersonID, error)
}

type Server struct {
	addr       string
	e          *echo.Echo
	commandBus *cqrs.CommandBus
	eventsRepo EventsRepository
	peopleRepo PeopleRepository
	bookings   BookingsService
	sessions   SessionStore
}

func NewServer(
	addr string,
	commandBus *cqrs.CommandBus,
	eventsRepo EventsRepository,
	peopleRepo PeopleRepository,
	bookings BookingsService,
	sessions SessionStore,
) *Server {
	e := echoHTTP.NewEcho()
	e.Use(otelecho.Middleware(tracing.ServiceName))

	server := &Server{
		addr:       addr,
		e:          e,
		commandBus: commandBus,
		eventsRepo: eventsRepo,
		peopleRepo: peopleRepo,
		bookings:   bookings,
		sessions:   sessions,
	}
	e.HTTPErrorHandler = server.handleError

	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	e.POST("/events", server.PostEvent)
	e.GET("/events", server.GetEvents)
	e.GET("/events/:id", server.GetEvent)
	e.GET("/events/:id/slots", server.GetEventSlots)
	e.POST("/events/:id/availability", server.PostAvailability)
	e.POST("/events/:id/bookings", server.PostBooking, server.requirePerson)
	e.GET("/events/:id/bookings", server.GetEventBookings)

	e.GET("/bookings/:id", server.GetBooking)
	e.POST("/bookings/:id/payment-link", server.PostPaymentLink)
	e.POST("/bookings/:id/check-payment", server.PostCheckPayment)

	e.POST("/people", server.PostPerson)
	e.GET("/people/me", server.GetCurrentPerson, server.requirePerson)
	e.GET("/people/:id", server.GetPerson)

	e.POST("/payments/webhook", server.PostPaymentWebhook)

	return server
}

// ServeHTTP makes the server usable with httptest.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.e.ServeHTTP(w, r)
}

func (s *Server) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		err := s.e.Shutdown(context.Background())
		if err != nil {
			log.FromContext(ctx).WithError(err).Error("failed to shutdown HTTP server")
		}
	}()

	log.FromContext(ctx).WithField("addr", s.addr).Info("[HTTP] server listening")
	if err := s.e.Start(s.addr); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
