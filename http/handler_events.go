package http

import (
	"fmt"
	"net/http"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/labstack/echo/v4"
	"github.com/lithammer/shortuuid/v3"

	"happenings/entity"
	"happenings/metrics"
	"happenings/slots"
)

func (s *Server) PostEvent(c echo.Context) error {
	var event entity.Event
	if err := c.Bind(&event); err != nil {
		return err
	}

	if event.Name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Event name is required.")
	}
	if event.ID.IsZero() {
		event.ID = entity.EventID(shortuuid.New())
	}

	if err := s.eventsRepo.Store(c.Request().Context(), event); err != nil {
		return fmt.Errorf("failed to store event: %w", err)
	}

	return c.JSON(http.StatusCreated, event)
}

func (s *Server) GetEvents(c echo.Context) error {
	events, err := s.eventsRepo.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, events)
}

func (s *Server) GetEvent(c echo.Context) error {
	event, err := s.eventsRepo.Get(c.Request().Context(), entity.EventID(c.Param("id")))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, event)
}

func (s *Server) GetEventSlots(c echo.Context) error {
	details, err := s.eventsRepo.SlotDetails(c.Request().Context(), entity.EventID(c.Param("id")))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, details)
}

type availabilityRequest struct {
	Tickets []entity.Ticket `json:"tickets"`
	// Ticket is the index in Tickets of the ticket being placed.
	Ticket int `json:"ticket"`
	// Slot optionally asks about one slot only.
	Slot *string `json:"slot,omitempty"`
}

type availabilityResponse struct {
	Options []slots.Option `json:"options"`
	State   *slots.State   `json:"state,omitempty"`
}

// PostAvailability evaluates the slots of the event for one ticket of a
// booking being composed. Nothing is stored.
func (s *Server) PostAvailability(c echo.Context) error {
	var request availabilityRequest
	if err := c.Bind(&request); err != nil {
		return err
	}
	if request.Ticket < 0 || request.Ticket >= len(request.Tickets) {
		return echo.NewHTTPError(http.StatusBadRequest, "Ticket index out of range.")
	}

	ctx := c.Request().Context()
	eventID := entity.EventID(c.Param("id"))

	booking, err := s.bookings.Draft(ctx, eventID, entity.Person{}, request.Tickets)
	if err != nil {
		return err
	}
	key := booking.Keys()[request.Ticket]

	response := availabilityResponse{Options: booking.Availability(key)}

	if request.Slot != nil {
		state := booking.SlotState(key, *request.Slot)
		if state.Kind == slots.NotFound {
			metrics.SlotStateNotFound.Inc()
			log.FromContext(ctx).
				WithField("event_id", eventID).
				WithField("slot", *request.Slot).
				Warn("Slot state asked for an unknown slot")
		}
		response.State = &state
	}

	return c.JSON(http.StatusOK, response)
}
