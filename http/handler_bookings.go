package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"happenings/entity"
)

type bookingRequest struct {
	Tickets []entity.Ticket `json:"tickets"`
}

func (s *Server) PostBooking(c echo.Context) error {
	var request bookingRequest
	if err := c.Bind(&request); err != nil {
		return err
	}

	person, err := currentPerson(c)
	if err != nil {
		return err
	}

	booking, err := s.bookings.Create(
		c.Request().Context(),
		entity.EventID(c.Param("id")),
		person.ID,
		request.Tickets,
	)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, booking)
}

func (s *Server) GetEventBookings(c echo.Context) error {
	bookings, err := s.bookings.ListForEvent(c.Request().Context(), entity.EventID(c.Param("id")))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, bookings)
}

func (s *Server) GetBooking(c echo.Context) error {
	booking, err := s.bookings.Get(c.Request().Context(), entity.BookingID(c.Param("id")))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, booking)
}

type paymentLinkRequest struct {
	RedirectTo string `json:"redirect_to"`
}

type paymentLinkResponse struct {
	URL string `json:"url"`
}

func (s *Server) PostPaymentLink(c echo.Context) error {
	var request paymentLinkRequest
	if err := c.Bind(&request); err != nil {
		return err
	}

	url, err := s.bookings.CreatePaymentLink(
		c.Request().Context(),
		entity.BookingID(c.Param("id")),
		request.RedirectTo,
	)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, paymentLinkResponse{URL: url})
}

func (s *Server) PostCheckPayment(c echo.Context) error {
	booking, err := s.bookings.CheckPayment(c.Request().Context(), entity.BookingID(c.Param("id")))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, booking)
}
