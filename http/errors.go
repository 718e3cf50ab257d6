package http

import (
	"errors"
	"net/http"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/labstack/echo/v4"

	"happenings/draft"
	"happenings/entity"
)

// errorResponse carries a message meant for people and the full error chain
// for whoever needs more.
type errorResponse struct {
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status, message := statusOf(err)

	logger := log.FromContext(c.Request().Context()).WithError(err).WithField("status", status)
	if status >= http.StatusInternalServerError {
		logger.Error("Request failed")
	} else {
		logger.Warn("Request refused")
	}

	response := errorResponse{Message: message}
	var httpErr *echo.HTTPError
	if !errors.As(err, &httpErr) {
		response.Details = err.Error()
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, response)
	}
	if err != nil {
		logger.WithError(err).Error("Could not write error response")
	}
}

func statusOf(err error) (int, string) {
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		if message, ok := httpErr.Message.(string); ok {
			return httpErr.Code, message
		}
		return httpErr.Code, http.StatusText(httpErr.Code)
	}

	var providerErr entity.PaymentProviderError
	switch {
	case errors.Is(err, entity.ErrNotFound):
		return http.StatusNotFound, "Not found."
	case errors.Is(err, entity.ErrNoCurrentPerson):
		return http.StatusUnauthorized, "Please log in."
	case errors.Is(err, entity.ErrInvalidBooking),
		errors.Is(err, draft.ErrUnknownTicket),
		errors.Is(err, draft.ErrUnknownTicketType):
		return http.StatusBadRequest, "The booking is not valid."
	case errors.Is(err, draft.ErrSlotUnavailable),
		errors.Is(err, entity.ErrSlotCapacityExceeded):
		return http.StatusConflict, "Not enough places left in the slot."
	case errors.Is(err, entity.ErrNoPaymentOrder):
		return http.StatusConflict, "The booking has no payment yet."
	case errors.As(err, &providerErr):
		return http.StatusBadGateway, "The payment provider could not be reached."
	default:
		return http.StatusInternalServerError, "Something went wrong."
	}
}
