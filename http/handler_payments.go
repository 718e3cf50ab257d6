package http

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"happenings/entity"
)

// squareWebhook is the part of a payment provider notification we care about.
type squareWebhook struct {
	Type    string `json:"type"`
	EventID string `json:"event_id"`
	Data    struct {
		Object struct {
			Payment struct {
				OrderID string `json:"order_id"`
			} `json:"payment"`
		} `json:"object"`
	} `json:"data"`
}

// PostPaymentWebhook queues a payment check for the order the notification
// is about. The check itself runs asynchronously.
func (s *Server) PostPaymentWebhook(c echo.Context) error {
	var webhook squareWebhook
	if err := c.Bind(&webhook); err != nil {
		return err
	}

	orderID := webhook.Data.Object.Payment.OrderID
	if orderID == "" {
		// not about a payment, nothing to do
		return c.NoContent(http.StatusNoContent)
	}

	header := entity.NewEventHeader()
	if webhook.EventID != "" {
		header = entity.NewEventHeaderWithIdempotencyKey(webhook.EventID)
	}

	err := s.commandBus.Send(c.Request().Context(), &entity.CheckPayment_v1{
		Header:         header,
		PaymentOrderID: orderID,
	})
	if err != nil {
		return fmt.Errorf("failed to send CheckPayment command: %w", err)
	}

	return c.NoContent(http.StatusAccepted)
}
