package gateway

import (
	"context"
	"fmt"
	"sync"

	"github.com/lithammer/shortuuid/v3"

	"happenings/entity"
)

// SquareMock keeps payment links and orders in memory.
type SquareMock struct {
	mock sync.Mutex

	PaymentLinks []CreatePaymentLinkRequest
	Orders       map[string]Order

	// Fail makes every call return it when set.
	Fail *entity.PaymentProviderError
}

func (c *SquareMock) LocationID() string {
	return "mock-location"
}

func (c *SquareMock) CreatePaymentLink(ctx context.Context, request CreatePaymentLinkRequest) (PaymentLink, error) {
	c.mock.Lock()
	defer c.mock.Unlock()

	if c.Fail != nil {
		return PaymentLink{}, *c.Fail
	}
	if c.Orders == nil {
		c.Orders = make(map[string]Order)
	}

	c.PaymentLinks = append(c.PaymentLinks, request)

	orderID := "order-" + shortuuid.New()
	c.Orders[orderID] = Order{
		ID:         orderID,
		LocationID: request.Order.LocationID,
		State:      "OPEN",
	}

	return PaymentLink{
		ID:          shortuuid.New(),
		Description: request.Description,
		OrderID:     orderID,
		URL:         "https://square.link/u/" + orderID,
		LongURL:     "https://checkout.square.site/merchant/" + orderID,
	}, nil
}

func (c *SquareMock) RetrieveOrder(ctx context.Context, orderID string) (Order, error) {
	c.mock.Lock()
	defer c.mock.Unlock()

	if c.Fail != nil {
		return Order{}, *c.Fail
	}

	order, ok := c.Orders[orderID]
	if !ok {
		return Order{}, entity.PaymentProviderError{
			StatusCode: 404,
			Body:       fmt.Sprintf(`{"errors":[{"code":"NOT_FOUND","detail":"order %s"}]}`, orderID),
		}
	}

	return order, nil
}

// Pay records a card tender of amount minor units on the order.
func (c *SquareMock) Pay(orderID string, amount int64) {
	c.mock.Lock()
	defer c.mock.Unlock()

	if c.Orders == nil {
		c.Orders = make(map[string]Order)
	}

	order := c.Orders[orderID]
	order.ID = orderID
	order.Tenders = append(order.Tenders, Tender{
		ID:          shortuuid.New(),
		Type:        "CARD",
		AmountMoney: Money{Amount: amount, Currency: "GBP"},
		PaymentID:   "payment-" + shortuuid.New(),
	})
	c.Orders[orderID] = order
}

func (c *SquareMock) LastPaymentLink() (CreatePaymentLinkRequest, bool) {
	c.mock.Lock()
	defer c.mock.Unlock()

	if len(c.PaymentLinks) == 0 {
		return CreatePaymentLinkRequest{}, false
	}
	return c.PaymentLinks[len(c.PaymentLinks)-1], true
}
