package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"happenings/entity"
)

// SquareClient talks to the Square online checkout and orders APIs.
type SquareClient struct {
	endpoint   string
	apiKey     string
	locationID string
	httpClient *http.Client
}

func NewSquareClient(endpoint, apiKey, locationID string, timeout time.Duration) SquareClient {
	return SquareClient{
		endpoint:   strings.TrimSuffix(endpoint, "/"),
		apiKey:     apiKey,
		locationID: locationID,
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   timeout,
		},
	}
}

func (c SquareClient) LocationID() string {
	return c.locationID
}

func (c SquareClient) CreatePaymentLink(ctx context.Context, request CreatePaymentLinkRequest) (PaymentLink, error) {
	var resp createPaymentLinkResponse
	if err := c.do(ctx, http.MethodPost, "online-checkout/payment-links", request, &resp); err != nil {
		return PaymentLink{}, fmt.Errorf("could not create payment link: %w", err)
	}

	return resp.PaymentLink, nil
}

func (c SquareClient) RetrieveOrder(ctx context.Context, orderID string) (Order, error) {
	var resp retrieveOrderResponse
	if err := c.do(ctx, http.MethodGet, "orders/"+url.PathEscape(orderID), nil, &resp); err != nil {
		return Order{}, fmt.Errorf("could not retrieve order %s: %w", orderID, err)
	}

	return resp.Order, nil
}

func (c SquareClient) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint+"/"+path, reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Correlation-ID", log.CorrelationIDFromContext(ctx))

	res, err := c.httpClient.Do(req)
	if err != nil {
		log.FromContext(ctx).WithError(err).Warn("failed to call square api")
		return err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		errorBody, _ := io.ReadAll(res.Body)
		return entity.PaymentProviderError{
			StatusCode: res.StatusCode,
			Body:       string(errorBody),
		}
	}

	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("could not decode response: %w", err)
	}

	return nil
}
