package app_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lithammer/shortuuid/v3"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tracesdk "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/goleak"

	"happenings/app"
	"happenings/db"
	"happenings/entity"
	"happenings/gateway"
	"happenings/pubsub"
)

const (
	httpAddress = "localhost:8091"
	baseURL     = "http://" + httpAddress
)

func TestComponent(t *testing.T) {
	defer goleak.VerifyNone(t,
		goleak.IgnoreCurrent(),
		goleak.IgnoreTopFunction("github.com/testcontainers/testcontainers-go.(*Reaper).Connect.func1"),
	)

	defer http.DefaultClient.CloseIdleConnections()

	ctx, cancel := context.WithCancel(context.Background())

	dbconn, err := db.Open(postgresURL)
	require.NoError(t, err)
	defer dbconn.Close()

	redisClient := pubsub.NewRedisClient(redisAddr)
	defer redisClient.Close()

	square := &gateway.SquareMock{}

	a, err := app.New(
		app.Options{HTTPAddr: httpAddress, SessionTTL: time.Hour},
		dbconn,
		redisClient,
		square,
		tracesdk.NewTracerProvider(),
	)
	require.NoError(t, err)

	finished := make(chan struct{})
	go func() {
		defer close(finished)
		assert.NoError(t, a.Run(ctx))
	}()
	defer func() {
		cancel()
		<-finished
	}()

	waitForHttpServer(t)

	capacity := int64(4)
	var event entity.Event
	send(t, http.MethodPost, "/events", "", entity.Event{
		ID:   entity.EventID("harvest-" + shortuuid.New()),
		Name: "Harvest supper",
		DefaultTicketType: entity.TicketType{
			Name:            "Standard",
			Price:           decimal.RequireFromString("25.00"),
			CatalogObjectID: "standard-item",
			CatalogVersion:  1,
		},
		Slots: entity.Slots{List: []entity.Slot{
			{Name: "early", Capacity: &capacity},
			{Name: "late"},
		}},
	}, http.StatusCreated, &event)

	var login struct {
		Person entity.Person `json:"person"`
		Token  string        `json:"token"`
	}
	send(t, http.MethodPost, "/people", "", entity.Person{
		GivenName:  "Ada",
		FamilyName: "Lovelace",
		Email:      "ada@example.com",
		Phone:      lo.ToPtr("07700 900123"),
	}, http.StatusCreated, &login)

	var booking entity.Booking
	send(t, http.MethodPost, "/events/"+event.ID.String()+"/bookings", login.Token, map[string]any{
		"tickets": []entity.Ticket{
			{TicketType: entity.TicketType{Name: "Standard"}, SlotName: lo.ToPtr("early")},
			{TicketType: entity.TicketType{Name: "Standard"}, SlotName: lo.ToPtr("early")},
		},
	}, http.StatusCreated, &booking)
	assert.Equal(t, entity.StatusDraft, booking.Status)

	assertSold(t, event.ID, "early", 0)

	var link struct {
		URL string `json:"url"`
	}
	send(t, http.MethodPost, "/bookings/"+booking.ID.String()+"/payment-link", "", map[string]string{
		"redirect_to": "https://happenings.example/done",
	}, http.StatusOK, &link)
	assert.Contains(t, link.URL, "https://checkout.square.site/")

	send(t, http.MethodGet, "/bookings/"+booking.ID.String(), "", nil, http.StatusOK, &booking)
	require.NotNil(t, booking.PaymentOrderID)

	square.Pay(*booking.PaymentOrderID, 5000)

	send(t, http.MethodPost, "/payments/webhook", "", map[string]any{
		"type":     "payment.updated",
		"event_id": shortuuid.New(),
		"data": map[string]any{
			"object": map[string]any{
				"payment": map[string]any{"order_id": *booking.PaymentOrderID},
			},
		},
	}, http.StatusAccepted, nil)

	assert.EventuallyWithT(t, func(t *assert.CollectT) {
		var checked entity.Booking
		sendCollect(t, http.MethodGet, "/bookings/"+booking.ID.String(), &checked)
		assert.Equal(t, entity.StatusPaid, checked.Status)
	}, 10*time.Second, 100*time.Millisecond)

	assertSold(t, event.ID, "early", 2)
	assertEventsInDataLake(t, dbconn, booking.ID)
}

func assertSold(t *testing.T, eventID entity.EventID, slot string, sold int64) {
	t.Helper()

	var details []entity.SlotDetail
	send(t, http.MethodGet, "/events/"+eventID.String()+"/slots", "", nil, http.StatusOK, &details)

	detail, ok := lo.Find(details, func(d entity.SlotDetail) bool { return d.Name == slot })
	require.True(t, ok, "slot %s not found", slot)
	assert.Equal(t, sold, detail.Sold)
}

func assertEventsInDataLake(t *testing.T, dbconn *sqlx.DB, bookingID entity.BookingID) {
	dataLake := db.NewDataLake(dbconn)

	assert.EventuallyWithT(t, func(t *assert.CollectT) {
		events, err := dataLake.GetEvents(context.Background())
		if !assert.NoError(t, err) {
			return
		}

		names := map[string]bool{}
		for _, e := range events {
			if bytes.Contains(e.Payload, []byte(bookingID.String())) {
				names[e.Name] = true
			}
		}

		assert.True(t, names["BookingCreated_v1"], "BookingCreated_v1 not stored")
		assert.True(t, names["PaymentLinkCreated_v1"], "PaymentLinkCreated_v1 not stored")
		assert.True(t, names["BookingPaymentChecked_v1"], "BookingPaymentChecked_v1 not stored")
	}, 10*time.Second, 100*time.Millisecond)
}

func send(t *testing.T, method, path, token string, body any, status int, out any) {
	t.Helper()

	var payload io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		payload = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, baseURL+path, payload)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Correlation-ID", shortuuid.New())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, status, resp.StatusCode, string(respBody))

	if out != nil {
		require.NoError(t, json.Unmarshal(respBody, out))
	}
}

func sendCollect(t *assert.CollectT, method, path string, out any) {
	req, err := http.NewRequest(method, baseURL+path, nil)
	if !assert.NoError(t, err) {
		return
	}

	resp, err := http.DefaultClient.Do(req)
	if !assert.NoError(t, err) {
		return
	}
	defer resp.Body.Close()

	assert.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func waitForHttpServer(t *testing.T) {
	t.Helper()

	require.EventuallyWithT(
		t,
		func(t *assert.CollectT) {
			resp, err := http.Get(baseURL + "/health")
			if !assert.NoError(t, err) {
				return
			}
			defer resp.Body.Close()

			assert.Less(t, resp.StatusCode, 300, "API not ready, http status: %d", resp.StatusCode)
		},
		time.Second*10,
		time.Millisecond*50,
	)
}
