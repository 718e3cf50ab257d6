package event

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/ThreeDotsLabs/watermill/components/cqrs"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/redis/go-redis/v9"

	"happenings/entity"
	"happenings/metrics"
	"happenings/pubsub/bus"
)

type Handler struct{}

func NewHandler() Handler {
	return Handler{}
}

func NewProcessorConfig(redisClient *redis.Client, watermillLogger watermill.LoggerAdapter) cqrs.EventProcessorConfig {
	return cqrs.EventProcessorConfig{
		GenerateSubscribeTopic: func(params cqrs.EventProcessorGenerateSubscribeTopicParams) (string, error) {
			event, ok := params.EventHandler.NewEvent().(entity.DomainEvent)
			if !ok {
				return "", fmt.Errorf("invalid event type: %T doesn't implement entity.DomainEvent", params.EventHandler.NewEvent())
			}
			if event.IsInternal() {
				return bus.InternalEventTopic(params.EventName), nil
			}
			return bus.EventTopic(params.EventName), nil
		},
		SubscriberConstructor: func(params cqrs.EventProcessorSubscriberConstructorParams) (message.Subscriber, error) {
			return redisstream.NewSubscriber(redisstream.SubscriberConfig{
				Client:        redisClient,
				ConsumerGroup: "svc-happenings." + params.HandlerName,
			}, watermillLogger)
		},
		Marshaler: bus.Marshaler,
		Logger:    watermillLogger,
	}
}

func (h Handler) CountBookingCreatedHandler() cqrs.EventHandler {
	return cqrs.NewEventHandler(
		"CountBookingCreated",
		func(ctx context.Context, event *entity.BookingCreated_v1) error {
			log.FromContext(ctx).WithField("booking_id", event.BookingID).Info("Counting created booking")

			metrics.BookingsCreated.Inc()
			for slot, tickets := range event.Slots {
				metrics.SlotTicketsDrafted.WithLabelValues(slot).Add(float64(tickets))
			}

			return nil
		},
	)
}

func (h Handler) CountBookingStatusHandler() cqrs.EventHandler {
	return cqrs.NewEventHandler(
		"CountBookingStatus",
		func(ctx context.Context, event *entity.BookingPaymentChecked_v1) error {
			if event.PreviousStatus != event.Status {
				log.FromContext(ctx).
					WithField("booking_id", event.BookingID).
					Infof("Booking went from %s to %s", event.PreviousStatus, event.Status)
			}

			metrics.BookingsStatus.WithLabelValues(string(event.Status)).Inc()

			return nil
		},
	)
}
