package command

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/ThreeDotsLabs/watermill/components/cqrs"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/redis/go-redis/v9"

	"happenings/bookings"
	"happenings/entity"
	"happenings/pubsub/bus"
)

type PaymentChecker interface {
	CheckPayment(ctx context.Context, id entity.BookingID) (entity.Booking, error)
	CheckPaymentForOrder(ctx context.Context, orderID string) (entity.Booking, error)
}

type Handler struct {
	payments PaymentChecker
}

func NewHandler(payments PaymentChecker) Handler {
	if payments == nil {
		panic("missing payments")
	}

	return Handler{payments: payments}
}

func NewProcessorConfig(redisClient *redis.Client, watermillLogger watermill.LoggerAdapter) cqrs.CommandProcessorConfig {
	return cqrs.CommandProcessorConfig{
		GenerateSubscribeTopic: func(params cqrs.CommandProcessorGenerateSubscribeTopicParams) (string, error) {
			return bus.CommandTopic(params.CommandName), nil
		},
		SubscriberConstructor: func(params cqrs.CommandProcessorSubscriberConstructorParams) (message.Subscriber, error) {
			return redisstream.NewSubscriber(redisstream.SubscriberConfig{
				Client:        redisClient,
				ConsumerGroup: "svc-happenings.commands." + params.HandlerName,
			}, watermillLogger)
		},
		Marshaler: bus.Marshaler,
		Logger:    watermillLogger,
	}
}

func (h Handler) CheckPaymentHandler() cqrs.CommandHandler {
	return cqrs.NewCommandHandler(
		"CheckPayment",
		func(ctx context.Context, command *entity.CheckPayment_v1) error {
			logger := log.FromContext(ctx).WithField("payment_order_id", command.PaymentOrderID)
			logger.Info("Checking payment")

			var err error
			if command.BookingID != "" {
				_, err = h.payments.CheckPayment(ctx, entity.BookingID(command.BookingID))
			} else {
				_, err = h.payments.CheckPaymentForOrder(ctx, command.PaymentOrderID)
			}

			if bookings.IsClientError(err) {
				// retrying will not help
				logger.WithError(err).Warn("Payment check skipped")
				return nil
			}
			if err != nil {
				return fmt.Errorf("could not check payment: %w", err)
			}

			return nil
		},
	)
}

