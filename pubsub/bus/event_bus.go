package bus

import (
	"fmt"

	"github.com/ThreeDotsLabs/watermill/components/cqrs"
	"github.com/ThreeDotsLabs/watermill/message"

	"happenings/entity"
)

const (
	EventsTopic         = "events"
	internalTopicPrefix = "internal-events.svc-happenings."
)

var Marshaler = cqrs.JSONMarshaler{
	GenerateName: cqrs.StructName,
}

// EventTopic is the per event topic the events splitter republishes to.
func EventTopic(eventName string) string {
	return "events." + eventName
}

func NewEventBus(pub message.Publisher) (*cqrs.EventBus, error) {
	return cqrs.NewEventBusWithConfig(pub, cqrs.EventBusConfig{
		GeneratePublishTopic: func(params cqrs.GenerateEventPublishTopicParams) (string, error) {
			event, ok := params.Event.(entity.DomainEvent)
			if !ok {
				return "", fmt.Errorf("invalid event type: %T doesn't implement entity.DomainEvent", params.Event)
			}

			if event.IsInternal() {
				return InternalEventTopic(params.EventName), nil
			}
			// stored in the data lake, then split to EventTopic
			return EventsTopic, nil
		},
		Marshaler: Marshaler,
	})
}

func InternalEventTopic(eventName string) string {
	return internalTopicPrefix + eventName
}
