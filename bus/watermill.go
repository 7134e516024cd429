package bus

import (
	"context"
	"encoding/json"
	"strings"

	wkafka "github.com/ThreeDotsLabs/watermill-kafka/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/code19m/errx"
	"github.com/google/uuid"

	"github.com/deeplines/buildingblocks/logger"
)

// WatermillBus adapts any Watermill publisher to the MessageBus port.
// Useful when the hosting process already runs a Watermill router and
// wants outbox events to flow through the same publisher.
type WatermillBus struct {
	topic     string
	publisher message.Publisher
}

// NewWatermillBus wraps an existing Watermill publisher.
func NewWatermillBus(publisher message.Publisher, topic string) *WatermillBus {
	return &WatermillBus{
		topic:     topic,
		publisher: publisher,
	}
}

// NewWatermillKafkaBus builds a Watermill Kafka publisher with a
// partitioning marshaler and wraps it as a MessageBus.
func NewWatermillKafkaBus(cfg KafkaConfig, serviceName string, log logger.Logger) (*WatermillBus, error) {
	saramaCfg := wkafka.DefaultSaramaSyncPublisherConfig()
	saramaCfg.ClientID = serviceName

	marshaler := wkafka.NewWithPartitioningMarshaler(func(topic string, msg *message.Message) (string, error) {
		partitionKey := msg.Metadata.Get("partition_key")
		if partitionKey == "" {
			return "", errx.New("partition key is empty")
		}
		return partitionKey, nil
	})

	publisher, err := wkafka.NewPublisher(
		strings.Split(cfg.Brokers, ","),
		marshaler,
		saramaCfg,
		newLoggerAdapter(log.Named("bus")),
	)
	if err != nil {
		return nil, errx.Wrap(err)
	}

	return NewWatermillBus(publisher, cfg.Topic), nil
}

// PublishEvent serializes the event and publishes it through the
// wrapped publisher.
func (b *WatermillBus) PublishEvent(_ context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return errx.Wrap(err, errx.WithDetails(errx.D{
			"event_type": event.EventType(),
		}))
	}

	msg := message.NewMessage(uuid.NewString(), payload)
	msg.Metadata.Set("event_type", event.EventType())
	msg.Metadata.Set("partition_key", partitionKeyOf(event))

	if err := b.publisher.Publish(b.topic, msg); err != nil {
		return errx.Wrap(err, errx.WithDetails(errx.D{
			"topic":      b.topic,
			"event_type": event.EventType(),
		}))
	}

	return nil
}

// Close closes the wrapped publisher.
func (b *WatermillBus) Close() error {
	return errx.Wrap(b.publisher.Close())
}
