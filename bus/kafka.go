package bus

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/IBM/sarama"
	"github.com/avast/retry-go/v4"
	"github.com/code19m/errx"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

// KafkaBus publishes events to a single Kafka topic through a sarama
// sync producer. Events are serialized as JSON and partitioned by the
// event's partition key when it provides one.
type KafkaBus struct {
	cfg          KafkaConfig
	syncProducer sarama.SyncProducer
}

// NewKafkaBus creates a Kafka backed message bus.
func NewKafkaBus(cfg KafkaConfig, serviceName string) (*KafkaBus, error) {
	saramaCfg, err := cfg.getSaramaConfig(serviceName)
	if err != nil {
		return nil, errx.Wrap(err)
	}

	producer, err := sarama.NewSyncProducer(strings.Split(cfg.Brokers, ","), saramaCfg)
	if err != nil {
		return nil, errx.Wrap(err)
	}

	return &KafkaBus{
		cfg:          cfg,
		syncProducer: producer,
	}, nil
}

// PublishEvent serializes the event and sends it to the configured topic.
// Transient failures are retried a bounded number of times; each
// successful call produces exactly one message.
func (b *KafkaBus) PublishEvent(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return errx.Wrap(err, errx.WithDetails(errx.D{
			"event_type": event.EventType(),
		}))
	}

	msg := &sarama.ProducerMessage{
		Topic: b.cfg.Topic,
		Key:   sarama.StringEncoder(partitionKeyOf(event)),
		Value: sarama.ByteEncoder(payload),
		Headers: []sarama.RecordHeader{
			{Key: []byte("event_type"), Value: []byte(event.EventType())},
		},
	}
	injectTracing(ctx, msg)

	err = retry.Do(
		func() error {
			_, _, sendErr := b.syncProducer.SendMessage(msg)
			return sendErr
		},
		retry.Context(ctx),
		retry.Attempts(b.cfg.PublishAttempts),
		retry.Delay(b.cfg.PublishDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return errx.Wrap(err, errx.WithDetails(errx.D{
			"topic":      b.cfg.Topic,
			"event_type": event.EventType(),
		}))
	}

	return nil
}

// Close closes the underlying producer.
func (b *KafkaBus) Close() error {
	return errx.Wrap(b.syncProducer.Close())
}

// injectTracing propagates the OpenTelemetry trace context through
// message headers.
func injectTracing(ctx context.Context, msg *sarama.ProducerMessage) {
	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	for k, v := range carrier {
		msg.Headers = append(msg.Headers, sarama.RecordHeader{
			Key:   []byte(k),
			Value: []byte(v),
		})
	}
}

func partitionKeyOf(event Event) string {
	if keyer, ok := event.(PartitionKeyer); ok && keyer.PartitionKey() != "" {
		return keyer.PartitionKey()
	}
	return uuid.NewString()
}
