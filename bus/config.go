package bus

import (
	"time"

	"github.com/IBM/sarama"
	"github.com/code19m/errx"
	"github.com/rcrowley/go-metrics"
)

// KafkaConfig holds configuration for the Kafka backed message bus.
type KafkaConfig struct {
	Brokers      string `yaml:"brokers"       validate:"required"`
	Topic        string `yaml:"topic"         validate:"required"`
	SaslUsername string `yaml:"sasl_username"`
	SaslPassword string `yaml:"sasl_password"                     mask:"true"`

	// If not set defaults to the service name.
	ClientID string `yaml:"client_id"`

	KafkaVersion string `yaml:"kafka_version" default:"3.6.0"`

	PublishAttempts uint          `yaml:"publish_attempts" default:"3"`
	PublishDelay    time.Duration `yaml:"publish_delay"    default:"100ms"`
}

func (c *KafkaConfig) getSaramaConfig(serviceName string) (*sarama.Config, error) {
	if c.ClientID == "" {
		c.ClientID = serviceName
	}
	saramaCfg := sarama.NewConfig()
	saramaCfg.ClientID = c.ClientID
	saramaCfg.MetricRegistry = metrics.NewRegistry()

	version, err := sarama.ParseKafkaVersion(c.KafkaVersion)
	if err != nil {
		return nil, errx.Wrap(err)
	}
	saramaCfg.Version = version

	// Currently support only SASL_PLAINTEXT authentication.
	if c.SaslUsername != "" && c.SaslPassword != "" {
		saramaCfg.Net.SASL.Enable = true
		saramaCfg.Net.SASL.User = c.SaslUsername
		saramaCfg.Net.SASL.Password = c.SaslPassword
		saramaCfg.Net.SASL.Mechanism = sarama.SASLTypePlaintext
	}

	// Sync producer requires both return channels enabled.
	saramaCfg.Producer.Return.Successes = true
	saramaCfg.Producer.Return.Errors = true
	saramaCfg.Producer.RequiredAcks = sarama.WaitForAll

	return saramaCfg, nil
}
