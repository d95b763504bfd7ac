// Package kafka publishes vote and election events to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"election-service/internal/events"

	"github.com/IBM/sarama"
)

type Publisher struct {
	producer sarama.SyncProducer
	topic    string
	logger   *slog.Logger
}

// NewConfig is the producer config: acks from all replicas, retried, with
// successes returned so SendMessage can report the offset.
func NewConfig() *sarama.Config {
	config := sarama.NewConfig()
	config.ClientID = "election-service"
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5
	config.Producer.Return.Successes = true
	config.Producer.Partitioner = sarama.NewHashPartitioner
	return config
}

func NewPublisher(brokers []string, topic string, logger *slog.Logger) (*Publisher, error) {
	producer, err := sarama.NewSyncProducer(brokers, NewConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	logger.Info("kafka producer initialized", "brokers", brokers, "topic", topic)
	return NewPublisherWithProducer(producer, topic, logger), nil
}

func NewPublisherWithProducer(producer sarama.SyncProducer, topic string, logger *slog.Logger) *Publisher {
	return &Publisher{
		producer: producer,
		topic:    topic,
		logger:   logger,
	}
}

// Publish keys every message by election so one election's events keep
// their order on a single partition.
func (p *Publisher) Publish(ctx context.Context, event events.Event) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(event.Key()),
		Value: sarama.ByteEncoder(value),
		Headers: []sarama.RecordHeader{
			{Key: []byte("event-type"), Value: []byte(event.Type)},
			{Key: []byte("event-id"), Value: []byte(event.ID)},
		},
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		return fmt.Errorf("failed to send event to kafka: %w", err)
	}

	p.logger.DebugContext(ctx, "event sent to kafka",
		"topic", p.topic,
		"partition", partition,
		"offset", offset,
		"type", event.Type,
	)
	return nil
}

func (p *Publisher) Close() error {
	return p.producer.Close()
}
