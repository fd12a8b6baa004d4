package repository

import (
	"context"

	"XetraPull/internal/domain/models"
	domrepo "XetraPull/internal/domain/repository"
	pkgkafka "XetraPull/pkg/kafka"
)

// MessagePublisher is the producer surface used for run events.
type MessagePublisher interface {
	Publish(ctx context.Context, topic string, key []byte, value interface{}) error
	Close() error
}

var _ MessagePublisher = (*pkgkafka.Producer)(nil)

// KafkaRunPublisher implements RunPublisher for Kafka.
type KafkaRunPublisher struct {
	producer MessagePublisher
	topic    string
}

// NewKafkaRunPublisher creates Kafka run publisher.
func NewKafkaRunPublisher(producer MessagePublisher, topic string) domrepo.RunPublisher {
	return &KafkaRunPublisher{producer: producer, topic: topic}
}

// PublishRun sends the summary as JSON keyed by the report key.
func (p *KafkaRunPublisher) PublishRun(ctx context.Context, summary *models.RunSummary) error {
	return p.producer.Publish(ctx, p.topic, []byte(summary.ReportKey), summary)
}

func (p *KafkaRunPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
