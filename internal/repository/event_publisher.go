package repository

import (
	"context"
	"time"

	"BandTrader/internal/domain/models"
	"BandTrader/internal/domain/repository"
	pkgkafka "BandTrader/pkg/kafka"
)

// KafkaPublisher implements Publisher for Kafka. Decision events are keyed
// by symbol so consumers observe per-symbol ordering.
type KafkaPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaPublisher creates a Kafka publisher.
func NewKafkaPublisher(producer *pkgkafka.Producer, topic string) repository.Publisher {
	return &KafkaPublisher{producer: producer, topic: topic}
}

func (p *KafkaPublisher) PublishDecision(ctx context.Context, d models.Decision) error {
	return p.producer.Publish(ctx, p.topic, []byte(d.Symbol), map[string]interface{}{
		"symbol":     d.Symbol,
		"kind":       string(d.Kind),
		"trigger":    d.Trigger,
		"fitted":     d.Fitted,
		"upper_band": d.UpperBand,
		"lower_band": d.LowerBand,
		"sigma":      d.Sigma,
		"reason":     d.Reason,
		"t":          time.Now().Unix(),
	})
}

func (p *KafkaPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

// NoopPublisher is the stand-in when eventing is disabled.
type NoopPublisher struct{}

// NewNoopPublisher creates a publisher that drops everything.
func NewNoopPublisher() repository.Publisher { return NoopPublisher{} }

func (NoopPublisher) PublishDecision(ctx context.Context, d models.Decision) error { return nil }

func (NoopPublisher) Close() error { return nil }
