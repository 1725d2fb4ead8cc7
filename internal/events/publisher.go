// Package events publishes validation outcomes.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"

	"jsonschema-validation-service/internal/models"
	"jsonschema-validation-service/internal/observability/metrics"
)

// Publisher publishes validation events to separate Kafka topics for
// valid and invalid documents.
type Publisher struct {
	writerValid   *kafka.Writer
	writerInvalid *kafka.Writer
	principal     string
	topicValid    string
	topicInvalid  string
	enabled       bool
	metrics       *metrics.Metrics
}

// Config holds Kafka publisher configuration.
type Config struct {
	Brokers      []string
	TopicValid   string
	TopicInvalid string
	Principal    string
	Enabled      bool
}

// New creates a Kafka event publisher. A nil or disabled config, or one
// without brokers, yields a log-only publisher.
func New(cfg *Config) *Publisher {
	m := metrics.DefaultMetrics

	if cfg == nil {
		log.Info().Msg("Kafka disabled (nil config), using log-only mode")
		return &Publisher{
			enabled: false,
			metrics: m,
		}
	}

	if !cfg.Enabled || len(cfg.Brokers) == 0 {
		log.Info().Msg("Kafka disabled, using log-only mode")
		return &Publisher{
			principal:    cfg.Principal,
			topicValid:   cfg.TopicValid,
			topicInvalid: cfg.TopicInvalid,
			enabled:      false,
			metrics:      m,
		}
	}

	// Longer dial timeout for DNS resolution in Kubernetes
	dialer := &kafka.Dialer{
		Timeout:   10 * time.Second,
		DualStack: true,
	}

	transport := &kafka.Transport{
		Dial: dialer.DialFunc,
	}

	newWriter := func(topic string) *kafka.Writer {
		return &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers...),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			BatchTimeout: 10 * time.Millisecond,
			WriteTimeout: 10 * time.Second,
			RequiredAcks: kafka.RequireOne,
			Transport:    transport,
		}
	}

	log.Info().
		Strs("brokers", cfg.Brokers).
		Str("topicValid", cfg.TopicValid).
		Str("topicInvalid", cfg.TopicInvalid).
		Str("principal", cfg.Principal).
		Msg("Kafka publisher initialized")

	return &Publisher{
		writerValid:   newWriter(cfg.TopicValid),
		writerInvalid: newWriter(cfg.TopicInvalid),
		principal:     cfg.Principal,
		topicValid:    cfg.TopicValid,
		topicInvalid:  cfg.TopicInvalid,
		enabled:       true,
		metrics:       m,
	}
}

// Publish routes ev to the valid or invalid topic.
func (p *Publisher) Publish(ctx context.Context, key string, ev models.ValidationEvent) error {
	if ev.Valid {
		ev.EventType = models.EventTypeValid
		return p.publish(ctx, p.writerValid, p.topicValid, ev.EventType, key, ev)
	}
	ev.EventType = models.EventTypeInvalid
	return p.publish(ctx, p.writerInvalid, p.topicInvalid, ev.EventType, key, ev)
}

func (p *Publisher) publish(ctx context.Context, writer *kafka.Writer, topic, eventType, key string, event any) error {
	start := time.Now()

	payload, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Str("topic", topic).Msg("Failed to marshal event")
		return err
	}

	log.Debug().
		Str("principal", p.principal).
		Str("topic", topic).
		Str("key", key).
		RawJSON("payload", payload).
		Msg("Publishing event")

	if !p.enabled || writer == nil {
		p.metrics.RecordKafkaPublish(topic, eventType, nil, time.Since(start).Seconds())
		return nil
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "eventType", Value: []byte(eventType)},
			{Key: "principal", Value: []byte(p.principal)},
		},
	}

	if err := writer.WriteMessages(ctx, msg); err != nil {
		log.Error().
			Err(err).
			Str("topic", topic).
			Str("key", key).
			Msg("Failed to write to Kafka")
		p.metrics.RecordKafkaPublish(topic, eventType, err, time.Since(start).Seconds())
		return err
	}

	p.metrics.RecordKafkaPublish(topic, eventType, nil, time.Since(start).Seconds())
	return nil
}

// Close closes both Kafka writers.
func (p *Publisher) Close() error {
	var err error
	if p.writerValid != nil {
		if e := p.writerValid.Close(); e != nil {
			log.Error().Err(e).Msg("Error closing valid-topic writer")
			err = e
		}
	}
	if p.writerInvalid != nil {
		if e := p.writerInvalid.Close(); e != nil {
			log.Error().Err(e).Msg("Error closing invalid-topic writer")
			err = e
		}
	}
	return err
}
