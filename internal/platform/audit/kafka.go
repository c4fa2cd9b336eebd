package audit

import (
	"context"
	"errors"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"
)

// KafkaPublisher writes events to a single topic, keyed by intake ID so
// one intake's accesses land on one partition in order.
type KafkaPublisher struct {
	client *kgo.Client
	topic  string
	logger *slog.Logger
}

// NewKafkaPublisher connects to the brokers and ensures the topic exists.
// Topic creation races with other gateway instances at startup, so an
// already-exists response is fine.
func NewKafkaPublisher(ctx context.Context, brokers []string, topic string, logger *slog.Logger) (*KafkaPublisher, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
	)
	if err != nil {
		return nil, err
	}

	admin := kadm.NewClient(client)
	resps, err := admin.CreateTopics(ctx, 1, 1, nil, topic)
	if err != nil {
		client.Close()
		return nil, err
	}
	for _, resp := range resps {
		if resp.Err != nil && !errors.Is(resp.Err, kerr.TopicAlreadyExists) {
			client.Close()
			return nil, resp.Err
		}
	}

	return &KafkaPublisher{client: client, topic: topic, logger: logger}, nil
}

// Publish produces asynchronously. The delivery callback only logs; an
// audit gap never fails a memo request.
func (p *KafkaPublisher) Publish(ctx context.Context, event Event) {
	value, err := encode(event)
	if err != nil {
		p.logger.ErrorContext(ctx, "encoding audit event", "error", err)
		return
	}

	record := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(event.IntakeID),
		Value: value,
	}
	p.client.Produce(ctx, record, func(_ *kgo.Record, err error) {
		if err != nil {
			p.logger.Error("publishing audit event",
				"intake_id", event.IntakeID,
				"error", err,
			)
		}
	})
}

// Close flushes buffered records and releases the client.
func (p *KafkaPublisher) Close() {
	if err := p.client.Flush(context.Background()); err != nil {
		p.logger.Error("flushing audit events on close", "error", err)
	}
	p.client.Close()
}
