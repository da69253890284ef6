package dispatch

import (
	"context"
	"fmt"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kgo"
)

// Producer is the subset of *kgo.Client used by Kafka.
type Producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
}

// Kafka produces envelopes to a topic. Records are keyed by group name so
// the changes of one group stay ordered within a partition.
type Kafka struct {
	client Producer
	topic  string
}

// NewKafka creates a Kafka dispatcher producing to topic.
func NewKafka(client Producer, topic string) *Kafka {
	return &Kafka{client: client, topic: topic}
}

// DialKafka creates a franz-go client for brokers with topic as its default
// produce topic.
func DialKafka(brokers []string, topic string) (*kgo.Client, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.AllowAutoTopicCreation(),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka client: %w", err)
	}
	return client, nil
}

// EnsureTopic creates topic with the broker defaults unless it exists.
func EnsureTopic(ctx context.Context, client *kgo.Client, topic string) error {
	adm := kadm.NewClient(client)
	topics, err := adm.ListTopics(ctx, topic)
	if err != nil {
		return fmt.Errorf("kafka list topics: %w", err)
	}
	if t, ok := topics[topic]; ok && t.Err == nil {
		return nil
	}
	resp, err := adm.CreateTopic(ctx, -1, -1, nil, topic)
	if err != nil {
		return fmt.Errorf("kafka create topic %s: %w", topic, err)
	}
	return resp.Err
}

// Topic returns the produce topic.
func (k *Kafka) Topic() string { return k.topic }

// Dispatch implements Dispatcher.
func (k *Kafka) Dispatch(ctx context.Context, env Envelope) error {
	msg, err := env.Encode()
	if err != nil {
		return err
	}
	rec := &kgo.Record{
		Topic: k.topic,
		Key:   []byte(env.Group),
		Value: msg,
		Headers: []kgo.RecordHeader{
			{Key: "envelope-id", Value: []byte(env.ID.String())},
		},
	}
	if err := k.client.ProduceSync(ctx, rec).FirstErr(); err != nil {
		return fmt.Errorf("kafka produce %s: %w", k.topic, err)
	}
	return nil
}
