package publisher

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/tradeup-app/loyalty-service/internal/domain"
)

type KafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Topic:    topic,
			Balancer: &kafka.LeastBytes{},
		},
	}
}

// Publish writes to the topic the writer was configured with.
func (k *KafkaPublisher) Publish(msgs ...domain.Message) error {
	km := make([]kafka.Message, len(msgs))
	for i, m := range msgs {
		km[i] = kafka.Message{
			Key:   m.Key,
			Value: m.Value,
			Time:  time.Now(),
		}
	}
	return k.writer.WriteMessages(context.Background(), km...)
}

func (k *KafkaPublisher) PublishTierChange(event TierChangeEvent) error {
	msg, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return k.Publish(domain.Message{Key: []byte(event.MemberID), Value: msg})
}

func (k *KafkaPublisher) PublishLedgerEntry(event LedgerEntryEvent) error {
	msg, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return k.Publish(domain.Message{Key: []byte(event.MemberID), Value: msg})
}

func (k *KafkaPublisher) PublishDistribution(event DistributionEvent) error {
	msg, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return k.Publish(domain.Message{Key: []byte(event.TenantID), Value: msg})
}
