package events

import (
	"context"
	"fmt"

	"github.com/segmentio/kafka-go"

	"github.com/thablackcodes/gresh-finance/internal/domain"
)

// messageWriter is the part of kafka.Writer the publisher uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher publishes events to a Kafka topic.
type KafkaPublisher struct {
	writer messageWriter
}

var _ domain.EventPublisher = (*KafkaPublisher)(nil)

// NewKafkaPublisher creates a publisher writing to topic on brokers.
func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireAll,
			AllowAutoTopicCreation: true,
		},
	}
}

// PublishTransactionCompleted writes the event for tx. Messages are keyed by
// the account they debit or credit so that one account's events stay ordered
// within a partition.
func (p *KafkaPublisher) PublishTransactionCompleted(ctx context.Context, tx *domain.Transaction) error {
	body, err := marshalEvent(tx)
	if err != nil {
		return err
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(partitionKey(tx)),
		Value: body,
		Headers: []kafka.Header{
			{Key: "eventType", Value: []byte(EventTypeTransactionCompleted)},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to write kafka message: %w", err)
	}
	return nil
}

// Close flushes pending messages and closes the writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

func partitionKey(tx *domain.Transaction) string {
	switch {
	case tx.Category == domain.TransactionCategoryDebit && tx.FromAccountID != nil:
		return tx.FromAccountID.String()
	case tx.ToAccountID != nil:
		return tx.ToAccountID.String()
	case tx.FromAccountID != nil:
		return tx.FromAccountID.String()
	}
	return tx.Reference
}
