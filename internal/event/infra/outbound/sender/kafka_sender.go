package sender

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/davicafu/eventpub/internal/event/domain"
)

const (
	HeaderEventType     = "eventType"
	HeaderSource        = "source"
	HeaderTransactionID = "transactionId"
)

// messageWriter es la parte de *kafka.Writer que usa el sender.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// KafkaSender publica cada sobre en el topic que nombra su routing key.
type KafkaSender struct {
	writer messageWriter
	log    *zap.Logger
}

// NewKafkaWriter crea un writer sin topic fijo: el topic viaja en cada mensaje.
func NewKafkaWriter(brokers []string, writeTimeout time.Duration) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
		WriteTimeout:           writeTimeout,
	}
}

func NewKafkaSender(writer messageWriter, log *zap.Logger) *KafkaSender {
	return &KafkaSender{writer: writer, log: log}
}

func (s *KafkaSender) Send(ctx context.Context, key domain.RoutingKey, envelope domain.Envelope) error {
	msg, err := buildMessage(key, envelope)
	if err != nil {
		return err
	}

	if err := s.writer.WriteMessages(ctx, msg); err != nil {
		s.log.Error("Error publishing to Kafka",
			zap.String("topic", key.String()),
			zap.String("transaction_id", envelope.Event.TransactionID),
			zap.Error(err))
		return err
	}

	s.log.Debug("Event sent to Kafka",
		zap.String("topic", key.String()),
		zap.String("transaction_id", envelope.Event.TransactionID))
	return nil
}

// buildMessage usa el transactionId como clave para que los reenvíos caigan en la misma partición.
func buildMessage(key domain.RoutingKey, envelope domain.Envelope) (kafka.Message, error) {
	data, err := domain.EncodeEnvelope(envelope)
	if err != nil {
		return kafka.Message{}, err
	}

	return kafka.Message{
		Topic: key.String(),
		Key:   []byte(envelope.Event.TransactionID),
		Value: data,
		Headers: []kafka.Header{
			{Key: HeaderEventType, Value: []byte(envelope.Event.Type)},
			{Key: HeaderSource, Value: []byte(envelope.Event.Source)},
			{Key: HeaderTransactionID, Value: []byte(envelope.Event.TransactionID)},
		},
	}, nil
}

// Verificación estática
var _ domain.EventSender = (*KafkaSender)(nil)
