package persistence

import (
	"errors"
	"fmt"
	"time"

	"github.com/davicafu/eventpub/internal/event/domain"
)

// Record es la fila común que guardan los backends: metadatos de routing más el sobre
// ya serializado en su forma de cable.
type Record struct {
	TransactionID string    `json:"transactionId" bson:"_id"`
	Kind          string    `json:"eventType" bson:"eventType"`
	RoutingKey    string    `json:"routingKey" bson:"routingKey"`
	Envelope      string    `json:"envelope" bson:"envelope"`
	PersistedAt   time.Time `json:"persistedAt" bson:"persistedAt"`
}

// NewRecord serializa el sobre. Un fallo de serialización ya es un ErrPersistence.
func NewRecord(kind domain.EventKind, key domain.RoutingKey, envelope domain.Envelope, at time.Time) (Record, error) {
	data, err := domain.EncodeEnvelope(envelope)
	if err != nil {
		return Record{}, fmt.Errorf("%w: encode envelope: %w", domain.ErrPersistence, err)
	}
	return Record{
		TransactionID: envelope.Event.TransactionID,
		Kind:          string(kind),
		RoutingKey:    string(key),
		Envelope:      string(data),
		PersistedAt:   at,
	}, nil
}

// PersistedEvent reconstruye el evento pendiente a partir de la fila.
func (r Record) PersistedEvent() (domain.PersistedEvent, error) {
	envelope, err := domain.DecodeEnvelope([]byte(r.Envelope))
	if err != nil {
		return domain.PersistedEvent{}, fmt.Errorf("invalid envelope in stored event %s: %w", r.TransactionID, err)
	}
	return domain.PersistedEvent{
		TransactionID: r.TransactionID,
		Kind:          domain.EventKind(r.Kind),
		RoutingKey:    domain.RoutingKey(r.RoutingKey),
		Envelope:      envelope,
		PersistedAt:   r.PersistedAt,
	}, nil
}

// Wrap marca err como fallo de persistencia sin envolverlo dos veces.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrPersistence) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", domain.ErrPersistence, op, err)
}
