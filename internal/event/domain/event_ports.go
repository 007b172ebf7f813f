package domain

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ---------- Errores de dominio ----------
var (
	// Errores del llamante
	ErrUnknownEventKind = errors.New("unknown event kind")
	ErrInvalidHeader    = errors.New("invalid event header")
	ErrInvalidPayload   = errors.New("payload incompatible for event type")

	// Errores de configuración
	ErrUnroutableEventKind       = errors.New("routing key for event type not configured")
	ErrUnsupportedPayloadMapping = errors.New("payload mapping for event type not supported yet")
	ErrAmbiguousRoute            = errors.New("event type claimed by more than one routing key")
	ErrInvalidRoute              = errors.New("invalid route")

	// Errores de transporte y persistencia
	ErrDispatchFailed           = errors.New("event dispatch failed")
	ErrPersistence              = errors.New("event persistence failed")
	ErrPersistenceNotConfigured = errors.New("application not configured to persist events")
	ErrPersistedEventNotFound   = errors.New("persisted event not found")
)

// DispatchError se devuelve cuando el sender falla. Siempre conserva la causa original;
// si se intentó persistir, el resultado de ese intento va como información secundaria.
type DispatchError struct {
	Kind          EventKind
	RoutingKey    RoutingKey
	TransactionID string
	Cause         error

	// PersistAttempted indica si se llamó a EventPersistence.Persist.
	PersistAttempted bool
	// PersistErr es nil si no se intentó persistir o si la persistencia tuvo éxito.
	PersistErr error
}

// Persisted indica que el sobre quedó guardado para reenvío posterior.
func (e *DispatchError) Persisted() bool {
	return e.PersistAttempted && e.PersistErr == nil
}

func (e *DispatchError) Error() string {
	msg := fmt.Sprintf("%s: %s to %s (transaction %s): %v",
		ErrDispatchFailed, e.Kind, e.RoutingKey, e.TransactionID, e.Cause)
	switch {
	case e.PersistErr != nil:
		msg += fmt.Sprintf("; %v", e.PersistErr)
	case e.PersistAttempted:
		msg += "; envelope persisted for replay"
	}
	return msg
}

// Unwrap permite errors.Is tanto con ErrDispatchFailed como con la causa del sender y,
// cuando existe, con el error de persistencia.
func (e *DispatchError) Unwrap() []error {
	errs := []error{ErrDispatchFailed}
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	if e.PersistErr != nil {
		errs = append(errs, e.PersistErr)
	}
	return errs
}

// ---------- Interfaces (Ports) ----------

// EventSender entrega el sobre a la capa de transporte. Los errores se propagan opacos.
type EventSender interface {
	Send(ctx context.Context, key RoutingKey, envelope Envelope) error
}

// EventPersistence es el almacén de respaldo para sobres que no se pudieron enviar.
type EventPersistence interface {
	SupportsPersistence() bool
	Persist(ctx context.Context, kind EventKind, key RoutingKey, envelope Envelope) error
}

// PersistedEvent es un sobre guardado por un persister activo, pendiente de reenvío.
type PersistedEvent struct {
	TransactionID string
	Kind          EventKind
	RoutingKey    RoutingKey
	Envelope      Envelope
	PersistedAt   time.Time
}

// ReplayStore lo implementan los persisters que permiten reenviar lo guardado.
// Es una interfaz más pequeña que la de persistencia, con solo lo que el relayer necesita.
type ReplayStore interface {
	FetchPending(ctx context.Context, limit int) ([]PersistedEvent, error)
	MarkReplayed(ctx context.Context, transactionID string) error
}
