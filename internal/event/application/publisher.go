package application

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"time"

	"go.uber.org/zap"

	"github.com/davicafu/eventpub/internal/event/domain"
)

// Publisher publica eventos de dominio: valida el payload contra el kind, resuelve la
// routing key, construye el sobre y hace un único envío.
type Publisher struct {
	routes      *domain.RoutingTable
	shapes      *domain.ShapeTable
	builder     *domain.EnvelopeBuilder
	sender      domain.EventSender
	persistence domain.EventPersistence
	persistTTL  time.Duration
	log         *zap.Logger
}

// DefaultPersistTimeout acota la escritura de respaldo tras un fallo de envío.
const DefaultPersistTimeout = 5 * time.Second

type Option func(*Publisher)

// WithEnvelopeBuilder permite fijar reloj y generador de ids desde los tests.
func WithEnvelopeBuilder(b *domain.EnvelopeBuilder) Option {
	return func(p *Publisher) { p.builder = b }
}

// WithPersistTimeout fija el límite de la escritura de respaldo. Un valor <= 0 se ignora.
func WithPersistTimeout(d time.Duration) Option {
	return func(p *Publisher) {
		if d > 0 {
			p.persistTTL = d
		}
	}
}

// NewPublisher construye el publisher. Falla si algún kind con payload declarado no tiene
// campo cableado en el sobre.
func NewPublisher(
	routes *domain.RoutingTable,
	shapes *domain.ShapeTable,
	sender domain.EventSender,
	persistence domain.EventPersistence,
	log *zap.Logger,
	opts ...Option,
) (*Publisher, error) {
	if routes == nil || shapes == nil {
		return nil, errors.New("publisher requires routing and shape tables")
	}
	if sender == nil {
		return nil, errors.New("publisher requires an event sender")
	}
	if isNilInterface(persistence) {
		persistence = nil
	}
	if err := domain.CheckWiring(shapes); err != nil {
		return nil, fmt.Errorf("payload wiring self-check: %w", err)
	}
	if log == nil {
		log = zap.NewNop()
	}

	p := &Publisher{
		routes:      routes,
		shapes:      shapes,
		builder:     domain.NewEnvelopeBuilder(),
		sender:      sender,
		persistence: persistence,
		persistTTL:  DefaultPersistTimeout,
		log:         log,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Routes expone la tabla de rutas del publisher.
func (p *Publisher) Routes() *domain.RoutingTable { return p.routes }

// Shapes expone la tabla de formas del publisher.
func (p *Publisher) Shapes() *domain.ShapeTable { return p.shapes }

// Publish publica el evento y devuelve el transactionId del sobre enviado.
//
// Los errores de validación y configuración se devuelven antes de cualquier I/O. Si el
// sender falla se devuelve un *domain.DispatchError; cuando hay persistencia soportada se
// intenta guardar el sobre una vez, sin que su resultado sustituya al error de envío.
func (p *Publisher) Publish(
	ctx context.Context,
	kind domain.EventKind,
	source domain.Source,
	channel domain.Channel,
	payload domain.Payload,
) (string, error) {
	if !kind.Valid() {
		return "", fmt.Errorf("%w: %q", domain.ErrUnknownEventKind, kind)
	}
	if !source.Valid() {
		return "", fmt.Errorf("%w: unknown source %q", domain.ErrInvalidHeader, source)
	}
	if !channel.Valid() {
		return "", fmt.Errorf("%w: unknown channel %q", domain.ErrInvalidHeader, channel)
	}

	if err := p.shapes.Check(kind, payload); err != nil {
		return "", err
	}

	key, err := p.routes.Lookup(kind)
	if err != nil {
		return "", err
	}

	body, err := domain.PlacePayload(kind, payload)
	if err != nil {
		p.log.Error("Payload not supported for event type",
			zap.String("event_type", kind.String()),
			zap.Error(err))
		return "", err
	}

	envelope := p.builder.Build(kind, source, channel, body)
	txID := envelope.Event.TransactionID

	if err := p.sender.Send(ctx, key, envelope); err != nil {
		return "", p.dispatchFailed(ctx, kind, key, envelope, err)
	}

	p.log.Debug("Event published",
		zap.String("event_type", kind.String()),
		zap.String("routing_key", key.String()),
		zap.String("transaction_id", txID))
	return txID, nil
}

func (p *Publisher) dispatchFailed(
	ctx context.Context,
	kind domain.EventKind,
	key domain.RoutingKey,
	envelope domain.Envelope,
	cause error,
) error {
	dErr := &domain.DispatchError{
		Kind:          kind,
		RoutingKey:    key,
		TransactionID: envelope.Event.TransactionID,
		Cause:         cause,
	}

	p.log.Error("Error publishing event",
		zap.String("event_type", kind.String()),
		zap.String("routing_key", key.String()),
		zap.String("transaction_id", dErr.TransactionID),
		zap.Error(cause))

	if p.persistence == nil || !p.persistence.SupportsPersistence() {
		return dErr
	}

	// el respaldo no hereda la cancelación que pudo causar el fallo de envío
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.persistTTL)
	defer cancel()

	dErr.PersistAttempted = true
	if err := p.persistence.Persist(pctx, kind, key, envelope); err != nil {
		dErr.PersistErr = err
		if !errors.Is(err, domain.ErrPersistence) {
			dErr.PersistErr = fmt.Errorf("%w: %w", domain.ErrPersistence, err)
		}
		p.log.Warn("Backup event persistence failed following dispatch failure",
			zap.String("transaction_id", dErr.TransactionID),
			zap.Error(err))
		return dErr
	}

	p.log.Info("Event persisted for replay",
		zap.String("transaction_id", dErr.TransactionID),
		zap.String("routing_key", key.String()))
	return dErr
}

// isNilInterface detecta un puntero nil guardado en la interfaz.
func isNilInterface(v domain.EventPersistence) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
