package domain

import (
	"time"

	"github.com/google/uuid"
)

// Header es la cabecera común de todos los sobres.
type Header struct {
	Type          EventKind `json:"type"`
	Source        Source    `json:"source"`
	Channel       Channel   `json:"channel"`
	DateTime      time.Time `json:"dateTime"`
	TransactionID string    `json:"transactionId"`
}

// CommonPayload es la unión de payloads del sobre: solo un campo va relleno.
type CommonPayload struct {
	CollectionCase                  *CollectionCase                  `json:"collectionCase,omitempty"`
	FulfilmentRequest               *FulfilmentRequest               `json:"fulfilmentRequest,omitempty"`
	Response                        *Response                        `json:"response,omitempty"`
	RespondentAuthenticatedResponse *RespondentAuthenticatedResponse `json:"respondentAuthenticatedResponse,omitempty"`
	Refusal                         *RespondentRefusalDetails        `json:"refusal,omitempty"`
}

// Envelope es la unidad que se entrega al sender. Una vez construido no se modifica y su
// propiedad pasa al sender.
type Envelope struct {
	Event   Header        `json:"event"`
	Payload CommonPayload `json:"payload"`
}

// EnvelopeBuilder genera el transactionId y captura el timestamp una vez por llamada.
type EnvelopeBuilder struct {
	now   func() time.Time
	newID func() uuid.UUID
}

type BuilderOption func(*EnvelopeBuilder)

// WithClock sustituye el reloj, útil en tests.
func WithClock(now func() time.Time) BuilderOption {
	return func(b *EnvelopeBuilder) { b.now = now }
}

// WithIDGenerator sustituye el generador de transactionId, útil en tests.
func WithIDGenerator(newID func() uuid.UUID) BuilderOption {
	return func(b *EnvelopeBuilder) { b.newID = newID }
}

func NewEnvelopeBuilder(opts ...BuilderOption) *EnvelopeBuilder {
	b := &EnvelopeBuilder{
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.New,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// BuildHeader crea una cabecera nueva con transactionId aleatorio de 128 bits.
func (b *EnvelopeBuilder) BuildHeader(kind EventKind, source Source, channel Channel) Header {
	return Header{
		Type:          kind,
		Source:        source,
		Channel:       channel,
		DateTime:      b.now(),
		TransactionID: b.newID().String(),
	}
}

// Build ensambla cabecera y payload en un sobre.
func (b *EnvelopeBuilder) Build(kind EventKind, source Source, channel Channel, payload CommonPayload) Envelope {
	return Envelope{
		Event:   b.BuildHeader(kind, source, channel),
		Payload: payload,
	}
}
