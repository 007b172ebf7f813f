package sender

import (
	"context"
	"fmt"
	"sync"

	"github.com/davicafu/eventpub/internal/event/domain"
)

// Delivery es lo que recibe un suscriptor del sender en memoria.
type Delivery struct {
	Key      domain.RoutingKey
	Envelope domain.Envelope
}

// InMemorySender reparte los sobres entre los suscriptores de cada routing key.
// El envío nunca bloquea: si algún suscriptor tiene el buffer lleno, ese suscriptor no lo
// recibe y Send devuelve ErrDeliveryDropped para que el publisher trate el sobre como no
// entregado. Una routing key sin suscriptores descarta el sobre sin error, como un topic
// que nadie consume.
type InMemorySender struct {
	subscribers map[domain.RoutingKey][]chan Delivery
	mu          sync.RWMutex
	closed      bool
}

func NewInMemorySender() *InMemorySender {
	return &InMemorySender{
		subscribers: make(map[domain.RoutingKey][]chan Delivery),
	}
}

// Send entrega el sobre de forma síncrona. Sin suscriptores el sobre se descarta.
func (s *InMemorySender) Send(ctx context.Context, key domain.RoutingKey, envelope domain.Envelope) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return ErrSenderClosed
	}

	d := Delivery{Key: key, Envelope: envelope}
	dropped := 0
	for _, sub := range s.subscribers[key] {
		select {
		case sub <- d:
		default:
			dropped++
		}
	}
	if dropped > 0 {
		return fmt.Errorf("%w: %d subscriber(s) on %s", ErrDeliveryDropped, dropped, key)
	}
	return nil
}

// Subscribe registra un oyente para una routing key.
func (s *InMemorySender) Subscribe(key domain.RoutingKey, bufferSize int) <-chan Delivery {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan Delivery, bufferSize)
	if s.closed {
		close(ch)
		return ch
	}
	s.subscribers[key] = append(s.subscribers[key], ch)
	return ch
}

// Close cierra todos los canales de suscripción. Los Send posteriores fallan.
func (s *InMemorySender) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	for _, subs := range s.subscribers {
		for _, ch := range subs {
			close(ch)
		}
	}
	s.subscribers = nil
}

var _ domain.EventSender = (*InMemorySender)(nil)
