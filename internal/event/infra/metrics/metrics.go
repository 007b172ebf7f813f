package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/davicafu/eventpub/internal/event/domain"
)

const namespace = "eventpub"

// Metrics agrupa los contadores de envío, persistencia y reenvío.
type Metrics struct {
	Sent            *prometheus.CounterVec
	SendFailures    *prometheus.CounterVec
	SendLatency     prometheus.Histogram
	Persisted       *prometheus.CounterVec
	PersistFailures *prometheus.CounterVec
	Replayed        prometheus.Counter
	ReplayFailures  prometheus.Counter
}

// New registra los contadores en reg. Un registro propio evita colisiones en los tests.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Sent: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_sent_total",
			Help:      "Total number of envelopes handed to the transport",
		}, []string{"routing_key"}),
		SendFailures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_send_failures_total",
			Help:      "Total number of failed send attempts",
		}, []string{"routing_key"}),
		SendLatency: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "events_send_latency_seconds",
			Help:      "Transport send latency",
			Buckets:   prometheus.DefBuckets,
		}),
		Persisted: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_persisted_total",
			Help:      "Total number of envelopes stored after a failed send",
		}, []string{"backend"}),
		PersistFailures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_persist_failures_total",
			Help:      "Total number of failed backup persistence attempts",
		}, []string{"backend"}),
		Replayed: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_replayed_total",
			Help:      "Total number of stored envelopes replayed successfully",
		}),
		ReplayFailures: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_replay_failures_total",
			Help:      "Total number of failed replay attempts",
		}),
	}
}

// ---------------- Decoradores ----------------

// InstrumentedSender cuenta envíos y fallos por routing key.
type InstrumentedSender struct {
	next    domain.EventSender
	metrics *Metrics
}

func NewInstrumentedSender(next domain.EventSender, m *Metrics) *InstrumentedSender {
	return &InstrumentedSender{next: next, metrics: m}
}

func (s *InstrumentedSender) Send(ctx context.Context, key domain.RoutingKey, envelope domain.Envelope) error {
	start := time.Now()
	err := s.next.Send(ctx, key, envelope)
	s.metrics.SendLatency.Observe(time.Since(start).Seconds())

	if err != nil {
		s.metrics.SendFailures.WithLabelValues(key.String()).Inc()
		return err
	}
	s.metrics.Sent.WithLabelValues(key.String()).Inc()
	return nil
}

// InstrumentedPersistence cuenta los intentos de persistencia de un backend.
type InstrumentedPersistence struct {
	next    domain.EventPersistence
	backend string
	metrics *Metrics
}

func NewInstrumentedPersistence(next domain.EventPersistence, backend string, m *Metrics) *InstrumentedPersistence {
	return &InstrumentedPersistence{next: next, backend: backend, metrics: m}
}

func (p *InstrumentedPersistence) SupportsPersistence() bool {
	return p.next.SupportsPersistence()
}

func (p *InstrumentedPersistence) Persist(ctx context.Context, kind domain.EventKind, key domain.RoutingKey, envelope domain.Envelope) error {
	if err := p.next.Persist(ctx, kind, key, envelope); err != nil {
		p.metrics.PersistFailures.WithLabelValues(p.backend).Inc()
		return err
	}
	p.metrics.Persisted.WithLabelValues(p.backend).Inc()
	return nil
}

var (
	_ domain.EventSender      = (*InstrumentedSender)(nil)
	_ domain.EventPersistence = (*InstrumentedPersistence)(nil)
)
