package mocks

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/davicafu/eventpub/internal/event/domain"
)

// MockSender simula el transporte
type MockSender struct {
	mock.Mock
}

func (m *MockSender) Send(ctx context.Context, key domain.RoutingKey, envelope domain.Envelope) error {
	args := m.Called(ctx, key, envelope)
	return args.Error(0)
}

// MockPersistence simula un persister activo o deshabilitado según SupportsPersistence.
type MockPersistence struct {
	mock.Mock
}

func (m *MockPersistence) SupportsPersistence() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockPersistence) Persist(ctx context.Context, kind domain.EventKind, key domain.RoutingKey, envelope domain.Envelope) error {
	args := m.Called(ctx, kind, key, envelope)
	return args.Error(0)
}

// MockReplayStore simula el almacén de reenvío
type MockReplayStore struct {
	mock.Mock
}

func (m *MockReplayStore) FetchPending(ctx context.Context, limit int) ([]domain.PersistedEvent, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]domain.PersistedEvent), args.Error(1)
}

func (m *MockReplayStore) MarkReplayed(ctx context.Context, transactionID string) error {
	args := m.Called(ctx, transactionID)
	return args.Error(0)
}

// ------------------- Sender de captura -------------------

// Sent es un envío registrado por RecordingSender.
type Sent struct {
	Key      domain.RoutingKey
	Envelope domain.Envelope
}

// RecordingSender guarda cada envío y devuelve Err si está fijado.
type RecordingSender struct {
	Err  error
	mu   sync.Mutex
	sent []Sent
}

func (s *RecordingSender) Send(ctx context.Context, key domain.RoutingKey, envelope domain.Envelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, Sent{Key: key, Envelope: envelope})
	return s.Err
}

func (s *RecordingSender) Sent() []Sent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Sent(nil), s.sent...)
}

var (
	_ domain.EventSender      = (*MockSender)(nil)
	_ domain.EventSender      = (*RecordingSender)(nil)
	_ domain.EventPersistence = (*MockPersistence)(nil)
	_ domain.ReplayStore      = (*MockReplayStore)(nil)
)
