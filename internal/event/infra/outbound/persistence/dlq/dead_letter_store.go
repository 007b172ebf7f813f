package dlq

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	jsoniter "github.com/json-iterator/go"

	"github.com/davicafu/eventpub/internal/event/domain"
	"github.com/davicafu/eventpub/internal/event/infra/outbound/persistence"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const DefaultListKey = "eventpub:dlq"

// listClient es la parte de *redis.Client que usa la cola.
type listClient interface {
	LPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
	LTrim(ctx context.Context, key string, start, stop int64) *redis.StatusCmd
	LRange(ctx context.Context, key string, start, stop int64) *redis.StringSliceCmd
}

// DeadLetterStore apila en una lista de Redis los sobres que no se pudieron enviar.
// Es solo de respaldo: no implementa ReplayStore.
type DeadLetterStore struct {
	client listClient
	key    string
	maxLen int64
	now    func() time.Time
}

// NewDeadLetterStore crea la cola. Con maxLen > 0 la lista se recorta a ese tamaño.
func NewDeadLetterStore(client *redis.Client, key string, maxLen int64) *DeadLetterStore {
	return newDeadLetterStore(client, key, maxLen)
}

func newDeadLetterStore(client listClient, key string, maxLen int64) *DeadLetterStore {
	if key == "" {
		key = DefaultListKey
	}
	return &DeadLetterStore{
		client: client,
		key:    key,
		maxLen: maxLen,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *DeadLetterStore) SupportsPersistence() bool { return true }

func (s *DeadLetterStore) Persist(ctx context.Context, kind domain.EventKind, key domain.RoutingKey, envelope domain.Envelope) error {
	rec, err := persistence.NewRecord(kind, key, envelope, s.now())
	if err != nil {
		return err
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return persistence.Wrap("encode dead letter", err)
	}

	if err := s.client.LPush(ctx, s.key, data).Err(); err != nil {
		return persistence.Wrap("redis lpush", err)
	}
	if s.maxLen > 0 {
		if err := s.client.LTrim(ctx, s.key, 0, s.maxLen-1).Err(); err != nil {
			return persistence.Wrap("redis ltrim", err)
		}
	}
	return nil
}

// Peek devuelve hasta limit entradas, las más recientes primero.
func (s *DeadLetterStore) Peek(ctx context.Context, limit int64) ([]persistence.Record, error) {
	if limit <= 0 {
		return nil, nil
	}
	values, err := s.client.LRange(ctx, s.key, 0, limit-1).Result()
	if err != nil {
		return nil, err
	}

	records := make([]persistence.Record, 0, len(values))
	for _, v := range values {
		var rec persistence.Record
		if err := json.Unmarshal([]byte(v), &rec); err != nil {
			return nil, fmt.Errorf("invalid dead letter entry: %w", err)
		}
		records = append(records, rec)
	}
	return records, nil
}

var (
	_ domain.EventPersistence = (*DeadLetterStore)(nil)
	_ listClient              = (*redis.Client)(nil)
)
