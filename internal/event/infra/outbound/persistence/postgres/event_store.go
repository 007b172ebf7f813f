package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/davicafu/eventpub/internal/event/domain"
	"github.com/davicafu/eventpub/internal/event/infra/outbound/persistence"
)

// querier es lo que el store necesita de *pgxpool.Pool; también lo cumple pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// EventStore guarda en Postgres los sobres no enviados. El sobre va en una columna jsonb.
type EventStore struct {
	db  querier
	now func() time.Time
}

func NewEventStore(pool *pgxpool.Pool) *EventStore {
	return newEventStore(pool)
}

func newEventStore(db querier) *EventStore {
	return &EventStore{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// NewPool abre el pool y comprueba la conexión.
func NewPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("could not ping postgres: %w", err)
	}
	return pool, nil
}

// InitSchema crea la tabla de respaldo y el índice de pendientes.
func InitSchema(ctx context.Context, pool *pgxpool.Pool) error {
	const sql = `
		CREATE TABLE IF NOT EXISTS event_backup (
			transaction_id UUID PRIMARY KEY,
			event_type     TEXT NOT NULL,
			routing_key    TEXT NOT NULL,
			envelope       JSONB NOT NULL,
			persisted_at   TIMESTAMPTZ NOT NULL,
			replayed       BOOLEAN NOT NULL DEFAULT false
		);
		CREATE INDEX IF NOT EXISTS idx_event_backup_pending
			ON event_backup (persisted_at) WHERE replayed = false;
	`
	_, err := pool.Exec(ctx, sql)
	return err
}

func (s *EventStore) SupportsPersistence() bool { return true }

func (s *EventStore) Persist(ctx context.Context, kind domain.EventKind, key domain.RoutingKey, envelope domain.Envelope) error {
	rec, err := persistence.NewRecord(kind, key, envelope, s.now())
	if err != nil {
		return err
	}

	const sql = `
		INSERT INTO event_backup (transaction_id, event_type, routing_key, envelope, persisted_at, replayed)
		VALUES ($1, $2, $3, $4, $5, false)
		ON CONFLICT (transaction_id) DO NOTHING
	`
	_, err = s.db.Exec(ctx, sql, rec.TransactionID, rec.Kind, rec.RoutingKey, []byte(rec.Envelope), rec.PersistedAt)
	return persistence.Wrap("postgres insert", err)
}

func (s *EventStore) FetchPending(ctx context.Context, limit int) ([]domain.PersistedEvent, error) {
	const sql = `
		SELECT transaction_id::text, event_type, routing_key, envelope, persisted_at
		FROM event_backup
		WHERE replayed = false
		ORDER BY persisted_at ASC
		LIMIT $1
	`
	rows, err := s.db.Query(ctx, sql, limit)
	if err != nil {
		return nil, fmt.Errorf("query event_backup: %w", err)
	}
	defer rows.Close()

	var events []domain.PersistedEvent
	for rows.Next() {
		var (
			rec      persistence.Record
			envelope []byte
		)
		if err := rows.Scan(&rec.TransactionID, &rec.Kind, &rec.RoutingKey, &envelope, &rec.PersistedAt); err != nil {
			return nil, fmt.Errorf("scan stored event: %w", err)
		}
		rec.Envelope = string(envelope)

		evt, err := rec.PersistedEvent()
		if err != nil {
			return nil, err
		}
		events = append(events, evt)
	}
	return events, rows.Err()
}

func (s *EventStore) MarkReplayed(ctx context.Context, transactionID string) error {
	tag, err := s.db.Exec(ctx, `UPDATE event_backup SET replayed = true WHERE transaction_id = $1`, transactionID)
	if err != nil {
		return fmt.Errorf("mark replayed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", domain.ErrPersistedEventNotFound, transactionID)
	}
	return nil
}

var (
	_ domain.EventPersistence = (*EventStore)(nil)
	_ domain.ReplayStore      = (*EventStore)(nil)
	_ querier                 = (*pgxpool.Pool)(nil)
)
