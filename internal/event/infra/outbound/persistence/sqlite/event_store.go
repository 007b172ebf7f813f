package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/davicafu/eventpub/internal/event/domain"
	"github.com/davicafu/eventpub/internal/event/infra/outbound/persistence"

	_ "modernc.org/sqlite"
)

// EventStore guarda en SQLite los sobres que no se pudieron enviar y permite reenviarlos.
type EventStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewEventStore(db *sql.DB) *EventStore {
	return &EventStore{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// InitSchema crea la tabla de respaldo si no existe.
func InitSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
        CREATE TABLE IF NOT EXISTS event_backup (
            transaction_id TEXT PRIMARY KEY,
            event_type TEXT NOT NULL,
            routing_key TEXT NOT NULL,
            envelope TEXT NOT NULL,
            persisted_at DATETIME NOT NULL,
            replayed BOOLEAN NOT NULL DEFAULT 0
        )
    `)
	return err
}

func (s *EventStore) SupportsPersistence() bool { return true }

// Persist es idempotente por transactionId: un segundo intento con el mismo id no duplica filas.
func (s *EventStore) Persist(ctx context.Context, kind domain.EventKind, key domain.RoutingKey, envelope domain.Envelope) error {
	rec, err := persistence.NewRecord(kind, key, envelope, s.now())
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO event_backup (transaction_id, event_type, routing_key, envelope, persisted_at, replayed)
         VALUES (?, ?, ?, ?, ?, 0)
         ON CONFLICT(transaction_id) DO NOTHING`,
		rec.TransactionID, rec.Kind, rec.RoutingKey, rec.Envelope, rec.PersistedAt,
	)
	return persistence.Wrap("sqlite insert", err)
}

// FetchPending devuelve los sobres aún no reenviados, los más antiguos primero.
func (s *EventStore) FetchPending(ctx context.Context, limit int) ([]domain.PersistedEvent, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT transaction_id, event_type, routing_key, envelope, persisted_at
         FROM event_backup
         WHERE replayed = 0
         ORDER BY persisted_at, rowid
         LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []domain.PersistedEvent
	for rows.Next() {
		var rec persistence.Record
		if err := rows.Scan(&rec.TransactionID, &rec.Kind, &rec.RoutingKey, &rec.Envelope, &rec.PersistedAt); err != nil {
			return nil, err
		}

		evt, err := rec.PersistedEvent()
		if err != nil {
			return nil, err
		}
		events = append(events, evt)
	}
	return events, rows.Err()
}

func (s *EventStore) MarkReplayed(ctx context.Context, transactionID string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE event_backup SET replayed = 1 WHERE transaction_id = ?`, transactionID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get RowsAffected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", domain.ErrPersistedEventNotFound, transactionID)
	}
	return nil
}

// Verificación en tiempo de compilación.
var (
	_ domain.EventPersistence = (*EventStore)(nil)
	_ domain.ReplayStore      = (*EventStore)(nil)
)
