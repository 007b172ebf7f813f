package clickhouse

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"

	"github.com/davicafu/eventpub/internal/event/domain"
	"github.com/davicafu/eventpub/internal/event/infra/outbound/persistence"
)

// execer es la parte de *sql.DB que usa el archivo.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// EventArchive guarda en ClickHouse una copia de solo escritura de los sobres no enviados.
// Sirve para análisis; el reenvío se hace desde los stores transaccionales.
type EventArchive struct {
	db  execer
	now func() time.Time
}

// Open abre la conexión con ClickHouse y la comprueba.
func Open(addr, dbName string) (*sql.DB, error) {
	conn := clickhouse.OpenDB(&clickhouse.Options{
		Addr: []string{addr},
		Auth: clickhouse.Auth{
			Database: dbName,
		},
		Settings: clickhouse.Settings{
			"max_execution_time": 60,
		},
	})

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("could not ping clickhouse: %w", err)
	}
	return conn, nil
}

func NewEventArchive(db *sql.DB) *EventArchive {
	return newEventArchive(db)
}

func newEventArchive(db execer) *EventArchive {
	return &EventArchive{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// InitSchema crea la tabla de archivo, particionada por mes.
func InitSchema(ctx context.Context, db *sql.DB) error {
	query := `
		CREATE TABLE IF NOT EXISTS event_backup (
			transaction_id UUID,
			event_type     LowCardinality(String),
			routing_key    LowCardinality(String),
			source         LowCardinality(String),
			channel        LowCardinality(String),
			event_time     DateTime64(3),
			envelope       String,
			persisted_at   DateTime64(3)
		) ENGINE = MergeTree()
		PARTITION BY toYYYYMM(persisted_at)
		ORDER BY (routing_key, event_type, persisted_at);
	`
	_, err := db.ExecContext(ctx, query)
	return err
}

func (a *EventArchive) SupportsPersistence() bool { return true }

func (a *EventArchive) Persist(ctx context.Context, kind domain.EventKind, key domain.RoutingKey, envelope domain.Envelope) error {
	rec, err := persistence.NewRecord(kind, key, envelope, a.now())
	if err != nil {
		return err
	}

	_, err = a.db.ExecContext(ctx,
		`INSERT INTO event_backup (transaction_id, event_type, routing_key, source, channel, event_time, envelope, persisted_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.TransactionID,
		rec.Kind,
		rec.RoutingKey,
		string(envelope.Event.Source),
		string(envelope.Event.Channel),
		envelope.Event.DateTime,
		rec.Envelope,
		rec.PersistedAt,
	)
	return persistence.Wrap("clickhouse insert", err)
}

// Verificación estática de la interfaz.
var _ domain.EventPersistence = (*EventArchive)(nil)
