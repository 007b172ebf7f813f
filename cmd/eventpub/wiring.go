package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	config "github.com/davicafu/eventpub/internal/config"
	"github.com/davicafu/eventpub/internal/event/domain"
	"github.com/davicafu/eventpub/internal/event/infra/outbound/persistence"
	"github.com/davicafu/eventpub/internal/event/infra/outbound/persistence/clickhouse"
	"github.com/davicafu/eventpub/internal/event/infra/outbound/persistence/dlq"
	"github.com/davicafu/eventpub/internal/event/infra/outbound/persistence/mongodb"
	"github.com/davicafu/eventpub/internal/event/infra/outbound/persistence/postgres"
	"github.com/davicafu/eventpub/internal/event/infra/outbound/persistence/sqlite"
	"github.com/davicafu/eventpub/internal/event/infra/outbound/sender"
	"github.com/davicafu/eventpub/pkg/utils"
)

// Los backends remotos pueden tardar en aceptar conexiones al arrancar junto al servicio.
const (
	connectAttempts = 5
	connectDelay    = 500 * time.Millisecond
)

func buildSender(cfg *config.Config, log *zap.Logger) (domain.EventSender, func()) {
	if cfg.Sender == config.SenderKafka {
		log.Info("🚀 Usando Kafka como transporte", zap.Strings("brokers", cfg.KafkaBrokers))
		writer := sender.NewKafkaWriter(cfg.KafkaBrokers, cfg.KafkaWriteTimeout)
		return sender.NewKafkaSender(writer, log), func() {
			if err := writer.Close(); err != nil {
				log.Warn("error closing kafka writer", zap.Error(err))
			}
		}
	}

	log.Info("⚡️ Usando transporte en memoria")
	s := sender.NewInMemorySender()
	return s, s.Close
}

// backupStore agrupa el persister elegido, su vista de reenvío si la tiene y el cierre.
type backupStore struct {
	persistence domain.EventPersistence
	replay      domain.ReplayStore
	close       func()
}

func buildPersistence(ctx context.Context, cfg *config.Config, log *zap.Logger) (backupStore, error) {
	switch cfg.Persistence {
	case config.PersistenceSQLite:
		db, err := sql.Open("sqlite", cfg.SQLitePath)
		if err != nil {
			return backupStore{}, fmt.Errorf("open sqlite: %w", err)
		}
		if err := sqlite.InitSchema(ctx, db); err != nil {
			db.Close()
			return backupStore{}, fmt.Errorf("init sqlite schema: %w", err)
		}
		store := sqlite.NewEventStore(db)
		log.Info("✅ Persistencia de respaldo en SQLite", zap.String("path", cfg.SQLitePath))
		return backupStore{persistence: store, replay: store, close: func() { db.Close() }}, nil

	case config.PersistencePostgres:
		var pool *pgxpool.Pool
		err := utils.Retry(ctx, connectAttempts, connectDelay, func() (err error) {
			pool, err = postgres.NewPool(ctx, cfg.PostgresDSN)
			return err
		})
		if err != nil {
			return backupStore{}, err
		}
		if err := postgres.InitSchema(ctx, pool); err != nil {
			pool.Close()
			return backupStore{}, fmt.Errorf("init postgres schema: %w", err)
		}
		store := postgres.NewEventStore(pool)
		log.Info("✅ Persistencia de respaldo en Postgres")
		return backupStore{persistence: store, replay: store, close: pool.Close}, nil

	case config.PersistenceMongoDB:
		var client *mongo.Client
		err := utils.Retry(ctx, connectAttempts, connectDelay, func() (err error) {
			client, err = mongodb.Connect(ctx, cfg.MongoURI)
			return err
		})
		if err != nil {
			return backupStore{}, err
		}
		store := mongodb.NewEventStore(client, cfg.MongoDatabase)
		if err := store.InitSchema(ctx); err != nil {
			log.Warn("⚠️ No se pudo crear el índice en MongoDB", zap.Error(err))
		}
		log.Info("✅ Persistencia de respaldo en MongoDB", zap.String("database", cfg.MongoDatabase))
		return backupStore{
			persistence: store,
			replay:      store,
			close:       func() { _ = client.Disconnect(context.Background()) },
		}, nil

	case config.PersistenceRedis:
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		err := utils.Retry(ctx, connectAttempts, connectDelay, func() error {
			return rdb.Ping(ctx).Err()
		})
		if err != nil {
			rdb.Close()
			return backupStore{}, fmt.Errorf("could not ping redis: %w", err)
		}
		log.Info("✅ Dead letter queue en Redis", zap.String("key", cfg.RedisDLQKey))
		return backupStore{
			persistence: dlq.NewDeadLetterStore(rdb, cfg.RedisDLQKey, int64(cfg.RedisDLQMaxLen)),
			close:       func() { rdb.Close() },
		}, nil

	case config.PersistenceClickHouse:
		var db *sql.DB
		err := utils.Retry(ctx, connectAttempts, connectDelay, func() (err error) {
			db, err = clickhouse.Open(cfg.ClickHouseAddr, cfg.ClickHouseDatabase)
			return err
		})
		if err != nil {
			return backupStore{}, err
		}
		if err := clickhouse.InitSchema(ctx, db); err != nil {
			db.Close()
			return backupStore{}, fmt.Errorf("init clickhouse schema: %w", err)
		}
		log.Info("✅ Archivo de respaldo en ClickHouse")
		return backupStore{persistence: clickhouse.NewEventArchive(db), close: func() { db.Close() }}, nil
	}

	log.Info("Persistencia de respaldo deshabilitada")
	return backupStore{persistence: persistence.NewVoidEventPersistence(), close: func() {}}, nil
}
