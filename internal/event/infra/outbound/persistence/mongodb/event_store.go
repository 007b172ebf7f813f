package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/davicafu/eventpub/internal/event/domain"
	"github.com/davicafu/eventpub/internal/event/infra/outbound/persistence"
)

const collectionName = "event_backup"

// EventStore guarda en MongoDB los sobres no enviados. El _id del documento es el transactionId.
type EventStore struct {
	coll *mongo.Collection
	now  func() time.Time
}

func NewEventStore(client *mongo.Client, dbName string) *EventStore {
	return newEventStore(client.Database(dbName).Collection(collectionName))
}

func newEventStore(coll *mongo.Collection) *EventStore {
	return &EventStore{coll: coll, now: func() time.Time { return time.Now().UTC() }}
}

// Connect abre el cliente y comprueba la conexión.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("could not ping mongodb: %w", err)
	}
	return client, nil
}

// mongoEvent es el documento guardado.
type mongoEvent struct {
	persistence.Record `bson:",inline"`
	Replayed           bool `bson:"replayed"`
}

// InitSchema crea el índice de pendientes.
func (s *EventStore) InitSchema(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "replayed", Value: 1}, {Key: "persistedAt", Value: 1}},
	})
	return err
}

func (s *EventStore) SupportsPersistence() bool { return true }

func (s *EventStore) Persist(ctx context.Context, kind domain.EventKind, key domain.RoutingKey, envelope domain.Envelope) error {
	rec, err := persistence.NewRecord(kind, key, envelope, s.now())
	if err != nil {
		return err
	}

	_, err = s.coll.InsertOne(ctx, mongoEvent{Record: rec})
	if mongo.IsDuplicateKeyError(err) {
		// ya guardado con este transactionId
		return nil
	}
	return persistence.Wrap("mongodb insert", err)
}

func (s *EventStore) FetchPending(ctx context.Context, limit int) ([]domain.PersistedEvent, error) {
	filter := bson.M{"replayed": false}
	opts := options.Find().SetSort(bson.D{{Key: "persistedAt", Value: 1}}).SetLimit(int64(limit))

	cursor, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var events []domain.PersistedEvent
	for cursor.Next(ctx) {
		var doc mongoEvent
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		evt, err := doc.PersistedEvent()
		if err != nil {
			return nil, err
		}
		events = append(events, evt)
	}
	return events, cursor.Err()
}

func (s *EventStore) MarkReplayed(ctx context.Context, transactionID string) error {
	filter := bson.M{"_id": transactionID}
	update := bson.M{"$set": bson.M{"replayed": true}}

	res, err := s.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", domain.ErrPersistedEventNotFound, transactionID)
	}
	return nil
}

// Verificación en tiempo de compilación.
var (
	_ domain.EventPersistence = (*EventStore)(nil)
	_ domain.ReplayStore      = (*EventStore)(nil)
)
