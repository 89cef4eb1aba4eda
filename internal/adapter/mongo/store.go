package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/event"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/x/mongo/driver/connstring"

	"trackseed/internal/domain"
	"trackseed/internal/schema"
)

const (
	defaultDatabase = "test"
	connectTimeout  = 10 * time.Second
)

// Store implements ports.Store against a MongoDB database.
type Store struct {
	cli    *mongo.Client
	db     *mongo.Database
	log    *slog.Logger
	closed atomic.Bool
}

// Connect opens a client for uri and pings it. The returned store is only
// handed out once the server answered, so callers never write to a
// connection that is still being established.
// If database is empty the name in the URI path is used, then "test".
func Connect(ctx context.Context, uri, database string, log *slog.Logger) (*Store, error) {
	database, err := databaseName(uri, database)
	if err != nil {
		return nil, err
	}

	opts := options.Client().
		ApplyURI(uri).
		SetServerSelectionTimeout(connectTimeout).
		SetServerMonitor(serverMonitor(log))

	c, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	cli, err := mongo.Connect(c, opts)
	if err != nil {
		log.Error("mongo connection error", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: %v", domain.ErrNotConnected, err)
	}
	if err := cli.Ping(c, nil); err != nil {
		log.Error("mongo connection error", slog.String("error", err.Error()))
		_ = cli.Disconnect(context.Background())
		return nil, fmt.Errorf("%w: %v", domain.ErrNotConnected, err)
	}
	log.Info("mongo connected", slog.String("database", database))
	return &Store{cli: cli, db: cli.Database(database), log: log}, nil
}

func databaseName(uri, database string) (string, error) {
	if database != "" {
		return database, nil
	}
	cs, err := connstring.ParseAndValidate(uri)
	if err != nil {
		return "", fmt.Errorf("mongo: parse uri: %w", err)
	}
	if cs.Database == "" {
		return defaultDatabase, nil
	}
	return cs.Database, nil
}

// serverMonitor surfaces driver topology events in the application log.
func serverMonitor(log *slog.Logger) *event.ServerMonitor {
	return &event.ServerMonitor{
		ServerOpening: func(e *event.ServerOpeningEvent) {
			log.Debug("mongo server opening", slog.String("address", e.Address.String()))
		},
		ServerClosed: func(e *event.ServerClosedEvent) {
			log.Debug("mongo server closed", slog.String("address", e.Address.String()))
		},
		ServerHeartbeatFailed: func(e *event.ServerHeartbeatFailedEvent) {
			log.Warn("mongo heartbeat failed",
				slog.String("connection", e.ConnectionID),
				slog.String("error", e.Failure.Error()),
			)
		},
	}
}

func (s *Store) Insert(ctx context.Context, collection string, doc schema.Document) (primitive.ObjectID, error) {
	if s.closed.Load() {
		return primitive.NilObjectID, domain.ErrNotConnected
	}
	id := primitive.NewObjectID()
	rec := make(bson.M, len(doc)+1)
	for k, v := range doc {
		rec[k] = v
	}
	rec["_id"] = id
	if _, err := s.db.Collection(collection).InsertOne(ctx, rec); err != nil {
		return primitive.NilObjectID, wrap(err)
	}
	return id, nil
}

func (s *Store) IDs(ctx context.Context, collection string) ([]primitive.ObjectID, error) {
	if s.closed.Load() {
		return nil, domain.ErrNotConnected
	}
	cur, err := s.db.Collection(collection).Find(ctx, bson.D{}, options.Find().SetProjection(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, wrap(err)
	}
	var rows []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, wrap(err)
	}
	ids := make([]primitive.ObjectID, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ID)
	}
	return ids, nil
}

func (s *Store) Count(ctx context.Context, collection string) (int64, error) {
	if s.closed.Load() {
		return 0, domain.ErrNotConnected
	}
	n, err := s.db.Collection(collection).CountDocuments(ctx, bson.D{})
	return n, wrap(err)
}

func (s *Store) Users(ctx context.Context) ([]domain.User, error) {
	if s.closed.Load() {
		return nil, domain.ErrNotConnected
	}
	cur, err := s.db.Collection("users").Find(ctx, bson.D{})
	if err != nil {
		return nil, wrap(err)
	}
	var users []domain.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, wrap(err)
	}
	return users, nil
}

// Close disconnects the client. Further calls return domain.ErrNotConnected.
func (s *Store) Close(ctx context.Context) error {
	if s.closed.Swap(true) {
		return nil
	}
	if err := s.cli.Disconnect(ctx); err != nil {
		return err
	}
	s.log.Info("mongo disconnected")
	return nil
}

func wrap(err error) error {
	if errors.Is(err, mongo.ErrClientDisconnected) {
		return fmt.Errorf("%w: %v", domain.ErrNotConnected, err)
	}
	return err
}
