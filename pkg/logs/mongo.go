package logs

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// MongoStore keeps each log type in a collection named after it.
type MongoStore struct {
	db *mongo.Database
}

// Connect dials uri, pings the primary and ensures the created_at indexes.
func Connect(ctx context.Context, uri, database string) (*MongoStore, func(context.Context) error, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	s := NewMongoStore(client.Database(database))
	if err := s.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, err
	}
	return s, client.Disconnect, nil
}

// NewMongoStore uses an already connected database.
func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{db: db}
}

func (s *MongoStore) col(t Type) *mongo.Collection {
	return s.db.Collection(string(t))
}

// EnsureIndexes creates the created_at descending index on every log
// collection.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	for _, t := range Types {
		_, err := s.col(t).Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys:    bson.D{{Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_created_at_desc"),
		})
		if err != nil {
			return fmt.Errorf("failed to index %s: %w", t, err)
		}
	}
	return nil
}

func (s *MongoStore) Count(ctx context.Context, t Type) (int, error) {
	n, err := s.col(t).CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", t, err)
	}
	return int(n), nil
}

func (s *MongoStore) List(ctx context.Context, t Type, offset, limit int) ([]Entry, error) {
	if limit <= 0 {
		return []Entry{}, nil
	}
	if offset < 0 {
		offset = 0
	}
	opts := options.Find().SetSkip(int64(offset)).SetLimit(int64(limit)).SetSort(newestFirst())
	return s.find(ctx, t, opts)
}

func (s *MongoStore) All(ctx context.Context, t Type) ([]Entry, error) {
	return s.find(ctx, t, options.Find().SetSort(newestFirst()))
}

func (s *MongoStore) Insert(ctx context.Context, e Entry) error {
	if _, err := ParseType(string(e.Type)); err != nil || e.Type == "" {
		return ErrUnknownType
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	if _, err := s.col(e.Type).InsertOne(ctx, e); err != nil {
		return fmt.Errorf("failed to insert %s entry: %w", e.Type, err)
	}
	return nil
}

func (s *MongoStore) find(ctx context.Context, t Type, opts *options.FindOptions) ([]Entry, error) {
	cur, err := s.col(t).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", t, err)
	}
	defer cur.Close(ctx)

	results := []Entry{}
	for cur.Next(ctx) {
		var e Entry
		if err := cur.Decode(&e); err != nil {
			return nil, fmt.Errorf("failed to decode %s entry: %w", t, err)
		}
		e.Type = t
		results = append(results, e)
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func newestFirst() bson.D {
	return bson.D{
		{Key: "created_at", Value: -1},
		{Key: "_id", Value: -1},
	}
}
