// Package mongo stores each key as a document in the kv collection.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/julianstephens/habitflow/internal/constants"
	"github.com/julianstephens/habitflow/internal/logger"
)

const collectionName = "kv"

type entry struct {
	Key       string    `bson:"_id"`
	Value     string    `bson:"value"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

// Store does not implement storage.Batcher; multi-key writes fall back to
// sequential ops.
type Store struct {
	uri    string
	dbName string
	client *mongo.Client
	coll   *mongo.Collection
}

func New(uri string) *Store {
	return &Store{uri: uri, dbName: DatabaseName(uri)}
}

// DatabaseName extracts the database from a mongodb:// URI path, falling
// back to the application name.
func DatabaseName(uri string) string {
	u, err := url.Parse(uri)
	if err != nil {
		return constants.AppName
	}
	if name := strings.Trim(u.Path, "/"); name != "" {
		return name
	}
	return constants.AppName
}

func (s *Store) connect() error {
	if s.client != nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), constants.ConnectTimeout)
	defer cancel()

	clientOptions := options.Client().ApplyURI(s.uri)
	clientOptions.SetServerSelectionTimeout(constants.ConnectTimeout)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	s.client = client
	s.coll = client.Database(s.dbName).Collection(collectionName)
	logger.Debug("Connected to MongoDB", "database", s.dbName)
	return nil
}

// Init connects. Documents are keyed by _id so no index is needed.
func (s *Store) Init() error {
	return s.connect()
}

func (s *Store) Load() error {
	return s.connect()
}

func (s *Store) Close() error {
	if s.client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), constants.ConnectTimeout)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func (s *Store) Describe() string {
	return "mongodb/" + s.dbName
}

func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	if s.coll == nil {
		return "", false, fmt.Errorf("storage not loaded")
	}
	var e entry
	err := s.coll.FindOne(ctx, bson.M{"_id": key}).Decode(&e)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get %s: %w", key, err)
	}
	return e.Value, true, nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	if s.coll == nil {
		return fmt.Errorf("storage not loaded")
	}
	update := bson.M{"$set": bson.M{"value": value, "updatedAt": time.Now().UTC()}}
	_, err := s.coll.UpdateOne(ctx, bson.M{"_id": key}, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}

func (s *Store) Remove(ctx context.Context, key string) error {
	if s.coll == nil {
		return fmt.Errorf("storage not loaded")
	}
	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": key}); err != nil {
		return fmt.Errorf("failed to remove %s: %w", key, err)
	}
	return nil
}

func (s *Store) ListKeys(ctx context.Context) ([]string, error) {
	if s.coll == nil {
		return nil, fmt.Errorf("storage not loaded")
	}
	opts := options.Find().SetProjection(bson.M{"_id": 1}).SetSort(bson.M{"_id": 1})
	cursor, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query keys: %w", err)
	}
	defer cursor.Close(ctx)

	var keys []string
	for cursor.Next(ctx) {
		var e entry
		if err := cursor.Decode(&e); err != nil {
			return nil, fmt.Errorf("failed to decode key: %w", err)
		}
		keys = append(keys, e.Key)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("error iterating keys: %w", err)
	}
	return keys, nil
}
