package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const collectionBrowserStorage = "browser_storage"

// KVStore keeps persisted browser storage in MongoDB, one document per key.
type KVStore struct {
	col *mongo.Collection
	now func() time.Time
}

func NewKVStore(db *mongo.Database) *KVStore {
	return &KVStore{col: db.Collection(collectionBrowserStorage), now: time.Now}
}

type kvDocument struct {
	ID        string     `bson:"_id"`
	Namespace string     `bson:"namespace"`
	Key       string     `bson:"key"`
	Value     string     `bson:"value"`
	ExpiresAt *time.Time `bson:"expires_at,omitempty"`
	UpdatedAt time.Time  `bson:"updated_at"`
}

func docID(namespace, key string) string {
	return namespace + ":" + key
}

func (s *KVStore) Get(ctx context.Context, namespace, key string) (string, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc kvDocument
	err := s.col.FindOne(ctx, bson.M{"_id": docID(namespace, key)}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("find %s: %w", key, err)
	}
	// the TTL monitor runs once a minute; expired documents may still be there
	if doc.ExpiresAt != nil && !s.now().Before(*doc.ExpiresAt) {
		return "", false, nil
	}
	return doc.Value, true, nil
}

// Set upserts the value. A zero ttl keeps the document until deleted.
func (s *KVStore) Set(ctx context.Context, namespace, key, value string, ttl time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	now := s.now().UTC()
	set := bson.M{
		"namespace":  namespace,
		"key":        key,
		"value":      value,
		"updated_at": now,
	}
	update := bson.M{"$set": set}
	if ttl > 0 {
		set["expires_at"] = now.Add(ttl)
	} else {
		update["$unset"] = bson.M{"expires_at": ""}
	}

	_, err := s.col.UpdateOne(ctx, bson.M{"_id": docID(namespace, key)}, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("upsert %s: %w", key, err)
	}
	return nil
}

func (s *KVStore) Delete(ctx context.Context, namespace string, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	ids := make([]string, len(keys))
	for i, k := range keys {
		ids[i] = docID(namespace, k)
	}
	if _, err := s.col.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}}); err != nil {
		return fmt.Errorf("delete keys: %w", err)
	}
	return nil
}

// EnsureIndexes creates the TTL index on expires_at and a namespace index.
func (s *KVStore) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0),
		},
		{Keys: bson.D{{Key: "namespace", Value: 1}}},
	}

	_, err := s.col.Indexes().CreateMany(ctx, indexes)
	return err
}
