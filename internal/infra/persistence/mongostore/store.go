// Package mongostore provides a MongoDB-backed persistent store. Each snapshot
// bucket is kept as one document in the state collection.
package mongostore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"genebank/internal/infra/persistence/memory"
	"genebank/pkg/domain"
)

var _ domain.PersistentStore = (*Store)(nil)

const (
	defaultURI      = "mongodb://localhost:27017"
	defaultDatabase = "genebank"
	collectionName  = "state"
	connectTimeout  = 10 * time.Second
	pingTimeout     = 5 * time.Second
)

type stateDocument struct {
	Bucket  string `bson:"_id"`
	Payload []byte `bson:"payload"`
}

type stateCollection interface {
	BulkWrite(ctx context.Context, models []mongo.WriteModel, opts ...*options.BulkWriteOptions) (*mongo.BulkWriteResult, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (*mongo.Cursor, error)
}

// Store persists state to MongoDB while reusing the in-memory implementation for transactions.
type Store struct {
	*memory.Store
	client *mongo.Client
	coll   stateCollection
	mu     sync.Mutex
}

// NewStore connects to MongoDB, pings the primary and hydrates the in-memory
// store from the state collection.
func NewStore(ctx context.Context, uri, database string) (*Store, error) {
	if uri == "" {
		uri = defaultURI
	}
	if database == "" {
		database = defaultDatabase
	}
	connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("error creating MongoDB client: %w", err)
	}
	pingCtx, pingCancel := context.WithTimeout(ctx, pingTimeout)
	defer pingCancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("error connecting to MongoDB (ping failed): %w", err)
	}
	store, err := newStore(ctx, client.Database(database).Collection(collectionName))
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	store.client = client
	return store, nil
}

func newStore(ctx context.Context, coll stateCollection) (*Store, error) {
	snapshot, err := loadSnapshot(ctx, coll)
	if err != nil {
		return nil, err
	}
	mem := memory.NewStore()
	mem.ImportState(snapshot)
	return &Store{Store: mem, coll: coll}, nil
}

// RunInTransaction applies fn and upserts every bucket when it succeeds.
// When the upsert fails the stored state is reloaded and the error returned.
func (s *Store) RunInTransaction(ctx context.Context, fn func(domain.Transaction) error) (domain.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, err := s.Store.RunInTransaction(ctx, fn)
	if err != nil {
		return res, err
	}
	writes, err := buildWrites(s.ExportState())
	if err == nil {
		_, err = s.coll.BulkWrite(ctx, writes)
		if err != nil {
			err = fmt.Errorf("mongo bulk write: %w", err)
		}
	}
	if err != nil {
		return domain.Result{}, s.restore(ctx, err)
	}
	return res, nil
}

func (s *Store) restore(ctx context.Context, cause error) error {
	snapshot, err := loadSnapshot(context.WithoutCancel(ctx), s.coll)
	if err != nil {
		return errors.Join(cause, fmt.Errorf("reload state: %w", err))
	}
	s.ImportState(snapshot)
	return cause
}

// Close disconnects the client.
func (s *Store) Close(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	return s.client.Disconnect(ctx)
}

func buildWrites(snapshot memory.Snapshot) ([]mongo.WriteModel, error) {
	writes := make([]mongo.WriteModel, 0, len(memory.Buckets()))
	for _, bucket := range memory.Buckets() {
		data, err := json.Marshal(snapshot.Bucket(bucket))
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", bucket, err)
		}
		filter := bson.M{"_id": bucket}
		update := bson.M{"$set": bson.M{"payload": data}}
		writes = append(writes, mongo.NewUpdateOneModel().SetFilter(filter).SetUpdate(update).SetUpsert(true))
	}
	return writes, nil
}

func loadSnapshot(ctx context.Context, coll stateCollection) (memory.Snapshot, error) {
	cursor, err := coll.Find(ctx, bson.M{})
	if err != nil {
		return memory.Snapshot{}, fmt.Errorf("find state: %w", err)
	}
	defer func() { _ = cursor.Close(ctx) }()

	var snapshot memory.Snapshot
	for cursor.Next(ctx) {
		var doc stateDocument
		if err := cursor.Decode(&doc); err != nil {
			return memory.Snapshot{}, fmt.Errorf("decode state document: %w", err)
		}
		if len(doc.Payload) == 0 {
			continue
		}
		target := snapshot.Bucket(doc.Bucket)
		if target == nil {
			continue
		}
		if err := json.Unmarshal(doc.Payload, target); err != nil {
			return memory.Snapshot{}, fmt.Errorf("decode %s: %w", doc.Bucket, err)
		}
	}
	if err := cursor.Err(); err != nil {
		return memory.Snapshot{}, fmt.Errorf("iterate state: %w", err)
	}
	return snapshot, nil
}
