package mongostore

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"genebank/internal/infra/persistence/memory"
	"genebank/pkg/domain"
)

type fakeCollection struct {
	docs      []interface{}
	writes    []mongo.WriteModel
	writeErr  error
	findErr   error
	bulkCalls int
}

func (f *fakeCollection) BulkWrite(_ context.Context, models []mongo.WriteModel, _ ...*options.BulkWriteOptions) (*mongo.BulkWriteResult, error) {
	f.bulkCalls++
	if f.writeErr != nil {
		return nil, f.writeErr
	}
	f.writes = models
	return &mongo.BulkWriteResult{UpsertedCount: int64(len(models))}, nil
}

func (f *fakeCollection) Find(_ context.Context, _ interface{}, _ ...*options.FindOptions) (*mongo.Cursor, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return mongo.NewCursorFromDocuments(f.docs, nil, nil)
}

func TestNewStoreLoadsBucketsFromDocuments(t *testing.T) {
	coll := &fakeCollection{docs: []interface{}{
		bson.M{"_id": memory.BucketInstitutes, "payload": []byte(`{"i1":{"id":"i1","code":"ESP004","name":"CRF"}}`)},
		bson.M{"_id": "legacy", "payload": []byte(`{}`)},
	}}
	store, err := newStore(context.Background(), coll)
	if err != nil {
		t.Fatalf("newStore: %v", err)
	}
	err = store.View(context.Background(), func(v domain.TransactionView) error {
		if _, ok := v.FindInstituteByCode("ESP004"); !ok {
			t.Fatalf("expected institute loaded")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("view: %v", err)
	}
}

func TestRunInTransactionUpsertsEveryBucket(t *testing.T) {
	coll := &fakeCollection{}
	store, err := newStore(context.Background(), coll)
	if err != nil {
		t.Fatalf("newStore: %v", err)
	}
	if _, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		_, err := tx.CreateGroup(domain.Group{Name: "curators"})
		return err
	}); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(coll.writes) != len(memory.Buckets()) {
		t.Fatalf("expected %d writes, got %d", len(memory.Buckets()), len(coll.writes))
	}
	model, ok := coll.writes[0].(*mongo.UpdateOneModel)
	if !ok || model.Upsert == nil || !*model.Upsert {
		t.Fatalf("expected upsert model, got %#v", coll.writes[0])
	}
	update := model.Update.(bson.M)["$set"].(bson.M)
	if !strings.Contains(string(update["payload"].([]byte)), "curators") {
		t.Fatalf("expected groups payload, got %s", update["payload"])
	}
}

func TestRunInTransactionSkipsWriteOnFailure(t *testing.T) {
	coll := &fakeCollection{}
	store, _ := newStore(context.Background(), coll)
	_, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		return errors.New("boom")
	})
	if err == nil || coll.bulkCalls != 0 {
		t.Fatalf("expected no bulk write after failed transaction")
	}
	coll.writeErr = errors.New("down")
	if _, err := store.RunInTransaction(context.Background(), func(domain.Transaction) error { return nil }); err == nil {
		t.Fatalf("expected bulk write error")
	}
}

func TestRunInTransactionReloadsOnWriteFailure(t *testing.T) {
	coll := &fakeCollection{docs: []interface{}{
		bson.M{"_id": memory.BucketGroups, "payload": []byte(`{"g1":{"id":"g1","name":"curators"}}`)},
	}}
	store, err := newStore(context.Background(), coll)
	if err != nil {
		t.Fatalf("newStore: %v", err)
	}
	coll.writeErr = errors.New("down")
	_, err = store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		_, err := tx.CreateGroup(domain.Group{Name: "breeders"})
		return err
	})
	if !errors.Is(err, coll.writeErr) {
		t.Fatalf("expected write error, got %v", err)
	}
	_ = store.View(context.Background(), func(v domain.TransactionView) error {
		if _, ok := v.FindGroupByName("breeders"); ok {
			t.Fatalf("unpersisted group must be discarded")
		}
		if _, ok := v.FindGroupByName("curators"); !ok {
			t.Fatalf("stored group must survive the reload")
		}
		return nil
	})

	coll.findErr = errors.New("find down")
	_, err = store.RunInTransaction(context.Background(), func(domain.Transaction) error { return nil })
	if !errors.Is(err, coll.writeErr) || !errors.Is(err, coll.findErr) {
		t.Fatalf("expected write and reload errors joined, got %v", err)
	}
}

func TestLoadSnapshotErrors(t *testing.T) {
	if _, err := newStore(context.Background(), &fakeCollection{findErr: errors.New("nope")}); err == nil {
		t.Fatalf("expected find error")
	}
	coll := &fakeCollection{docs: []interface{}{bson.M{"_id": memory.BucketGroups, "payload": []byte("{")}}}
	if _, err := newStore(context.Background(), coll); err == nil {
		t.Fatalf("expected decode error")
	}
}
