package core

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"genebank/internal/config"
	"genebank/pkg/domain"
)

func TestOpenPersistentStoreMemory(t *testing.T) {
	store, closeFn, err := OpenPersistentStore(context.Background(), config.Storage{Driver: "memory"})
	if err != nil {
		t.Fatalf("open memory store: %v", err)
	}
	defer closeFn(context.Background())
	if _, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		_, err := tx.CreateGroup(domain.Group{Name: "curators"})
		return err
	}); err != nil {
		t.Fatalf("transaction: %v", err)
	}
}

func TestOpenPersistentStoreSQLiteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalogue.db")
	store, closeFn, err := OpenPersistentStore(context.Background(), config.Storage{SQLitePath: path})
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	defer closeFn(context.Background())
	svc := NewService(store)
	if _, err := svc.CreateGroup(context.Background(), "curators"); err != nil {
		t.Fatalf("create group: %v", err)
	}
}

func TestOpenPersistentStoreUnknownDriver(t *testing.T) {
	_, _, err := OpenPersistentStore(context.Background(), config.Storage{Driver: "cassandra"})
	if err == nil || !strings.Contains(err.Error(), "unknown storage driver cassandra") {
		t.Fatalf("expected unknown driver error, got %v", err)
	}
}
