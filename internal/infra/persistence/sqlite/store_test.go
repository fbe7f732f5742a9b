package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"genebank/pkg/domain"
)

func TestSQLiteStorePersistAndReload(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "state.db")
	store, err := NewStore(ctx, path)
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	if _, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		if _, err := tx.CreateGroup(domain.Group{Name: "curators"}); err != nil {
			return err
		}
		_, err := tx.CreateInstitute(domain.Institute{Code: "ESP004", Name: "CRF"})
		return err
	}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	reloaded, err := NewStore(ctx, path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	t.Cleanup(func() { _ = reloaded.Close() })
	if reloaded.Path() != path {
		t.Fatalf("unexpected path %s", reloaded.Path())
	}
	err = reloaded.View(ctx, func(v domain.TransactionView) error {
		if _, ok := v.FindInstituteByCode("ESP004"); !ok {
			t.Fatalf("expected institute reloaded")
		}
		if _, ok := v.FindGroupByName("curators"); !ok {
			t.Fatalf("expected group reloaded")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("view: %v", err)
	}
}

func TestSQLiteStoreSkipsPersistOnFailedTransaction(t *testing.T) {
	ctx := context.Background()
	store, err := NewStore(ctx, filepath.Join(t.TempDir(), "state.db"))
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	if _, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		_, err := tx.CreateAccession(domain.Accession{InstituteID: "missing", Number: "1"})
		return err
	}); err == nil {
		t.Fatalf("expected reference error")
	}
	var count int
	if err := store.DB().QueryRow(`SELECT COUNT(*) FROM state`).Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected no buckets persisted, got %d", count)
	}
}
