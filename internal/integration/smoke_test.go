package integration

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"genebank/internal/blob"
	"genebank/internal/catalog"
	"genebank/internal/core"
	"genebank/internal/infra/persistence/memory"
	"genebank/internal/infra/persistence/sqlite"
	"genebank/internal/permission"
	"genebank/pkg/domain"
)

var root = permission.Actor{Username: "root", Groups: []string{"admin"}}

type storeVariant struct {
	name string
	open func(t *testing.T) domain.PersistentStore
}

type blobVariant struct {
	name string
	open func(t *testing.T) blob.Store
}

func storeVariants() []storeVariant {
	return []storeVariant{
		{
			name: "memory-store",
			open: func(_ *testing.T) domain.PersistentStore { return memory.NewStore() },
		},
		{
			name: "sqlite-store",
			open: func(t *testing.T) domain.PersistentStore {
				s, err := sqlite.NewStore(context.Background(), filepath.Join(t.TempDir(), "genebank.db"))
				if err != nil {
					t.Skipf("sqlite unavailable: %v", err)
				}
				t.Cleanup(func() { _ = s.Close() })
				return s
			},
		},
	}
}

func blobVariants() []blobVariant {
	return []blobVariant{
		{
			name: "memory-blob",
			open: func(_ *testing.T) blob.Store { return blob.NewMemory() },
		},
		{
			name: "filesystem-blob",
			open: func(t *testing.T) blob.Store {
				s, err := blob.Open(context.Background(), blob.Config{Driver: string(blob.DriverFilesystem), FSRoot: t.TempDir()})
				if err != nil {
					t.Fatalf("open fs blob: %v", err)
				}
				return s
			},
		},
	}
}

func seed(t *testing.T, svc *core.Service) {
	t.Helper()
	ctx := context.Background()
	for _, g := range []string{"admin", "curators"} {
		if _, err := svc.CreateGroup(ctx, g); err != nil {
			t.Fatalf("group %s: %v", g, err)
		}
	}
	if _, err := svc.CreateInstitute(ctx, root, catalog.Document{Data: map[string]any{"instituteCode": "ESP004", "name": "CRF"}}); err != nil {
		t.Fatalf("institute: %v", err)
	}
}

// TestIntegrationSmoke runs an import, read and export cycle against every
// store and blob backend that works in-process.
func TestIntegrationSmoke(t *testing.T) {
	ctx := context.Background()
	for _, sv := range storeVariants() {
		for _, bv := range blobVariants() {
			t.Run(sv.name+"/"+bv.name, func(t *testing.T) {
				archive := blob.NewArchive(bv.open(t))
				svc := core.NewService(sv.open(t), core.WithArchive(archive))
				seed(t, svc)

				csv := []byte("INSTCODE,ACCENUMB,GENUS,ORIGCTY\nESP004,BGE001,Solanum,ESP\nESP004,BGE002,Capsicum,PER\n")
				n, err := svc.ImportCSV(ctx, root, domain.EntityAccession, csv, map[string]any{"group": "curators", "is_public": true})
				if err != nil || n != 2 {
					t.Fatalf("import: %d %v", n, err)
				}

				got, err := svc.GetAccession(ctx, permission.Anonymous(), "ESP004", "BGE002", nil)
				if err != nil {
					t.Fatalf("get: %v", err)
				}
				if genera := got.Genera(); len(genera) != 1 || genera[0] != "Capsicum" {
					t.Fatalf("unexpected genera %v", genera)
				}

				list, err := svc.ListAccessions(ctx, permission.Anonymous(), core.Filter{Country: "esp"}, nil)
				if err != nil || len(list) != 1 || list[0].GermplasmNumber() != "BGE001" {
					t.Fatalf("expected country filter to match BGE001, got %v %v", list, err)
				}

				countries, err := svc.ListCountries(ctx, root)
				if err != nil || len(countries) != 2 {
					t.Fatalf("expected countries created on demand, got %v %v", countries, err)
				}

				uploads, err := archive.Uploads(ctx, "accessions")
				if err != nil || len(uploads) != 1 {
					t.Fatalf("expected archived upload, got %v %v", uploads, err)
				}
				if uploads[0].Metadata["count"] != "2" {
					t.Fatalf("unexpected archive metadata %v", uploads[0].Metadata)
				}
			})
		}
	}
}

func TestSQLiteStateSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "genebank.db")
	store, err := sqlite.NewStore(ctx, path)
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	svc := core.NewService(store)
	seed(t, svc)
	csv := []byte("INSTCODE,ACCENUMB,GENUS\nESP004,BGE001,Solanum\n")
	if _, err := svc.ImportCSV(ctx, root, domain.EntityAccession, csv, map[string]any{"group": "curators", "is_public": false}); err != nil {
		t.Fatalf("import: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := sqlite.NewStore(ctx, path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	t.Cleanup(func() { _ = reopened.Close() })
	svc = core.NewService(reopened)
	if _, err := svc.GetAccession(ctx, root, "ESP004", "BGE001", nil); err != nil {
		t.Fatalf("expected accession after reopen: %v", err)
	}
	var nf domain.NotFoundError
	if _, err := svc.GetAccession(ctx, permission.Anonymous(), "ESP004", "BGE001", nil); !errors.As(err, &nf) {
		t.Fatalf("private accession must stay hidden after reopen, got %v", err)
	}
}
