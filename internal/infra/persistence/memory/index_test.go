package memory

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"genebank/pkg/domain"
)

func TestKeyIndexFollowsMutations(t *testing.T) {
	store := NewStore()
	inst, acc := seed(t, store)
	ctx := context.Background()

	var passport domain.Passport
	_, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		if _, err := tx.CreateCountry(domain.Country{Code: "ESP"}); err != nil {
			return err
		}
		taxon, err := tx.CreateTaxon(domain.Taxon{Rank: domain.RankGenus, Name: "Solanum"})
		if err != nil {
			return err
		}
		passport, err = tx.CreatePassport(domain.Passport{AccessionID: acc.ID, CountryCode: "ESP", TaxonIDs: []string{taxon.ID}})
		if err != nil {
			return err
		}
		_, err = tx.CreateAccessionSet(domain.AccessionSet{InstituteID: inst.ID, Number: "CORE", Group: "curators", AccessionIDs: []string{acc.ID}})
		return err
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	_ = store.View(ctx, func(v domain.TransactionView) error {
		if _, ok := v.FindCountryByCode("ESP"); !ok {
			t.Fatalf("country not indexed")
		}
		if _, ok := v.FindTaxonByName(domain.RankGenus, "Solanum"); !ok {
			t.Fatalf("taxon not indexed")
		}
		if _, ok := v.FindTaxonByName(domain.RankSpecies, "Solanum"); ok {
			t.Fatalf("taxon index must include the rank")
		}
		if ps := v.ListPassports(acc.ID); len(ps) != 1 || ps[0].ID != passport.ID {
			t.Fatalf("unexpected passports %+v", ps)
		}
		if got := v.ListInstituteAccessions(inst.ID); len(got) != 1 || got[0].ID != acc.ID {
			t.Fatalf("unexpected institute accessions %+v", got)
		}
		if got := v.ListInstituteAccessionSets(inst.ID); len(got) != 1 || got[0].Number != "CORE" {
			t.Fatalf("unexpected institute sets %+v", got)
		}
		return nil
	})

	_, err = store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		return tx.DeleteAccession(acc.ID)
	})
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	_ = store.View(ctx, func(v domain.TransactionView) error {
		if _, ok := v.FindAccessionByNumber(inst.ID, acc.Number); ok {
			t.Fatalf("deleted accession still indexed")
		}
		if len(v.ListPassports(acc.ID)) != 0 || len(v.ListInstituteAccessions(inst.ID)) != 0 {
			t.Fatalf("expected passports and institute membership dropped")
		}
		return nil
	})

	_, err = store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		_, err := tx.CreateAccession(domain.Accession{InstituteID: inst.ID, Number: acc.Number, Group: "curators"})
		return err
	})
	if err != nil {
		t.Fatalf("a deleted identity must be reusable: %v", err)
	}
}

func TestKeyIndexIgnoresRolledBackWrites(t *testing.T) {
	store := NewStore()
	inst, _ := seed(t, store)
	ctx := context.Background()
	boom := errors.New("boom")
	_, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		if _, err := tx.CreateGroup(domain.Group{Name: "breeders"}); err != nil {
			return err
		}
		if _, err := tx.CreateAccession(domain.Accession{InstituteID: inst.ID, Number: "BGE0002", Group: "breeders"}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	_ = store.View(ctx, func(v domain.TransactionView) error {
		if _, ok := v.FindGroupByName("breeders"); ok {
			t.Fatalf("rolled back group visible")
		}
		if _, ok := v.FindAccessionByNumber(inst.ID, "BGE0002"); ok {
			t.Fatalf("rolled back accession visible")
		}
		return nil
	})
}

func TestViewIsStableAcrossLaterCommits(t *testing.T) {
	store := NewStore()
	inst, _ := seed(t, store)
	ctx := context.Background()
	_ = store.View(ctx, func(v domain.TransactionView) error {
		_, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
			_, err := tx.CreateAccession(domain.Accession{InstituteID: inst.ID, Number: "BGE0002", Group: "curators"})
			return err
		})
		if err != nil {
			t.Fatalf("commit during view: %v", err)
		}
		if len(v.ListAccessions()) != 1 {
			t.Fatalf("open view must not see later commits")
		}
		return nil
	})
}

func TestImportedSnapshotIsIndexed(t *testing.T) {
	source := NewStore()
	inst, _ := seed(t, source)
	_, err := source.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		for i := 2; i < 50; i++ {
			if _, err := tx.CreateAccession(domain.Accession{InstituteID: inst.ID, Number: fmt.Sprintf("BGE%04d", i), Group: "curators"}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("bulk: %v", err)
	}
	target := NewStore()
	target.ImportState(source.ExportState())
	_ = target.View(context.Background(), func(v domain.TransactionView) error {
		if _, ok := v.FindInstituteByCode("ESP004"); !ok {
			t.Fatalf("institute not indexed after import")
		}
		if _, ok := v.FindAccessionByNumber(inst.ID, "BGE0049"); !ok {
			t.Fatalf("accession not indexed after import")
		}
		if len(v.ListInstituteAccessions(inst.ID)) != 49 {
			t.Fatalf("unexpected institute membership")
		}
		return nil
	})
}
