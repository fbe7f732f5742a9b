package domain

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestConflictErrorIncludesKey(t *testing.T) {
	err := ConflictError{Entity: EntityAccession, Key: "ESP004:BGE0001"}
	if !strings.Contains(err.Error(), "already exists") || !strings.Contains(err.Error(), "ESP004:BGE0001") {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestErrorsUnwrapThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("create: %w", NotFoundError{Entity: EntityInstitute, Key: "X"})
	var nf NotFoundError
	if !errors.As(wrapped, &nf) || nf.Key != "X" {
		t.Fatalf("expected NotFoundError through wrap, got %v", wrapped)
	}
	if !errors.Is(fmt.Errorf("x: %w", ErrForbidden), ErrForbidden) {
		t.Fatalf("expected ErrForbidden sentinel to match")
	}
}

func TestBatchErrorAggregates(t *testing.T) {
	var batch BatchError
	if !batch.Empty() {
		t.Fatalf("expected empty batch")
	}
	batch.Add(0, errors.New("first"))
	batch.Add(3, errors.New("second"))
	if batch.Empty() || len(batch.Messages) != 2 {
		t.Fatalf("expected two messages, got %v", batch.Messages)
	}
	if batch.Messages[1] != "item 3: second" {
		t.Fatalf("unexpected message %q", batch.Messages[1])
	}
	var nilBatch *BatchError
	if !nilBatch.Empty() {
		t.Fatalf("nil batch should be empty")
	}
}

func TestTaxonRanksOrderAndValidity(t *testing.T) {
	ranks := TaxonRanks()
	if ranks[0] != RankGenus || ranks[len(ranks)-1] != RankForma {
		t.Fatalf("unexpected rank order %v", ranks)
	}
	if !RankVariety.Valid() || TaxonRank("kingdom").Valid() {
		t.Fatalf("rank validity mismatch")
	}
}

func TestResultCount(t *testing.T) {
	res := Result{Changes: []Change{
		{Entity: EntityAccession, Action: ActionCreate},
		{Entity: EntityPassport, Action: ActionCreate},
		{Entity: EntityAccession, Action: ActionCreate},
		{Entity: EntityAccession, Action: ActionDelete},
	}}
	if got := res.Count(EntityAccession, ActionCreate); got != 2 {
		t.Fatalf("expected 2 accession creates, got %d", got)
	}
}
