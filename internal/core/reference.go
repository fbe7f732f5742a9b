package core

import (
	"context"

	"genebank/internal/catalog"
	"genebank/internal/permission"
	"genebank/pkg/domain"
)

// ListCountries returns every country used by a passport, with visible accession counts.
func (s *Service) ListCountries(ctx context.Context, actor permission.Actor) ([]catalog.Document, error) {
	out := []catalog.Document{}
	err := s.view(ctx, "country.list", func(v domain.TransactionView) error {
		for _, c := range v.ListCountries() {
			out = append(out, catalog.CountryDocument(v, c, visibility(s.policy, actor)))
		}
		return nil
	})
	return out, err
}

// GetCountry returns one country by its alpha-3 code.
func (s *Service) GetCountry(ctx context.Context, actor permission.Actor, code string) (catalog.Document, error) {
	var out catalog.Document
	err := s.view(ctx, "country.get", func(v domain.TransactionView) error {
		c, ok := v.FindCountryByCode(code)
		if !ok {
			return domain.NotFoundError{Entity: domain.EntityCountry, Key: code}
		}
		out = catalog.CountryDocument(v, c, visibility(s.policy, actor))
		return nil
	})
	return out, err
}

// ListTaxa returns every taxon, optionally only those of rank.
func (s *Service) ListTaxa(ctx context.Context, actor permission.Actor, rank domain.TaxonRank) ([]catalog.Document, error) {
	if rank != "" && !rank.Valid() {
		return nil, &catalog.ValidationError{Entity: domain.EntityTaxon, Msg: "invalid taxon rank: " + string(rank)}
	}
	out := []catalog.Document{}
	err := s.view(ctx, "taxon.list", func(v domain.TransactionView) error {
		for _, t := range v.ListTaxa() {
			if rank != "" && t.Rank != rank {
				continue
			}
			out = append(out, catalog.TaxonDocument(v, t, visibility(s.policy, actor)))
		}
		return nil
	})
	return out, err
}
