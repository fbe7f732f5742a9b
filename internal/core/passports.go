package core

import (
	"genebank/internal/catalog"
	"genebank/pkg/domain"
)

// createPassports stores passports for an accession, creating any country or
// taxon they mention on first use.
func createPassports(tx domain.Transaction, accessionID string, passports []*catalog.Passport) error {
	for _, p := range passports {
		rec := domain.Passport{AccessionID: accessionID, PassportFields: p.Fields()}
		if code := p.Country(); code != "" {
			if err := ensureCountry(tx, code); err != nil {
				return err
			}
			rec.CountryCode = code
		}
		for _, t := range p.ComposedTaxons() {
			taxon, err := ensureTaxon(tx, t.Rank, t.Name)
			if err != nil {
				return err
			}
			rec.TaxonIDs = append(rec.TaxonIDs, taxon.ID)
		}
		if _, err := tx.CreatePassport(rec); err != nil {
			return err
		}
	}
	return nil
}

// replacePassports drops every stored passport of the accession and stores passports instead.
func replacePassports(tx domain.Transaction, accessionID string, passports []*catalog.Passport) error {
	for _, p := range tx.Snapshot().ListPassports(accessionID) {
		if err := tx.DeletePassport(p.ID); err != nil {
			return err
		}
	}
	return createPassports(tx, accessionID, passports)
}

func ensureCountry(tx domain.Transaction, code string) error {
	if _, ok := tx.Snapshot().FindCountryByCode(code); ok {
		return nil
	}
	name, ok := catalog.CountryName(code)
	if !ok {
		name = code
	}
	_, err := tx.CreateCountry(domain.Country{Code: code, Name: name})
	return err
}

func ensureTaxon(tx domain.Transaction, rank domain.TaxonRank, name string) (domain.Taxon, error) {
	if t, ok := tx.Snapshot().FindTaxonByName(rank, name); ok {
		return t, nil
	}
	return tx.CreateTaxon(domain.Taxon{Rank: rank, Name: name})
}
