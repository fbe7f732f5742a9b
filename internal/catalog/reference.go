package catalog

import "genebank/pkg/domain"

// Visibility decides whether an owned object may be counted for the caller.
type Visibility func(group string, public bool) bool

func countAccessions(view domain.TransactionView, visible Visibility, match func(domain.Passport) bool) int {
	n := 0
	for _, a := range view.ListAccessions() {
		if visible != nil && !visible(a.Group, a.IsPublic) {
			continue
		}
		for _, p := range view.ListPassports(a.ID) {
			if match(p) {
				n++
				break
			}
		}
	}
	return n
}

// CountryDocument renders a country with the number of visible accessions collected there.
func CountryDocument(view domain.TransactionView, c domain.Country, visible Visibility) Document {
	n := countAccessions(view, visible, func(p domain.Passport) bool { return p.CountryCode == c.Code })
	return Document{Data: map[string]any{
		"code":  c.Code,
		"name":  c.Name,
		"stats": map[string]any{"numAccessions": n},
	}}
}

// TaxonDocument renders a taxon with the number of visible accessions classified under it.
func TaxonDocument(view domain.TransactionView, t domain.Taxon, visible Visibility) Document {
	n := countAccessions(view, visible, func(p domain.Passport) bool {
		for _, id := range p.TaxonIDs {
			if id == t.ID {
				return true
			}
		}
		return false
	})
	return Document{Data: map[string]any{
		"rank":  string(t.Rank),
		"name":  t.Name,
		"stats": map[string]any{"numAccessions": n},
	}}
}
