package core

import (
	"strings"

	"genebank/internal/catalog"
)

// Filter narrows list results; zero fields match everything. Number matches
// the germplasm number of accessions and the set number of accession sets.
type Filter struct {
	InstituteCode string
	Number        string
	Genus         string
	Country       string
	IsAvailable   *bool
	IsPublic      *bool
}

func (f Filter) matchIdentity(instituteCode, number string) bool {
	if f.InstituteCode != "" && f.InstituteCode != instituteCode {
		return false
	}
	return f.Number == "" || f.Number == number
}

func (f Filter) matchPublic(public bool) bool {
	return f.IsPublic == nil || *f.IsPublic == public
}

func (f Filter) matchDerived(genera, countries []string) bool {
	return containsFold(genera, f.Genus) && containsFold(countries, f.Country)
}

func (f Filter) matchAccession(a *catalog.Accession) bool {
	if !f.matchIdentity(a.InstituteCode(), a.GermplasmNumber()) {
		return false
	}
	if f.IsAvailable != nil {
		if v := a.IsAvailable(); v == nil || *v != *f.IsAvailable {
			return false
		}
	}
	return f.matchDerived(a.Genera(), a.Countries())
}

func (f Filter) matchAccessionSet(s *catalog.AccessionSet) bool {
	return f.matchIdentity(s.InstituteCode(), s.Number()) && f.matchDerived(s.Genera(), s.Countries())
}

// containsFold reports whether want is empty or case-insensitively in values.
func containsFold(values []string, want string) bool {
	if want == "" {
		return true
	}
	for _, v := range values {
		if strings.EqualFold(v, want) {
			return true
		}
	}
	return false
}
