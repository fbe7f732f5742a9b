package memory

import (
	"genebank/pkg/domain"
)

// FindGroupByName retrieves a group by its unique name.
func (v transactionView) FindGroupByName(name string) (domain.Group, bool) {
	g, ok := v.state.groups[v.state.idx.groupByName[name]]
	return g, ok
}

// ListGroups returns all groups ordered by name.
func (v transactionView) ListGroups() []domain.Group {
	return sortedValues(v.state.groups, func(a, b domain.Group) bool { return a.Name < b.Name })
}

// FindUserByUsername retrieves an account by username.
func (v transactionView) FindUserByUsername(username string) (domain.User, bool) {
	u, ok := v.state.users[v.state.idx.userByName[username]]
	if !ok {
		return domain.User{}, false
	}
	return cloneUser(u), true
}

// ListUsers returns all accounts ordered by username.
func (v transactionView) ListUsers() []domain.User {
	out := sortedValues(v.state.users, func(a, b domain.User) bool { return a.Username < b.Username })
	for i := range out {
		out[i] = cloneUser(out[i])
	}
	return out
}

// FindInstitute retrieves an institute by ID.
func (v transactionView) FindInstitute(id string) (domain.Institute, bool) {
	i, ok := v.state.institutes[id]
	return i, ok
}

// FindInstituteByCode retrieves an institute by its unique code.
func (v transactionView) FindInstituteByCode(code string) (domain.Institute, bool) {
	i, ok := v.state.institutes[v.state.idx.instituteByCode[code]]
	return i, ok
}

// ListInstitutes returns all institutes ordered by code.
func (v transactionView) ListInstitutes() []domain.Institute {
	return sortedValues(v.state.institutes, func(a, b domain.Institute) bool { return a.Code < b.Code })
}

// FindCountryByCode retrieves a country by ISO code.
func (v transactionView) FindCountryByCode(code string) (domain.Country, bool) {
	c, ok := v.state.countries[v.state.idx.countryByCode[code]]
	return c, ok
}

// ListCountries returns all countries ordered by code.
func (v transactionView) ListCountries() []domain.Country {
	return sortedValues(v.state.countries, func(a, b domain.Country) bool { return a.Code < b.Code })
}

// FindTaxon retrieves a taxon by ID.
func (v transactionView) FindTaxon(id string) (domain.Taxon, bool) {
	t, ok := v.state.taxa[id]
	return t, ok
}

// FindTaxonByName retrieves a taxon by rank and name.
func (v transactionView) FindTaxonByName(rank domain.TaxonRank, name string) (domain.Taxon, bool) {
	t, ok := v.state.taxa[v.state.idx.taxonByName[taxonKey(rank, name)]]
	return t, ok
}

// ListTaxa returns all taxa ordered by rank then name.
func (v transactionView) ListTaxa() []domain.Taxon {
	order := make(map[domain.TaxonRank]int)
	for i, r := range domain.TaxonRanks() {
		order[r] = i
	}
	return sortedValues(v.state.taxa, func(a, b domain.Taxon) bool {
		if a.Rank != b.Rank {
			return order[a.Rank] < order[b.Rank]
		}
		return a.Name < b.Name
	})
}

// FindAccession retrieves an accession by ID.
func (v transactionView) FindAccession(id string) (domain.Accession, bool) {
	a, ok := v.state.accessions[id]
	if !ok {
		return domain.Accession{}, false
	}
	return cloneAccession(a), true
}

// FindAccessionByNumber retrieves an accession by its identity key.
func (v transactionView) FindAccessionByNumber(instituteID, number string) (domain.Accession, bool) {
	a, ok := v.state.accessions[v.state.idx.accessionByNumber[identityKey(instituteID, number)]]
	if !ok {
		return domain.Accession{}, false
	}
	return cloneAccession(a), true
}

// ListAccessions returns all accessions ordered by institute code then number.
func (v transactionView) ListAccessions() []domain.Accession {
	out := sortedValues(v.state.accessions, func(a, b domain.Accession) bool {
		ac, bc := v.state.institutes[a.InstituteID].Code, v.state.institutes[b.InstituteID].Code
		if ac != bc {
			return ac < bc
		}
		return a.Number < b.Number
	})
	for i := range out {
		out[i] = cloneAccession(out[i])
	}
	return out
}

// ListPassports returns the passports of an accession in insertion order.
func (v transactionView) ListPassports(accessionID string) []domain.Passport {
	ids := v.state.idx.passportsByAccession[accessionID]
	owned := make(map[string]domain.Passport, len(ids))
	for id := range ids {
		owned[id] = v.state.passports[id]
	}
	out := sortedValues(owned, func(a, b domain.Passport) bool {
		if a.Position != b.Position {
			return a.Position < b.Position
		}
		return a.ID < b.ID
	})
	for i := range out {
		out[i] = clonePassport(out[i])
	}
	return out
}

// FindAccessionSet retrieves an accession set by ID.
func (v transactionView) FindAccessionSet(id string) (domain.AccessionSet, bool) {
	s, ok := v.state.accessionSets[id]
	if !ok {
		return domain.AccessionSet{}, false
	}
	return cloneAccessionSet(s), true
}

// FindAccessionSetByNumber retrieves an accession set by its identity key.
func (v transactionView) FindAccessionSetByNumber(instituteID, number string) (domain.AccessionSet, bool) {
	set, ok := v.state.accessionSets[v.state.idx.setByNumber[identityKey(instituteID, number)]]
	if !ok {
		return domain.AccessionSet{}, false
	}
	return cloneAccessionSet(set), true
}

// ListAccessionSets returns all accession sets ordered by institute code then number.
func (v transactionView) ListAccessionSets() []domain.AccessionSet {
	out := sortedValues(v.state.accessionSets, func(a, b domain.AccessionSet) bool {
		ac, bc := v.state.institutes[a.InstituteID].Code, v.state.institutes[b.InstituteID].Code
		if ac != bc {
			return ac < bc
		}
		return a.Number < b.Number
	})
	for i := range out {
		out[i] = cloneAccessionSet(out[i])
	}
	return out
}

// ListInstituteAccessions returns the accessions held by an institute ordered by number.
func (v transactionView) ListInstituteAccessions(instituteID string) []domain.Accession {
	ids := v.state.idx.accessionsByInstitute[instituteID]
	owned := make(map[string]domain.Accession, len(ids))
	for id := range ids {
		owned[id] = cloneAccession(v.state.accessions[id])
	}
	return sortedValues(owned, func(a, b domain.Accession) bool { return a.Number < b.Number })
}

// ListInstituteAccessionSets returns the accession sets of an institute ordered by number.
func (v transactionView) ListInstituteAccessionSets(instituteID string) []domain.AccessionSet {
	ids := v.state.idx.setsByInstitute[instituteID]
	owned := make(map[string]domain.AccessionSet, len(ids))
	for id := range ids {
		owned[id] = cloneAccessionSet(v.state.accessionSets[id])
	}
	return sortedValues(owned, func(a, b domain.AccessionSet) bool { return a.Number < b.Number })
}
