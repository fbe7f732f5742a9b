package memory

import "genebank/pkg/domain"

// keyIndex maps natural keys to record IDs. It is rebuilt whenever state is
// cloned and kept current by every mutation inside a transaction.
type keyIndex struct {
	groupByName           map[string]string
	userByName            map[string]string
	instituteByCode       map[string]string
	countryByCode         map[string]string
	taxonByName           map[string]string
	accessionByNumber     map[string]string
	setByNumber           map[string]string
	passportsByAccession  map[string]map[string]struct{}
	accessionsByInstitute map[string]map[string]struct{}
	setsByInstitute       map[string]map[string]struct{}
}

func newKeyIndex() *keyIndex {
	return &keyIndex{
		groupByName:           make(map[string]string),
		userByName:            make(map[string]string),
		instituteByCode:       make(map[string]string),
		countryByCode:         make(map[string]string),
		taxonByName:           make(map[string]string),
		accessionByNumber:     make(map[string]string),
		setByNumber:           make(map[string]string),
		passportsByAccession:  make(map[string]map[string]struct{}),
		accessionsByInstitute: make(map[string]map[string]struct{}),
		setsByInstitute:       make(map[string]map[string]struct{}),
	}
}

func buildKeyIndex(s memoryState) *keyIndex {
	idx := newKeyIndex()
	for id, g := range s.groups {
		idx.groupByName[g.Name] = id
	}
	for id, u := range s.users {
		idx.userByName[u.Username] = id
	}
	for id, i := range s.institutes {
		idx.instituteByCode[i.Code] = id
	}
	for id, c := range s.countries {
		idx.countryByCode[c.Code] = id
	}
	for id, t := range s.taxa {
		idx.taxonByName[taxonKey(t.Rank, t.Name)] = id
	}
	for id, a := range s.accessions {
		idx.addAccession(id, a)
	}
	for id, p := range s.passports {
		idx.addPassport(id, p)
	}
	for id, set := range s.accessionSets {
		idx.addAccessionSet(id, set)
	}
	return idx
}

func taxonKey(rank domain.TaxonRank, name string) string { return string(rank) + "\x00" + name }

func identityKey(instituteID, number string) string { return instituteID + "\x00" + number }

func addMember(m map[string]map[string]struct{}, owner, id string) {
	members, ok := m[owner]
	if !ok {
		members = make(map[string]struct{})
		m[owner] = members
	}
	members[id] = struct{}{}
}

func removeMember(m map[string]map[string]struct{}, owner, id string) {
	if members, ok := m[owner]; ok {
		delete(members, id)
		if len(members) == 0 {
			delete(m, owner)
		}
	}
}

func (idx *keyIndex) addAccession(id string, a domain.Accession) {
	idx.accessionByNumber[identityKey(a.InstituteID, a.Number)] = id
	addMember(idx.accessionsByInstitute, a.InstituteID, id)
}

func (idx *keyIndex) removeAccession(a domain.Accession) {
	delete(idx.accessionByNumber, identityKey(a.InstituteID, a.Number))
	removeMember(idx.accessionsByInstitute, a.InstituteID, a.ID)
	delete(idx.passportsByAccession, a.ID)
}

func (idx *keyIndex) addPassport(id string, p domain.Passport) {
	addMember(idx.passportsByAccession, p.AccessionID, id)
}

func (idx *keyIndex) removePassport(p domain.Passport) {
	removeMember(idx.passportsByAccession, p.AccessionID, p.ID)
}

func (idx *keyIndex) addAccessionSet(id string, s domain.AccessionSet) {
	idx.setByNumber[identityKey(s.InstituteID, s.Number)] = id
	addMember(idx.setsByInstitute, s.InstituteID, id)
}

func (idx *keyIndex) removeAccessionSet(s domain.AccessionSet) {
	delete(idx.setByNumber, identityKey(s.InstituteID, s.Number))
	removeMember(idx.setsByInstitute, s.InstituteID, s.ID)
}
