package memory

import (
	"sort"

	"genebank/pkg/domain"
)

type memoryState struct {
	groups        map[string]domain.Group
	users         map[string]domain.User
	institutes    map[string]domain.Institute
	countries     map[string]domain.Country
	taxa          map[string]domain.Taxon
	accessions    map[string]domain.Accession
	passports     map[string]domain.Passport
	accessionSets map[string]domain.AccessionSet
	idx           *keyIndex
}

// Bucket names used by snapshotting backends.
const (
	BucketGroups        = "groups"
	BucketUsers         = "users"
	BucketInstitutes    = "institutes"
	BucketCountries     = "countries"
	BucketTaxa          = "taxa"
	BucketAccessions    = "accessions"
	BucketPassports     = "passports"
	BucketAccessionSets = "accessionsets"
)

// Buckets lists every snapshot bucket in load order.
func Buckets() []string {
	return []string{
		BucketGroups,
		BucketUsers,
		BucketInstitutes,
		BucketCountries,
		BucketTaxa,
		BucketAccessions,
		BucketPassports,
		BucketAccessionSets,
	}
}

// Snapshot captures a point-in-time clone of the store state.
type Snapshot struct {
	Groups        map[string]domain.Group        `json:"groups"`
	Users         map[string]domain.User         `json:"users"`
	Institutes    map[string]domain.Institute    `json:"institutes"`
	Countries     map[string]domain.Country      `json:"countries"`
	Taxa          map[string]domain.Taxon        `json:"taxa"`
	Accessions    map[string]domain.Accession    `json:"accessions"`
	Passports     map[string]domain.Passport     `json:"passports"`
	AccessionSets map[string]domain.AccessionSet `json:"accessionsets"`
}

// Bucket returns a pointer to the map stored under name, suitable as a JSON
// encode or decode target. Unknown names yield nil.
func (s *Snapshot) Bucket(name string) any {
	switch name {
	case BucketGroups:
		return &s.Groups
	case BucketUsers:
		return &s.Users
	case BucketInstitutes:
		return &s.Institutes
	case BucketCountries:
		return &s.Countries
	case BucketTaxa:
		return &s.Taxa
	case BucketAccessions:
		return &s.Accessions
	case BucketPassports:
		return &s.Passports
	case BucketAccessionSets:
		return &s.AccessionSets
	}
	return nil
}

func newMemoryState() memoryState {
	return memoryState{
		groups:        make(map[string]domain.Group),
		users:         make(map[string]domain.User),
		institutes:    make(map[string]domain.Institute),
		countries:     make(map[string]domain.Country),
		taxa:          make(map[string]domain.Taxon),
		accessions:    make(map[string]domain.Accession),
		passports:     make(map[string]domain.Passport),
		accessionSets: make(map[string]domain.AccessionSet),
		idx:           newKeyIndex(),
	}
}

func (s memoryState) clone() memoryState {
	cloned := newMemoryState()
	for k, v := range s.groups {
		cloned.groups[k] = v
	}
	for k, v := range s.users {
		cloned.users[k] = cloneUser(v)
	}
	for k, v := range s.institutes {
		cloned.institutes[k] = v
	}
	for k, v := range s.countries {
		cloned.countries[k] = v
	}
	for k, v := range s.taxa {
		cloned.taxa[k] = v
	}
	for k, v := range s.accessions {
		cloned.accessions[k] = cloneAccession(v)
	}
	for k, v := range s.passports {
		cloned.passports[k] = clonePassport(v)
	}
	for k, v := range s.accessionSets {
		cloned.accessionSets[k] = cloneAccessionSet(v)
	}
	cloned.idx = buildKeyIndex(cloned)
	return cloned
}

func snapshotFromMemoryState(state memoryState) Snapshot {
	cloned := state.clone()
	return Snapshot{
		Groups:        cloned.groups,
		Users:         cloned.users,
		Institutes:    cloned.institutes,
		Countries:     cloned.countries,
		Taxa:          cloned.taxa,
		Accessions:    cloned.accessions,
		Passports:     cloned.passports,
		AccessionSets: cloned.accessionSets,
	}
}

func memoryStateFromSnapshot(s Snapshot) memoryState {
	state := memoryState{
		groups:        s.Groups,
		users:         s.Users,
		institutes:    s.Institutes,
		countries:     s.Countries,
		taxa:          s.Taxa,
		accessions:    s.Accessions,
		passports:     s.Passports,
		accessionSets: s.AccessionSets,
	}
	return state.clone()
}

// migrateSnapshot fills missing buckets and drops dangling references so a
// partially written snapshot still loads into a consistent state.
func migrateSnapshot(snapshot Snapshot) Snapshot {
	if snapshot.Groups == nil {
		snapshot.Groups = map[string]domain.Group{}
	}
	if snapshot.Users == nil {
		snapshot.Users = map[string]domain.User{}
	}
	if snapshot.Institutes == nil {
		snapshot.Institutes = map[string]domain.Institute{}
	}
	if snapshot.Countries == nil {
		snapshot.Countries = map[string]domain.Country{}
	}
	if snapshot.Taxa == nil {
		snapshot.Taxa = map[string]domain.Taxon{}
	}
	if snapshot.Accessions == nil {
		snapshot.Accessions = map[string]domain.Accession{}
	}
	if snapshot.Passports == nil {
		snapshot.Passports = map[string]domain.Passport{}
	}
	if snapshot.AccessionSets == nil {
		snapshot.AccessionSets = map[string]domain.AccessionSet{}
	}

	for id, accession := range snapshot.Accessions {
		if _, ok := snapshot.Institutes[accession.InstituteID]; !ok {
			delete(snapshot.Accessions, id)
		}
	}
	taxonExists := func(id string) bool {
		_, ok := snapshot.Taxa[id]
		return ok
	}
	for id, passport := range snapshot.Passports {
		if _, ok := snapshot.Accessions[passport.AccessionID]; !ok {
			delete(snapshot.Passports, id)
			continue
		}
		if filtered, changed := filterIDs(passport.TaxonIDs, taxonExists); changed {
			passport.TaxonIDs = filtered
			snapshot.Passports[id] = passport
		}
	}
	accessionExists := func(id string) bool {
		_, ok := snapshot.Accessions[id]
		return ok
	}
	for id, set := range snapshot.AccessionSets {
		if _, ok := snapshot.Institutes[set.InstituteID]; !ok {
			delete(snapshot.AccessionSets, id)
			continue
		}
		if filtered, changed := filterIDs(set.AccessionIDs, accessionExists); changed {
			set.AccessionIDs = filtered
			snapshot.AccessionSets[id] = set
		}
	}
	return snapshot
}

func cloneUser(u domain.User) domain.User {
	u.Groups = cloneStrings(u.Groups)
	return u
}

func cloneAccession(a domain.Accession) domain.Accession {
	if a.IsAvailable != nil {
		v := *a.IsAvailable
		a.IsAvailable = &v
	}
	if a.IsSaveDuplicate != nil {
		v := *a.IsSaveDuplicate
		a.IsSaveDuplicate = &v
	}
	return a
}

func clonePassport(p domain.Passport) domain.Passport {
	p.TaxonIDs = cloneStrings(p.TaxonIDs)
	p.PDCI = cloneFloat(p.PDCI)
	p.Latitude = cloneFloat(p.Latitude)
	p.Longitude = cloneFloat(p.Longitude)
	p.Elevation = cloneFloat(p.Elevation)
	return p
}

func cloneAccessionSet(s domain.AccessionSet) domain.AccessionSet {
	s.AccessionIDs = cloneStrings(s.AccessionIDs)
	return s
}

func cloneFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}

func cloneStrings(values []string) []string {
	if values == nil {
		return nil
	}
	out := make([]string, len(values))
	copy(out, values)
	return out
}

func containsString(values []string, id string) bool {
	for _, v := range values {
		if v == id {
			return true
		}
	}
	return false
}

func dedupeStrings(values []string) []string {
	if len(values) == 0 {
		return values
	}
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func filterIDs(values []string, exists func(string) bool) ([]string, bool) {
	if len(values) == 0 {
		return values, false
	}
	filtered := make([]string, 0, len(values))
	changed := false
	for _, id := range values {
		if exists(id) {
			filtered = append(filtered, id)
			continue
		}
		changed = true
	}
	return filtered, changed
}

func sortedValues[T any](m map[string]T, less func(a, b T) bool) []T {
	out := make([]T, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}
