// Package memory provides an in-memory implementation of the catalogue
// persistence store used for tests, ephemeral environments and as the
// transactional core of the snapshotting backends.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"genebank/pkg/domain"

	"github.com/google/uuid"
)

// Compile-time contract assertions ensuring memory.Store adheres to the domain persistence interfaces.
var _ domain.PersistentStore = (*Store)(nil)

// Store provides an in-memory transactional store for the catalogue.
type Store struct {
	mu    sync.RWMutex
	state memoryState
	nowFn func() time.Time
}

// NewStore constructs an empty in-memory store.
func NewStore() *Store {
	return &Store{
		state: newMemoryState(),
		nowFn: func() time.Time { return time.Now().UTC() },
	}
}

// SetNowFunc overrides the clock used to stamp records.
func (s *Store) SetNowFunc(fn func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if fn != nil {
		s.nowFn = fn
	}
}

// ExportState clones the current store state for external persistence.
func (s *Store) ExportState() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshotFromMemoryState(s.state)
}

// ImportState replaces the store state with the provided snapshot.
func (s *Store) ImportState(snapshot Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = memoryStateFromSnapshot(migrateSnapshot(snapshot))
}

type transaction struct {
	state   memoryState
	changes []domain.Change
	now     time.Time
}

type transactionView struct {
	state *memoryState
}

func newTransactionView(state *memoryState) domain.TransactionView {
	return transactionView{state: state}
}

// RunInTransaction executes fn within a transactional copy of the store state.
// The copy replaces the committed state only when fn succeeds.
func (s *Store) RunInTransaction(ctx context.Context, fn func(tx domain.Transaction) error) (domain.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return domain.Result{}, err
	}
	tx := &transaction{
		state: s.state.clone(),
		now:   s.nowFn(),
	}
	if err := fn(tx); err != nil {
		return domain.Result{}, err
	}
	s.state = tx.state
	return domain.Result{Changes: tx.changes}, nil
}

// View executes fn against the committed state. Commits swap in a new state
// rather than mutating the old one, so the view stays consistent without a copy.
func (s *Store) View(_ context.Context, fn func(domain.TransactionView) error) error {
	s.mu.RLock()
	committed := s.state
	s.mu.RUnlock()
	return fn(newTransactionView(&committed))
}

func newID() string {
	return uuid.NewString()
}

func (tx *transaction) recordChange(change domain.Change) {
	tx.changes = append(tx.changes, change)
}

// Snapshot returns a read-only view over the transactional state.
func (tx *transaction) Snapshot() domain.TransactionView {
	return newTransactionView(&tx.state)
}

func (tx *transaction) stamp(base *domain.Base) {
	if base.ID == "" {
		base.ID = newID()
	}
	base.CreatedAt = tx.now
	base.UpdatedAt = tx.now
}

// CreateGroup stores a new ownership group.
func (tx *transaction) CreateGroup(g domain.Group) (domain.Group, error) {
	if g.Name == "" {
		return domain.Group{}, fmt.Errorf("group name required")
	}
	if _, exists := tx.Snapshot().FindGroupByName(g.Name); exists {
		return domain.Group{}, domain.ConflictError{Entity: domain.EntityGroup, Key: g.Name}
	}
	tx.stamp(&g.Base)
	tx.state.groups[g.ID] = g
	tx.state.idx.groupByName[g.Name] = g.ID
	tx.recordChange(domain.Change{Entity: domain.EntityGroup, Action: domain.ActionCreate, After: g})
	return g, nil
}

// DeleteGroup removes a group that owns no records.
func (tx *transaction) DeleteGroup(id string) error {
	current, ok := tx.state.groups[id]
	if !ok {
		return domain.NotFoundError{Entity: domain.EntityGroup, Key: id}
	}
	for _, a := range tx.state.accessions {
		if a.Group == current.Name {
			return domain.InUseError{Entity: domain.EntityGroup, Key: current.Name, By: domain.EntityAccession, ByKey: a.Number}
		}
	}
	for _, set := range tx.state.accessionSets {
		if set.Group == current.Name {
			return domain.InUseError{Entity: domain.EntityGroup, Key: current.Name, By: domain.EntityAccessionSet, ByKey: set.Number}
		}
	}
	delete(tx.state.groups, id)
	delete(tx.state.idx.groupByName, current.Name)
	tx.recordChange(domain.Change{Entity: domain.EntityGroup, Action: domain.ActionDelete, Before: current})
	return nil
}

// CreateUser stores a new account.
func (tx *transaction) CreateUser(u domain.User) (domain.User, error) {
	if u.Username == "" {
		return domain.User{}, fmt.Errorf("username required")
	}
	if _, exists := tx.Snapshot().FindUserByUsername(u.Username); exists {
		return domain.User{}, domain.ConflictError{Entity: domain.EntityUser, Key: u.Username}
	}
	if err := tx.requireGroups(u.Groups); err != nil {
		return domain.User{}, err
	}
	tx.stamp(&u.Base)
	u.Groups = dedupeStrings(cloneStrings(u.Groups))
	tx.state.users[u.ID] = cloneUser(u)
	tx.state.idx.userByName[u.Username] = u.ID
	tx.recordChange(domain.Change{Entity: domain.EntityUser, Action: domain.ActionCreate, After: cloneUser(u)})
	return cloneUser(u), nil
}

// UpdateUser mutates an existing account.
func (tx *transaction) UpdateUser(id string, mutator func(*domain.User) error) (domain.User, error) {
	current, ok := tx.state.users[id]
	if !ok {
		return domain.User{}, domain.NotFoundError{Entity: domain.EntityUser, Key: id}
	}
	before := cloneUser(current)
	if err := mutator(&current); err != nil {
		return domain.User{}, err
	}
	if current.Username != before.Username {
		return domain.User{}, domain.IdentityChangeError{Entity: domain.EntityUser}
	}
	if err := tx.requireGroups(current.Groups); err != nil {
		return domain.User{}, err
	}
	current.ID = id
	current.Groups = dedupeStrings(current.Groups)
	current.UpdatedAt = tx.now
	tx.state.users[id] = cloneUser(current)
	tx.recordChange(domain.Change{Entity: domain.EntityUser, Action: domain.ActionUpdate, Before: before, After: cloneUser(current)})
	return cloneUser(current), nil
}

func (tx *transaction) requireGroups(names []string) error {
	view := tx.Snapshot()
	for _, name := range names {
		if _, ok := view.FindGroupByName(name); !ok {
			return domain.ReferenceError{Entity: domain.EntityGroup, Key: name}
		}
	}
	return nil
}

// CreateInstitute stores a new institute.
func (tx *transaction) CreateInstitute(i domain.Institute) (domain.Institute, error) {
	if i.Code == "" {
		return domain.Institute{}, fmt.Errorf("institute code required")
	}
	if _, exists := tx.Snapshot().FindInstituteByCode(i.Code); exists {
		return domain.Institute{}, domain.ConflictError{Entity: domain.EntityInstitute, Key: i.Code}
	}
	tx.stamp(&i.Base)
	tx.state.institutes[i.ID] = i
	tx.state.idx.instituteByCode[i.Code] = i.ID
	tx.recordChange(domain.Change{Entity: domain.EntityInstitute, Action: domain.ActionCreate, After: i})
	return i, nil
}

// UpdateInstitute mutates an existing institute. The code is immutable.
func (tx *transaction) UpdateInstitute(id string, mutator func(*domain.Institute) error) (domain.Institute, error) {
	current, ok := tx.state.institutes[id]
	if !ok {
		return domain.Institute{}, domain.NotFoundError{Entity: domain.EntityInstitute, Key: id}
	}
	before := current
	if err := mutator(&current); err != nil {
		return domain.Institute{}, err
	}
	if current.Code != before.Code {
		return domain.Institute{}, domain.IdentityChangeError{Entity: domain.EntityInstitute}
	}
	current.ID = id
	current.CreatedAt = before.CreatedAt
	current.UpdatedAt = tx.now
	tx.state.institutes[id] = current
	tx.recordChange(domain.Change{Entity: domain.EntityInstitute, Action: domain.ActionUpdate, Before: before, After: current})
	return current, nil
}

// DeleteInstitute removes an institute that no accession or set references.
func (tx *transaction) DeleteInstitute(id string) error {
	current, ok := tx.state.institutes[id]
	if !ok {
		return domain.NotFoundError{Entity: domain.EntityInstitute, Key: id}
	}
	view := tx.Snapshot()
	if accessions := view.ListInstituteAccessions(id); len(accessions) > 0 {
		return domain.InUseError{Entity: domain.EntityInstitute, Key: current.Code, By: domain.EntityAccession, ByKey: accessions[0].Number}
	}
	if sets := view.ListInstituteAccessionSets(id); len(sets) > 0 {
		return domain.InUseError{Entity: domain.EntityInstitute, Key: current.Code, By: domain.EntityAccessionSet, ByKey: sets[0].Number}
	}
	delete(tx.state.institutes, id)
	delete(tx.state.idx.instituteByCode, current.Code)
	tx.recordChange(domain.Change{Entity: domain.EntityInstitute, Action: domain.ActionDelete, Before: current})
	return nil
}

// CreateCountry stores a new country.
func (tx *transaction) CreateCountry(c domain.Country) (domain.Country, error) {
	if c.Code == "" {
		return domain.Country{}, fmt.Errorf("country code required")
	}
	if _, exists := tx.Snapshot().FindCountryByCode(c.Code); exists {
		return domain.Country{}, domain.ConflictError{Entity: domain.EntityCountry, Key: c.Code}
	}
	tx.stamp(&c.Base)
	tx.state.countries[c.ID] = c
	tx.state.idx.countryByCode[c.Code] = c.ID
	tx.recordChange(domain.Change{Entity: domain.EntityCountry, Action: domain.ActionCreate, After: c})
	return c, nil
}

// CreateTaxon stores a new taxon name under its rank.
func (tx *transaction) CreateTaxon(t domain.Taxon) (domain.Taxon, error) {
	if !t.Rank.Valid() {
		return domain.Taxon{}, fmt.Errorf("unknown taxon rank %q", t.Rank)
	}
	if t.Name == "" {
		return domain.Taxon{}, fmt.Errorf("taxon name required")
	}
	if _, exists := tx.Snapshot().FindTaxonByName(t.Rank, t.Name); exists {
		return domain.Taxon{}, domain.ConflictError{Entity: domain.EntityTaxon, Key: string(t.Rank) + ":" + t.Name}
	}
	tx.stamp(&t.Base)
	tx.state.taxa[t.ID] = t
	tx.state.idx.taxonByName[taxonKey(t.Rank, t.Name)] = t.ID
	tx.recordChange(domain.Change{Entity: domain.EntityTaxon, Action: domain.ActionCreate, After: t})
	return t, nil
}

// CreateAccession stores a new accession.
func (tx *transaction) CreateAccession(a domain.Accession) (domain.Accession, error) {
	institute, ok := tx.state.institutes[a.InstituteID]
	if !ok {
		return domain.Accession{}, domain.ReferenceError{Entity: domain.EntityInstitute, Key: a.InstituteID}
	}
	if a.Number == "" {
		return domain.Accession{}, fmt.Errorf("accession number required")
	}
	if _, exists := tx.Snapshot().FindAccessionByNumber(a.InstituteID, a.Number); exists {
		return domain.Accession{}, domain.ConflictError{Entity: domain.EntityAccession, Key: institute.Code + ":" + a.Number}
	}
	if _, ok := tx.Snapshot().FindGroupByName(a.Group); !ok {
		return domain.Accession{}, domain.ReferenceError{Entity: domain.EntityGroup, Key: a.Group}
	}
	tx.stamp(&a.Base)
	tx.state.accessions[a.ID] = cloneAccession(a)
	tx.state.idx.addAccession(a.ID, a)
	tx.recordChange(domain.Change{Entity: domain.EntityAccession, Action: domain.ActionCreate, After: cloneAccession(a)})
	return cloneAccession(a), nil
}

// UpdateAccession mutates an accession. Institute and number are immutable.
func (tx *transaction) UpdateAccession(id string, mutator func(*domain.Accession) error) (domain.Accession, error) {
	current, ok := tx.state.accessions[id]
	if !ok {
		return domain.Accession{}, domain.NotFoundError{Entity: domain.EntityAccession, Key: id}
	}
	before := cloneAccession(current)
	if err := mutator(&current); err != nil {
		return domain.Accession{}, err
	}
	if current.InstituteID != before.InstituteID || current.Number != before.Number {
		return domain.Accession{}, domain.IdentityChangeError{Entity: domain.EntityAccession}
	}
	if _, ok := tx.Snapshot().FindGroupByName(current.Group); !ok {
		return domain.Accession{}, domain.ReferenceError{Entity: domain.EntityGroup, Key: current.Group}
	}
	current.ID = id
	current.CreatedAt = before.CreatedAt
	current.UpdatedAt = tx.now
	tx.state.accessions[id] = cloneAccession(current)
	tx.recordChange(domain.Change{Entity: domain.EntityAccession, Action: domain.ActionUpdate, Before: before, After: cloneAccession(current)})
	return cloneAccession(current), nil
}

// DeleteAccession removes an accession with its passports and drops it from
// every accession set.
func (tx *transaction) DeleteAccession(id string) error {
	current, ok := tx.state.accessions[id]
	if !ok {
		return domain.NotFoundError{Entity: domain.EntityAccession, Key: id}
	}
	for pid := range tx.state.idx.passportsByAccession[id] {
		p := tx.state.passports[pid]
		delete(tx.state.passports, pid)
		tx.recordChange(domain.Change{Entity: domain.EntityPassport, Action: domain.ActionDelete, Before: clonePassport(p)})
	}
	for sid, set := range tx.state.accessionSets {
		if !containsString(set.AccessionIDs, id) {
			continue
		}
		before := cloneAccessionSet(set)
		set.AccessionIDs, _ = filterIDs(set.AccessionIDs, func(v string) bool { return v != id })
		set.UpdatedAt = tx.now
		tx.state.accessionSets[sid] = cloneAccessionSet(set)
		tx.recordChange(domain.Change{Entity: domain.EntityAccessionSet, Action: domain.ActionUpdate, Before: before, After: cloneAccessionSet(set)})
	}
	delete(tx.state.accessions, id)
	tx.state.idx.removeAccession(current)
	tx.recordChange(domain.Change{Entity: domain.EntityAccession, Action: domain.ActionDelete, Before: cloneAccession(current)})
	return nil
}

// CreatePassport stores a passport for an existing accession. Position is
// assigned after the last passport of the accession.
func (tx *transaction) CreatePassport(p domain.Passport) (domain.Passport, error) {
	if _, ok := tx.state.accessions[p.AccessionID]; !ok {
		return domain.Passport{}, domain.ReferenceError{Entity: domain.EntityAccession, Key: p.AccessionID}
	}
	if p.CountryCode != "" {
		if _, ok := tx.Snapshot().FindCountryByCode(p.CountryCode); !ok {
			return domain.Passport{}, domain.ReferenceError{Entity: domain.EntityCountry, Key: p.CountryCode}
		}
	}
	for _, taxonID := range p.TaxonIDs {
		if _, ok := tx.state.taxa[taxonID]; !ok {
			return domain.Passport{}, domain.ReferenceError{Entity: domain.EntityTaxon, Key: taxonID}
		}
	}
	p.Position = len(tx.Snapshot().ListPassports(p.AccessionID))
	p.TaxonIDs = dedupeStrings(cloneStrings(p.TaxonIDs))
	tx.stamp(&p.Base)
	tx.state.passports[p.ID] = clonePassport(p)
	tx.state.idx.addPassport(p.ID, p)
	tx.recordChange(domain.Change{Entity: domain.EntityPassport, Action: domain.ActionCreate, After: clonePassport(p)})
	return clonePassport(p), nil
}

// DeletePassport removes a passport.
func (tx *transaction) DeletePassport(id string) error {
	current, ok := tx.state.passports[id]
	if !ok {
		return domain.NotFoundError{Entity: domain.EntityPassport, Key: id}
	}
	delete(tx.state.passports, id)
	tx.state.idx.removePassport(current)
	tx.recordChange(domain.Change{Entity: domain.EntityPassport, Action: domain.ActionDelete, Before: clonePassport(current)})
	return nil
}

// CreateAccessionSet stores a new accession set.
func (tx *transaction) CreateAccessionSet(s domain.AccessionSet) (domain.AccessionSet, error) {
	institute, ok := tx.state.institutes[s.InstituteID]
	if !ok {
		return domain.AccessionSet{}, domain.ReferenceError{Entity: domain.EntityInstitute, Key: s.InstituteID}
	}
	if s.Number == "" {
		return domain.AccessionSet{}, fmt.Errorf("accession set number required")
	}
	if _, exists := tx.Snapshot().FindAccessionSetByNumber(s.InstituteID, s.Number); exists {
		return domain.AccessionSet{}, domain.ConflictError{Entity: domain.EntityAccessionSet, Key: institute.Code + ":" + s.Number}
	}
	if err := tx.validateAccessionSet(s); err != nil {
		return domain.AccessionSet{}, err
	}
	tx.stamp(&s.Base)
	s.AccessionIDs = dedupeStrings(cloneStrings(s.AccessionIDs))
	if s.AccessionIDs == nil {
		s.AccessionIDs = []string{}
	}
	tx.state.accessionSets[s.ID] = cloneAccessionSet(s)
	tx.state.idx.addAccessionSet(s.ID, s)
	tx.recordChange(domain.Change{Entity: domain.EntityAccessionSet, Action: domain.ActionCreate, After: cloneAccessionSet(s)})
	return cloneAccessionSet(s), nil
}

// UpdateAccessionSet mutates an accession set. Institute and number are immutable.
func (tx *transaction) UpdateAccessionSet(id string, mutator func(*domain.AccessionSet) error) (domain.AccessionSet, error) {
	current, ok := tx.state.accessionSets[id]
	if !ok {
		return domain.AccessionSet{}, domain.NotFoundError{Entity: domain.EntityAccessionSet, Key: id}
	}
	before := cloneAccessionSet(current)
	if err := mutator(&current); err != nil {
		return domain.AccessionSet{}, err
	}
	if current.InstituteID != before.InstituteID || current.Number != before.Number {
		return domain.AccessionSet{}, domain.IdentityChangeError{Entity: domain.EntityAccessionSet}
	}
	if err := tx.validateAccessionSet(current); err != nil {
		return domain.AccessionSet{}, err
	}
	current.ID = id
	current.CreatedAt = before.CreatedAt
	current.UpdatedAt = tx.now
	current.AccessionIDs = dedupeStrings(current.AccessionIDs)
	tx.state.accessionSets[id] = cloneAccessionSet(current)
	tx.recordChange(domain.Change{Entity: domain.EntityAccessionSet, Action: domain.ActionUpdate, Before: before, After: cloneAccessionSet(current)})
	return cloneAccessionSet(current), nil
}

// DeleteAccessionSet removes an accession set. Member accessions are kept.
func (tx *transaction) DeleteAccessionSet(id string) error {
	current, ok := tx.state.accessionSets[id]
	if !ok {
		return domain.NotFoundError{Entity: domain.EntityAccessionSet, Key: id}
	}
	delete(tx.state.accessionSets, id)
	tx.state.idx.removeAccessionSet(current)
	tx.recordChange(domain.Change{Entity: domain.EntityAccessionSet, Action: domain.ActionDelete, Before: cloneAccessionSet(current)})
	return nil
}

func (tx *transaction) validateAccessionSet(s domain.AccessionSet) error {
	if _, ok := tx.Snapshot().FindGroupByName(s.Group); !ok {
		return domain.ReferenceError{Entity: domain.EntityGroup, Key: s.Group}
	}
	for _, accessionID := range s.AccessionIDs {
		if _, ok := tx.state.accessions[accessionID]; !ok {
			return domain.ReferenceError{Entity: domain.EntityAccession, Key: accessionID}
		}
	}
	return nil
}
