package domain

import "context"

// Transaction exposes the mutations that a persistence implementation must
// support within an atomic scope. Lookups go through Snapshot, which reflects
// every mutation already applied in the same transaction.
type Transaction interface {
	Snapshot() TransactionView
	CreateGroup(Group) (Group, error)
	DeleteGroup(id string) error
	CreateUser(User) (User, error)
	UpdateUser(id string, mutator func(*User) error) (User, error)
	CreateInstitute(Institute) (Institute, error)
	UpdateInstitute(id string, mutator func(*Institute) error) (Institute, error)
	DeleteInstitute(id string) error
	CreateCountry(Country) (Country, error)
	CreateTaxon(Taxon) (Taxon, error)
	CreateAccession(Accession) (Accession, error)
	UpdateAccession(id string, mutator func(*Accession) error) (Accession, error)
	DeleteAccession(id string) error
	CreatePassport(Passport) (Passport, error)
	DeletePassport(id string) error
	CreateAccessionSet(AccessionSet) (AccessionSet, error)
	UpdateAccessionSet(id string, mutator func(*AccessionSet) error) (AccessionSet, error)
	DeleteAccessionSet(id string) error
}

// TransactionView provides read-only access to snapshot data.
type TransactionView interface {
	FindGroupByName(name string) (Group, bool)
	ListGroups() []Group
	FindUserByUsername(username string) (User, bool)
	ListUsers() []User
	FindInstitute(id string) (Institute, bool)
	FindInstituteByCode(code string) (Institute, bool)
	ListInstitutes() []Institute
	FindCountryByCode(code string) (Country, bool)
	ListCountries() []Country
	FindTaxon(id string) (Taxon, bool)
	FindTaxonByName(rank TaxonRank, name string) (Taxon, bool)
	ListTaxa() []Taxon
	FindAccession(id string) (Accession, bool)
	FindAccessionByNumber(instituteID, number string) (Accession, bool)
	ListAccessions() []Accession
	ListInstituteAccessions(instituteID string) []Accession
	ListPassports(accessionID string) []Passport
	FindAccessionSet(id string) (AccessionSet, bool)
	FindAccessionSetByNumber(instituteID, number string) (AccessionSet, bool)
	ListAccessionSets() []AccessionSet
	ListInstituteAccessionSets(instituteID string) []AccessionSet
}

// PersistentStore is a minimal abstraction over durable backends.
type PersistentStore interface {
	RunInTransaction(ctx context.Context, fn func(Transaction) error) (Result, error)
	View(ctx context.Context, fn func(TransactionView) error) error
}
