// Package domain defines the persisted records, transaction contracts and
// error kinds shared by the genebank catalogue.
package domain

import "time"

// EntityType identifies the type of record stored in the catalogue.
type EntityType string

// Supported entity type identifiers used in Change records and persistence buckets.
const (
	// EntityGroup identifies an ownership group.
	EntityGroup EntityType = "group"
	// EntityUser identifies an authenticated account.
	EntityUser EntityType = "user"
	// EntityInstitute identifies a genebank or holding organisation.
	EntityInstitute EntityType = "institute"
	// EntityCountry identifies an ISO 3166 country record.
	EntityCountry EntityType = "country"
	// EntityTaxon identifies a taxon name under a rank.
	EntityTaxon EntityType = "taxon"
	// EntityAccession identifies a germplasm accession.
	EntityAccession EntityType = "accession"
	// EntityPassport identifies a provenance record attached to an accession.
	EntityPassport EntityType = "passport"
	// EntityAccessionSet identifies a named collection of accessions.
	EntityAccessionSet EntityType = "accession_set"
)

// TaxonRank names a taxonomic level.
type TaxonRank string

// Taxon ranks in canonical order, from genus down to forma.
const (
	RankGenus       TaxonRank = "genus"
	RankSpecies     TaxonRank = "species"
	RankSubspecies  TaxonRank = "subspecies"
	RankVariety     TaxonRank = "variety"
	RankConvarietas TaxonRank = "convarietas"
	RankGroup       TaxonRank = "group"
	RankForma       TaxonRank = "forma"
)

// TaxonRanks lists every rank in canonical order.
func TaxonRanks() []TaxonRank {
	return []TaxonRank{RankGenus, RankSpecies, RankSubspecies, RankVariety, RankConvarietas, RankGroup, RankForma}
}

// Valid reports whether the rank is one of the canonical ranks.
func (r TaxonRank) Valid() bool {
	for _, rank := range TaxonRanks() {
		if r == rank {
			return true
		}
	}
	return false
}

// Base contains common fields for all records.
type Base struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Group owns accessions and accession sets. Users belong to groups by name.
type Group struct {
	Base
	Name string `json:"name"`
}

// User is an account that may authenticate against the API.
type User struct {
	Base
	Username string   `json:"username"`
	Groups   []string `json:"groups"`
	IsStaff  bool     `json:"is_staff"`
}

// Institute is catalogue-wide reference data identified by its code.
type Institute struct {
	Base
	Code    string `json:"code"`
	Name    string `json:"name"`
	Type    string `json:"type,omitempty"`
	Address string `json:"address,omitempty"`
	City    string `json:"city,omitempty"`
	ZipCode string `json:"zipcode,omitempty"`
	Email   string `json:"email,omitempty"`
	Manager string `json:"manager,omitempty"`
	Phone   string `json:"phone,omitempty"`
	URL     string `json:"url,omitempty"`
}

// Country is created on first use by a passport.
type Country struct {
	Base
	Code string `json:"code"`
	Name string `json:"name"`
}

// Taxon is unique per (rank, name).
type Taxon struct {
	Base
	Rank TaxonRank `json:"rank"`
	Name string    `json:"name"`
}

// Accession is one physical sample held by an institute.
type Accession struct {
	Base
	InstituteID        string `json:"institute_id"`
	Number             string `json:"number"`
	ConservationStatus string `json:"conservation_status,omitempty"`
	IsAvailable        *bool  `json:"is_available,omitempty"`
	IsSaveDuplicate    *bool  `json:"is_save_duplicate,omitempty"`
	PUID               string `json:"puid,omitempty"`
	Group              string `json:"group"`
	IsPublic           bool   `json:"is_public"`
}

// PassportFields holds the scalar provenance attributes of a passport.
type PassportFields struct {
	GermplasmName         string   `json:"germplasm_name,omitempty"`
	CropName              string   `json:"crop_name,omitempty"`
	BioStatus             string   `json:"bio_status,omitempty"`
	CollectionSource      string   `json:"collection_source,omitempty"`
	DataSource            string   `json:"data_source,omitempty"`
	DataSourceKind        string   `json:"data_source_kind,omitempty"`
	PDCI                  *float64 `json:"pdci,omitempty"`
	AcquisitionDate       string   `json:"acquisition_date,omitempty"`
	Ancestry              string   `json:"ancestry,omitempty"`
	Remarks               string   `json:"remarks,omitempty"`
	State                 string   `json:"state,omitempty"`
	Province              string   `json:"province,omitempty"`
	Municipality          string   `json:"municipality,omitempty"`
	Site                  string   `json:"site,omitempty"`
	Latitude              *float64 `json:"latitude,omitempty"`
	Longitude             *float64 `json:"longitude,omitempty"`
	Elevation             *float64 `json:"elevation,omitempty"`
	CollectionInstitute   string   `json:"collection_institute,omitempty"`
	CollectionNumber      string   `json:"collection_number,omitempty"`
	CollectionFieldNumber string   `json:"collection_field_number,omitempty"`
	DonorInstitute        string   `json:"donor_institute,omitempty"`
	DonorNumber           string   `json:"donor_number,omitempty"`
}

// Passport is a provenance record owned by an accession. Position keeps the
// insertion order within the owning accession.
type Passport struct {
	Base
	AccessionID string   `json:"accession_id"`
	Position    int      `json:"position"`
	CountryCode string   `json:"country_code,omitempty"`
	TaxonIDs    []string `json:"taxon_ids,omitempty"`
	PassportFields
}

// AccessionSet groups existing accessions of one institute.
type AccessionSet struct {
	Base
	InstituteID  string   `json:"institute_id"`
	Number       string   `json:"number"`
	AccessionIDs []string `json:"accession_ids"`
	Group        string   `json:"group"`
	IsPublic     bool     `json:"is_public"`
}

// Change describes a mutation recorded during a transaction.
type Change struct {
	Entity EntityType
	Action Action
	Before any
	After  any
}

// Action indicates the type of modification performed.
type Action string

// Change actions enumerate supported CRUD operations.
const (
	// ActionCreate indicates an entity was created.
	ActionCreate Action = "create"
	// ActionUpdate indicates an entity was updated.
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Result summarises the changes committed by a transaction.
type Result struct {
	Changes []Change
}

// Count returns the number of changes recorded for the entity and action.
func (r Result) Count(entity EntityType, action Action) int {
	n := 0
	for _, c := range r.Changes {
		if c.Entity == entity && c.Action == action {
			n++
		}
	}
	return n
}
