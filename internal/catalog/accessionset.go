package catalog

import (
	"genebank/pkg/domain"
)

// AccessionSetFields lists the data keys an accession set projection may be restricted to.
var AccessionSetFields = []Field{
	FieldInstituteCode, FieldAccessionSetNumber, FieldAccessions, FieldGenera, FieldCountries,
}

// AccessionRef identifies an accession by its identity key.
type AccessionRef struct {
	InstituteCode   string `json:"instituteCode"`
	GermplasmNumber string `json:"germplasmNumber"`
}

// Key returns "instituteCode:germplasmNumber".
func (r AccessionRef) Key() string { return r.InstituteCode + ":" + r.GermplasmNumber }

type accessionSetData struct {
	InstituteCode      string         `json:"instituteCode"`
	AccessionSetNumber string         `json:"accessionsetNumber"`
	Accessions         []AccessionRef `json:"accessions"`
	Genera             []string       `json:"genera,omitempty"`
	Countries          []string       `json:"countries,omitempty"`
}

// AccessionSet is the document form of a named collection of accessions.
type AccessionSet struct {
	instituteCode string
	number        string
	accessions    []AccessionRef
	genera        []string
	countries     []string
	metadata      *Metadata
	fields        []Field
}

// NewAccessionSet returns an empty set, typically populated from a CSV row.
func NewAccessionSet() *AccessionSet { return &AccessionSet{} }

// NewAccessionSetFromPayload validates and copies the data object of doc.
func NewAccessionSetFromPayload(doc Document) (*AccessionSet, error) {
	if err := ValidateAccessionSetData(doc.Data); err != nil {
		return nil, err
	}
	var d accessionSetData
	if err := fromMap(doc.Data, &d); err != nil {
		return nil, invalid(domain.EntityAccessionSet, "%s", err.Error())
	}
	s := &AccessionSet{
		instituteCode: d.InstituteCode,
		number:        d.AccessionSetNumber,
		accessions:    d.Accessions,
		genera:        d.Genera,
		countries:     d.Countries,
	}
	if doc.Metadata != nil {
		m := MetadataFromMap(doc.Metadata)
		s.metadata = &m
	}
	return s, nil
}

// NewAccessionSetFromRecord projects a persisted set restricted to fields.
// Genera and countries are derived from the member accessions' passports.
func NewAccessionSetFromRecord(view domain.TransactionView, rec domain.AccessionSet, fields []Field) (*AccessionSet, error) {
	selected, err := checkFields(domain.EntityAccessionSet, fields, AccessionSetFields)
	if err != nil {
		return nil, err
	}
	s := &AccessionSet{
		number:     rec.Number,
		accessions: []AccessionRef{},
		metadata:   &Metadata{Group: rec.Group, IsPublic: rec.IsPublic},
		fields:     selected,
	}
	if inst, ok := view.FindInstitute(rec.InstituteID); ok {
		s.instituteCode = inst.Code
	}
	var passports []*Passport
	for _, id := range rec.AccessionIDs {
		acc, ok := view.FindAccession(id)
		if !ok {
			continue
		}
		ref := AccessionRef{GermplasmNumber: acc.Number}
		if inst, ok := view.FindInstitute(acc.InstituteID); ok {
			ref.InstituteCode = inst.Code
		}
		s.accessions = append(s.accessions, ref)
		for _, p := range view.ListPassports(acc.ID) {
			passports = append(passports, passportFromRecord(view, p))
		}
	}
	s.genera = DeriveGenera(passports)
	s.countries = DeriveCountries(passports)
	return s, nil
}

// Key returns "instituteCode:accessionsetNumber".
func (s *AccessionSet) Key() string { return s.instituteCode + ":" + s.number }

// InstituteCode returns the owning institute code.
func (s *AccessionSet) InstituteCode() string { return s.instituteCode }

// SetInstituteCode sets the owning institute code.
func (s *AccessionSet) SetInstituteCode(code string) { s.instituteCode = code }

// Number returns the set number within its institute.
func (s *AccessionSet) Number() string { return s.number }

// SetNumber sets the set number.
func (s *AccessionSet) SetNumber(number string) { s.number = number }

// Accessions returns the member references.
func (s *AccessionSet) Accessions() []AccessionRef {
	return append([]AccessionRef(nil), s.accessions...)
}

// SetAccessions replaces the member references.
func (s *AccessionSet) SetAccessions(refs []AccessionRef) {
	s.accessions = append([]AccessionRef(nil), refs...)
}

// Genera returns the genus names carried by the document.
func (s *AccessionSet) Genera() []string { return append([]string(nil), s.genera...) }

// Countries returns the country codes carried by the document.
func (s *AccessionSet) Countries() []string { return append([]string(nil), s.countries...) }

// Metadata returns the envelope and whether one was supplied.
func (s *AccessionSet) Metadata() (Metadata, bool) {
	if s.metadata == nil {
		return Metadata{}, false
	}
	return *s.metadata, true
}

// SetMetadata replaces the envelope.
func (s *AccessionSet) SetMetadata(m Metadata) { s.metadata = &m }

// Data returns a deep copy of the data object, restricted to the selected fields.
func (s *AccessionSet) Data() map[string]any {
	d := accessionSetData{
		InstituteCode:      s.instituteCode,
		AccessionSetNumber: s.number,
		Accessions:         s.accessions,
		Genera:             s.genera,
		Countries:          s.countries,
	}
	if d.Accessions == nil {
		d.Accessions = []AccessionRef{}
	}
	return restrict(toMap(d), s.fields)
}

// Document returns the data object with its metadata envelope.
func (s *AccessionSet) Document() Document {
	doc := Document{Data: s.Data()}
	if s.metadata != nil {
		doc.Metadata = s.metadata.Map()
	}
	return doc
}

// ToRow renders the set over columns; an empty list selects every column.
func (s *AccessionSet) ToRow(columns []Column) ([]string, error) {
	return AccessionSetColumns.Row(s, columns)
}

// PopulateFromRow applies every non-empty recognised cell of row.
func (s *AccessionSet) PopulateFromRow(header, row []string) error {
	return AccessionSetColumns.Populate(s, header, row)
}
