package catalog

import (
	"genebank/pkg/domain"
)

// AccessionFields lists the data keys an accession projection may be restricted to.
var AccessionFields = []Field{
	FieldInstituteCode, FieldGermplasmNumber, FieldConservationStatus, FieldIsAvailable,
	FieldIsSaveDuplicate, FieldPUID, FieldPassports, FieldGenera, FieldCountries,
}

type accessionData struct {
	InstituteCode      string         `json:"instituteCode"`
	GermplasmNumber    string         `json:"germplasmNumber"`
	ConservationStatus string         `json:"conservationStatus,omitempty"`
	IsAvailable        *bool          `json:"isAvailable,omitempty"`
	IsSaveDuplicate    *bool          `json:"isSaveDuplicate,omitempty"`
	PUID               string         `json:"puid,omitempty"`
	Passports          []PassportData `json:"passports"`
	Genera             []string       `json:"genera,omitempty"`
	Countries          []string       `json:"countries,omitempty"`
}

// Accession is the document form of one germplasm sample.
type Accession struct {
	instituteCode      string
	germplasmNumber    string
	conservationStatus string
	isAvailable        *bool
	isSaveDuplicate    *bool
	puid               string
	passports          []*Passport
	genera             []string
	countries          []string
	metadata           *Metadata
	fields             []Field
	merged             *Passport
}

// NewAccession returns an empty accession, typically populated from a CSV row.
func NewAccession() *Accession { return &Accession{} }

// NewAccessionFromPayload validates and copies the data object of doc. The
// metadata envelope is kept when present.
func NewAccessionFromPayload(doc Document) (*Accession, error) {
	if err := ValidateAccessionData(doc.Data); err != nil {
		return nil, err
	}
	var d accessionData
	if err := fromMap(doc.Data, &d); err != nil {
		return nil, invalid(domain.EntityAccession, "%s", err.Error())
	}
	a := &Accession{
		instituteCode:      d.InstituteCode,
		germplasmNumber:    d.GermplasmNumber,
		conservationStatus: d.ConservationStatus,
		isAvailable:        d.IsAvailable,
		isSaveDuplicate:    d.IsSaveDuplicate,
		puid:               d.PUID,
		genera:             d.Genera,
		countries:          d.Countries,
	}
	for _, pd := range d.Passports {
		a.passports = append(a.passports, &Passport{data: pd})
	}
	if doc.Metadata != nil {
		m := MetadataFromMap(doc.Metadata)
		a.metadata = &m
	}
	return a, nil
}

// NewAccessionFromRecord projects a persisted accession restricted to fields.
func NewAccessionFromRecord(view domain.TransactionView, rec domain.Accession, fields []Field) (*Accession, error) {
	selected, err := checkFields(domain.EntityAccession, fields, AccessionFields)
	if err != nil {
		return nil, err
	}
	a := &Accession{
		germplasmNumber:    rec.Number,
		conservationStatus: rec.ConservationStatus,
		isAvailable:        copyBool(rec.IsAvailable),
		isSaveDuplicate:    copyBool(rec.IsSaveDuplicate),
		puid:               rec.PUID,
		metadata:           &Metadata{Group: rec.Group, IsPublic: rec.IsPublic},
		fields:             selected,
	}
	if inst, ok := view.FindInstitute(rec.InstituteID); ok {
		a.instituteCode = inst.Code
	}
	for _, p := range view.ListPassports(rec.ID) {
		a.passports = append(a.passports, passportFromRecord(view, p))
	}
	a.genera = a.Genera()
	a.countries = a.Countries()
	return a, nil
}

func copyBool(b *bool) *bool {
	if b == nil {
		return nil
	}
	v := *b
	return &v
}

// Key returns "instituteCode:germplasmNumber".
func (a *Accession) Key() string { return a.instituteCode + ":" + a.germplasmNumber }

// InstituteCode returns the holding institute code.
func (a *Accession) InstituteCode() string { return a.instituteCode }

// SetInstituteCode sets the holding institute code.
func (a *Accession) SetInstituteCode(code string) { a.instituteCode = code }

// GermplasmNumber returns the accession number within its institute.
func (a *Accession) GermplasmNumber() string { return a.germplasmNumber }

// SetGermplasmNumber sets the accession number.
func (a *Accession) SetGermplasmNumber(number string) { a.germplasmNumber = number }

// ConservationStatus returns the conservation status code.
func (a *Accession) ConservationStatus() string { return a.conservationStatus }

// SetConservationStatus sets the conservation status; it must be one of ConservationStatuses.
func (a *Accession) SetConservationStatus(status string) error {
	if !oneOf(status, ConservationStatuses) {
		return invalid(domain.EntityAccession, "invalid value for %s: %s", FieldConservationStatus, status)
	}
	a.conservationStatus = status
	return nil
}

// IsAvailable reports availability for distribution; nil when unknown.
func (a *Accession) IsAvailable() *bool { return copyBool(a.isAvailable) }

// SetIsAvailable sets availability for distribution.
func (a *Accession) SetIsAvailable(v bool) { a.isAvailable = &v }

// IsSaveDuplicate reports whether the sample is a safety duplicate; nil when unknown.
func (a *Accession) IsSaveDuplicate() *bool { return copyBool(a.isSaveDuplicate) }

// SetIsSaveDuplicate sets the safety duplicate flag.
func (a *Accession) SetIsSaveDuplicate(v bool) { a.isSaveDuplicate = &v }

// PUID returns the persistent unique identifier.
func (a *Accession) PUID() string { return a.puid }

// SetPUID sets the persistent unique identifier.
func (a *Accession) SetPUID(v string) { a.puid = v }

// Passports returns the accession's passports in insertion order.
func (a *Accession) Passports() []*Passport { return append([]*Passport(nil), a.passports...) }

// AddPassport appends a passport.
func (a *Accession) AddPassport(p *Passport) {
	a.passports = append(a.passports, p)
	a.merged = nil
}

// Metadata returns the envelope and whether one was supplied.
func (a *Accession) Metadata() (Metadata, bool) {
	if a.metadata == nil {
		return Metadata{}, false
	}
	return *a.metadata, true
}

// SetMetadata replaces the envelope.
func (a *Accession) SetMetadata(m Metadata) { a.metadata = &m }

// Genera derives the genus names from the passports in first-seen order.
func (a *Accession) Genera() []string { return DeriveGenera(a.passports) }

// Countries derives the country codes from the passports in first-seen order.
func (a *Accession) Countries() []string { return DeriveCountries(a.passports) }

// DeriveGenera collects distinct genus names in first-seen order.
func DeriveGenera(passports []*Passport) []string {
	var out []string
	for _, p := range passports {
		out = appendUnique(out, p.Taxon(domain.RankGenus))
	}
	return out
}

// DeriveCountries collects distinct country codes in first-seen order.
func DeriveCountries(passports []*Passport) []string {
	var out []string
	for _, p := range passports {
		out = appendUnique(out, p.Country())
	}
	return out
}

// MergedPassport folds every passport into one: for each column the first
// non-empty value in insertion order wins.
func (a *Accession) MergedPassport() *Passport {
	switch len(a.passports) {
	case 0:
		return NewPassport()
	case 1:
		return a.passports[0]
	}
	if a.merged != nil {
		return a.merged
	}
	merged := NewPassport()
	for _, spec := range PassportColumns {
		for _, p := range a.passports {
			if v := spec.Get(p); v != "" {
				_ = spec.Set(merged, v)
				break
			}
		}
	}
	a.merged = merged
	return merged
}

func (a *Accession) primaryPassport() *Passport {
	a.merged = nil
	if len(a.passports) == 0 {
		a.passports = append(a.passports, NewPassport())
	}
	return a.passports[0]
}

// Data returns a deep copy of the data object, restricted to the selected fields.
func (a *Accession) Data() map[string]any {
	d := accessionData{
		InstituteCode:      a.instituteCode,
		GermplasmNumber:    a.germplasmNumber,
		ConservationStatus: a.conservationStatus,
		IsAvailable:        a.isAvailable,
		IsSaveDuplicate:    a.isSaveDuplicate,
		PUID:               a.puid,
		Passports:          make([]PassportData, 0, len(a.passports)),
		Genera:             a.genera,
		Countries:          a.countries,
	}
	for _, p := range a.passports {
		d.Passports = append(d.Passports, p.data)
	}
	return restrict(toMap(d), a.fields)
}

// Document returns the data object with its metadata envelope.
func (a *Accession) Document() Document {
	doc := Document{Data: a.Data()}
	if a.metadata != nil {
		doc.Metadata = a.metadata.Map()
	}
	return doc
}

// ToRow renders the accession over columns; an empty list selects every column.
func (a *Accession) ToRow(columns []Column) ([]string, error) {
	return AccessionColumns.Row(a, columns)
}

// PopulateFromRow applies every non-empty recognised cell of row.
func (a *Accession) PopulateFromRow(header, row []string) error {
	return AccessionColumns.Populate(a, header, row)
}
