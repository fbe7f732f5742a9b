package catalog

import (
	"encoding/json"
	"fmt"

	"genebank/pkg/domain"
)

// Location is where a sample was collected.
type Location struct {
	Country      string   `json:"country,omitempty"`
	State        string   `json:"state,omitempty"`
	Province     string   `json:"province,omitempty"`
	Municipality string   `json:"municipality,omitempty"`
	Site         string   `json:"site,omitempty"`
	Latitude     *float64 `json:"latitude,omitempty"`
	Longitude    *float64 `json:"longitude,omitempty"`
	Elevation    *float64 `json:"elevation,omitempty"`
}

// Collection identifies the collecting mission.
type Collection struct {
	Institute   string `json:"institute,omitempty"`
	Number      string `json:"number,omitempty"`
	FieldNumber string `json:"fieldNumber,omitempty"`
}

// Donor identifies the institute that donated the sample.
type Donor struct {
	Institute string `json:"institute,omitempty"`
	Number    string `json:"number,omitempty"`
}

// ComposedTaxon is one (rank, name) pair. It encodes as a two element JSON array.
type ComposedTaxon struct {
	Rank domain.TaxonRank
	Name string
}

// MarshalJSON encodes the pair as [rank, name].
func (t ComposedTaxon) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]string{string(t.Rank), t.Name})
}

// UnmarshalJSON decodes a [rank, name] array.
func (t *ComposedTaxon) UnmarshalJSON(b []byte) error {
	var pair [2]string
	if err := json.Unmarshal(b, &pair); err != nil {
		return fmt.Errorf("composed taxon: %w", err)
	}
	t.Rank, t.Name = domain.TaxonRank(pair[0]), pair[1]
	return nil
}

// Taxonomy lists the taxa a passport is classified under.
type Taxonomy struct {
	ComposedTaxons []ComposedTaxon `json:"composedTaxons"`
}

// PassportData is the serialised form of a passport.
type PassportData struct {
	GermplasmName    string      `json:"germplasmName,omitempty"`
	CropName         string      `json:"cropName,omitempty"`
	BioStatus        string      `json:"bioStatus,omitempty"`
	CollectionSource string      `json:"collectionSource,omitempty"`
	DataSource       string      `json:"dataSource,omitempty"`
	DataSourceKind   string      `json:"dataSourceKind,omitempty"`
	PDCI             *float64    `json:"pdci,omitempty"`
	AcquisitionDate  string      `json:"acquisitionDate,omitempty"`
	Ancestry         string      `json:"ancestry,omitempty"`
	Remarks          string      `json:"remarks,omitempty"`
	Location         *Location   `json:"location,omitempty"`
	Collection       *Collection `json:"collection,omitempty"`
	Donor            *Donor      `json:"donor,omitempty"`
	Taxonomy         *Taxonomy   `json:"taxonomy,omitempty"`
}

// Passport is one provenance record of an accession.
type Passport struct {
	data PassportData
}

// NewPassport returns an empty passport.
func NewPassport() *Passport { return &Passport{} }

// NewPassportFromData validates and decodes a passport object.
func NewPassportFromData(data map[string]any) (*Passport, error) {
	if err := ValidatePassportData(data); err != nil {
		return nil, err
	}
	p := &Passport{}
	if err := fromMap(data, &p.data); err != nil {
		return nil, invalid(domain.EntityPassport, "%s", err.Error())
	}
	return p, nil
}

// passportFromRecord rebuilds a passport from its persisted record.
func passportFromRecord(view domain.TransactionView, rec domain.Passport) *Passport {
	f := rec.PassportFields
	p := &Passport{data: PassportData{
		GermplasmName:    f.GermplasmName,
		CropName:         f.CropName,
		BioStatus:        f.BioStatus,
		CollectionSource: f.CollectionSource,
		DataSource:       f.DataSource,
		DataSourceKind:   f.DataSourceKind,
		PDCI:             copyFloat(f.PDCI),
		AcquisitionDate:  f.AcquisitionDate,
		Ancestry:         f.Ancestry,
		Remarks:          f.Remarks,
	}}
	loc := Location{
		Country:      rec.CountryCode,
		State:        f.State,
		Province:     f.Province,
		Municipality: f.Municipality,
		Site:         f.Site,
		Latitude:     copyFloat(f.Latitude),
		Longitude:    copyFloat(f.Longitude),
		Elevation:    copyFloat(f.Elevation),
	}
	if loc != (Location{}) {
		p.data.Location = &loc
	}
	if c := (Collection{Institute: f.CollectionInstitute, Number: f.CollectionNumber, FieldNumber: f.CollectionFieldNumber}); c != (Collection{}) {
		p.data.Collection = &c
	}
	if d := (Donor{Institute: f.DonorInstitute, Number: f.DonorNumber}); d != (Donor{}) {
		p.data.Donor = &d
	}
	for _, id := range rec.TaxonIDs {
		if t, ok := view.FindTaxon(id); ok {
			p.setTaxon(t.Rank, t.Name)
		}
	}
	return p
}

func copyFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}

// Data returns a deep copy of the passport as a generic JSON object.
func (p *Passport) Data() map[string]any { return toMap(p.data) }

// Fields returns the scalar attributes in their persisted form.
func (p *Passport) Fields() domain.PassportFields {
	d := p.data
	f := domain.PassportFields{
		GermplasmName:    d.GermplasmName,
		CropName:         d.CropName,
		BioStatus:        d.BioStatus,
		CollectionSource: d.CollectionSource,
		DataSource:       d.DataSource,
		DataSourceKind:   d.DataSourceKind,
		PDCI:             copyFloat(d.PDCI),
		AcquisitionDate:  d.AcquisitionDate,
		Ancestry:         d.Ancestry,
		Remarks:          d.Remarks,
	}
	if l := d.Location; l != nil {
		f.State, f.Province, f.Municipality, f.Site = l.State, l.Province, l.Municipality, l.Site
		f.Latitude, f.Longitude, f.Elevation = copyFloat(l.Latitude), copyFloat(l.Longitude), copyFloat(l.Elevation)
	}
	if c := d.Collection; c != nil {
		f.CollectionInstitute, f.CollectionNumber, f.CollectionFieldNumber = c.Institute, c.Number, c.FieldNumber
	}
	if dn := d.Donor; dn != nil {
		f.DonorInstitute, f.DonorNumber = dn.Institute, dn.Number
	}
	return f
}

// Country returns the ISO 3166 alpha-3 code of the collecting site.
func (p *Passport) Country() string {
	if p.data.Location == nil {
		return ""
	}
	return p.data.Location.Country
}

// SetCountry sets the collecting country; the code must be a known ISO 3166 alpha-3 code.
func (p *Passport) SetCountry(code string) error {
	if _, ok := CountryName(code); !ok {
		return invalid(domain.EntityPassport, "invalid value for %s: %s", FieldCountry, code)
	}
	p.location().Country = code
	return nil
}

// ComposedTaxons returns a copy of the taxonomy pairs.
func (p *Passport) ComposedTaxons() []ComposedTaxon {
	if p.data.Taxonomy == nil {
		return nil
	}
	return append([]ComposedTaxon(nil), p.data.Taxonomy.ComposedTaxons...)
}

// Taxon returns the taxon name recorded under rank.
func (p *Passport) Taxon(rank domain.TaxonRank) string {
	for _, t := range p.ComposedTaxons() {
		if t.Rank == rank {
			return t.Name
		}
	}
	return ""
}

// SetTaxon records name under rank, replacing any previous name for that rank.
func (p *Passport) SetTaxon(rank domain.TaxonRank, name string) error {
	if !rank.Valid() {
		return invalid(domain.EntityPassport, "invalid taxon rank: %s", rank)
	}
	p.setTaxon(rank, name)
	return nil
}

func (p *Passport) setTaxon(rank domain.TaxonRank, name string) {
	if p.data.Taxonomy == nil {
		p.data.Taxonomy = &Taxonomy{}
	}
	for i, t := range p.data.Taxonomy.ComposedTaxons {
		if t.Rank == rank {
			p.data.Taxonomy.ComposedTaxons[i].Name = name
			return
		}
	}
	p.data.Taxonomy.ComposedTaxons = append(p.data.Taxonomy.ComposedTaxons, ComposedTaxon{Rank: rank, Name: name})
}

// SetBioStatus sets the MCPD biological status code.
func (p *Passport) SetBioStatus(v string) error {
	if !oneOf(v, BioStatuses) {
		return invalid(domain.EntityPassport, "invalid value for %s: %s", FieldBioStatus, v)
	}
	p.data.BioStatus = v
	return nil
}

// SetCollectionSource sets the MCPD collecting source code.
func (p *Passport) SetCollectionSource(v string) error {
	if !oneOf(v, CollectionSources) {
		return invalid(domain.EntityPassport, "invalid value for %s: %s", FieldCollectionSource, v)
	}
	p.data.CollectionSource = v
	return nil
}

// SetDataSourceKind sets the kind of the data source.
func (p *Passport) SetDataSourceKind(v string) error {
	if !oneOf(v, DataSourceKinds) {
		return invalid(domain.EntityPassport, "invalid value for %s: %s", FieldDataSourceKind, v)
	}
	p.data.DataSourceKind = v
	return nil
}

// SetPDCI sets the passport data completeness index (0 to 10).
func (p *Passport) SetPDCI(v float64) error {
	if v < 0 || v > 10 {
		return invalid(domain.EntityPassport, "%s out of range: %v", FieldPDCI, v)
	}
	p.data.PDCI = &v
	return nil
}

// SetAcquisitionDate sets the YYYYMMDD acquisition date.
func (p *Passport) SetAcquisitionDate(v string) error {
	if !validAcquisitionDate(v) {
		return invalid(domain.EntityPassport, "invalid value for %s: %s", FieldAcquisitionDate, v)
	}
	p.data.AcquisitionDate = v
	return nil
}

// SetLatitude sets the decimal latitude.
func (p *Passport) SetLatitude(v float64) error {
	if v < -90 || v > 90 {
		return invalid(domain.EntityPassport, "%s out of range: %v", FieldLatitude, v)
	}
	p.location().Latitude = &v
	return nil
}

// SetLongitude sets the decimal longitude.
func (p *Passport) SetLongitude(v float64) error {
	if v < -180 || v > 180 {
		return invalid(domain.EntityPassport, "%s out of range: %v", FieldLongitude, v)
	}
	p.location().Longitude = &v
	return nil
}

func (p *Passport) location() *Location {
	if p.data.Location == nil {
		p.data.Location = &Location{}
	}
	return p.data.Location
}

func (p *Passport) collection() *Collection {
	if p.data.Collection == nil {
		p.data.Collection = &Collection{}
	}
	return p.data.Collection
}

func (p *Passport) donor() *Donor {
	if p.data.Donor == nil {
		p.data.Donor = &Donor{}
	}
	return p.data.Donor
}

func (p *Passport) clone() *Passport {
	c := &Passport{}
	_ = fromMap(p.Data(), &c.data)
	return c
}
