package catalog

import (
	"genebank/pkg/domain"
)

// InstituteFields lists the data keys an institute projection may be restricted to.
var InstituteFields = []Field{
	FieldInstituteCode, FieldName, FieldType, FieldAddress, FieldCity, FieldZipCode,
	FieldEmail, FieldManager, FieldPhone, FieldURL, FieldStats,
}

// InstituteStats are derived counters, present only on projections of stored institutes.
type InstituteStats struct {
	NumAccessions    int `json:"numAccessions"`
	NumAccessionSets int `json:"numAccessionsets"`
}

type instituteData struct {
	InstituteCode string          `json:"instituteCode"`
	Name          string          `json:"name"`
	Type          string          `json:"type,omitempty"`
	Address       string          `json:"address,omitempty"`
	City          string          `json:"city,omitempty"`
	ZipCode       string          `json:"zipcode,omitempty"`
	Email         string          `json:"email,omitempty"`
	Manager       string          `json:"manager,omitempty"`
	Phone         string          `json:"phone,omitempty"`
	URL           string          `json:"url,omitempty"`
	Stats         *InstituteStats `json:"stats,omitempty"`
}

// Institute is the document form of a holding organisation. It carries no
// metadata envelope.
type Institute struct {
	data   instituteData
	fields []Field
}

// NewInstitute returns an empty institute, typically populated from a CSV row.
func NewInstitute() *Institute { return &Institute{} }

// NewInstituteFromPayload validates and copies the data object of doc. Stats are read-only and dropped.
func NewInstituteFromPayload(doc Document) (*Institute, error) {
	if err := ValidateInstituteData(doc.Data); err != nil {
		return nil, err
	}
	i := &Institute{}
	if err := fromMap(doc.Data, &i.data); err != nil {
		return nil, invalid(domain.EntityInstitute, "%s", err.Error())
	}
	i.data.Stats = nil
	return i, nil
}

// NewInstituteFromRecord projects a stored institute restricted to fields.
// visible limits which accessions and sets the stats count.
func NewInstituteFromRecord(view domain.TransactionView, rec domain.Institute, fields []Field, visible Visibility) (*Institute, error) {
	selected, err := checkFields(domain.EntityInstitute, fields, InstituteFields)
	if err != nil {
		return nil, err
	}
	i := &Institute{fields: selected}
	i.data = instituteData{
		InstituteCode: rec.Code,
		Name:          rec.Name,
		Type:          rec.Type,
		Address:       rec.Address,
		City:          rec.City,
		ZipCode:       rec.ZipCode,
		Email:         rec.Email,
		Manager:       rec.Manager,
		Phone:         rec.Phone,
		URL:           rec.URL,
		Stats:         &InstituteStats{},
	}
	for _, a := range view.ListInstituteAccessions(rec.ID) {
		if visible == nil || visible(a.Group, a.IsPublic) {
			i.data.Stats.NumAccessions++
		}
	}
	for _, s := range view.ListInstituteAccessionSets(rec.ID) {
		if visible == nil || visible(s.Group, s.IsPublic) {
			i.data.Stats.NumAccessionSets++
		}
	}
	return i, nil
}

// Code returns the institute code.
func (i *Institute) Code() string { return i.data.InstituteCode }

// Name returns the institute name.
func (i *Institute) Name() string { return i.data.Name }

// Record maps the document onto a persisted institute without identity or timestamps.
func (i *Institute) Record() domain.Institute {
	d := i.data
	return domain.Institute{
		Code:    d.InstituteCode,
		Name:    d.Name,
		Type:    d.Type,
		Address: d.Address,
		City:    d.City,
		ZipCode: d.ZipCode,
		Email:   d.Email,
		Manager: d.Manager,
		Phone:   d.Phone,
		URL:     d.URL,
	}
}

// Data returns a deep copy of the data object, restricted to the selected fields.
func (i *Institute) Data() map[string]any { return restrict(toMap(i.data), i.fields) }

// Document returns the data object; institutes have no metadata envelope.
func (i *Institute) Document() Document { return Document{Data: i.Data()} }

// ToRow renders the institute over columns; an empty list selects every column.
func (i *Institute) ToRow(columns []Column) ([]string, error) {
	return InstituteColumns.Row(i, columns)
}

// PopulateFromRow applies every non-empty recognised cell of row.
func (i *Institute) PopulateFromRow(header, row []string) error {
	return InstituteColumns.Populate(i, header, row)
}
