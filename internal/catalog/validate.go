package catalog

import (
	"math"
	"strconv"

	"genebank/pkg/domain"
)

// Enumerated values accepted by the setters and validators.
var (
	ConservationStatuses = []string{"is_active", "is_missing", "is_historic"}
	BioStatuses          = []string{
		"100", "110", "120", "130", "200", "300", "400", "410", "411", "412", "413",
		"414", "415", "416", "420", "421", "422", "423", "500", "600", "999",
	}
	CollectionSources = []string{
		"10", "11", "12", "13", "14", "15", "20", "21", "22", "23", "24", "25", "26",
		"27", "30", "40", "50", "60", "61", "62", "99",
	}
	DataSourceKinds = []string{"passport", "genebank", "study"}
)

func oneOf(value string, allowed []string) bool {
	for _, a := range allowed {
		if a == value {
			return true
		}
	}
	return false
}

// checker accumulates the first failure while walking a raw object.
type checker struct {
	entity domain.EntityType
	prefix string
	err    *ValidationError
}

func (c *checker) fail(format string, args ...any) {
	if c.err == nil {
		c.err = invalid(c.entity, c.prefix+format, args...)
	}
}

func (c *checker) required(data map[string]any, field Field) {
	v, ok := data[string(field)]
	if !ok || v == nil {
		c.fail("mandatory field missing: %s", field)
		return
	}
	if s, ok := v.(string); !ok || s == "" {
		c.fail("%s must be a non-empty string", field)
	}
}

func (c *checker) str(data map[string]any, field Field) (string, bool) {
	v, ok := data[string(field)]
	if !ok || v == nil {
		return "", false
	}
	s, ok := v.(string)
	if !ok {
		c.fail("%s must be a string", field)
		return "", false
	}
	return s, true
}

func (c *checker) enum(data map[string]any, field Field, allowed []string) {
	if s, ok := c.str(data, field); ok && !oneOf(s, allowed) {
		c.fail("invalid value for %s: %s", field, s)
	}
}

func (c *checker) boolean(data map[string]any, field Field) {
	if v, ok := data[string(field)]; ok && v != nil {
		if _, ok := v.(bool); !ok {
			c.fail("%s must be a boolean", field)
		}
	}
}

func (c *checker) number(data map[string]any, field Field, lo, hi float64) {
	v, ok := data[string(field)]
	if !ok || v == nil {
		return
	}
	f, ok := v.(float64)
	if !ok {
		c.fail("%s must be a number", field)
		return
	}
	if math.IsNaN(f) || f < lo || f > hi {
		c.fail("%s out of range: %v", field, f)
	}
}

func (c *checker) object(data map[string]any, field Field) (map[string]any, bool) {
	v, ok := data[string(field)]
	if !ok || v == nil {
		return nil, false
	}
	m, ok := v.(map[string]any)
	if !ok {
		c.fail("%s must be an object", field)
		return nil, false
	}
	return m, true
}

func (c *checker) list(data map[string]any, field Field) ([]any, bool) {
	v, ok := data[string(field)]
	if !ok || v == nil {
		return nil, false
	}
	l, ok := v.([]any)
	if !ok {
		c.fail("%s must be a list", field)
		return nil, false
	}
	return l, true
}

func (c *checker) stringList(data map[string]any, field Field) {
	items, _ := c.list(data, field)
	for _, item := range items {
		if _, ok := item.(string); !ok {
			c.fail("%s must be a list of strings", field)
			return
		}
	}
}

func (c *checker) result() error {
	if c.err == nil {
		return nil
	}
	return c.err
}

// ValidateAccessionData checks the data object of an accession payload.
func ValidateAccessionData(data map[string]any) error {
	c := &checker{entity: domain.EntityAccession}
	c.required(data, FieldInstituteCode)
	c.required(data, FieldGermplasmNumber)
	c.enum(data, FieldConservationStatus, ConservationStatuses)
	c.boolean(data, FieldIsAvailable)
	c.boolean(data, FieldIsSaveDuplicate)
	c.str(data, FieldPUID)
	c.stringList(data, FieldGenera)
	c.stringList(data, FieldCountries)
	if err := c.result(); err != nil {
		return err
	}
	passports, _ := c.list(data, FieldPassports)
	for i, item := range passports {
		p, ok := item.(map[string]any)
		if !ok {
			c.fail("passport %d must be an object", i)
			break
		}
		if err := validatePassport(p, "passport "+strconv.Itoa(i)+": "); err != nil {
			return err
		}
	}
	return c.result()
}

// ValidatePassportData checks one passport object.
func ValidatePassportData(data map[string]any) error {
	return validatePassport(data, "")
}

func validatePassport(data map[string]any, prefix string) error {
	c := &checker{entity: domain.EntityPassport, prefix: prefix}
	for _, f := range []Field{FieldGermplasmName, FieldCropName, FieldDataSource, FieldAncestry, FieldRemarks} {
		c.str(data, f)
	}
	c.enum(data, FieldBioStatus, BioStatuses)
	c.enum(data, FieldCollectionSource, CollectionSources)
	c.enum(data, FieldDataSourceKind, DataSourceKinds)
	c.number(data, FieldPDCI, 0, 10)
	if date, ok := c.str(data, FieldAcquisitionDate); ok && !validAcquisitionDate(date) {
		c.fail("invalid value for %s: %s", FieldAcquisitionDate, date)
	}
	if loc, ok := c.object(data, FieldLocation); ok {
		if code, ok := c.str(loc, FieldCountry); ok {
			if _, known := CountryName(code); !known {
				c.fail("invalid value for %s: %s", FieldCountry, code)
			}
		}
		for _, f := range []Field{FieldState, FieldProvince, FieldMunicipality, FieldSite} {
			c.str(loc, f)
		}
		c.number(loc, FieldLatitude, -90, 90)
		c.number(loc, FieldLongitude, -180, 180)
		c.number(loc, FieldElevation, -math.MaxFloat64, math.MaxFloat64)
	}
	if coll, ok := c.object(data, FieldCollection); ok {
		for _, f := range []Field{FieldInstitute, FieldNumber, FieldFieldNumber} {
			c.str(coll, f)
		}
	}
	if donor, ok := c.object(data, FieldDonor); ok {
		c.str(donor, FieldInstitute)
		c.str(donor, FieldNumber)
	}
	if tax, ok := c.object(data, FieldTaxonomy); ok {
		taxa, _ := c.list(tax, FieldComposedTaxons)
		for _, item := range taxa {
			pair, ok := item.([]any)
			if !ok || len(pair) != 2 {
				c.fail("%s items must be [rank, name] pairs", FieldComposedTaxons)
				break
			}
			rank, rok := pair[0].(string)
			name, nok := pair[1].(string)
			if !rok || !nok || name == "" {
				c.fail("%s items must be [rank, name] pairs", FieldComposedTaxons)
				break
			}
			if !domain.TaxonRank(rank).Valid() {
				c.fail("invalid taxon rank: %s", rank)
				break
			}
		}
	}
	return c.result()
}

// validAcquisitionDate accepts YYYYMMDD where month and day may be "--".
func validAcquisitionDate(s string) bool {
	if len(s) != 8 {
		return false
	}
	if _, err := strconv.Atoi(s[:4]); err != nil {
		return false
	}
	part := func(p string, max int) bool {
		if p == "--" {
			return true
		}
		n, err := strconv.Atoi(p)
		return err == nil && n >= 1 && n <= max
	}
	if !part(s[4:6], 12) || !part(s[6:8], 31) {
		return false
	}
	return !(s[4:6] == "--" && s[6:8] != "--")
}

// ValidateAccessionSetData checks the data object of an accession set payload.
func ValidateAccessionSetData(data map[string]any) error {
	c := &checker{entity: domain.EntityAccessionSet}
	c.required(data, FieldInstituteCode)
	c.required(data, FieldAccessionSetNumber)
	c.stringList(data, FieldGenera)
	c.stringList(data, FieldCountries)
	accessions, _ := c.list(data, FieldAccessions)
	for i, item := range accessions {
		ref, ok := item.(map[string]any)
		if !ok {
			c.fail("accession %d must be an object", i)
			break
		}
		member := &checker{entity: c.entity, prefix: "accession " + strconv.Itoa(i) + ": "}
		member.required(ref, FieldInstituteCode)
		member.required(ref, FieldGermplasmNumber)
		if c.err == nil {
			c.err = member.err
		}
	}
	return c.result()
}

// ValidateInstituteData checks the data object of an institute payload.
func ValidateInstituteData(data map[string]any) error {
	c := &checker{entity: domain.EntityInstitute}
	c.required(data, FieldInstituteCode)
	c.required(data, FieldName)
	for _, f := range []Field{FieldType, FieldAddress, FieldCity, FieldZipCode, FieldEmail, FieldManager, FieldPhone, FieldURL} {
		c.str(data, f)
	}
	return c.result()
}
