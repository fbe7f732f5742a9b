package catalog

import (
	"strings"

	"genebank/pkg/domain"
)

func strField[T any](col Column, ptr func(*T) *string) FieldSpec[T] {
	return FieldSpec[T]{
		Column: col,
		Get:    func(v *T) string { return *ptr(v) },
		Set:    func(v *T, s string) error { *ptr(v) = s; return nil },
	}
}

// readStr reads through an optional sub-object without allocating it.
func readStr[S any](sub func(*Passport) *S, field func(*S) *string) func(*Passport) string {
	return func(p *Passport) string {
		if s := sub(p); s != nil {
			return *field(s)
		}
		return ""
	}
}

func taxonField(col Column, rank domain.TaxonRank) FieldSpec[Passport] {
	return FieldSpec[Passport]{
		Column: col,
		Get:    func(p *Passport) string { return p.Taxon(rank) },
		Set:    func(p *Passport, s string) error { return p.SetTaxon(rank, s) },
	}
}

func floatField(col Column, get func(*Passport) *float64, set func(*Passport, float64) error) FieldSpec[Passport] {
	return FieldSpec[Passport]{
		Column: col,
		Get:    func(p *Passport) string { return formatFloat(get(p)) },
		Set: func(p *Passport, s string) error {
			f, err := parseFloat(col, s)
			if err != nil {
				return invalid(domain.EntityPassport, "%s", err.Error())
			}
			return set(p, f)
		},
	}
}

func locationOf(p *Passport) *Location     { return p.data.Location }
func collectionOf(p *Passport) *Collection { return p.data.Collection }
func donorOf(p *Passport) *Donor           { return p.data.Donor }

// PassportColumns maps passport attributes to MCPD columns.
var PassportColumns = FieldTable[Passport]{
	strField(ColGermplasmName, func(p *Passport) *string { return &p.data.GermplasmName }),
	strField(ColCropName, func(p *Passport) *string { return &p.data.CropName }),
	{Column: ColBioStatus, Get: func(p *Passport) string { return p.data.BioStatus }, Set: (*Passport).SetBioStatus},
	{Column: ColCollectionSrc, Get: func(p *Passport) string { return p.data.CollectionSource }, Set: (*Passport).SetCollectionSource},
	{
		Column: ColCollectionInst,
		Get:    readStr(collectionOf, func(c *Collection) *string { return &c.Institute }),
		Set:    func(p *Passport, s string) error { p.collection().Institute = s; return nil },
	},
	{
		Column: ColCollectionNum,
		Get:    readStr(collectionOf, func(c *Collection) *string { return &c.Number }),
		Set:    func(p *Passport, s string) error { p.collection().Number = s; return nil },
	},
	{
		Column: ColCollectionField,
		Get:    readStr(collectionOf, func(c *Collection) *string { return &c.FieldNumber }),
		Set:    func(p *Passport, s string) error { p.collection().FieldNumber = s; return nil },
	},
	{
		Column: ColDonorInstitute,
		Get:    readStr(donorOf, func(d *Donor) *string { return &d.Institute }),
		Set:    func(p *Passport, s string) error { p.donor().Institute = s; return nil },
	},
	{
		Column: ColDonorNumber,
		Get:    readStr(donorOf, func(d *Donor) *string { return &d.Number }),
		Set:    func(p *Passport, s string) error { p.donor().Number = s; return nil },
	},
	{Column: ColCountry, Get: (*Passport).Country, Set: (*Passport).SetCountry},
	{
		Column: ColState,
		Get:    readStr(locationOf, func(l *Location) *string { return &l.State }),
		Set:    func(p *Passport, s string) error { p.location().State = s; return nil },
	},
	{
		Column: ColProvince,
		Get:    readStr(locationOf, func(l *Location) *string { return &l.Province }),
		Set:    func(p *Passport, s string) error { p.location().Province = s; return nil },
	},
	{
		Column: ColMunicipality,
		Get:    readStr(locationOf, func(l *Location) *string { return &l.Municipality }),
		Set:    func(p *Passport, s string) error { p.location().Municipality = s; return nil },
	},
	{
		Column: ColSite,
		Get:    readStr(locationOf, func(l *Location) *string { return &l.Site }),
		Set:    func(p *Passport, s string) error { p.location().Site = s; return nil },
	},
	floatField(ColLatitude, func(p *Passport) *float64 {
		if p.data.Location == nil {
			return nil
		}
		return p.data.Location.Latitude
	}, (*Passport).SetLatitude),
	floatField(ColLongitude, func(p *Passport) *float64 {
		if p.data.Location == nil {
			return nil
		}
		return p.data.Location.Longitude
	}, (*Passport).SetLongitude),
	floatField(ColElevation, func(p *Passport) *float64 {
		if p.data.Location == nil {
			return nil
		}
		return p.data.Location.Elevation
	}, func(p *Passport, f float64) error { p.location().Elevation = &f; return nil }),
	{Column: ColAcquisitionDate, Get: func(p *Passport) string { return p.data.AcquisitionDate }, Set: (*Passport).SetAcquisitionDate},
	strField(ColAncestry, func(p *Passport) *string { return &p.data.Ancestry }),
	taxonField(ColGenus, domain.RankGenus),
	taxonField(ColSpecies, domain.RankSpecies),
	taxonField(ColSubspecies, domain.RankSubspecies),
	taxonField(ColVariety, domain.RankVariety),
	taxonField(ColConvarietas, domain.RankConvarietas),
	taxonField(ColGroup, domain.RankGroup),
	taxonField(ColForma, domain.RankForma),
	strField(ColDataSource, func(p *Passport) *string { return &p.data.DataSource }),
	{Column: ColDataSourceKind, Get: func(p *Passport) string { return p.data.DataSourceKind }, Set: (*Passport).SetDataSourceKind},
	floatField(ColPDCI, func(p *Passport) *float64 { return p.data.PDCI }, (*Passport).SetPDCI),
	strField(ColRemarks, func(p *Passport) *string { return &p.data.Remarks }),
}

// liftPassport exposes a passport column on the accession: reads come from
// the merged passport, writes go to the first passport.
func liftPassport(spec FieldSpec[Passport]) FieldSpec[Accession] {
	return FieldSpec[Accession]{
		Column: spec.Column,
		Get:    func(a *Accession) string { return spec.Get(a.MergedPassport()) },
		Set: func(a *Accession, s string) error {
			return spec.Set(a.primaryPassport(), s)
		},
	}
}

func boolField(col Column, ptr func(*Accession) **bool) FieldSpec[Accession] {
	return FieldSpec[Accession]{
		Column: col,
		Get:    func(a *Accession) string { return formatBool(*ptr(a)) },
		Set: func(a *Accession, s string) error {
			b, err := parseBool(col, s)
			if err != nil {
				return invalid(domain.EntityAccession, "%s", err.Error())
			}
			*ptr(a) = &b
			return nil
		},
	}
}

// AccessionColumns is the accession CSV layout.
var AccessionColumns = accessionColumns()

func accessionColumns() FieldTable[Accession] {
	table := FieldTable[Accession]{
		strField(ColPUID, func(a *Accession) *string { return &a.puid }),
		strField(ColInstituteCode, func(a *Accession) *string { return &a.instituteCode }),
		strField(ColGermplasmNumber, func(a *Accession) *string { return &a.germplasmNumber }),
		{Column: ColConservation, Get: (*Accession).ConservationStatus, Set: (*Accession).SetConservationStatus},
		boolField(ColIsAvailable, func(a *Accession) **bool { return &a.isAvailable }),
		boolField(ColIsSaveDuplicate, func(a *Accession) **bool { return &a.isSaveDuplicate }),
	}
	for _, spec := range PassportColumns {
		table = append(table, liftPassport(spec))
	}
	return table
}

// AccessionSetColumns is the accession set CSV layout.
var AccessionSetColumns = FieldTable[AccessionSet]{
	strField(ColInstituteCode, func(s *AccessionSet) *string { return &s.instituteCode }),
	strField(ColAccessionSetNumber, func(s *AccessionSet) *string { return &s.number }),
	{Column: ColAccessions, Get: formatAccessionRefs, Set: parseAccessionRefs},
}

func formatAccessionRefs(s *AccessionSet) string {
	parts := make([]string, len(s.accessions))
	for i, ref := range s.accessions {
		parts[i] = ref.Key()
	}
	return strings.Join(parts, ";")
}

func parseAccessionRefs(s *AccessionSet, cell string) error {
	var refs []AccessionRef
	for _, item := range strings.Split(cell, ";") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		inst, number, ok := strings.Cut(item, ":")
		if !ok || inst == "" || number == "" {
			return invalid(domain.EntityAccessionSet, "%s: %q must be formatted as instituteCode:germplasmNumber", ColAccessions, item)
		}
		refs = append(refs, AccessionRef{InstituteCode: inst, GermplasmNumber: number})
	}
	s.accessions = refs
	return nil
}

// InstituteColumns is the institute CSV layout.
var InstituteColumns = FieldTable[Institute]{
	strField(ColInstituteCode, func(i *Institute) *string { return &i.data.InstituteCode }),
	strField(ColName, func(i *Institute) *string { return &i.data.Name }),
	strField(ColType, func(i *Institute) *string { return &i.data.Type }),
	strField(ColAddress, func(i *Institute) *string { return &i.data.Address }),
	strField(ColCity, func(i *Institute) *string { return &i.data.City }),
	strField(ColZipCode, func(i *Institute) *string { return &i.data.ZipCode }),
	strField(ColEmail, func(i *Institute) *string { return &i.data.Email }),
	strField(ColManager, func(i *Institute) *string { return &i.data.Manager }),
	strField(ColPhone, func(i *Institute) *string { return &i.data.Phone }),
	strField(ColURL, func(i *Institute) *string { return &i.data.URL }),
}
