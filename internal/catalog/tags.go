// Package catalog holds the in-memory documents of the genebank catalogue:
// accessions, accession sets, institutes and their passports. Each document
// converts between persisted records, API payloads and CSV rows.
package catalog

// Field names a canonical key inside the data object of an API document.
type Field string

// Top-level document keys.
const (
	FieldInstituteCode      Field = "instituteCode"
	FieldGermplasmNumber    Field = "germplasmNumber"
	FieldConservationStatus Field = "conservationStatus"
	FieldIsAvailable        Field = "isAvailable"
	FieldIsSaveDuplicate    Field = "isSaveDuplicate"
	FieldPUID               Field = "puid"
	FieldPassports          Field = "passports"
	FieldGenera             Field = "genera"
	FieldCountries          Field = "countries"
	FieldAccessionSetNumber Field = "accessionsetNumber"
	FieldAccessions         Field = "accessions"
	FieldName               Field = "name"
	FieldType               Field = "type"
	FieldAddress            Field = "address"
	FieldCity               Field = "city"
	FieldZipCode            Field = "zipcode"
	FieldEmail              Field = "email"
	FieldManager            Field = "manager"
	FieldPhone              Field = "phone"
	FieldURL                Field = "url"
	FieldStats              Field = "stats"
)

// Passport keys.
const (
	FieldGermplasmName    Field = "germplasmName"
	FieldCropName         Field = "cropName"
	FieldBioStatus        Field = "bioStatus"
	FieldCollectionSource Field = "collectionSource"
	FieldDataSource       Field = "dataSource"
	FieldDataSourceKind   Field = "dataSourceKind"
	FieldPDCI             Field = "pdci"
	FieldAcquisitionDate  Field = "acquisitionDate"
	FieldAncestry         Field = "ancestry"
	FieldRemarks          Field = "remarks"
	FieldLocation         Field = "location"
	FieldCollection       Field = "collection"
	FieldDonor            Field = "donor"
	FieldTaxonomy         Field = "taxonomy"
	FieldComposedTaxons   Field = "composedTaxons"
	FieldCountry          Field = "country"
	FieldState            Field = "state"
	FieldProvince         Field = "province"
	FieldMunicipality     Field = "municipality"
	FieldSite             Field = "site"
	FieldLatitude         Field = "latitude"
	FieldLongitude        Field = "longitude"
	FieldElevation        Field = "elevation"
	FieldInstitute        Field = "institute"
	FieldNumber           Field = "number"
	FieldFieldNumber      Field = "fieldNumber"
)

// Metadata keys.
const (
	MetaGroup    = "group"
	MetaIsPublic = "is_public"
)

// Column is a CSV column code.
type Column string

// CSV columns, MCPD codes where one exists.
const (
	ColPUID            Column = "PUID"
	ColInstituteCode   Column = "INSTCODE"
	ColGermplasmNumber Column = "ACCENUMB"
	ColConservation    Column = "CONSTATUS"
	ColIsAvailable     Column = "IS_AVAILABLE"
	ColIsSaveDuplicate Column = "IS_SAVE_DUPLICATE"
	ColGermplasmName   Column = "ACCENAME"
	ColCropName        Column = "CROPNAME"
	ColBioStatus       Column = "SAMPSTAT"
	ColCollectionSrc   Column = "COLLSRC"
	ColCollectionInst  Column = "COLLCODE"
	ColCollectionNum   Column = "COLLNUMB"
	ColCollectionField Column = "COLLFIELDNUMB"
	ColDonorInstitute  Column = "DONORCODE"
	ColDonorNumber     Column = "DONORNUMB"
	ColCountry         Column = "ORIGCTY"
	ColState           Column = "STATE"
	ColProvince        Column = "PROVINCE"
	ColMunicipality    Column = "MUNICIPALITY"
	ColSite            Column = "COLLSITE"
	ColLatitude        Column = "DECLATITUDE"
	ColLongitude       Column = "DECLONGITUDE"
	ColElevation       Column = "ELEVATION"
	ColAcquisitionDate Column = "ACQDATE"
	ColAncestry        Column = "ANCEST"
	ColGenus           Column = "GENUS"
	ColSpecies         Column = "SPECIES"
	ColSubspecies      Column = "SUBSPECIES"
	ColVariety         Column = "VARIETY"
	ColConvarietas     Column = "CONVARIETAS"
	ColGroup           Column = "GROUP"
	ColForma           Column = "FORMA"
	ColDataSource      Column = "DATA_SOURCE"
	ColDataSourceKind  Column = "DATA_SOURCE_KIND"
	ColPDCI            Column = "PDCI"
	ColRemarks         Column = "REMARKS"

	ColAccessionSetNumber Column = "ACCESETNUMB"
	ColAccessions         Column = "ACCESSIONS"

	ColName    Column = "NAME"
	ColType    Column = "TYPE"
	ColAddress Column = "ADDRESS"
	ColCity    Column = "CITY"
	ColZipCode Column = "ZIPCODE"
	ColEmail   Column = "EMAIL"
	ColManager Column = "MANAGER"
	ColPhone   Column = "PHONE"
	ColURL     Column = "URL"
)
