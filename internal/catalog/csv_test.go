package catalog

import (
	"bytes"
	"errors"
	"reflect"
	"strings"
	"testing"

	"genebank/pkg/domain"
)

func TestReadAccessionsBuildsDocuments(t *testing.T) {
	input := "\ufeffinstcode,ACCENUMB,GENUS,SPECIES,ORIGCTY,IS_AVAILABLE,EXTRA\n" +
		"ESP004,BGE0001,Solanum,lycopersicum,ESP,yes,x\n" +
		"ESP004,BGE0002,Capsicum,,,0,\n"
	docs, err := ReadAccessions(strings.NewReader(input))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(docs))
	}
	first := docs[0]
	if first.Metadata != nil {
		t.Fatalf("csv documents carry no metadata")
	}
	if first.Data["instituteCode"] != "ESP004" || first.Data["isAvailable"] != true {
		t.Fatalf("unexpected first document %+v", first.Data)
	}
	a, err := NewAccessionFromPayload(first)
	if err != nil {
		t.Fatalf("csv document must be a valid payload: %v", err)
	}
	if got := a.Passports()[0].Country(); got != "ESP" {
		t.Fatalf("unexpected country %q", got)
	}
	if docs[1].Data["isAvailable"] != false {
		t.Fatalf("expected isAvailable false, got %v", docs[1].Data["isAvailable"])
	}
}

func TestReadAccessionsAggregatesRowErrors(t *testing.T) {
	input := "INSTCODE,ACCENUMB,CONSTATUS,DECLATITUDE\n" +
		"ESP004,1,is_active,10\n" +
		"ESP004,2,lost,\n" +
		"ESP004,3,,north\n"
	_, err := ReadAccessions(strings.NewReader(input))
	var batch *domain.BatchError
	if !errors.As(err, &batch) {
		t.Fatalf("expected batch error, got %v", err)
	}
	if len(batch.Messages) != 2 {
		t.Fatalf("expected two row failures, got %v", batch.Messages)
	}
	if !strings.HasPrefix(batch.Messages[0], "item 1:") || !strings.HasPrefix(batch.Messages[1], "item 2:") {
		t.Fatalf("unexpected messages %v", batch.Messages)
	}
}

func TestReadEmptyCSV(t *testing.T) {
	_, err := ReadInstitutes(strings.NewReader(""))
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error for empty csv, got %v", err)
	}
	docs, err := ReadInstitutes(strings.NewReader("INSTCODE,NAME\n"))
	if err != nil || len(docs) != 0 {
		t.Fatalf("header only csv must yield no documents, got %v %v", docs, err)
	}
}

func TestReadAccessionSets(t *testing.T) {
	input := "INSTCODE,ACCESETNUMB,ACCESSIONS\n" +
		"ESP004,SET1,ESP004:1; ESP004:2\n" +
		"ESP004,SET2,\n"
	docs, err := ReadAccessionSets(strings.NewReader(input))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	want := []any{
		map[string]any{"instituteCode": "ESP004", "germplasmNumber": "1"},
		map[string]any{"instituteCode": "ESP004", "germplasmNumber": "2"},
	}
	if !reflect.DeepEqual(docs[0].Data["accessions"], want) {
		t.Fatalf("unexpected accessions %v", docs[0].Data["accessions"])
	}
	if !reflect.DeepEqual(docs[1].Data["accessions"], []any{}) {
		t.Fatalf("expected empty accessions list, got %v", docs[1].Data["accessions"])
	}

	_, err = ReadAccessionSets(strings.NewReader("INSTCODE,ACCESETNUMB,ACCESSIONS\nESP004,SET1,ESP004-1\n"))
	if err == nil || !strings.Contains(err.Error(), "instituteCode:germplasmNumber") {
		t.Fatalf("expected malformed reference error, got %v", err)
	}
}

func TestWriteAccessionsHeaderAndColumns(t *testing.T) {
	a := NewAccession()
	if err := a.PopulateFromRow([]string{"INSTCODE", "ACCENUMB", "GENUS", "REMARKS"}, []string{"ESP004", "1", "Solanum", "a, b"}); err != nil {
		t.Fatalf("populate: %v", err)
	}
	var buf bytes.Buffer
	if err := WriteAccessions(&buf, []*Accession{a}, nil); err != nil {
		t.Fatalf("write: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header and one row, got %q", buf.String())
	}
	if !strings.HasPrefix(lines[0], "PUID,INSTCODE,ACCENUMB,CONSTATUS,IS_AVAILABLE,IS_SAVE_DUPLICATE,ACCENAME") {
		t.Fatalf("unexpected header %q", lines[0])
	}
	if !strings.HasSuffix(lines[1], `"a, b"`) {
		t.Fatalf("expected quoted remarks, got %q", lines[1])
	}

	buf.Reset()
	columns, err := ColumnsForFields(domain.EntityAccession, AccessionColumns, []Field{FieldInstituteCode, FieldGermplasmNumber})
	if err != nil {
		t.Fatalf("columns: %v", err)
	}
	if err := WriteAccessions(&buf, []*Accession{a}, columns); err != nil {
		t.Fatalf("write: %v", err)
	}
	if buf.String() != "INSTCODE,ACCENUMB\nESP004,1\n" {
		t.Fatalf("unexpected restricted csv %q", buf.String())
	}
}

func TestWriteAccessionSetsAndInstitutes(t *testing.T) {
	set := NewAccessionSet()
	set.SetInstituteCode("ESP004")
	set.SetNumber("SET1")
	set.SetAccessions([]AccessionRef{{"ESP004", "1"}, {"ESP026", "7"}})
	var buf bytes.Buffer
	if err := WriteAccessionSets(&buf, []*AccessionSet{set}, nil); err != nil {
		t.Fatalf("write sets: %v", err)
	}
	if buf.String() != "INSTCODE,ACCESETNUMB,ACCESSIONS\nESP004,SET1,ESP004:1;ESP026:7\n" {
		t.Fatalf("unexpected sets csv %q", buf.String())
	}

	inst := NewInstitute()
	if err := inst.PopulateFromRow([]string{"INSTCODE", "NAME", "CITY"}, []string{"ESP004", "CRF", "Madrid"}); err != nil {
		t.Fatalf("populate institute: %v", err)
	}
	buf.Reset()
	if err := WriteInstitutes(&buf, []*Institute{inst}, []Column{ColInstituteCode, ColCity}); err != nil {
		t.Fatalf("write institutes: %v", err)
	}
	if buf.String() != "INSTCODE,CITY\nESP004,Madrid\n" {
		t.Fatalf("unexpected institutes csv %q", buf.String())
	}
	if err := WriteInstitutes(&buf, []*Institute{inst}, []Column{"BOGUS"}); err == nil {
		t.Fatalf("expected unknown column error")
	}
}

func TestColumnsForPassportsSelectsAllPassportColumns(t *testing.T) {
	cols, err := ColumnsForFields(domain.EntityAccession, AccessionColumns, []Field{FieldPassports})
	if err != nil || !reflect.DeepEqual(cols, PassportColumns.Columns()) {
		t.Fatalf("unexpected columns %v %v", cols, err)
	}
	if cols, err := ColumnsForFields(domain.EntityAccession, AccessionColumns, nil); cols != nil || err != nil {
		t.Fatalf("empty selection must select every column")
	}
}

func TestColumnsForDerivedFields(t *testing.T) {
	cols, err := ColumnsForFields(domain.EntityAccession, AccessionColumns, []Field{FieldGenera, FieldCountries, FieldPassports})
	if err != nil {
		t.Fatalf("columns: %v", err)
	}
	if cols[0] != ColGenus || cols[1] != ColCountry || len(cols) != len(PassportColumns.Columns()) {
		t.Fatalf("expected derived fields first and no duplicate passport columns, got %v", cols)
	}

	var verr *ValidationError
	_, err = ColumnsForFields(domain.EntityAccessionSet, AccessionSetColumns, []Field{FieldInstituteCode, FieldGenera})
	if !errors.As(err, &verr) || err.Error() != "fields not available in csv: genera" {
		t.Fatalf("expected genera rejected for sets, got %v", err)
	}
	_, err = ColumnsForFields(domain.EntityInstitute, InstituteColumns, []Field{FieldStats})
	if !errors.As(err, &verr) {
		t.Fatalf("expected stats rejected for institutes, got %v", err)
	}
}
