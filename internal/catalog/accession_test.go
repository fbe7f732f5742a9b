package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"

	"genebank/internal/infra/persistence/memory"
	"genebank/pkg/domain"
)

const accessionPayload = `{
	"data": {
		"instituteCode": "ESP004",
		"germplasmNumber": "BGE0001",
		"conservationStatus": "is_active",
		"isAvailable": true,
		"isSaveDuplicate": false,
		"puid": "doi:10.1/abc",
		"passports": [{
			"germplasmName": "Muchamiel",
			"cropName": "tomato",
			"bioStatus": "300",
			"collectionSource": "20",
			"dataSource": "CRF",
			"dataSourceKind": "genebank",
			"pdci": 6.5,
			"acquisitionDate": "1990----",
			"location": {"country": "ESP", "province": "Alicante", "latitude": 38.3, "longitude": -0.48, "elevation": 20},
			"collection": {"institute": "ESP004", "number": "C-12"},
			"donor": {"institute": "ESP026", "number": "D-1"},
			"taxonomy": {"composedTaxons": [["genus", "Solanum"], ["species", "lycopersicum"]]}
		}]
	},
	"metadata": {"group": "curators", "is_public": true}
}`

func decodeDocument(t *testing.T, raw string) Document {
	t.Helper()
	var doc Document
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		t.Fatalf("decode fixture: %v", err)
	}
	return doc
}

func sameJSON(t *testing.T, want, got any) {
	t.Helper()
	w, _ := json.Marshal(want)
	g, _ := json.Marshal(got)
	if string(w) != string(g) {
		t.Fatalf("documents differ\nwant: %s\ngot:  %s", w, g)
	}
}

func TestAccessionPayloadRoundTrip(t *testing.T) {
	doc := decodeDocument(t, accessionPayload)
	a, err := NewAccessionFromPayload(doc)
	if err != nil {
		t.Fatalf("from payload: %v", err)
	}
	sameJSON(t, doc, a.Document())
	if a.Key() != "ESP004:BGE0001" {
		t.Fatalf("unexpected key %s", a.Key())
	}
	if got := a.Genera(); !reflect.DeepEqual(got, []string{"Solanum"}) {
		t.Fatalf("unexpected genera %v", got)
	}
	data := a.Data()
	data["passports"].([]any)[0].(map[string]any)["cropName"] = "mutated"
	if a.Passports()[0].data.CropName != "tomato" {
		t.Fatalf("Data must return a deep copy")
	}
}

func TestAccessionPayloadValidation(t *testing.T) {
	cases := []struct {
		name string
		data string
		want string
	}{
		{"missing institute", `{"germplasmNumber": "1"}`, "mandatory field missing: instituteCode"},
		{"missing number", `{"instituteCode": "ESP004"}`, "mandatory field missing: germplasmNumber"},
		{"bad status", `{"instituteCode": "A", "germplasmNumber": "1", "conservationStatus": "lost"}`, "invalid value for conservationStatus"},
		{"bad bool", `{"instituteCode": "A", "germplasmNumber": "1", "isAvailable": "yes"}`, "isAvailable must be a boolean"},
		{"bad bio status", `{"instituteCode": "A", "germplasmNumber": "1", "passports": [{"bioStatus": "7"}]}`, "passport 0: invalid value for bioStatus"},
		{"bad country", `{"instituteCode": "A", "germplasmNumber": "1", "passports": [{"location": {"country": "XXX"}}]}`, "invalid value for country"},
		{"bad latitude", `{"instituteCode": "A", "germplasmNumber": "1", "passports": [{"location": {"latitude": 91}}]}`, "latitude out of range"},
		{"bad pdci", `{"instituteCode": "A", "germplasmNumber": "1", "passports": [{"pdci": 11}]}`, "pdci out of range"},
		{"bad rank", `{"instituteCode": "A", "germplasmNumber": "1", "passports": [{"taxonomy": {"composedTaxons": [["tribe", "x"]]}}]}`, "invalid taxon rank"},
		{"bad date", `{"instituteCode": "A", "germplasmNumber": "1", "passports": [{"acquisitionDate": "19901301"}]}`, "invalid value for acquisitionDate"},
		{"day without month", `{"instituteCode": "A", "germplasmNumber": "1", "passports": [{"acquisitionDate": "1990--01"}]}`, "invalid value for acquisitionDate"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var data map[string]any
			if err := json.Unmarshal([]byte(tc.data), &data); err != nil {
				t.Fatalf("fixture: %v", err)
			}
			_, err := NewAccessionFromPayload(Document{Data: data})
			var verr *ValidationError
			if !errors.As(err, &verr) || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected validation error containing %q, got %v", tc.want, err)
			}
		})
	}
}

func TestAccessionCSVRowRoundTrip(t *testing.T) {
	header := []string{
		"PUID", "INSTCODE", "ACCENUMB", "CONSTATUS", "IS_AVAILABLE", "IS_SAVE_DUPLICATE", "ACCENAME",
		"SAMPSTAT", "COLLSRC", "COLLCODE", "DONORCODE", "ORIGCTY", "DECLATITUDE", "DECLONGITUDE",
		"ACQDATE", "GENUS", "SPECIES", "DATA_SOURCE_KIND", "PDCI", "REMARKS",
	}
	row := []string{
		"puid-1", "ESP004", "BGE0001", "is_missing", "True", "False", "Muchamiel",
		"300", "20", "ESP004", "ESP026", "ESP", "38.3", "-0.48",
		"199001--", "Solanum", "lycopersicum", "passport", "6.5", "sown 1990",
	}
	a := NewAccession()
	withUnknown := append(append([]string(nil), header...), "NOT_A_COLUMN")
	if err := a.PopulateFromRow(withUnknown, append(append([]string(nil), row...), "ignored")); err != nil {
		t.Fatalf("populate: %v", err)
	}
	got, err := a.ToRow(ParseColumns(header))
	if err != nil {
		t.Fatalf("to row: %v", err)
	}
	if !reflect.DeepEqual(got, row) {
		t.Fatalf("row mismatch\nwant: %v\ngot:  %v", row, got)
	}
	if err := ValidateAccessionData(a.Data()); err != nil {
		t.Fatalf("populated accession must validate: %v", err)
	}
	if _, err := a.ToRow([]Column{"NOPE"}); err == nil {
		t.Fatalf("expected unknown column error")
	}
}

func TestAccessionRowExportsCanonicalForms(t *testing.T) {
	header := []string{"INSTCODE", "ACCENUMB", "DECLATITUDE", "DECLONGITUDE", "IS_AVAILABLE", "ACQDATE"}
	a := NewAccession()
	if err := a.PopulateFromRow(header, []string{"ESP004", "A1", "40.50", "5.0", "true", "1990----"}); err != nil {
		t.Fatalf("populate: %v", err)
	}
	got, err := a.ToRow(ParseColumns(header))
	if err != nil {
		t.Fatalf("to row: %v", err)
	}
	want := []string{"ESP004", "A1", "40.5", "5", "True", "1990----"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected canonical cells\nwant: %v\ngot:  %v", want, got)
	}
	again := NewAccession()
	if err := again.PopulateFromRow(header, got); err != nil {
		t.Fatalf("populate canonical row: %v", err)
	}
	if second, _ := again.ToRow(ParseColumns(header)); !reflect.DeepEqual(second, want) {
		t.Fatalf("canonical row must round-trip unchanged, got %v", second)
	}
}

func TestAccessionRowSkipsEmptyCellsAndRejectsBadValues(t *testing.T) {
	a := NewAccession()
	if err := a.PopulateFromRow([]string{"INSTCODE", "ACCENUMB", "GENUS"}, []string{"ESP004", "1", ""}); err != nil {
		t.Fatalf("populate: %v", err)
	}
	if len(a.Passports()) != 0 {
		t.Fatalf("empty passport cells must not create a passport")
	}
	for _, tc := range [][2]string{
		{"CONSTATUS", "gone"},
		{"IS_AVAILABLE", "maybe"},
		{"DECLATITUDE", "north"},
		{"SAMPSTAT", "1"},
		{"ORIGCTY", "ZZZ"},
	} {
		if err := NewAccession().PopulateFromRow([]string{tc[0]}, []string{tc[1]}); err == nil {
			t.Fatalf("expected %s=%s rejected", tc[0], tc[1])
		}
	}
}

func TestMergedPassportFirstNonEmptyWins(t *testing.T) {
	a := NewAccession()
	first := NewPassport()
	_ = first.SetTaxon(domain.RankGenus, "Solanum")
	first.data.CropName = "tomato"
	second := NewPassport()
	_ = second.SetTaxon(domain.RankGenus, "Capsicum")
	_ = second.SetTaxon(domain.RankSpecies, "annuum")
	_ = second.SetCountry("PER")
	second.data.CropName = "pepper"
	a.AddPassport(first)
	a.AddPassport(second)

	row, err := a.ToRow([]Column{ColCropName, ColGenus, ColSpecies, ColCountry})
	if err != nil {
		t.Fatalf("to row: %v", err)
	}
	want := []string{"tomato", "Solanum", "annuum", "PER"}
	if !reflect.DeepEqual(row, want) {
		t.Fatalf("unexpected merged row %v", row)
	}
	if got := a.Genera(); !reflect.DeepEqual(got, []string{"Solanum", "Capsicum"}) {
		t.Fatalf("unexpected genera %v", got)
	}
}

func seedView(t *testing.T) (*memory.Store, domain.Accession) {
	t.Helper()
	store := memory.NewStore()
	var acc domain.Accession
	_, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		if _, err := tx.CreateGroup(domain.Group{Name: "curators"}); err != nil {
			return err
		}
		inst, err := tx.CreateInstitute(domain.Institute{Code: "ESP004", Name: "CRF"})
		if err != nil {
			return err
		}
		if _, err := tx.CreateCountry(domain.Country{Code: "ESP", Name: "Spain"}); err != nil {
			return err
		}
		genus, err := tx.CreateTaxon(domain.Taxon{Rank: domain.RankGenus, Name: "Solanum"})
		if err != nil {
			return err
		}
		available := true
		acc, err = tx.CreateAccession(domain.Accession{InstituteID: inst.ID, Number: "BGE0001", IsAvailable: &available, Group: "curators"})
		if err != nil {
			return err
		}
		_, err = tx.CreatePassport(domain.Passport{
			AccessionID:    acc.ID,
			CountryCode:    "ESP",
			TaxonIDs:       []string{genus.ID},
			PassportFields: domain.PassportFields{CropName: "tomato"},
		})
		return err
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	return store, acc
}

func TestAccessionFromRecordProjection(t *testing.T) {
	store, rec := seedView(t)
	err := store.View(context.Background(), func(v domain.TransactionView) error {
		a, err := NewAccessionFromRecord(v, rec, nil)
		if err != nil {
			return err
		}
		doc := a.Document()
		if doc.Data["instituteCode"] != "ESP004" || doc.Metadata["group"] != "curators" || doc.Metadata["is_public"] != false {
			t.Fatalf("unexpected document %+v", doc)
		}
		if !reflect.DeepEqual(doc.Data["genera"], []any{"Solanum"}) || !reflect.DeepEqual(doc.Data["countries"], []any{"ESP"}) {
			t.Fatalf("expected derived genera and countries, got %+v", doc.Data)
		}
		restricted, err := NewAccessionFromRecord(v, rec, []Field{FieldInstituteCode})
		if err != nil {
			return err
		}
		if data := restricted.Data(); len(data) != 1 || data["instituteCode"] != "ESP004" {
			t.Fatalf("expected one key, got %+v", data)
		}
		_, err = NewAccessionFromRecord(v, rec, []Field{FieldInstituteCode, "secret"})
		var verr *ValidationError
		if !errors.As(err, &verr) || !strings.Contains(err.Error(), "requested fields not allowed: secret") {
			t.Fatalf("expected fields not allowed, got %v", err)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("view: %v", err)
	}
}

func TestReferenceDocumentsCountVisibleAccessions(t *testing.T) {
	store, _ := seedView(t)
	hidden := func(string, bool) bool { return false }
	err := store.View(context.Background(), func(v domain.TransactionView) error {
		country, _ := v.FindCountryByCode("ESP")
		doc := CountryDocument(v, country, nil)
		if doc.Data["name"] != "Spain" || doc.Data["stats"].(map[string]any)["numAccessions"] != 1 {
			t.Fatalf("unexpected country document %+v", doc.Data)
		}
		if CountryDocument(v, country, hidden).Data["stats"].(map[string]any)["numAccessions"] != 0 {
			t.Fatalf("hidden accessions must not be counted")
		}
		genus, _ := v.FindTaxonByName(domain.RankGenus, "Solanum")
		if TaxonDocument(v, genus, nil).Data["stats"].(map[string]any)["numAccessions"] != 1 {
			t.Fatalf("expected one accession under Solanum")
		}
		inst, _ := v.FindInstituteByCode("ESP004")
		projected, err := NewInstituteFromRecord(v, inst, nil, nil)
		if err != nil {
			return err
		}
		stats := projected.Data()["stats"].(map[string]any)
		if stats["numAccessions"] != 1.0 || stats["numAccessionsets"] != 0.0 {
			t.Fatalf("unexpected institute stats %+v", stats)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("view: %v", err)
	}
}
