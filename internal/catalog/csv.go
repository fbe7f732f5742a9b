package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"genebank/pkg/domain"
)

const utf8BOM = "\ufeff"

// readRows builds one document per data row. Row failures are collected
// rather than stopping at the first.
func readRows[T any](r io.Reader, table FieldTable[T], build func() *T, doc func(*T) Document) ([]Document, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1
	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, invalid("", "empty csv: a header row is required")
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], utf8BOM)
	}
	docs := []Document{}
	batch := &domain.BatchError{}
	for i := 0; ; i++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		v := build()
		if err := table.Populate(v, header, row); err != nil {
			batch.Add(i, err)
			continue
		}
		docs = append(docs, doc(v))
	}
	if !batch.Empty() {
		return nil, batch
	}
	return docs, nil
}

func writeRows[T any](w io.Writer, table FieldTable[T], items []*T, columns []Column) error {
	if len(columns) == 0 {
		columns = table.Columns()
	}
	writer := csv.NewWriter(w)
	header := make([]string, len(columns))
	for i, c := range columns {
		header[i] = string(c)
	}
	if err := writer.Write(header); err != nil {
		return err
	}
	for _, item := range items {
		row, err := table.Row(item, columns)
		if err != nil {
			return err
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// ReadAccessions parses an accession CSV into data-only documents.
func ReadAccessions(r io.Reader) ([]Document, error) {
	return readRows(r, AccessionColumns, NewAccession, func(a *Accession) Document { return Document{Data: a.Data()} })
}

// ReadAccessionSets parses an accession set CSV into data-only documents.
func ReadAccessionSets(r io.Reader) ([]Document, error) {
	return readRows(r, AccessionSetColumns, NewAccessionSet, func(s *AccessionSet) Document { return Document{Data: s.Data()} })
}

// ReadInstitutes parses an institute CSV into documents.
func ReadInstitutes(r io.Reader) ([]Document, error) {
	return readRows(r, InstituteColumns, NewInstitute, (*Institute).Document)
}

// WriteAccessions emits a header and one row per accession.
func WriteAccessions(w io.Writer, items []*Accession, columns []Column) error {
	return writeRows(w, AccessionColumns, items, columns)
}

// WriteAccessionSets emits a header and one row per accession set.
func WriteAccessionSets(w io.Writer, items []*AccessionSet, columns []Column) error {
	return writeRows(w, AccessionSetColumns, items, columns)
}

// WriteInstitutes emits a header and one row per institute.
func WriteInstitutes(w io.Writer, items []*Institute, columns []Column) error {
	return writeRows(w, InstituteColumns, items, columns)
}

var fieldColumns = map[Field][]Column{
	FieldInstituteCode:      {ColInstituteCode},
	FieldGermplasmNumber:    {ColGermplasmNumber},
	FieldConservationStatus: {ColConservation},
	FieldIsAvailable:        {ColIsAvailable},
	FieldIsSaveDuplicate:    {ColIsSaveDuplicate},
	FieldPUID:               {ColPUID},
	FieldGenera:             {ColGenus},
	FieldCountries:          {ColCountry},
	FieldAccessionSetNumber: {ColAccessionSetNumber},
	FieldAccessions:         {ColAccessions},
	FieldName:               {ColName},
	FieldType:               {ColType},
	FieldAddress:            {ColAddress},
	FieldCity:               {ColCity},
	FieldZipCode:            {ColZipCode},
	FieldEmail:              {ColEmail},
	FieldManager:            {ColManager},
	FieldPhone:              {ColPhone},
	FieldURL:                {ColURL},
}

// ColumnsForFields maps a field selection onto the columns of table.
// "passports" selects every passport column. A field with no column in the
// table is a validation error; an empty selection returns nil (every column).
func ColumnsForFields[T any](entity domain.EntityType, table FieldTable[T], fields []Field) ([]Column, error) {
	if len(fields) == 0 {
		return nil, nil
	}
	var (
		out     []Column
		missing []string
		seen    = make(map[Column]bool)
	)
	for _, f := range fields {
		candidates := fieldColumns[f]
		if f == FieldPassports {
			candidates = PassportColumns.Columns()
		}
		found := false
		for _, c := range candidates {
			if _, ok := table.Lookup(c); !ok {
				continue
			}
			found = true
			if !seen[c] {
				seen[c] = true
				out = append(out, c)
			}
		}
		if !found {
			missing = append(missing, string(f))
		}
	}
	if len(missing) > 0 {
		return nil, invalid(entity, "fields not available in csv: %s", strings.Join(missing, ", "))
	}
	return out, nil
}
