package catalog

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FieldSpec binds a CSV column to a typed accessor pair.
type FieldSpec[T any] struct {
	Column Column
	Get    func(*T) string
	Set    func(*T, string) error
}

// FieldTable is an ordered list of column accessors. Its order is the CSV
// output order.
type FieldTable[T any] []FieldSpec[T]

// Columns lists the table's columns in order.
func (t FieldTable[T]) Columns() []Column {
	out := make([]Column, len(t))
	for i, spec := range t {
		out[i] = spec.Column
	}
	return out
}

// Lookup finds the accessor bound to column.
func (t FieldTable[T]) Lookup(column Column) (FieldSpec[T], bool) {
	for _, spec := range t {
		if spec.Column == column {
			return spec, true
		}
	}
	return FieldSpec[T]{}, false
}

// Row renders v over columns; an empty list selects every column.
func (t FieldTable[T]) Row(v *T, columns []Column) ([]string, error) {
	if len(columns) == 0 {
		columns = t.Columns()
	}
	row := make([]string, len(columns))
	for i, col := range columns {
		spec, ok := t.Lookup(col)
		if !ok {
			return nil, fmt.Errorf("unknown column %s", col)
		}
		row[i] = spec.Get(v)
	}
	return row, nil
}

// Populate invokes the setter of every non-empty recognised cell. Unknown
// columns are skipped.
func (t FieldTable[T]) Populate(v *T, header, row []string) error {
	for i, cell := range row {
		if i >= len(header) {
			break
		}
		cell = strings.TrimSpace(cell)
		if cell == "" {
			continue
		}
		spec, ok := t.Lookup(Column(strings.ToUpper(strings.TrimSpace(header[i]))))
		if !ok {
			continue
		}
		if err := spec.Set(v, cell); err != nil {
			return err
		}
	}
	return nil
}

// ParseColumns turns a header row into columns.
func ParseColumns(header []string) []Column {
	out := make([]Column, len(header))
	for i, h := range header {
		out[i] = Column(strings.ToUpper(strings.TrimSpace(h)))
	}
	return out
}

func formatBool(b *bool) string {
	if b == nil {
		return ""
	}
	if *b {
		return "True"
	}
	return "False"
}

func parseBool(column Column, s string) (bool, error) {
	switch strings.ToLower(s) {
	case "true", "1", "yes":
		return true, nil
	case "false", "0", "no":
		return false, nil
	}
	return false, fmt.Errorf("%s: invalid boolean %q", column, s)
}

func formatFloat(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}

func parseFloat(column Column, s string) (float64, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%s: invalid number %q", column, s)
	}
	return f, nil
}
