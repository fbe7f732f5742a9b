package catalog

import (
	_ "embed"
	"encoding/csv"
	"strings"
	"sync"
)

//go:embed countries.csv
var countriesCSV string

var (
	countryNamesOnce sync.Once
	countryNames     map[string]string
)

func loadCountryNames() {
	countryNames = make(map[string]string)
	rows, err := csv.NewReader(strings.NewReader(countriesCSV)).ReadAll()
	if err != nil {
		panic("catalog: malformed countries table: " + err.Error())
	}
	for _, row := range rows[1:] {
		countryNames[row[0]] = row[1]
	}
}

// CountryName returns the ISO 3166 short name of an alpha-3 code.
func CountryName(code string) (string, bool) {
	countryNamesOnce.Do(loadCountryNames)
	name, ok := countryNames[code]
	return name, ok
}
