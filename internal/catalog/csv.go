package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// csv columns accepted by catalog import. Header matching is
// case-insensitive; unknown columns are ignored.
const (
	columnSetNumber = "set_number"
	columnName      = "name"
	columnEAN       = "ean"
	columnUPC       = "upc"
)

// ParseCSV reads catalog records from a headered CSV stream. Barcodes that
// fail validation (wrong length, scientific-notation artifacts) are blanked
// rather than rejected so one corrupted cell does not sink the import.
func ParseCSV(r io.Reader) ([]Record, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("catalog csv is empty")
		}
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for idx, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = idx
	}
	for _, required := range []string{columnSetNumber, columnName} {
		if _, ok := columns[required]; !ok {
			return nil, fmt.Errorf("catalog csv missing %q column", required)
		}
	}

	var records []Record
	line := 1
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("read csv line %d: %w", line, err)
		}

		record := Record{
			SetNumber: strings.TrimSpace(cell(row, columns, columnSetNumber)),
			Name:      strings.TrimSpace(cell(row, columns, columnName)),
			EAN:       SanitizeBarcode(strings.TrimSpace(cell(row, columns, columnEAN))),
			UPC:       SanitizeBarcode(strings.TrimSpace(cell(row, columns, columnUPC))),
		}
		if record.SetNumber == "" && record.Name == "" {
			continue
		}
		records = append(records, record)
	}
	return records, nil
}

func cell(row []string, columns map[string]int, name string) string {
	idx, ok := columns[name]
	if !ok || idx >= len(row) {
		return ""
	}
	return row[idx]
}
