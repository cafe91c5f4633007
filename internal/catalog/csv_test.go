package catalog

import (
	"strings"
	"testing"
)

func TestParseCSV(t *testing.T) {
	input := `set_number,name,ean,upc
75192-1,Millennium Falcon,5702016617839,673419340538
10179-1,Ultimate Falcon,5.70E+12,
,,,
`
	records, err := ParseCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseCSV failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].EAN != "5702016617839" || records[0].UPC != "673419340538" {
		t.Fatalf("unexpected barcodes on first record: %#v", records[0])
	}
	if records[1].EAN != "" {
		t.Fatalf("corrupted EAN should be blanked, got %q", records[1].EAN)
	}
}

func TestParseCSVRequiresColumns(t *testing.T) {
	if _, err := ParseCSV(strings.NewReader("name\nFalcon\n")); err == nil {
		t.Fatal("expected error for missing set_number column")
	}
	if _, err := ParseCSV(strings.NewReader("")); err == nil {
		t.Fatal("expected error for empty input")
	}
}
