package catalog

import "regexp"

// Barcodes must be bare digit strings. The pattern deliberately rejects
// values such as "5.70E+12" left behind by spreadsheet imports that stored
// barcodes in scientific notation.
var barcodePattern = regexp.MustCompile(`^\d{12,13}$`)

// ValidEAN reports whether value is a usable 13-digit EAN barcode.
func ValidEAN(value string) bool {
	return len(value) == 13 && barcodePattern.MatchString(value)
}

// ValidUPC reports whether value is a usable 12-digit UPC-A barcode.
func ValidUPC(value string) bool {
	return len(value) == 12 && barcodePattern.MatchString(value)
}

// SanitizeBarcode returns value when it is a valid barcode and the empty
// string otherwise. Ingest paths use it so corrupted barcodes never reach
// the store.
func SanitizeBarcode(value string) string {
	if barcodePattern.MatchString(value) {
		return value
	}
	return ""
}
