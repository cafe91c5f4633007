// Package catalog models the locally owned LEGO set catalog.
//
// A Record carries the stable set number ("75192-1" form), a display name,
// and optional EAN/UPC barcodes. The package also owns barcode validation
// (including the guard against barcodes corrupted into scientific notation by
// earlier spreadsheet imports), set-number extraction from free text, and CSV
// catalog ingest.
package catalog
