// Package collector loads price tables from files and cleans them for the
// engines.
//
// # Architecture
//
// A TableSource reads one file into a RawTable; Clean turns the RawTable
// into a core.PriceTable:
//
//	source, err := collector.NewSource("prices.csv", collector.SourceOptions{Separator: ';'})
//	table, err := source.Load(ctx)
//
// # Supported Formats
//
//   - CSV (.csv, .txt): ISO-8859-1 by default, any IANA encoding name and
//     any single-character separator
//   - YAML (.yaml, .yml, .json): the core.PriceTable schema
//
// Spreadsheet workbooks are not read; export them to CSV first.
//
// # Table Layout
//
// The first record is the header: category type, category name, then one
// column per tier. Every following record is a category, except the last
// one which holds the tier thresholds:
//
//	type;name;p1;p2
//	super marché;riz;10;20
//	déco;fleurs;5;15
//	;seuil;10;20
//
// # Cleaning
//
// Clean lowercases and trims every cell, drops exact duplicate records and
// drops categories whose name is empty, "nan" or "#value!". Category names
// must be unique after cleaning.
package collector
