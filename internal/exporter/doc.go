// Package exporter writes the aggregated tables as xlsx workbooks.
//
// TableWriter creates one workbook per table with a single sheet, a bold
// header row and one row per record. Workbooks are always written from
// scratch, so an existing file is replaced and an empty table produces a
// header-only sheet. Text longer than a spreadsheet cell can hold is cut to
// the limit and recorded as an extraction warning.
//
// Example usage:
//
//	writer := exporter.NewTableWriter(logger)
//	if err := writer.WriteMicroorganisms(ctx, path, tables.Microorganisms, collector); err != nil {
//	    return err
//	}
package exporter
