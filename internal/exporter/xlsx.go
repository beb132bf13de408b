package exporter

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"microreport/internal/config"
	apperrors "microreport/internal/errors"
	"microreport/internal/infrastructure"
	"microreport/pkg/contracts/domain"
)

const defaultSheet = "Sheet1"

// TableWriter writes record tables as xlsx workbooks
type TableWriter struct {
	sheet  string
	logger *slog.Logger
}

// NewTableWriter creates a new table writer
func NewTableWriter(logger *slog.Logger) *TableWriter {
	return &TableWriter{
		sheet:  config.TableSheetName,
		logger: infrastructure.WithComponent(logger, "tables"),
	}
}

// WriteMicroorganisms writes the microorganism table to path. Truncated
// cells are recorded in collector.
func (w *TableWriter) WriteMicroorganisms(ctx context.Context, path string, records []domain.MicroorganismRecord, collector *apperrors.Collector) error {
	rows := make([][]any, len(records))
	for i, r := range records {
		rows[i] = microorganismRow(r)
	}
	w.fitCells(ctx, MicroorganismHeaders, rows, collector)
	return w.writeTable(ctx, path, MicroorganismHeaders, rows)
}

// WriteAMRMarkers writes the AMR marker table to path. Truncated cells are
// recorded in collector.
func (w *TableWriter) WriteAMRMarkers(ctx context.Context, path string, records []domain.AMRMarkerRecord, collector *apperrors.Collector) error {
	rows := make([][]any, len(records))
	for i, r := range records {
		rows[i] = amrMarkerRow(r)
	}
	w.fitCells(ctx, AMRMarkerHeaders, rows, collector)
	return w.writeTable(ctx, path, AMRMarkerHeaders, rows)
}

// fitCells cuts text cells down to the spreadsheet cell limit and records
// an extraction warning for each one. The first column holds the sample.
func (w *TableWriter) fitCells(ctx context.Context, headers []string, rows [][]any, collector *apperrors.Collector) {
	for _, row := range rows {
		for col, v := range row {
			text, ok := v.(string)
			if !ok || utf8.RuneCountInString(text) <= excelize.TotalCellChars {
				continue
			}
			row[col] = truncateCell(text)

			sample, _ := row[0].(string)
			diag := apperrors.NewExtractionError("cell text exceeds the spreadsheet limit and was truncated", apperrors.ErrCellTooLong).
				WithSample(sample).
				WithField(headers[col])
			if collector != nil {
				collector.Warn(ctx, diag)
			} else {
				w.logger.WarnContext(ctx, diag.Message,
					slog.String("sample", sample),
					slog.String("field", headers[col]))
			}
		}
	}
}

// truncateCell keeps the first TotalCellChars characters of text
func truncateCell(text string) string {
	return string([]rune(text)[:excelize.TotalCellChars])
}

// writeTable streams headers and rows into a new workbook saved at path
func (w *TableWriter) writeTable(ctx context.Context, path string, headers []string, rows [][]any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(defaultSheet, w.sheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	sw, err := f.NewStreamWriter(w.sheet)
	if err != nil {
		return fmt.Errorf("failed to create stream writer: %w", err)
	}

	for col, h := range headers {
		width := float64(len(h) + 4)
		if width < 12 {
			width = 12
		}
		if err := sw.SetColWidth(col+1, col+1, width); err != nil {
			return fmt.Errorf("failed to set column width: %w", err)
		}
	}

	header := make([]any, len(headers))
	for i, h := range headers {
		header[i] = excelize.Cell{StyleID: headerStyle, Value: h}
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, row); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("failed to flush sheet: %w", err)
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", path, err)
	}

	w.logger.InfoContext(ctx, "Table written",
		slog.String("file", path),
		slog.Int("record_count", len(rows)))
	return nil
}
