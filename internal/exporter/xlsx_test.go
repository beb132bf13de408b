package exporter

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"microreport/internal/config"
	apperrors "microreport/internal/errors"
	"microreport/internal/shared/testutil"
	"microreport/pkg/contracts/domain"
)

func readRows(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{config.TableSheetName}, f.GetSheetList())
	rows, err := f.GetRows(config.TableSheetName)
	require.NoError(t, err)
	return rows
}

func newTestWriter(t *testing.T) *TableWriter {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	return NewTableWriter(logger)
}

func TestWriteMicroorganisms(t *testing.T) {
	w := newTestWriter(t)
	path := filepath.Join(t.TempDir(), config.MicroorganismsTableFile)

	records := []domain.MicroorganismRecord{
		{
			Sample: "sample1", Name: "Escherichia coli", Class: "Bacteria",
			AlignedReadCount: 300, ANI: 99.46, RPKM: 12.35,
			PredictedPresent: true, RelativeAbundance: 75, PhenotypicGroup: "Gram negative",
		},
		{
			Sample: "sample1", Name: "Candida albicans", Class: "Fungi",
			AlignedReadCount: 3, ANI: 95, RPKM: 0.5,
		},
	}

	require.NoError(t, w.WriteMicroorganisms(context.Background(), path, records, nil))

	rows := readRows(t, path)
	require.Len(t, rows, 3)
	assert.Equal(t, MicroorganismHeaders, rows[0])
	assert.Equal(t, []string{
		"sample1", "Escherichia coli", "Bacteria", "300", "99.46", "12.35", "TRUE", "75", "Gram negative", "TRUE",
	}, rows[1])
	assert.Equal(t, []string{
		"sample1", "Candida albicans", "Fungi", "3", "95", "0.5", "FALSE", "0", "", "FALSE",
	}, rows[2])
}

func TestWriteAMRMarkers(t *testing.T) {
	w := newTestWriter(t)
	path := filepath.Join(t.TempDir(), config.AMRMarkersTableFile)

	records := []domain.AMRMarkerRecord{
		{
			Sample:                   "sample2",
			GeneName:                 "blaCTX-M-15",
			Coverage:                 97.78,
			MedianDepth:              14.5,
			AssociatedMicroorganisms: []string{"Escherichia coli", "Klebsiella pneumoniae"},
			Class:                    "Beta-lactam",
			GeneFamily:               "CTX-M",
			PredictedPresent:         true,
		},
		{
			Sample: "sample2", GeneName: "tetA", Coverage: 50, MedianDepth: 3,
			AssociatedMicroorganisms: []string{},
		},
	}

	require.NoError(t, w.WriteAMRMarkers(context.Background(), path, records, nil))

	rows := readRows(t, path)
	require.Len(t, rows, 3)
	assert.Equal(t, AMRMarkerHeaders, rows[0])
	assert.Equal(t, []string{
		"sample2", "blaCTX-M-15", "97.78", "14.5", "Escherichia coli; Klebsiella pneumoniae", "Beta-lactam", "CTX-M", "TRUE",
	}, rows[1])
	assert.Equal(t, []string{"sample2", "tetA", "50", "3", "", "", "", "FALSE"}, rows[2])
}

func TestWriteTables_HeaderOnly(t *testing.T) {
	w := newTestWriter(t)
	dir := t.TempDir()

	moPath := filepath.Join(dir, config.MicroorganismsTableFile)
	amrPath := filepath.Join(dir, config.AMRMarkersTableFile)
	require.NoError(t, w.WriteMicroorganisms(context.Background(), moPath, nil, nil))
	require.NoError(t, w.WriteAMRMarkers(context.Background(), amrPath, []domain.AMRMarkerRecord{}, nil))

	assert.Equal(t, [][]string{MicroorganismHeaders}, readRows(t, moPath))
	assert.Equal(t, [][]string{AMRMarkerHeaders}, readRows(t, amrPath))
}

func TestWriteTables_Overwrites(t *testing.T) {
	w := newTestWriter(t)
	path := filepath.Join(t.TempDir(), "nested", config.MicroorganismsTableFile)

	many := []domain.MicroorganismRecord{{Sample: "s", Name: "a"}, {Sample: "s", Name: "b"}, {Sample: "s", Name: "c"}}
	require.NoError(t, w.WriteMicroorganisms(context.Background(), path, many, nil))
	require.NoError(t, w.WriteMicroorganisms(context.Background(), path, many[:1], nil))

	rows := readRows(t, path)
	require.Len(t, rows, 2)
	assert.Equal(t, "a", rows[1][1])
}

func TestWriteAMRMarkers_TruncatesOversizedCells(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	w := NewTableWriter(logger)
	collector := apperrors.NewCollector(logger)
	path := filepath.Join(t.TempDir(), config.AMRMarkersTableFile)

	names := make([]string, 0, 5000)
	for i := 0; i < cap(names); i++ {
		names = append(names, "Klebsiella pneumoniae")
	}
	records := []domain.AMRMarkerRecord{
		{Sample: "sample1", GeneName: "tetA", AssociatedMicroorganisms: []string{"Escherichia coli"}},
		{Sample: "sample2", GeneName: "blaKPC", AssociatedMicroorganisms: names},
	}

	require.NoError(t, w.WriteAMRMarkers(context.Background(), path, records, collector))

	rows := readRows(t, path)
	require.Len(t, rows, 3)
	assert.Equal(t, "Escherichia coli", rows[1][4])
	assert.Len(t, []rune(rows[2][4]), excelize.TotalCellChars)
	assert.Equal(t, "blaKPC", rows[2][1])

	entries := collector.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, apperrors.KindExtraction, entries[0].Err.Kind)
	assert.Equal(t, "sample2", entries[0].Err.Sample)
	assert.Equal(t, "Associated Microorganisms", entries[0].Err.Field)
	assert.ErrorIs(t, entries[0].Err, apperrors.ErrCellTooLong)
}

func TestTruncateCell(t *testing.T) {
	long := strings.Repeat("é", excelize.TotalCellChars+10)
	cut := truncateCell(long)
	assert.Equal(t, excelize.TotalCellChars, utf8.RuneCountInString(cut))
	assert.True(t, utf8.ValidString(cut))
}

func TestWriteTables_Errors(t *testing.T) {
	w := newTestWriter(t)
	dir := t.TempDir()

	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("file"), 0644))

	err := w.WriteMicroorganisms(context.Background(), filepath.Join(blocker, "table.xlsx"), nil, nil)
	assert.Error(t, err)
}

func TestJoinNames(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		want  string
	}{
		{"empty", nil, ""},
		{"single", []string{"E. coli"}, "E. coli"},
		{"several", []string{"a", "b", "c"}, "a; b; c"},
		{"blanks skipped", []string{"a", " ", "", "b "}, "a; b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, joinNames(tt.input))
		})
	}
}
