package validation

import (
	"image"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	apperrors "microreport/internal/errors"
	"microreport/internal/shared/testutil"
	"microreport/pkg/contracts/domain"
)

func TestFileValidator_ValidateRootDirectory(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	v := NewFileValidator(logger)
	dir := t.TempDir()

	file := filepath.Join(dir, "plain.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))

	assert.NoError(t, v.ValidateRootDirectory(dir))
	assert.Error(t, v.ValidateRootDirectory(filepath.Join(dir, "missing")))
	assert.Error(t, v.ValidateRootDirectory(file))
}

func TestFileValidator_ValidateOutputDirectory(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	v := NewFileValidator(logger)

	dir := filepath.Join(t.TempDir(), "Results", "Tables")
	require.NoError(t, v.ValidateOutputDirectory(dir))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "probe file must be removed")
}

func TestFileValidator_ValidateReportFile(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	v := NewFileValidator(logger)
	dir := t.TempDir()

	valid := filepath.Join(dir, "sample1.1.report.json")
	require.NoError(t, os.WriteFile(valid, []byte(`{}`), 0644))
	empty := filepath.Join(dir, "sample2.2.report.json")
	require.NoError(t, os.WriteFile(empty, nil, 0644))

	tests := []struct {
		name    string
		path    string
		wantErr error
	}{
		{"valid", valid, nil},
		{"missing", filepath.Join(dir, "nope.json"), apperrors.ErrReportNotFound},
		{"empty", empty, apperrors.ErrEmptyReport},
		{"directory", dir, apperrors.ErrReportUnreadable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateReportFile(tt.path)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestFileValidator_ValidateSample(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	v := NewFileValidator(logger)
	dir := t.TempDir()

	valid := domain.Sample{
		ID:         "1",
		Name:       "sample1",
		Dir:        dir,
		ReportPath: filepath.Join(dir, "sample1.1.report.json"),
	}
	assert.NoError(t, v.ValidateSample(valid))

	vanished := valid
	vanished.Dir = filepath.Join(dir, "removed")
	assert.ErrorIs(t, v.ValidateSample(vanished), apperrors.ErrInvalidSample)

	unnamed := valid
	unnamed.Name = ""
	assert.ErrorIs(t, v.ValidateSample(unnamed), apperrors.ErrInvalidSample)

	assert.ErrorIs(t, v.ValidateSample(domain.Sample{}), apperrors.ErrInvalidSample)
}

func TestFileValidator_ValidateWorkbook(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	v := NewFileValidator(logger)
	dir := t.TempDir()

	path := filepath.Join(dir, "table.xlsx")
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetName("Sheet1", "Sheet_1"))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	assert.NoError(t, v.ValidateWorkbook(path, "Sheet_1"))
	assert.Error(t, v.ValidateWorkbook(path, "Other"))
	assert.Error(t, v.ValidateWorkbook(filepath.Join(dir, "table.csv"), "Sheet_1"))

	garbage := filepath.Join(dir, "garbage.xlsx")
	require.NoError(t, os.WriteFile(garbage, []byte("not a zip"), 0644))
	assert.Error(t, v.ValidateWorkbook(garbage, "Sheet_1"))
}

func TestFileValidator_ValidateImageFile(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	v := NewFileValidator(logger)
	dir := t.TempDir()

	path := filepath.Join(dir, "chart.jpg")
	out, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, jpeg.Encode(out, image.NewRGBA(image.Rect(0, 0, 4, 3)), nil))
	require.NoError(t, out.Close())

	assert.NoError(t, v.ValidateImageFile(path))

	bogus := filepath.Join(dir, "bogus.jpg")
	require.NoError(t, os.WriteFile(bogus, []byte("png?"), 0644))
	assert.Error(t, v.ValidateImageFile(bogus))
	assert.Error(t, v.ValidateImageFile(filepath.Join(dir, "missing.jpg")))
}
