package validation

import (
	"fmt"
	"image/jpeg"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/xuri/excelize/v2"

	apperrors "microreport/internal/errors"
	"microreport/pkg/contracts/domain"
)

// FileValidator provides the file checks used around the pipeline: the scan
// root, report files, the results tree and the written artifacts.
type FileValidator struct {
	structs *validator.Validate
	logger  *slog.Logger
}

// NewFileValidator creates a new file validator
func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{
		structs: validator.New(),
		logger:  logger,
	}
}

// ValidateRootDirectory checks that the scan root exists and is a directory
func (v *FileValidator) ValidateRootDirectory(dir string) error {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		v.logger.Error("Root directory does not exist",
			slog.String("directory", dir))
		return fmt.Errorf("root directory %s does not exist", dir)
	}
	if err != nil {
		v.logger.Error("Failed to stat root directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to stat directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		v.logger.Error("Root path is not a directory",
			slog.String("path", dir))
		return fmt.Errorf("%s is not a directory", dir)
	}
	return nil
}

// ValidateOutputDirectory ensures output directory exists or can be created
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		v.logger.Error("Failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	// Verify it's writable by creating a probe file
	probe, err := os.CreateTemp(dir, ".write_test_*")
	if err != nil {
		v.logger.Error("Output directory is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("output directory %s is not writable: %w", dir, err)
	}
	name := probe.Name()
	probe.Close()
	os.Remove(name)

	v.logger.Debug("Output directory validated",
		slog.String("directory", dir))
	return nil
}

// ValidateSample checks the struct constraints of a discovered sample. The
// sample folder must still exist as a directory.
func (v *FileValidator) ValidateSample(sample domain.Sample) error {
	if err := v.structs.Struct(sample); err != nil {
		return fmt.Errorf("sample %q: %w: %v", sample.Name, apperrors.ErrInvalidSample, err)
	}
	return nil
}

// ValidateReportFile checks that a report exists, is a regular file and is
// not empty. The returned error wraps one of the report sentinel errors.
func (v *FileValidator) ValidateReportFile(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return fmt.Errorf("%s: %w", path, apperrors.ErrReportNotFound)
	}
	if err != nil {
		return fmt.Errorf("%s: %w: %v", path, apperrors.ErrReportUnreadable, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory: %w", path, apperrors.ErrReportUnreadable)
	}
	if info.Size() == 0 {
		return fmt.Errorf("%s: %w", path, apperrors.ErrEmptyReport)
	}

	v.logger.Debug("Report file validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}

// ValidateWorkbook checks that a written table opens as an xlsx workbook
// containing the expected sheet.
func (v *FileValidator) ValidateWorkbook(path, sheet string) error {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".xlsx" {
		return fmt.Errorf("file %s is not an xlsx workbook (extension: %s)", path, ext)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		v.logger.Error("Workbook cannot be opened",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to open workbook %s: %w", path, err)
	}
	defer f.Close()

	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return fmt.Errorf("workbook %s has no sheet %q", path, sheet)
	}
	return nil
}

// ValidateImageFile checks that a rendered chart decodes as a JPEG.
func (v *FileValidator) ValidateImageFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open image %s: %w", path, err)
	}
	defer f.Close()

	cfg, err := jpeg.DecodeConfig(f)
	if err != nil {
		return fmt.Errorf("file %s is not a JPEG image: %w", path, err)
	}
	if cfg.Width == 0 || cfg.Height == 0 {
		return fmt.Errorf("image %s has no pixels", path)
	}
	return nil
}
