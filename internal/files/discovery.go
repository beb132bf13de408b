package files

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/maruel/natural"

	"microreport/internal/config"
	apperrors "microreport/internal/errors"
	"microreport/internal/infrastructure"
	"microreport/internal/validation"
	"microreport/pkg/contracts/domain"
)

// FileInfo represents information about a discovered directory entry
type FileInfo struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
	IsDir   bool
}

// LocatorOptions configures sample discovery
type LocatorOptions struct {
	Root string
	// Prefix is the sample folder prefix. Empty means auto-detect.
	Prefix string
	// ReportPattern is the report filename with {id} placeholders.
	ReportPattern string
	// ExcludeDirs lists folder names or absolute paths never treated as samples.
	ExcludeDirs []string
}

// Locator discovers sample folders under a root directory
type Locator struct {
	opts      LocatorOptions
	validator *validation.FileValidator
	logger    *slog.Logger
}

// NewLocator creates a new sample locator
func NewLocator(opts LocatorOptions, logger *slog.Logger) *Locator {
	if opts.ReportPattern == "" {
		opts.ReportPattern = config.DefaultReportPattern
	}
	logger = infrastructure.WithComponent(logger, "locator")
	return &Locator{
		opts:      opts,
		validator: validation.NewFileValidator(logger),
		logger:    logger,
	}
}

// Locate returns the samples whose folder matches the naming convention and
// whose report file exists, in natural order of their identifier. Folders
// that match but cannot yield a sample are recorded in collector and
// skipped. An error is returned only when the root cannot be listed.
func (l *Locator) Locate(ctx context.Context, collector *apperrors.Collector) ([]domain.Sample, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dirs, err := ListDirectories(l.opts.Root)
	if err != nil {
		return nil, err
	}

	candidates := l.filterCandidates(dirs)

	prefix := l.opts.Prefix
	if prefix == "" {
		prefix = DetectPrefix(l.reportHolders(candidates))
		l.logger.DebugContext(ctx, "Detected sample folder prefix",
			slog.String("prefix", prefix),
			slog.Int("candidates", len(candidates)))
	}

	type match struct {
		id  string
		dir FileInfo
	}
	var matches []match
	for _, c := range candidates {
		if !strings.HasPrefix(c.Name, prefix) {
			continue
		}
		matches = append(matches, match{id: strings.TrimPrefix(c.Name, prefix), dir: c})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return natural.Less(matches[i].id, matches[j].id)
	})

	samples := make([]domain.Sample, 0, len(matches))
	for _, m := range matches {
		if m.id == "" {
			collector.Error(ctx, apperrors.NewDiscoveryError(
				"sample folder has no identifier after the prefix", apperrors.ErrEmptyIdentifier).
				WithPath(m.dir.Path))
			continue
		}

		sample := domain.Sample{
			ID:         m.id,
			Name:       domain.SampleName(m.id),
			Dir:        m.dir.Path,
			ReportPath: filepath.Join(m.dir.Path, ReportFileName(l.opts.ReportPattern, m.id)),
		}

		if err := l.validator.ValidateSample(sample); err != nil {
			collector.Error(ctx, apperrors.NewDiscoveryError("sample folder failed validation", err).
				WithSample(sample.Name).
				WithPath(sample.Dir))
			continue
		}

		if err := l.validator.ValidateReportFile(sample.ReportPath); errors.Is(err, apperrors.ErrReportNotFound) {
			collector.Error(ctx, apperrors.NewDiscoveryError("report file not found", apperrors.ErrReportNotFound).
				WithSample(sample.Name).
				WithPath(sample.ReportPath))
			continue
		}

		samples = append(samples, sample)
	}

	l.logger.InfoContext(ctx, "Sample discovery complete",
		slog.String("root", l.opts.Root),
		slog.String("prefix", prefix),
		slog.Int("folders", len(candidates)),
		slog.Int("samples", len(samples)))

	return samples, nil
}

// filterCandidates drops hidden folders and excluded folders
func (l *Locator) filterCandidates(dirs []FileInfo) []FileInfo {
	excluded := make(map[string]bool, len(l.opts.ExcludeDirs))
	for _, e := range l.opts.ExcludeDirs {
		if filepath.IsAbs(e) {
			excluded[filepath.Clean(e)] = true
		} else {
			excluded[filepath.Join(l.opts.Root, e)] = true
		}
	}

	var out []FileInfo
	for _, d := range dirs {
		if strings.HasPrefix(d.Name, ".") {
			continue
		}
		if excluded[filepath.Clean(d.Path)] {
			l.logger.Debug("Skipping excluded directory", slog.String("directory", d.Path))
			continue
		}
		out = append(out, d)
	}
	return out
}

// reportHolders returns the names of the candidates that hold a report for
// the identifier left by some split of their name, so unrelated folders do
// not shorten the detected prefix. When none hold one, every name is
// returned.
func (l *Locator) reportHolders(candidates []FileInfo) []string {
	var holders, all []string
	for _, c := range candidates {
		all = append(all, c.Name)
		for k := 0; k < len(c.Name); k++ {
			report := filepath.Join(c.Path, ReportFileName(l.opts.ReportPattern, c.Name[k:]))
			if info, err := os.Stat(report); err == nil && !info.IsDir() {
				holders = append(holders, c.Name)
				break
			}
		}
	}
	if len(holders) == 0 {
		return all
	}
	return holders
}

// DetectPrefix returns the longest common prefix of names with any trailing
// digits removed, so sample1, sample10 and sample12 yield "sample".
func DetectPrefix(names []string) string {
	if len(names) == 0 {
		return ""
	}

	prefix := names[0]
	for _, name := range names[1:] {
		n := 0
		for n < len(prefix) && n < len(name) && prefix[n] == name[n] {
			n++
		}
		prefix = prefix[:n]
		if prefix == "" {
			return ""
		}
	}

	return strings.TrimRightFunc(prefix, unicode.IsDigit)
}

// ReportFileName expands the report pattern for one sample identifier
func ReportFileName(pattern, id string) string {
	return strings.ReplaceAll(pattern, config.IDPlaceholder, id)
}

// ListDirectories lists all subdirectories in the specified directory
func ListDirectories(dir string) ([]FileInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	var dirs []FileInfo
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		dirs = append(dirs, FileInfo{
			Path:    filepath.Join(dir, entry.Name()),
			Name:    entry.Name(),
			ModTime: info.ModTime(),
			IsDir:   true,
		})
	}

	return dirs, nil
}
