package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths contains every file system location used by a run.
// All paths are absolute and derived from Config.Input.Root.
type Paths struct {
	RootDir    string
	ResultsDir string
	TablesDir  string
	PlotsDir   string
	StagingDir string

	ErrorLogFile string
	ManifestFile string
	MetricsFile  string
	TraceFile    string
}

// NewPaths resolves the results layout for cfg
func NewPaths(cfg *Config) (*Paths, error) {
	root, err := filepath.Abs(cfg.Input.Root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root directory %s: %w", cfg.Input.Root, err)
	}

	resultsDir := cfg.Output.ResultsDir
	if !filepath.IsAbs(resultsDir) {
		resultsDir = filepath.Join(root, resultsDir)
	}

	errorLog := cfg.Output.ErrorLog
	if !filepath.IsAbs(errorLog) {
		errorLog = filepath.Join(root, errorLog)
	}

	traceFile := cfg.Telemetry.TraceFile
	if !filepath.IsAbs(traceFile) {
		traceFile = filepath.Join(resultsDir, traceFile)
	}

	return &Paths{
		RootDir:      root,
		ResultsDir:   resultsDir,
		TablesDir:    filepath.Join(resultsDir, cfg.Output.TablesDir),
		PlotsDir:     filepath.Join(resultsDir, cfg.Output.PlotsDir),
		StagingDir:   filepath.Join(resultsDir, StagingDirName),
		ErrorLogFile: errorLog,
		ManifestFile: filepath.Join(resultsDir, ManifestFileName),
		MetricsFile:  filepath.Join(resultsDir, MetricsFileName),
		TraceFile:    traceFile,
	}, nil
}

// EnsureDirectories creates the results tree. Existing directories are fine.
func (p *Paths) EnsureDirectories() error {
	directories := []string{
		p.ResultsDir,
		p.TablesDir,
		p.PlotsDir,
		p.StagingDir,
	}

	for _, dir := range directories {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
		slog.Debug("Ensured directory exists", slog.String("directory", dir))
	}

	return nil
}

// GetTablePath returns the final location of a table file
func (p *Paths) GetTablePath(filename string) string {
	return filepath.Join(p.TablesDir, filename)
}

// GetPlotPath returns the final location of a chart file
func (p *Paths) GetPlotPath(filename string) string {
	return filepath.Join(p.PlotsDir, filename)
}

// GetStagingPath returns where an artifact is generated before being moved
func (p *Paths) GetStagingPath(filename string) string {
	return filepath.Join(p.StagingDir, filename)
}

// LogPathResolution logs the resolved layout for debugging
func (p *Paths) LogPathResolution(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("Path resolution summary",
		slog.Group("directories",
			slog.String("root", p.RootDir),
			slog.String("results", p.ResultsDir),
			slog.String("tables", p.TablesDir),
			slog.String("plots", p.PlotsDir),
		),
		slog.Group("files",
			slog.String("error_log", p.ErrorLogFile),
			slog.String("manifest", p.ManifestFile),
			slog.String("metrics", p.MetricsFile),
		))
}
