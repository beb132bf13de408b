package files

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"microreport/internal/config"
	"microreport/internal/infrastructure"
)

// Manager organises run artifacts inside the results tree
type Manager struct {
	paths  *config.Paths
	logger *slog.Logger
}

// NewManager creates a new file manager instance
func NewManager(paths *config.Paths, logger *slog.Logger) *Manager {
	return &Manager{
		paths:  paths,
		logger: infrastructure.WithComponent(logger, "output"),
	}
}

// EnsureLayout creates the results, tables, plots and staging directories.
func (m *Manager) EnsureLayout() error {
	return m.paths.EnsureDirectories()
}

// StagingPath returns where an artifact named filename is generated
func (m *Manager) StagingPath(filename string) string {
	return m.paths.GetStagingPath(filename)
}

// PromoteTable moves a staged table into the tables directory
func (m *Manager) PromoteTable(filename string) (string, error) {
	dst := m.paths.GetTablePath(filename)
	return dst, m.MoveFile(m.StagingPath(filename), dst)
}

// PromotePlot moves a staged chart into the plots directory
func (m *Manager) PromotePlot(filename string) (string, error) {
	dst := m.paths.GetPlotPath(filename)
	return dst, m.MoveFile(m.StagingPath(filename), dst)
}

// FileExists checks if a file exists at the given path
func (m *Manager) FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// CopyFile copies a file from source to destination, truncating any
// existing destination file.
func (m *Manager) CopyFile(src, dst string) error {
	if err := m.checkDestination(dst); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("failed to create destination directory: %w", err)
	}

	srcFile, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open source file: %w", err)
	}
	defer srcFile.Close()

	dstFile, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dstFile.Close()

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		return fmt.Errorf("failed to copy file content: %w", err)
	}

	return dstFile.Sync()
}

// MoveFile moves a file into the results tree, replacing an existing file
// of the same name.
func (m *Manager) MoveFile(src, dst string) error {
	if err := m.checkDestination(dst); err != nil {
		return err
	}

	if _, err := os.Stat(src); err != nil {
		return fmt.Errorf("failed to stat source file %s: %w", src, err)
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("failed to create destination directory: %w", err)
	}

	replaced := m.FileExists(dst)

	// Try rename first (atomic if on same filesystem)
	if err := os.Rename(src, dst); err != nil {
		m.logger.Debug("Rename failed, copying instead",
			slog.String("src", src),
			slog.String("dst", dst),
			slog.String("error", err.Error()))
		if err := m.CopyFile(src, dst); err != nil {
			return err
		}
		if err := os.Remove(src); err != nil {
			return fmt.Errorf("failed to remove staged file %s: %w", src, err)
		}
	}

	m.logger.Debug("Moved artifact",
		slog.String("src", src),
		slog.String("dst", dst),
		slog.Bool("replaced", replaced))
	return nil
}

// RemoveStaging deletes the staging directory and anything left in it
func (m *Manager) RemoveStaging() error {
	if err := os.RemoveAll(m.paths.StagingDir); err != nil {
		return fmt.Errorf("failed to remove staging directory: %w", err)
	}
	return nil
}

// checkDestination rejects destinations outside the results directory
func (m *Manager) checkDestination(dst string) error {
	rel, err := filepath.Rel(m.paths.ResultsDir, dst)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || filepath.IsAbs(rel) {
		return fmt.Errorf("refusing to write %s outside results directory %s", dst, m.paths.ResultsDir)
	}
	return nil
}
