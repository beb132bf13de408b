package operations

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/crypto/blake2b"
)

// Run and stage statuses
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
	StatusSkipped   = "skipped"
	StatusProcessed = "processed"
)

// Artifact types
const (
	ArtifactTable   = "table"
	ArtifactPlot    = "plot"
	ArtifactMetrics = "metrics"
)

// RunManifest tracks the inputs, stages and outputs of one run
type RunManifest struct {
	mu sync.RWMutex `json:"-"`

	// Identity
	RunID     string    `json:"run_id"`
	Version   string    `json:"version"`
	Root      string    `json:"root"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time,omitempty"`
	Duration  string    `json:"duration,omitempty"`

	// Configuration summary
	Config map[string]interface{} `json:"config,omitempty"`

	Samples     []SampleEntry    `json:"samples"`
	Artifacts   []ArtifactEntry  `json:"artifacts"`
	Stages      []StageExecution `json:"stages"`
	Diagnostics map[string]int   `json:"diagnostics"`

	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// SampleEntry records one discovered sample
type SampleEntry struct {
	Name           string `json:"name"`
	ID             string `json:"id"`
	Report         string `json:"report"`
	Status         string `json:"status"` // "processed" or "skipped"
	Checksum       string `json:"checksum,omitempty"`
	SizeBytes      int64  `json:"size_bytes,omitempty"`
	Microorganisms int    `json:"microorganisms"`
	AMRMarkers     int    `json:"amr_markers"`
	Diagnostics    int    `json:"diagnostics"`
	Reason         string `json:"reason,omitempty"`
}

// ArtifactEntry records one file written to the results tree
type ArtifactEntry struct {
	Type      string `json:"type"`
	Path      string `json:"path"`
	Checksum  string `json:"checksum"`
	SizeBytes int64  `json:"size_bytes"`
}

// StageExecution tracks the execution of a single pipeline stage
type StageExecution struct {
	StageID   string                 `json:"stage_id"`
	StageName string                 `json:"stage_name"`
	StartTime time.Time              `json:"start_time"`
	EndTime   time.Time              `json:"end_time,omitempty"`
	Duration  string                 `json:"duration,omitempty"`
	Status    string                 `json:"status"`
	Error     string                 `json:"error,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// NewRunManifest creates a manifest for a run starting now
func NewRunManifest(runID, version, root string) *RunManifest {
	return &RunManifest{
		RunID:       runID,
		Version:     version,
		Root:        root,
		StartTime:   time.Now(),
		Config:      make(map[string]interface{}),
		Samples:     []SampleEntry{},
		Artifacts:   []ArtifactEntry{},
		Stages:      []StageExecution{},
		Diagnostics: make(map[string]int),
		Status:      StatusRunning,
	}
}

// SetConfig records a configuration value
func (m *RunManifest) SetConfig(key string, value interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Config[key] = value
}

// AddSample records a sample. Report paths are stored relative to the root.
func (m *RunManifest) AddSample(entry SampleEntry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry.Report = m.relative(entry.Report)
	m.Samples = append(m.Samples, entry)
}

// AddArtifact checksums the file at path and records it
func (m *RunManifest) AddArtifact(artifactType, path string) error {
	sum, size, err := FileChecksum(path)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.Artifacts = append(m.Artifacts, ArtifactEntry{
		Type:      artifactType,
		Path:      m.relative(path),
		Checksum:  sum,
		SizeBytes: size,
	})
	return nil
}

// RecordStageStart records the start of a stage
func (m *RunManifest) RecordStageStart(stageID, stageName string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Stages = append(m.Stages, StageExecution{
		StageID:   stageID,
		StageName: stageName,
		StartTime: time.Now(),
		Status:    StatusRunning,
	})
}

// RecordStageCompletion records the completion of a stage
func (m *RunManifest) RecordStageCompletion(stageID string, metadata map[string]interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if stage := m.stage(stageID); stage != nil {
		stage.EndTime = time.Now()
		stage.Duration = stage.EndTime.Sub(stage.StartTime).String()
		stage.Status = StatusCompleted
		stage.Metadata = metadata
	}
}

// RecordStageFailure records a stage failure and fails the run
func (m *RunManifest) RecordStageFailure(stageID string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if stage := m.stage(stageID); stage != nil {
		stage.EndTime = time.Now()
		stage.Duration = stage.EndTime.Sub(stage.StartTime).String()
		stage.Status = StatusFailed
		stage.Error = err.Error()
	}
	m.Status = StatusFailed
	m.Error = fmt.Sprintf("stage %s failed: %v", stageID, err)
}

// Finish stamps the end time and diagnostic counts. A run that has not
// failed is marked completed.
func (m *RunManifest) Finish(diagnostics map[string]int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.EndTime = time.Now()
	m.Duration = m.EndTime.Sub(m.StartTime).String()
	for k, v := range diagnostics {
		m.Diagnostics[k] = v
	}
	if m.Status == StatusRunning {
		m.Status = StatusCompleted
	}
}

// Counts returns the number of processed and skipped samples
func (m *RunManifest) Counts() (processed, skipped int) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, s := range m.Samples {
		if s.Status == StatusProcessed {
			processed++
		} else {
			skipped++
		}
	}
	return processed, skipped
}

// SaveToFile saves the manifest to a JSON file
func (m *RunManifest) SaveToFile(path string) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest file: %w", err)
	}

	return nil
}

// FileChecksum returns the hex BLAKE2b-256 digest and size of a file
func FileChecksum(path string) (string, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	h, err := blake2b.New256(nil)
	if err != nil {
		return "", 0, err
	}
	n, err := io.Copy(h, f)
	if err != nil {
		return "", 0, fmt.Errorf("failed to hash %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), n, nil
}

func (m *RunManifest) stage(stageID string) *StageExecution {
	for i := len(m.Stages) - 1; i >= 0; i-- {
		if m.Stages[i].StageID == stageID {
			return &m.Stages[i]
		}
	}
	return nil
}

// relative returns path relative to the root when it lies inside it
func (m *RunManifest) relative(path string) string {
	if m.Root == "" || path == "" {
		return path
	}
	rel, err := filepath.Rel(m.Root, path)
	if err != nil {
		return path
	}
	return filepath.ToSlash(rel)
}
