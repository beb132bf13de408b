package operations

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRunManifest(t *testing.T) {
	m := NewRunManifest("run-1", "1.0.0", "/data")

	assert.Equal(t, "run-1", m.RunID)
	assert.Equal(t, StatusRunning, m.Status)
	assert.NotNil(t, m.Samples)
	assert.NotNil(t, m.Artifacts)
	assert.NotNil(t, m.Diagnostics)
	assert.False(t, m.StartTime.IsZero())
}

func TestRunManifest_Stages(t *testing.T) {
	m := NewRunManifest("run-1", "1.0.0", "")

	m.RecordStageStart("discover", "Discover samples")
	assert.Equal(t, StatusRunning, m.Stages[0].Status)

	m.RecordStageCompletion("discover", map[string]interface{}{"samples": 3})
	assert.Equal(t, StatusCompleted, m.Stages[0].Status)
	assert.NotEmpty(t, m.Stages[0].Duration)
	assert.Equal(t, 3, m.Stages[0].Metadata["samples"])

	m.RecordStageStart("write", "Write tables")
	m.RecordStageFailure("write", errors.New("disk full"))
	assert.Equal(t, StatusFailed, m.Stages[1].Status)
	assert.Equal(t, StatusFailed, m.Status)
	assert.Contains(t, m.Error, "disk full")

	m.Finish(nil)
	assert.Equal(t, StatusFailed, m.Status, "finish keeps a failed status")
}

func TestRunManifest_FinishAndCounts(t *testing.T) {
	m := NewRunManifest("run-1", "1.0.0", "")
	m.AddSample(SampleEntry{Name: "S1", ID: "1", Status: StatusProcessed})
	m.AddSample(SampleEntry{Name: "S2", ID: "2", Status: StatusSkipped, Reason: "load"})
	m.AddSample(SampleEntry{Name: "S3", ID: "3", Status: StatusProcessed})

	m.Finish(map[string]int{"load": 1})

	processed, skipped := m.Counts()
	assert.Equal(t, 2, processed)
	assert.Equal(t, 1, skipped)
	assert.Equal(t, StatusCompleted, m.Status)
	assert.Equal(t, 1, m.Diagnostics["load"])
	assert.NotEmpty(t, m.Duration)
}

func TestRunManifest_RelativePaths(t *testing.T) {
	root := t.TempDir()
	report := filepath.Join(root, "S1", "S1_report.json")
	require.NoError(t, os.MkdirAll(filepath.Dir(report), 0755))
	require.NoError(t, os.WriteFile(report, []byte(`{}`), 0644))

	m := NewRunManifest("run-1", "1.0.0", root)
	m.AddSample(SampleEntry{Name: "S1", Report: report, Status: StatusProcessed})
	require.NoError(t, m.AddArtifact(ArtifactTable, report))

	assert.Equal(t, "S1/S1_report.json", m.Samples[0].Report)
	require.Len(t, m.Artifacts, 1)
	assert.Equal(t, "S1/S1_report.json", m.Artifacts[0].Path)
	assert.Equal(t, int64(2), m.Artifacts[0].SizeBytes)
	assert.Len(t, m.Artifacts[0].Checksum, 64)
}

func TestRunManifest_AddArtifactMissingFile(t *testing.T) {
	m := NewRunManifest("run-1", "1.0.0", "")
	err := m.AddArtifact(ArtifactPlot, filepath.Join(t.TempDir(), "missing.jpg"))
	assert.Error(t, err)
	assert.Empty(t, m.Artifacts)
}

func TestFileChecksum(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a")
	b := filepath.Join(dir, "b")
	c := filepath.Join(dir, "c")
	require.NoError(t, os.WriteFile(a, []byte("same"), 0644))
	require.NoError(t, os.WriteFile(b, []byte("same"), 0644))
	require.NoError(t, os.WriteFile(c, []byte("different"), 0644))

	sumA, sizeA, err := FileChecksum(a)
	require.NoError(t, err)
	sumB, _, err := FileChecksum(b)
	require.NoError(t, err)
	sumC, _, err := FileChecksum(c)
	require.NoError(t, err)

	assert.Equal(t, int64(4), sizeA)
	assert.Equal(t, sumA, sumB)
	assert.NotEqual(t, sumA, sumC)
}

func TestRunManifest_SaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.json")

	m := NewRunManifest("run-1", "1.0.0", "/data")
	m.SetConfig("prefix", "S")
	m.AddSample(SampleEntry{Name: "S1", ID: "1", Status: StatusProcessed, Microorganisms: 2})
	m.RecordStageStart("discover", "Discover samples")
	m.RecordStageCompletion("discover", nil)
	m.Finish(map[string]int{"extraction": 2})
	require.NoError(t, m.SaveToFile(path))

	loaded := loadManifest(t, path)
	assert.Equal(t, "run-1", loaded.RunID)
	assert.Equal(t, "S", loaded.Config["prefix"])
	require.Len(t, loaded.Samples, 1)
	assert.Equal(t, 2, loaded.Samples[0].Microorganisms)
	require.Len(t, loaded.Stages, 1)
	assert.Equal(t, StatusCompleted, loaded.Stages[0].Status)
	assert.Equal(t, 2, loaded.Diagnostics["extraction"])
	assert.Equal(t, StatusCompleted, loaded.Status)
}

func TestRunManifest_SaveToFileError(t *testing.T) {
	m := NewRunManifest("run-1", "1.0.0", "")
	err := m.SaveToFile(filepath.Join(t.TempDir(), "missing", "manifest.json"))
	assert.Error(t, err)
}

// loadManifest reads a saved manifest back
func loadManifest(t *testing.T, path string) *RunManifest {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var m RunManifest
	require.NoError(t, json.Unmarshal(data, &m))
	return &m
}
