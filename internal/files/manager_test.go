package files

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"microreport/internal/config"
	"microreport/internal/shared/testutil"
)

func newTestManager(t *testing.T) (*Manager, *config.Paths) {
	t.Helper()
	cfg := config.Default()
	cfg.Input.Root = t.TempDir()
	paths, err := config.NewPaths(cfg)
	require.NoError(t, err)

	logger, _ := testutil.NewTestLogger(t)
	return NewManager(paths, logger), paths
}

func TestEnsureLayout(t *testing.T) {
	m, paths := newTestManager(t)

	require.NoError(t, m.EnsureLayout())
	require.NoError(t, m.EnsureLayout(), "existing directories are fine")

	for _, dir := range []string{paths.ResultsDir, paths.TablesDir, paths.PlotsDir, paths.StagingDir} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}

func TestPromote_ReplacesExisting(t *testing.T) {
	m, paths := newTestManager(t)
	require.NoError(t, m.EnsureLayout())

	existing := paths.GetTablePath("table.xlsx")
	require.NoError(t, os.WriteFile(existing, []byte("old"), 0644))
	require.NoError(t, os.WriteFile(m.StagingPath("table.xlsx"), []byte("new"), 0644))

	dst, err := m.PromoteTable("table.xlsx")
	require.NoError(t, err)
	assert.Equal(t, existing, dst)

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))
	assert.False(t, m.FileExists(m.StagingPath("table.xlsx")))
}

func TestPromotePlot(t *testing.T) {
	m, paths := newTestManager(t)
	require.NoError(t, m.EnsureLayout())
	require.NoError(t, os.WriteFile(m.StagingPath("class.jpg"), []byte("jpg"), 0644))

	dst, err := m.PromotePlot("class.jpg")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(paths.PlotsDir, "class.jpg"), dst)
	assert.True(t, m.FileExists(dst))
}

func TestMoveFile_MissingSource(t *testing.T) {
	m, paths := newTestManager(t)
	require.NoError(t, m.EnsureLayout())

	err := m.MoveFile(m.StagingPath("nothing.xlsx"), paths.GetTablePath("nothing.xlsx"))
	assert.Error(t, err)
}

func TestMoveFile_RefusesOutsideResults(t *testing.T) {
	m, paths := newTestManager(t)
	require.NoError(t, m.EnsureLayout())

	src := m.StagingPath("x.txt")
	require.NoError(t, os.WriteFile(src, []byte("x"), 0644))

	outside := filepath.Join(paths.RootDir, "sample1", "x.txt")
	assert.Error(t, m.MoveFile(src, outside))
	assert.Error(t, m.CopyFile(src, outside))
	assert.True(t, m.FileExists(src))
	assert.False(t, m.FileExists(outside))
}

func TestCopyFile(t *testing.T) {
	m, paths := newTestManager(t)
	require.NoError(t, m.EnsureLayout())

	src := m.StagingPath("copy.txt")
	require.NoError(t, os.WriteFile(src, []byte("payload"), 0644))
	dst := filepath.Join(paths.TablesDir, "nested", "copy.txt")

	require.NoError(t, m.CopyFile(src, dst))
	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))
	assert.True(t, m.FileExists(src))
}

func TestRemoveStaging(t *testing.T) {
	m, paths := newTestManager(t)
	require.NoError(t, m.EnsureLayout())
	require.NoError(t, os.WriteFile(m.StagingPath("left.jpg"), []byte("x"), 0644))

	require.NoError(t, m.RemoveStaging())
	_, err := os.Stat(paths.StagingDir)
	assert.True(t, os.IsNotExist(err))
	require.NoError(t, m.RemoveStaging(), "removing twice is fine")
}
