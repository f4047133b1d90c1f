package setup

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestCheck_MissingDependencies(t *testing.T) {
	root := t.TempDir()

	report, err := Check(root, Options{})
	require.NoError(t, err)

	assert.True(t, report.DependenciesMissing)
	assert.False(t, report.ConfigCreated)
	assert.Empty(t, listDir(t, root), "no file should be created")
}

func TestCheck_CreatesEmptyConfig(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, "vendor"), 0o755))

	report, err := Check(root, Options{})
	require.NoError(t, err)

	assert.False(t, report.DependenciesMissing)
	assert.True(t, report.ConfigCreated)

	info, err := os.Stat(filepath.Join(root, ".env"))
	require.NoError(t, err)
	assert.Zero(t, info.Size())
}

func TestCheck_NothingToDo(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, "vendor"), 0o755))
	envPath := filepath.Join(root, ".env")
	require.NoError(t, os.WriteFile(envPath, []byte("AWS_BUCKET=b\n"), 0o600))

	before, err := os.Stat(envPath)
	require.NoError(t, err)

	report, err := Check(root, Options{})
	require.NoError(t, err)

	assert.False(t, report.DependenciesMissing)
	assert.False(t, report.ConfigCreated)

	after, err := os.Stat(envPath)
	require.NoError(t, err)
	assert.Equal(t, before.ModTime(), after.ModTime())
	assert.Equal(t, before.Mode(), after.Mode())

	data, err := os.ReadFile(envPath)
	require.NoError(t, err)
	assert.Equal(t, "AWS_BUCKET=b\n", string(data))
	assert.ElementsMatch(t, []string{"vendor", ".env"}, listDir(t, root))
}

func TestCheck_CustomPaths(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, "third_party"), 0o755))

	report, err := Check(root, Options{DepsDir: "third_party", ConfigFile: "uploader.env"})
	require.NoError(t, err)

	assert.True(t, report.ConfigCreated)
	assert.Equal(t, filepath.Join(root, "uploader.env"), report.ConfigPath)
	assert.FileExists(t, report.ConfigPath)
}
