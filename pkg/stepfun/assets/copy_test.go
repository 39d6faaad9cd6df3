package assets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(b)
}

func TestCopy(t *testing.T) {
	root := t.TempDir()
	dist := filepath.Join(root, "dist")
	writeFile(t, filepath.Join(root, "icons", IconFileName), "png")
	writeFile(t, filepath.Join(root, "icons", "stepfun.svg"), "svg")
	writeFile(t, filepath.Join(root, "README.md"), "# readme")
	writeFile(t, filepath.Join(root, "templates", "tts", "workflow.json"), "{}")

	require.NoError(t, Copy(root, dist))

	assert.Equal(t, "png", readFile(t, filepath.Join(dist, "icons", IconFileName)))
	assert.Equal(t, "svg", readFile(t, filepath.Join(dist, "icons", "stepfun.svg")))
	assert.Equal(t, "# readme", readFile(t, filepath.Join(dist, "README.md")))
	assert.Equal(t, "{}", readFile(t, filepath.Join(dist, "templates", "tts", "workflow.json")))
	assert.Equal(t, "png", readFile(t, filepath.Join(dist, "nodes", "StepFunTts", IconFileName)))
	assert.Equal(t, "png", readFile(t, filepath.Join(dist, "nodes", "StepFunAsr", IconFileName)))
	assert.Equal(t, "png", readFile(t, filepath.Join(dist, "credentials", IconFileName)))
}

func TestCopy_MissingSourcesAreSkipped(t *testing.T) {
	root := t.TempDir()
	dist := filepath.Join(root, "dist")

	require.NoError(t, Copy(root, dist))

	_, err := os.Stat(filepath.Join(dist, "README.md"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(dist, "credentials", IconFileName))
	assert.True(t, os.IsNotExist(err))
}

func TestCopy_OverwritesExistingFiles(t *testing.T) {
	root := t.TempDir()
	dist := filepath.Join(root, "dist")
	writeFile(t, filepath.Join(root, "README.md"), "new")
	writeFile(t, filepath.Join(dist, "README.md"), "old")

	require.NoError(t, Copy(root, dist))

	assert.Equal(t, "new", readFile(t, filepath.Join(dist, "README.md")))
}
