package test

import (
	"os"
	"path/filepath"
	"testing"

	assert "github.com/stretchr/testify/require"
)

// copyProject copies a testdata project into a fresh temp directory so that a
// generation run never writes into the repository tree.
func copyProject(t *testing.T, name string) string {
	t.Helper()

	wd, err := os.Getwd()
	assert.NoError(t, err, "failed to get working directory")

	src := filepath.Join(wd, "testdata", name)
	dst := t.TempDir()
	copyDir(t, src, dst)

	return dst
}

func copyDir(t *testing.T, src string, dst string) {
	t.Helper()

	entries, err := os.ReadDir(src)
	assert.NoError(t, err)

	for _, e := range entries {
		srcPath := filepath.Join(src, e.Name())
		dstPath := filepath.Join(dst, e.Name())

		if e.IsDir() {
			assert.NoError(t, os.MkdirAll(dstPath, 0700))
			copyDir(t, srcPath, dstPath)
			continue
		}

		data, err := os.ReadFile(srcPath)
		assert.NoError(t, err)
		assert.NoError(t, os.WriteFile(dstPath, data, 0600))
	}
}

func readGenerated(t *testing.T, projectDir string, relPath string) string {
	t.Helper()

	data, err := os.ReadFile(filepath.Join(projectDir, relPath))
	assert.NoError(t, err)
	return string(data)
}
