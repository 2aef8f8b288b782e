package ingest

import (
	"context"
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

func TestExtractMetadata_ClassifiesKnownFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "go.mod"), "module example.com/foo\n")
	writeFile(t, filepath.Join(dir, "README.md"), "# Example\n")
	writeFile(t, filepath.Join(dir, "Dockerfile"), "FROM golang\n")
	writeFile(t, filepath.Join(dir, ".github/workflows/ci.yml"), "name: ci\n")
	writeFile(t, filepath.Join(dir, "pkg/foo/foo.go"), "package foo\n\nimport \"fmt\"\n\nfunc F() { fmt.Println() }\n")

	md, err := ExtractMetadata(context.Background(), dir, 4)
	require.NoError(t, err)

	assert.Contains(t, md.Manifests, "go.mod")
	assert.Contains(t, md.Dockerfiles, "Dockerfile")
	assert.Equal(t, "# Example\n", md.README)
	assert.NotEmpty(t, md.CIConfigs)
	assert.Contains(t, md.ImportGraph["pkg/foo"], "fmt")
	assert.Equal(t, 1, md.PackageCount)
}

func TestExtractMetadata_EmptyDirectory(t *testing.T) {
	dir := t.TempDir()
	md, err := ExtractMetadata(context.Background(), dir, 4)
	require.NoError(t, err)
	assert.Empty(t, md.Manifests)
	assert.Equal(t, 0, md.PackageCount)
}

func TestExtractMetadata_SkipsGitDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ".git/HEAD"), "ref: refs/heads/main\n")
	writeFile(t, filepath.Join(dir, "go.mod"), "module example.com/foo\n")

	md, err := ExtractMetadata(context.Background(), dir, 4)
	require.NoError(t, err)
	assert.Len(t, md.Manifests, 1)
}
