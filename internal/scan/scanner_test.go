package scan

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("{}\n"), 0o644))
}

func paths(files []FileInfo) []string {
	out := make([]string, 0, len(files))
	for _, f := range files {
		out = append(out, f.Path)
	}
	return out
}

func TestTranscriptsRecursive(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "a.jsonl"))
	touch(t, filepath.Join(root, "nested", "b.jsonl"))
	touch(t, filepath.Join(root, "nested", "notes.md"))
	touch(t, filepath.Join(root, "sessions-index.jsonl"))
	touch(t, filepath.Join(root, "subagents", "c.jsonl"))

	files, err := Transcripts(root, true)
	require.NoError(t, err)

	got := paths(files)
	assert.ElementsMatch(t, []string{
		filepath.Join(root, "a.jsonl"),
		filepath.Join(root, "nested", "b.jsonl"),
	}, got)
}

func TestTranscriptsFlat(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "a.jsonl"))
	touch(t, filepath.Join(root, "nested", "b.jsonl"))

	files, err := Transcripts(root, false)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "a.jsonl")}, paths(files))
}

func TestTranscriptsCarriesStat(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "a.jsonl")
	touch(t, path)

	files, err := Transcripts(root, true)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, int64(3), files[0].Size)
	assert.NotZero(t, files[0].Mtime)
}

func TestRootsSkipsMissing(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "a.jsonl"))

	files, err := Roots([]string{root, filepath.Join(root, "does-not-exist")})
	require.NoError(t, err)
	assert.Len(t, files, 1)
}
