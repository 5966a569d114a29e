package convert

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sessionLines = `{"type":"summary","summary":"Sample session","sessionId":"s1"}
{"type":"user","sessionId":"s1","timestamp":"2026-04-01T12:00:00Z","message":{"role":"user","content":"convert me"}}
{"type":"assistant","sessionId":"s1","timestamp":"2026-04-01T12:00:05Z","message":{"role":"assistant","content":[{"type":"text","text":"done"}]}}
`

func writeSession(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(sessionLines), 0o644))
	return path
}

func TestOutputPath(t *testing.T) {
	assert.Equal(t, "/a/b.md", OutputPath("/a/b.jsonl"))
	assert.Equal(t, "/a/b.txt.md", OutputPath("/a/b.txt"))
}

func TestFileConvertsTranscript(t *testing.T) {
	dir := t.TempDir()
	in := writeSession(t, dir, "s.jsonl")

	res, err := File(in, "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "s.md"), res.Output)
	assert.Equal(t, 2, res.Messages)
	assert.Zero(t, res.Skipped)

	data, err := os.ReadFile(res.Output)
	require.NoError(t, err)
	assert.Contains(t, string(data), "title: Sample session")
	assert.Contains(t, string(data), "## User")
	assert.Contains(t, string(data), "convert me")
}

func TestFileExplicitOutput(t *testing.T) {
	dir := t.TempDir()
	in := writeSession(t, dir, "s.jsonl")
	out := filepath.Join(dir, "elsewhere.md")

	res, err := File(in, out)
	require.NoError(t, err)
	assert.Equal(t, out, res.Output)
	_, err = os.Stat(out)
	assert.NoError(t, err)
}

func TestFileMirrorsModTime(t *testing.T) {
	dir := t.TempDir()
	in := writeSession(t, dir, "s.jsonl")
	old := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, os.Chtimes(in, old, old))

	res, err := File(in, "")
	require.NoError(t, err)

	info, err := os.Stat(res.Output)
	require.NoError(t, err)
	assert.True(t, info.ModTime().Equal(old))
}

func TestFileIdempotent(t *testing.T) {
	dir := t.TempDir()
	in := writeSession(t, dir, "s.jsonl")

	res, err := File(in, "")
	require.NoError(t, err)
	first, err := os.ReadFile(res.Output)
	require.NoError(t, err)

	_, err = File(in, "")
	require.NoError(t, err)
	second, err := os.ReadFile(res.Output)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestTreeConvertsAll(t *testing.T) {
	root := t.TempDir()
	writeSession(t, root, "a.jsonl")
	sub := filepath.Join(root, "sub")
	require.NoError(t, os.MkdirAll(sub, 0o755))
	writeSession(t, sub, "b.jsonl")

	stats, err := Tree(root, true)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Converted)
	assert.Zero(t, stats.Failed)

	for _, p := range []string{filepath.Join(root, "a.md"), filepath.Join(sub, "b.md")} {
		_, err := os.Stat(p)
		assert.NoError(t, err)
	}
}

func TestTreeContinuesPastFailures(t *testing.T) {
	root := t.TempDir()
	writeSession(t, root, "good.jsonl")
	writeSession(t, root, "bad.jsonl")
	// a directory squatting on the output path makes this one conversion fail
	require.NoError(t, os.MkdirAll(filepath.Join(root, "bad.md"), 0o755))

	stats, err := Tree(root, true)
	require.Error(t, err)
	assert.Equal(t, 1, stats.Converted)
	assert.Equal(t, 1, stats.Failed)

	_, statErr := os.Stat(filepath.Join(root, "good.md"))
	assert.NoError(t, statErr)
}

func TestTreeNonRecursive(t *testing.T) {
	root := t.TempDir()
	writeSession(t, root, "a.jsonl")
	sub := filepath.Join(root, "sub")
	require.NoError(t, os.MkdirAll(sub, 0o755))
	writeSession(t, sub, "b.jsonl")

	stats, err := Tree(root, false)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Converted)
}

func TestStatsString(t *testing.T) {
	assert.Equal(t, "converted=3 failed=1", Stats{Converted: 3, Failed: 1}.String())
}
