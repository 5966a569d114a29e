package render

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsonl2md/jsonl2md/internal/index"
)

func TestHighlightKeywords(t *testing.T) {
	got := highlightKeywords("restart the Server now", "server")
	assert.Contains(t, got, colorBoldRed+"Server"+colorReset)

	// FTS operators are not treated as keywords
	got = highlightKeywords("this AND that", "this AND that")
	assert.NotContains(t, got, colorBoldRed+"AND")
	assert.Contains(t, got, colorBoldRed+"this"+colorReset)

	assert.Equal(t, "untouched", highlightKeywords("untouched", ""))
}

func TestIndentLines(t *testing.T) {
	assert.Equal(t, "  a\n  b", indentLines("a\nb", "  "))
}

func TestWrapLinePlain(t *testing.T) {
	got := wrapLine("abcdefghij", 4)
	assert.Equal(t, []string{"abcd", "efgh", "ij"}, got)

	assert.Equal(t, []string{""}, wrapLine("", 4))
	assert.Equal(t, []string{"no wrap"}, wrapLine("no wrap", 0))
}

func TestWrapLineSkipsAnsiEscapes(t *testing.T) {
	line := colorUser + "abcd" + colorReset + "efgh"
	got := wrapLine(line, 4)
	require.Len(t, got, 2)
	assert.Equal(t, colorUser+"abcd"+colorReset, got[0])
	assert.Equal(t, "efgh", got[1])
}

func TestWrapLineWideRunes(t *testing.T) {
	// each CJK rune occupies two columns
	got := wrapLine("你好世界", 4)
	assert.Equal(t, []string{"你好", "世界"}, got)
}

func TestRoleTag(t *testing.T) {
	tests := []struct {
		row   index.MessageRow
		label string
	}{
		{index.MessageRow{Role: "user", Kind: "text"}, "USER"},
		{index.MessageRow{Role: "assistant", Kind: "text"}, "ASST"},
		{index.MessageRow{Role: "assistant", Kind: "thinking"}, "THINK"},
		{index.MessageRow{Role: "assistant", Kind: "tool_use"}, "TOOL"},
		{index.MessageRow{Role: "user", Kind: "tool_result"}, "RESULT"},
		{index.MessageRow{Role: "system", Kind: "text"}, "SYSTEM"},
	}
	for _, tt := range tests {
		label, _ := roleTag(tt.row)
		assert.Equal(t, tt.label, label)
	}
}

func renderFixtureDB(t *testing.T) *index.DB {
	t.Helper()
	db, err := index.Open(filepath.Join(t.TempDir(), "render.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	root := t.TempDir()
	var lines []string
	lines = append(lines,
		`{"type":"summary","summary":"Render fixture","sessionId":"s1"}`)
	for i := 0; i < 30; i++ {
		role := "user"
		if i%2 == 1 {
			role = "assistant"
		}
		content := fmt.Sprintf("message number %d", i)
		if role == "assistant" {
			lines = append(lines, fmt.Sprintf(
				`{"type":"assistant","sessionId":"s1","timestamp":"2026-02-03T10:%02d:00Z","message":{"role":"assistant","content":[{"type":"text","text":%q}]}}`,
				i, content))
		} else {
			lines = append(lines, fmt.Sprintf(
				`{"type":"user","sessionId":"s1","timestamp":"2026-02-03T10:%02d:00Z","message":{"role":"user","content":%q}}`,
				i, content))
		}
	}
	path := filepath.Join(root, "fixture.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644))

	_, err = index.IndexAll(db, []string{root})
	require.NoError(t, err)
	return db
}

func TestTranscriptFullRender(t *testing.T) {
	db := renderFixtureDB(t)

	out, hitLine, err := Transcript(db, "fixture", Options{HitSeq: -1, Context: -1})
	require.NoError(t, err)
	assert.Equal(t, -1, hitLine)
	assert.Contains(t, out, "fixture")
	assert.Contains(t, out, "message number 0")
	assert.Contains(t, out, "message number 29")
	assert.NotContains(t, out, "messages before")
}

func TestTranscriptWindowAroundHit(t *testing.T) {
	db := renderFixtureDB(t)

	msgs, err := db.GetMessages("fixture")
	require.NoError(t, err)
	require.Len(t, msgs, 30)
	mid := msgs[15].Seq

	out, hitLine, err := Transcript(db, "fixture", Options{HitSeq: mid, Context: 3})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, hitLine, 0)
	assert.Contains(t, out, "messages before")
	assert.Contains(t, out, "messages after")
	assert.Contains(t, out, colorHit)
	assert.NotContains(t, out, "message number 0\n")
}

func TestTranscriptKeywordHighlight(t *testing.T) {
	db := renderFixtureDB(t)

	out, _, err := Transcript(db, "fixture", Options{HitSeq: -1, Context: -1, Query: "number"})
	require.NoError(t, err)
	assert.Contains(t, out, colorBoldRed+"number"+colorReset)
}

func TestTranscriptNotFound(t *testing.T) {
	db := renderFixtureDB(t)

	_, _, err := Transcript(db, "missing", Options{})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}
