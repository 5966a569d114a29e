package sanitize

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestStripSystemReminders(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "single block",
			input: "before\n<system-reminder>injected</system-reminder>\nafter",
			want:  "before\nafter",
		},
		{
			name:  "multiline block",
			input: "hello\n<system-reminder>line one\nline two</system-reminder>\nworld",
			want:  "hello\nworld",
		},
		{
			name:  "no block",
			input: "plain text",
			want:  "plain text",
		},
		{
			name:  "only block",
			input: "<system-reminder>all noise</system-reminder>",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripSystemReminders(tt.input))
		})
	}
}

func TestStripLineNumbers(t *testing.T) {
	input := "   12→func main() {\n   13→\tfmt.Println()\n   14→}"
	want := "func main() {\n\tfmt.Println()\n}"
	assert.Equal(t, want, StripLineNumbers(input))

	// more than five leading spaces is not a line-number prefix
	untouched := "       12→deep"
	assert.Equal(t, untouched, StripLineNumbers(untouched))

	// arrows mid-line stay
	assert.Equal(t, "a → b", StripLineNumbers("a → b"))
}

func TestLooksBinary(t *testing.T) {
	assert.True(t, LooksBinary(strings.Repeat("iVBORw0KGgo+", 50)))
	assert.False(t, LooksBinary("short"))
	assert.False(t, LooksBinary("this is a normal sentence "+strings.Repeat("with spaces ", 30)))
}

func TestReplaceBinaryRuns(t *testing.T) {
	payload := strings.Repeat("QUJD", 100) // 400 chars
	text := "an image: " + payload + " end"

	got := ReplaceBinaryRuns(text)
	assert.NotContains(t, got, payload)
	assert.Contains(t, got, "[binary data stripped, 400 chars]")
	assert.Contains(t, got, "an image: ")
	assert.Contains(t, got, " end")
}

func TestCleanIdempotent(t *testing.T) {
	input := "  text\n<system-reminder>x</system-reminder>\n   1→quoted\n" + strings.Repeat("YWJj", 80)
	once := Clean(input)
	assert.Equal(t, once, Clean(once))
}

func TestCleanKeepsNumberedLines(t *testing.T) {
	// numbered-arrow prefixes are only stripped on the tool-result path
	assert.Equal(t, "12→not a file read", Clean("   12→not a file read"))
}

func TestCutBytes(t *testing.T) {
	assert.Equal(t, "abc", CutBytes("abcdef", 3))
	assert.Equal(t, "short", CutBytes("short", 100))

	// a cut landing mid-rune backs up to the boundary
	assert.Equal(t, "日", CutBytes("日本", 4))
	assert.Equal(t, "", CutBytes("日", 2))
}

func TestTruncateMultibyteStaysValidUTF8(t *testing.T) {
	long := "a" + strings.Repeat("日", 4000)
	got := Truncate(long, 3000, "thinking")
	assert.True(t, utf8.ValidString(got))
	assert.Contains(t, got, "[...truncated thinking,")
}

func TestTruncate(t *testing.T) {
	long := strings.Repeat("x", 10000)
	got := Truncate(long, 3000, "thinking")
	assert.True(t, strings.HasPrefix(got, strings.Repeat("x", 3000)))
	assert.Contains(t, got, "[...truncated thinking, 10000 chars total]")
	assert.LessOrEqual(t, len(got), 3000+60)

	short := "short text"
	assert.Equal(t, short, Truncate(short, 3000, "thinking"))
}
