// Package sanitize removes payload noise from transcript text: injected
// system-reminder blocks, line-number prefixes on quoted file reads, and
// embedded base64 payloads.
package sanitize

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// BinaryRunThreshold is the minimum length of a base64-alphabet run that is
// treated as an embedded binary payload.
const BinaryRunThreshold = 200

var (
	systemReminderRe = regexp.MustCompile(`(?s)<system-reminder>.*?</system-reminder>[ \t]*\n?`)

	// Line-number prefixes on file-read tool results: "     1→" or "  1234→"
	lineNumberRe = regexp.MustCompile(`(?m)^ {0,5}\d+→`)

	base64RunRe = regexp.MustCompile(fmt.Sprintf(`[A-Za-z0-9+/=]{%d,}`, BinaryRunThreshold))
)

// StripSystemReminders removes <system-reminder> blocks, including the tags.
func StripSystemReminders(text string) string {
	return systemReminderRe.ReplaceAllString(text, "")
}

// StripLineNumbers removes "   123→" prefixes so quoted file content matches
// the original file's literal text.
func StripLineNumbers(text string) string {
	return lineNumberRe.ReplaceAllString(text, "")
}

// LooksBinary reports whether text is, as a whole, an encoded binary payload.
func LooksBinary(text string) bool {
	if len(text) < BinaryRunThreshold {
		return false
	}
	sample := strings.ReplaceAll(text[:BinaryRunThreshold], "\n", "")
	for _, c := range sample {
		switch {
		case c >= 'A' && c <= 'Z':
		case c >= 'a' && c <= 'z':
		case c >= '0' && c <= '9':
		case c == '+' || c == '/' || c == '=':
		default:
			return false
		}
	}
	return true
}

// ReplaceBinaryRuns replaces base64 runs embedded inside otherwise readable
// text with a short placeholder. Payloads nested in tool results get caught
// here even when the surrounding text is prose.
func ReplaceBinaryRuns(text string) string {
	return base64RunRe.ReplaceAllStringFunc(text, func(run string) string {
		return fmt.Sprintf("[binary data stripped, %d chars]", len(run))
	})
}

// Clean applies the transform for conversational text: reminders out,
// embedded binary runs replaced. It is idempotent. Line-number stripping is
// not included; numbered-arrow prefixes only appear in file-read tool
// results, and a prompt may legitimately contain them.
func Clean(text string) string {
	text = StripSystemReminders(text)
	text = ReplaceBinaryRuns(text)
	return strings.TrimSpace(text)
}

// CutBytes cuts text to at most max bytes without splitting a rune; the cut
// backs up to the nearest rune boundary.
func CutBytes(text string, max int) string {
	if len(text) <= max {
		return text
	}
	for max > 0 && !utf8.RuneStart(text[max]) {
		max--
	}
	return text[:max]
}

// Truncate cuts text to max bytes, appending a note with the original size.
// Text at or under the limit is returned unchanged.
func Truncate(text string, max int, label string) string {
	if len(text) <= max {
		return text
	}
	return CutBytes(text, max) + fmt.Sprintf("\n\n[...truncated %s, %d chars total]", label, len(text))
}
